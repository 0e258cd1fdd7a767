package apiclient

import (
	"context"
	"net/http"

	"steeze/internal/domain"
)

func (c *Client) GetSettings(ctx context.Context) (domain.Settings, error) {
	s := domain.Settings{}
	if err := c.get(ctx, "settings.get", "settings.php", nil, &s); err != nil {
		return nil, err
	}
	// Some deployments wrap the bag.
	if inner, ok := s["settings"].(map[string]any); ok {
		return domain.Settings(inner), nil
	}
	if inner, ok := s["data"].(map[string]any); ok {
		return domain.Settings(inner), nil
	}
	return s, nil
}

func (c *Client) SaveSettings(ctx context.Context, s domain.Settings) error {
	_, err := c.mutate(ctx, "settings.save", http.MethodPut, "settings.php", nil, s)
	return err
}
