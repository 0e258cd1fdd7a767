package apiclient

import (
	"context"
	"net/http"

	"steeze/internal/domain"
)

type EmailRequest struct {
	Trigger domain.Trigger `json:"trigger"`
	Email   string         `json:"email"`
	Name    string         `json:"name"`
	Data    map[string]any `json:"data"`
}

func (c *Client) SendEmail(ctx context.Context, req EmailRequest) error {
	if req.Data == nil {
		req.Data = map[string]any{}
	}
	_, err := c.mutate(ctx, "email.send", http.MethodPost, "send_email.php", nil, req)
	return err
}
