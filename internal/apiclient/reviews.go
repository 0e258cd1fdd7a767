package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"steeze/internal/domain"
)

type ReviewInput struct {
	ProductID domain.ID `json:"product_id"`
	UserID    domain.ID `json:"user_id,omitempty"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
}

func (c *Client) ListReviews(ctx context.Context, productID domain.ID) ([]domain.Review, error) {
	q := url.Values{"product_id": {productID.String()}}
	return getList[domain.Review](ctx, c, "reviews.list", "reviews.php", q, "reviews")
}

func (c *Client) ListAllReviews(ctx context.Context) ([]domain.Review, error) {
	q := url.Values{"action": {"list_all"}}
	return getList[domain.Review](ctx, c, "reviews.list_all", "reviews.php", q, "reviews")
}

func (c *Client) CreateReview(ctx context.Context, in ReviewInput) error {
	_, err := c.mutate(ctx, "reviews.create", http.MethodPost, "reviews.php", nil, in)
	return err
}

func (c *Client) DeleteReview(ctx context.Context, id domain.ID) error {
	_, err := c.mutate(ctx, "reviews.delete", http.MethodDelete, "reviews.php", url.Values{"id": {id.String()}}, nil)
	return err
}
