package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"steeze/internal/domain"
)

// ProductInput is the body of product create/update calls.
type ProductInput struct {
	ID          domain.ID `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	SubCategory string    `json:"sub_category"`
	Price       int64     `json:"price"`
	SalePrice   int64     `json:"sale_price"`
	OnSale      bool      `json:"on_sale"`
	Stock       int       `json:"stock"`
	Images      []string  `json:"images"`
	IsFeatured  bool      `json:"is_featured"`
}

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return getList[domain.Product](ctx, c, "products.list", "products.php", nil, "products")
}

// GetProduct returns the single product matching id. The endpoint answers
// with a list, an object, or an object wrapping "product".
func (c *Client) GetProduct(ctx context.Context, id domain.ID) (domain.Product, error) {
	const op = "products.get"
	var raw json.RawMessage
	if err := c.get(ctx, op, "products.php", url.Values{"id": {id.String()}}, &raw); err != nil {
		return domain.Product{}, err
	}
	list, err := listOf[domain.Product](op, raw, "products")
	if err == nil && len(list) > 0 {
		for _, p := range list {
			if p.ID == id {
				return p, nil
			}
		}
		return list[0], nil
	}
	var wrapped struct {
		Product *domain.Product `json:"product"`
	}
	if json.Unmarshal(raw, &wrapped) == nil && wrapped.Product != nil && wrapped.Product.ID != "" {
		return *wrapped.Product, nil
	}
	var p domain.Product
	if json.Unmarshal(raw, &p) == nil && p.ID != "" {
		return p, nil
	}
	return domain.Product{}, &Error{Op: op, Status: http.StatusNotFound, Message: "This item is no longer available.", Err: ErrRejected}
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) error {
	in.ID = ""
	_, err := c.mutate(ctx, "products.create", http.MethodPost, "products.php", nil, in)
	return err
}

func (c *Client) UpdateProduct(ctx context.Context, in ProductInput) error {
	_, err := c.mutate(ctx, "products.update", http.MethodPut, "products.php", nil, in)
	return err
}

func (c *Client) DeleteProduct(ctx context.Context, id domain.ID) error {
	_, err := c.mutate(ctx, "products.delete", http.MethodDelete, "products.php", url.Values{"id": {id.String()}}, nil)
	return err
}
