package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"steeze/internal/domain"
)

// OrderRequest is the checkout submission.
type OrderRequest struct {
	Customer      domain.CustomerInfo `json:"customer_info"`
	Notes         string              `json:"order_notes"`
	Items         []domain.OrderItem  `json:"cart_items"`
	Total         domain.Amount       `json:"total_cents"`
	UserID        domain.ID           `json:"user_id,omitempty"`
	PaymentMethod string              `json:"payment_method"`
}

// OrderCreated is the canonical result of order creation.
type OrderCreated struct {
	ID     domain.ID
	Number string
}

var orderIDKeys = []string{"order_id", "id", "orderId"}

// NormalizeOrderCreated maps the heterogeneous creation responses onto
// OrderCreated. The id may sit at the top level or inside "order"/"data",
// as a number or a string. A success flag without a usable id is an error.
func NormalizeOrderCreated(body []byte) (OrderCreated, error) {
	const op = "orders.create"
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return OrderCreated{}, &Error{Op: op, Message: msgSync, Err: errors.Join(ErrSync, err)}
	}
	if !env.succeeded() {
		msg := env.errorText()
		if msg == "" {
			msg = "Order could not be placed."
		}
		return OrderCreated{}, &Error{Op: op, Message: msg, Err: ErrRejected}
	}

	var top map[string]json.RawMessage
	_ = json.Unmarshal(body, &top)
	scopes := []map[string]json.RawMessage{top}
	for _, k := range []string{"order", "data"} {
		var inner map[string]json.RawMessage
		if raw, ok := top[k]; ok && json.Unmarshal(raw, &inner) == nil {
			scopes = append(scopes, inner)
		}
	}

	var out OrderCreated
	for _, scope := range scopes {
		if out.ID == "" {
			out.ID = firstID(scope, orderIDKeys...)
		}
		if out.Number == "" {
			out.Number = firstID(scope, "order_number", "orderNumber").String()
		}
	}
	if out.ID == "" {
		return OrderCreated{}, &Error{
			Op:      op,
			Message: "Order could not be confirmed. Please try again.",
			Err:     ErrMissingOrderID,
		}
	}
	return out, nil
}

func firstID(scope map[string]json.RawMessage, keys ...string) domain.ID {
	for _, k := range keys {
		raw, ok := scope[k]
		if !ok {
			continue
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] == '{' || raw[0] == '[' {
			continue
		}
		var id domain.ID
		if json.Unmarshal(raw, &id) != nil {
			continue
		}
		if s := strings.TrimSpace(id.String()); s != "" && s != "0" && s != "false" {
			return domain.ID(s)
		}
	}
	return ""
}

func (c *Client) CreateOrder(ctx context.Context, in OrderRequest) (OrderCreated, error) {
	const op = "orders.create"
	req, err := c.newJSONRequest(http.MethodPost, c.endpoint("orders.php", nil), in)
	if err != nil {
		return OrderCreated{}, &Error{Op: op, Message: msgNetwork, Err: err}
	}
	body, err := c.send(ctx, op, req)
	if err != nil {
		return OrderCreated{}, err
	}
	return NormalizeOrderCreated(body)
}

func (c *Client) GetOrder(ctx context.Context, id domain.ID) (domain.Order, error) {
	const op = "orders.get"
	var raw json.RawMessage
	q := url.Values{"action": {"get_order"}, "id": {id.String()}}
	if err := c.get(ctx, op, "orders.php", q, &raw); err != nil {
		// A rejected lookup means there is no such order.
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == 0 && errors.Is(err, ErrRejected) {
			apiErr.Status = http.StatusNotFound
		}
		return domain.Order{}, err
	}
	var wrapped struct {
		Order *domain.Order `json:"order"`
		Data  *domain.Order `json:"data"`
	}
	if json.Unmarshal(raw, &wrapped) == nil {
		if wrapped.Order != nil && wrapped.Order.ID != "" {
			return *wrapped.Order, nil
		}
		if wrapped.Data != nil && wrapped.Data.ID != "" {
			return *wrapped.Data, nil
		}
	}
	var o domain.Order
	if err := json.Unmarshal(raw, &o); err != nil || o.ID == "" {
		return domain.Order{}, &Error{Op: op, Status: http.StatusNotFound, Message: "Order not found.", Err: errors.Join(ErrSync, err)}
	}
	return o, nil
}

// ListOrders returns every order (admin).
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return getList[domain.Order](ctx, c, "orders.list", "orders.php", url.Values{"action": {"get_all_orders"}}, "orders")
}

// ListUserOrders returns the orders placed by one customer.
func (c *Client) ListUserOrders(ctx context.Context, userID domain.ID) ([]domain.Order, error) {
	q := url.Values{"action": {"get_user_orders"}, "user_id": {userID.String()}}
	return getList[domain.Order](ctx, c, "orders.list_user", "orders.php", q, "orders")
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id domain.ID, status domain.OrderStatus, notify bool) error {
	body := map[string]any{"id": id, "status": status, "notify_customer": notify}
	_, err := c.mutate(ctx, "orders.update_status", http.MethodPut, "orders.php", nil, body)
	return err
}

func (c *Client) UpdateOrderItems(ctx context.Context, id domain.ID, items []domain.OrderItem, total domain.Amount, notify bool) error {
	body := map[string]any{
		"action":          "update_items",
		"id":              id,
		"items":           items,
		"total_cents":     total,
		"notify_customer": notify,
	}
	_, err := c.mutate(ctx, "orders.update_items", http.MethodPut, "orders.php", nil, body)
	return err
}
