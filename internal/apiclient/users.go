package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"steeze/internal/domain"
)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// userBody covers the two login/register response shapes: a nested "user"
// object or the fields flattened next to the success flag.
type userBody struct {
	User   *domain.User `json:"user"`
	UserID domain.ID    `json:"user_id"`
	ID     domain.ID    `json:"id"`
	Name   string       `json:"name"`
	Email  string       `json:"email"`
	Phone  string       `json:"phone"`
}

func (b userBody) customer(fallbackEmail string) domain.Customer {
	c := domain.Customer{UserID: b.UserID, Name: b.Name, Email: b.Email, Phone: b.Phone}
	if b.User != nil {
		c = domain.Customer{UserID: b.User.ID, Name: b.User.Name, Email: b.User.Email, Phone: b.User.Phone}
	}
	if c.UserID == "" {
		c.UserID = b.ID
	}
	if c.Email == "" {
		c.Email = fallbackEmail
	}
	return c
}

func (c *Client) authenticate(ctx context.Context, op, action string, body any, email string) (domain.Customer, error) {
	raw, err := c.mutate(ctx, op, http.MethodPost, "users.php", url.Values{"action": {action}}, body)
	if err != nil {
		return domain.Customer{}, err
	}
	var ub userBody
	if err := json.Unmarshal(raw, &ub); err != nil {
		return domain.Customer{}, &Error{Op: op, Message: msgSync, Err: errors.Join(ErrSync, err)}
	}
	cust := ub.customer(email)
	if cust.UserID == "" {
		return domain.Customer{}, &Error{Op: op, Message: msgSync, Err: ErrSync}
	}
	return cust, nil
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (domain.Customer, error) {
	cust, err := c.authenticate(ctx, "users.register", "register", in, in.Email)
	if err != nil {
		return domain.Customer{}, err
	}
	if cust.Name == "" {
		cust.Name = in.Name
	}
	if cust.Phone == "" {
		cust.Phone = in.Phone
	}
	return cust, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (domain.Customer, error) {
	body := map[string]string{"email": email, "password": password}
	return c.authenticate(ctx, "users.login", "login", body, email)
}

func (c *Client) ResetPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	_, err := c.mutate(ctx, "users.reset", http.MethodPost, "users.php", url.Values{"action": {"reset"}}, body)
	return err
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	return getList[domain.User](ctx, c, "users.list", "users.php", nil, "users")
}

// AdminLogin checks operator credentials.
func (c *Client) AdminLogin(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	_, err := c.mutate(ctx, "auth.login", http.MethodPost, "auth.php", url.Values{"action": {"login"}}, body)
	return err
}

func (c *Client) UpdatePassword(ctx context.Context, userID domain.ID, current, next string) error {
	body := map[string]any{"user_id": userID, "current_password": current, "new_password": next}
	_, err := c.mutate(ctx, "auth.update_password", http.MethodPost, "auth.php", url.Values{"action": {"update_password"}}, body)
	return err
}
