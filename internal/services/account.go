package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"steeze/internal/apiclient"
	"steeze/internal/domain"
	"steeze/internal/notify"
	"steeze/internal/validate"
)

var (
	ErrInvalidEmail     = errors.New("please enter a valid email address")
	ErrInvalidName      = errors.New("please enter your name")
	ErrWeakPassword     = errors.New("password must be 8 or more characters with a letter and a number")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrMissingPassword  = errors.New("please enter your password")
	ErrOrderNotFound    = errors.New("order not found")
	ErrAlreadyPaid      = errors.New("this order no longer needs a payment receipt")
	ErrEmptyMessage     = errors.New("please write a message")
)

type Account struct {
	Shell  *Shell
	API    *apiclient.Client
	Notify *notify.Dispatcher
}

func NewAccount(shell *Shell, api *apiclient.Client, n *notify.Dispatcher) *Account {
	return &Account{Shell: shell, API: api, Notify: n}
}

type Registration struct {
	Name            string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

func (r Registration) validate() (apiclient.RegisterInput, error) {
	name, ok := validate.Name(r.Name)
	if !ok {
		return apiclient.RegisterInput{}, ErrInvalidName
	}
	email, ok := validate.Email(r.Email)
	if !ok {
		return apiclient.RegisterInput{}, ErrInvalidEmail
	}
	if !validate.Password(r.Password) {
		return apiclient.RegisterInput{}, ErrWeakPassword
	}
	if r.Password != r.ConfirmPassword {
		return apiclient.RegisterInput{}, ErrPasswordMismatch
	}
	return apiclient.RegisterInput{Name: name, Email: email, Phone: strings.TrimSpace(r.Phone), Password: r.Password}, nil
}

// Register creates the account and logs the session in.
func (s *Account) Register(ctx context.Context, st *State, r Registration) (domain.Customer, error) {
	in, err := r.validate()
	if err != nil {
		return domain.Customer{}, err
	}
	c, err := s.API.Register(ctx, in)
	if err != nil {
		return domain.Customer{}, err
	}
	if c.Name == "" {
		c.Name = in.Name
	}
	if c.Phone == "" {
		c.Phone = in.Phone
	}
	return c, s.Shell.SetCustomer(st, &c)
}

func (s *Account) Login(ctx context.Context, st *State, email, password string) (domain.Customer, error) {
	email, ok := validate.Email(email)
	if !ok {
		return domain.Customer{}, ErrInvalidEmail
	}
	if password == "" {
		return domain.Customer{}, ErrMissingPassword
	}
	c, err := s.API.Login(ctx, email, password)
	if err != nil {
		return domain.Customer{}, err
	}
	return c, s.Shell.SetCustomer(st, &c)
}

func (s *Account) Logout(st *State) error { return s.Shell.Logout(st) }

func (s *Account) ResetPassword(ctx context.Context, email string) error {
	email, ok := validate.Email(email)
	if !ok {
		return ErrInvalidEmail
	}
	return s.API.ResetPassword(ctx, email)
}

func (s *Account) ChangePassword(ctx context.Context, st *State, current, next, confirm string) error {
	if st.Customer == nil {
		return ErrNotLoggedIn
	}
	if current == "" {
		return ErrMissingPassword
	}
	if !validate.Password(next) {
		return ErrWeakPassword
	}
	if next != confirm {
		return ErrPasswordMismatch
	}
	return s.API.UpdatePassword(ctx, st.Customer.UserID, current, next)
}

// Orders is the customer's order history, newest first as the API sends it.
func (s *Account) Orders(ctx context.Context, st *State) ([]domain.Order, error) {
	if st.Customer == nil {
		return nil, ErrNotLoggedIn
	}
	return s.API.ListUserOrders(ctx, st.Customer.UserID)
}

// Owns reports whether the order belongs to c, by user id or email.
func Owns(c *domain.Customer, o domain.Order) bool {
	if c == nil {
		return false
	}
	if o.UserID != "" {
		return o.UserID == c.UserID
	}
	return c.Email != "" && strings.EqualFold(o.Customer.Email, c.Email)
}

// Order returns one of the customer's orders with its receipt. Orders that
// belong to someone else look the same as missing ones.
func (s *Account) Order(ctx context.Context, st *State, id domain.ID) (domain.Order, *domain.Receipt, error) {
	if st.Customer == nil {
		return domain.Order{}, nil, ErrNotLoggedIn
	}
	o, err := s.API.GetOrder(ctx, id)
	if err != nil {
		var apiErr *apiclient.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return domain.Order{}, nil, ErrOrderNotFound
		}
		return domain.Order{}, nil, err
	}
	if !Owns(st.Customer, o) {
		return domain.Order{}, nil, ErrOrderNotFound
	}
	r, err := s.API.ReceiptForOrder(ctx, o.ID)
	if err != nil {
		return o, nil, err
	}
	return o, r, nil
}

// UploadReceipt attaches proof of payment to an unpaid order of the customer.
func (s *Account) UploadReceipt(ctx context.Context, st *State, id domain.ID, up apiclient.Upload) error {
	o, _, err := s.Order(ctx, st, id)
	if err != nil {
		return err
	}
	if o.Status.IsPaid() || o.Status.IsTerminal() {
		return ErrAlreadyPaid
	}
	if err := s.API.UploadReceipt(ctx, o.ID, up); err != nil {
		return err
	}
	email, name := notify.Recipient(o)
	if email == "" {
		email, name = st.Customer.Email, st.Customer.Name
	}
	s.Notify.Send(ctx, notify.Message{
		Trigger: domain.TriggerPaymentReceipt,
		Email:   email,
		Name:    name,
		Data:    notify.OrderData(o),
	})
	return nil
}

type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Contact forwards a contact-form submission to the mailer.
func (s *Account) Contact(ctx context.Context, m ContactMessage) error {
	name, ok := validate.Name(m.Name)
	if !ok {
		return ErrInvalidName
	}
	email, ok := validate.Email(m.Email)
	if !ok {
		return ErrInvalidEmail
	}
	text := strings.TrimSpace(m.Message)
	if text == "" {
		return ErrEmptyMessage
	}
	s.Notify.Send(ctx, notify.Message{
		Trigger: domain.TriggerContactForm,
		Email:   email,
		Name:    name,
		Data:    map[string]any{"subject": strings.TrimSpace(m.Subject), "message": text},
	})
	return nil
}
