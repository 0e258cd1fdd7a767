package services

import (
	"context"

	"steeze/internal/apiclient"
	"steeze/internal/checkout"
	"steeze/internal/domain"
	applog "steeze/internal/log"
	"steeze/internal/notify"
)

const checkoutKey = "checkout"

// Checkout drives checkout.Flow for a session and persists it between
// requests. A failed call leaves the stored flow untouched.
type Checkout struct {
	Shell  *Shell
	API    *apiclient.Client
	Notify *notify.Dispatcher
}

func NewCheckout(shell *Shell, api *apiclient.Client, n *notify.Dispatcher) *Checkout {
	return &Checkout{Shell: shell, API: api, Notify: n}
}

// Flow returns the session's flow, starting a fresh one when none exists or
// when a finished checkout is followed by a new cart.
func (s *Checkout) Flow(st *State) (checkout.Flow, error) {
	var f checkout.Flow
	found, err := s.Shell.State.Load(st.SID, checkoutKey, &f)
	if err != nil {
		return checkout.Flow{}, err
	}
	if !found || f.Step == "" || (f.Step == checkout.StepSuccess && len(st.Cart) > 0) {
		return checkout.New(st.Customer), nil
	}
	return f, nil
}

func (s *Checkout) save(st *State, f checkout.Flow) error {
	return s.Shell.State.Save(st.SID, checkoutKey, f)
}

func (s *Checkout) apply(st *State, step func(f *checkout.Flow) error) (checkout.Flow, error) {
	f, err := s.Flow(st)
	if err != nil {
		return checkout.Flow{}, err
	}
	if err := step(&f); err != nil {
		return f, err
	}
	return f, s.save(st, f)
}

func (s *Checkout) Proceed(st *State) (checkout.Flow, error) {
	return s.apply(st, func(f *checkout.Flow) error { return f.Proceed(len(st.Cart)) })
}

// SubmitDetails keeps what the shopper typed even when it is rejected.
func (s *Checkout) SubmitDetails(st *State, d domain.CustomerInfo, notes string) (checkout.Flow, error) {
	f, err := s.Flow(st)
	if err != nil {
		return checkout.Flow{}, err
	}
	stepErr := f.SubmitDetails(d, notes)
	if stepErr == checkout.ErrWrongStep {
		return f, stepErr
	}
	if err := s.save(st, f); err != nil {
		return f, err
	}
	return f, stepErr
}

func (s *Checkout) Back(st *State) (checkout.Flow, error) {
	return s.apply(st, func(f *checkout.Flow) error { return f.Back() })
}

// Reset discards the stored flow.
func (s *Checkout) Reset(st *State) error {
	return s.Shell.State.Delete(st.SID, checkoutKey)
}

// BuildOrderRequest captures unit prices at confirmation time.
func BuildOrderRequest(f checkout.Flow, entries []domain.CartEntry, c *domain.Customer, paymentMethod string) apiclient.OrderRequest {
	items, total := checkout.BuildOrder(entries)
	req := apiclient.OrderRequest{
		Customer:      f.Details,
		Notes:         f.Notes,
		Items:         items,
		Total:         total,
		PaymentMethod: paymentMethod,
	}
	if c != nil {
		req.UserID = c.UserID
	}
	return req
}

// Confirm submits the order. The flow only advances to payment when the
// API answered with an id; the confirmation email is best-effort.
func (s *Checkout) Confirm(ctx context.Context, st *State) (checkout.Flow, error) {
	f, err := s.Flow(st)
	if err != nil {
		return checkout.Flow{}, err
	}
	if err := f.CanConfirm(len(st.Cart)); err != nil {
		return f, err
	}
	req := BuildOrderRequest(f, st.Cart, st.Customer, checkout.PaymentBankTransfer)
	created, err := s.API.CreateOrder(ctx, req)
	if err != nil {
		return f, err
	}
	if err := f.OrderPlaced(created.ID, created.Number, req.Total); err != nil {
		return f, err
	}
	if err := s.save(st, f); err != nil {
		// The order exists upstream; a retry from review would place another.
		applog.Background("checkout.confirm.unsaved", err, map[string]any{
			"order_id":     created.ID,
			"order_number": created.Number,
		})
		return f, err
	}

	order := domain.Order{
		ID:            created.ID,
		OrderNumber:   created.Number,
		Customer:      f.Details,
		Items:         req.Items,
		Total:         req.Total,
		Status:        domain.StatusPending,
		PaymentMethod: req.PaymentMethod,
		Notes:         f.Notes,
	}
	email, name := notify.Recipient(order)
	s.Notify.Send(ctx, notify.Message{
		Trigger: domain.TriggerOrderConfirmation,
		Email:   email,
		Name:    name,
		Data:    notify.OrderData(order),
	})
	return f, nil
}

// UploadReceipt sends proof of payment for the pending order, then clears
// the cart and finishes the flow.
func (s *Checkout) UploadReceipt(ctx context.Context, st *State, up apiclient.Upload) (checkout.Flow, error) {
	f, err := s.Flow(st)
	if err != nil {
		return checkout.Flow{}, err
	}
	if f.Step != checkout.StepPayment {
		return f, checkout.ErrWrongStep
	}
	if err := s.API.UploadReceipt(ctx, f.OrderID, up); err != nil {
		return f, err
	}
	if err := f.Paid(true); err != nil {
		return f, err
	}
	if err := s.finish(st, f); err != nil {
		return f, err
	}
	s.Notify.Send(ctx, notify.Message{
		Trigger: domain.TriggerPaymentReceipt,
		Email:   f.Details.Email,
		Name:    f.Details.FullName(),
		Data: map[string]any{
			"order_id":     f.OrderID,
			"order_number": f.DisplayOrder(),
			"total":        int64(f.OrderTotal),
		},
	})
	return f, nil
}

// PayLater finishes the flow without proof; the order stays pending.
func (s *Checkout) PayLater(st *State) (checkout.Flow, error) {
	f, err := s.Flow(st)
	if err != nil {
		return checkout.Flow{}, err
	}
	if err := f.Paid(false); err != nil {
		return f, err
	}
	return f, s.finish(st, f)
}

func (s *Checkout) finish(st *State, f checkout.Flow) error {
	if err := s.Shell.ClearCart(st); err != nil {
		return err
	}
	return s.save(st, f)
}
