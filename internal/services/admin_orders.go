package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"steeze/internal/apiclient"
	"steeze/internal/domain"
	"steeze/internal/notify"
)

var (
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("that status change is not allowed")
	ErrNoEdit            = errors.New("this order is not being edited")
	ErrNoSuchLine        = errors.New("that line is not on the order")
	ErrLastLine          = errors.New("an order needs at least one line")
	ErrNoReceipt         = errors.New("this order has no receipt")
	ErrReceiptExists     = errors.New("this order already has a receipt")
	// ErrStatusNotSynced means the receipt decision was saved but the order
	// status update after it failed.
	ErrStatusNotSynced = errors.New("the receipt was updated but the order status was not changed, so set the status again from this page")
)

// Action names a confirmable admin mutation on an order.
type Action string

const (
	ActionStatus        Action = "status"
	ActionSaveItems     Action = "save_items"
	ActionVerifyReceipt Action = "verify_receipt"
	ActionRejectReceipt Action = "reject_receipt"
	ActionDeleteReceipt Action = "delete_receipt"
	ActionReminder      Action = "reminder"
	ActionMessage       Action = "message"
	ActionRemoveLine    Action = "remove_line"
)

// Describe is the sentence shown on the confirmation page.
func Describe(a Action, o domain.Order, arg string) (string, bool) {
	n := o.DisplayNumber()
	switch a {
	case ActionStatus:
		return fmt.Sprintf("Change order #%s from %s to %s?", n, o.Status, arg), true
	case ActionSaveItems:
		return fmt.Sprintf("Save the edited items on order #%s? The total becomes %s.", n, arg), true
	case ActionVerifyReceipt:
		return fmt.Sprintf("Verify the payment receipt for order #%s and mark it Processing?", n), true
	case ActionRejectReceipt:
		return fmt.Sprintf("Reject the payment receipt for order #%s and return it to Pending?", n), true
	case ActionDeleteReceipt:
		return fmt.Sprintf("Delete the payment receipt for order #%s?", n), true
	case ActionReminder:
		return fmt.Sprintf("Email a payment reminder for order #%s to %s?", n, o.Customer.Email), true
	case ActionMessage:
		return fmt.Sprintf("Send this message to %s about order #%s?", o.Customer.Email, n), true
	case ActionRemoveLine:
		return fmt.Sprintf("Remove %s from order #%s?", arg, n), true
	}
	return "", false
}

// InvoiceTitle heads the printable document for an order.
func InvoiceTitle(s domain.OrderStatus) string {
	if s.IsPaid() {
		return "Payment Receipt"
	}
	return "Invoice"
}

// EditBuffer is an uncommitted copy of an order's lines.
type EditBuffer struct {
	OrderID domain.ID          `json:"order_id"`
	Items   []domain.OrderItem `json:"items"`
}

func (b EditBuffer) Total() domain.Amount { return domain.ItemsTotal(b.Items) }

type OrderDetail struct {
	Order        domain.Order
	Receipt      *domain.Receipt
	Edit         *EditBuffer
	InvoiceTitle string
	Next         []domain.OrderStatus
}

type AdminOrders struct {
	Shell  *Shell
	API    *apiclient.Client
	Notify *notify.Dispatcher
}

func NewAdminOrders(shell *Shell, api *apiclient.Client, n *notify.Dispatcher) *AdminOrders {
	return &AdminOrders{Shell: shell, API: api, Notify: n}
}

func editKey(id domain.ID) string { return "edit:" + id.String() }

// Allowed lists the statuses an operator may move s to, in display order.
func Allowed(s domain.OrderStatus) []domain.OrderStatus {
	var out []domain.OrderStatus
	for _, next := range domain.Statuses {
		if s.CanTransition(next) {
			out = append(out, next)
		}
	}
	return out
}

func (s *AdminOrders) order(ctx context.Context, id domain.ID) (domain.Order, error) {
	o, err := s.API.GetOrder(ctx, id)
	if err != nil {
		var apiErr *apiclient.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return domain.Order{}, ErrOrderNotFound
		}
		return domain.Order{}, err
	}
	return o, nil
}

// Load fetches an order, its receipt and any edit in progress.
func (s *AdminOrders) Load(ctx context.Context, st *State, id domain.ID) (OrderDetail, error) {
	o, err := s.order(ctx, id)
	if err != nil {
		return OrderDetail{}, err
	}
	r, err := s.API.ReceiptForOrder(ctx, o.ID)
	if err != nil {
		return OrderDetail{}, err
	}
	d := OrderDetail{Order: o, Receipt: r, InvoiceTitle: InvoiceTitle(o.Status), Next: Allowed(o.Status)}
	var buf EditBuffer
	found, err := s.Shell.State.Load(st.SID, editKey(o.ID), &buf)
	if err != nil {
		return OrderDetail{}, err
	}
	if found {
		d.Edit = &buf
	}
	return d, nil
}

func (s *AdminOrders) notifyOrder(ctx context.Context, trigger domain.Trigger, o domain.Order, extra map[string]any) {
	data := notify.OrderData(o)
	for k, v := range extra {
		data[k] = v
	}
	email, name := notify.Recipient(o)
	s.Notify.Send(ctx, notify.Message{Trigger: trigger, Email: email, Name: name, Data: data})
}

// ChangeStatus moves an order along the status graph. The returned order
// reflects the new status only when the API accepted it. Every accepted
// change emails status_update; apiNotify is only passed on to the API.
func (s *AdminOrders) ChangeStatus(ctx context.Context, id domain.ID, raw string, apiNotify bool) (domain.Order, error) {
	next, ok := domain.ParseStatus(raw)
	if !ok {
		return domain.Order{}, ErrInvalidStatus
	}
	o, err := s.order(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !o.Status.CanTransition(next) {
		return o, ErrInvalidTransition
	}
	if err := s.API.UpdateOrderStatus(ctx, o.ID, next, apiNotify); err != nil {
		return o, err
	}
	prev := o.Status
	o.Status = next
	s.notifyOrder(ctx, domain.TriggerStatusUpdate, o, map[string]any{"new_status": string(next), "old_status": string(prev)})
	return o, nil
}

// StartEdit copies the order lines into a buffer the operator can change.
func (s *AdminOrders) StartEdit(ctx context.Context, st *State, id domain.ID) (EditBuffer, error) {
	o, err := s.order(ctx, id)
	if err != nil {
		return EditBuffer{}, err
	}
	buf := EditBuffer{OrderID: o.ID, Items: append([]domain.OrderItem(nil), o.Items...)}
	return buf, s.Shell.State.Save(st.SID, editKey(o.ID), buf)
}

func (s *AdminOrders) buffer(st *State, id domain.ID) (EditBuffer, error) {
	var buf EditBuffer
	found, err := s.Shell.State.Load(st.SID, editKey(id), &buf)
	if err != nil {
		return EditBuffer{}, err
	}
	if !found {
		return EditBuffer{}, ErrNoEdit
	}
	return buf, nil
}

// Nudge changes a buffered line's quantity by delta, never below 1.
func (s *AdminOrders) Nudge(st *State, id domain.ID, line, delta int) (EditBuffer, error) {
	buf, err := s.buffer(st, id)
	if err != nil {
		return EditBuffer{}, err
	}
	if line < 0 || line >= len(buf.Items) {
		return buf, ErrNoSuchLine
	}
	q := int(buf.Items[line].Quantity) + delta
	if q < 1 {
		q = 1
	}
	buf.Items[line].Quantity = domain.Int(q)
	return buf, s.Shell.State.Save(st.SID, editKey(id), buf)
}

func (s *AdminOrders) RemoveLine(st *State, id domain.ID, line int) (EditBuffer, error) {
	buf, err := s.buffer(st, id)
	if err != nil {
		return EditBuffer{}, err
	}
	if line < 0 || line >= len(buf.Items) {
		return buf, ErrNoSuchLine
	}
	if len(buf.Items) == 1 {
		return buf, ErrLastLine
	}
	buf.Items = append(buf.Items[:line], buf.Items[line+1:]...)
	return buf, s.Shell.State.Save(st.SID, editKey(id), buf)
}

func (s *AdminOrders) CancelEdit(st *State, id domain.ID) error {
	return s.Shell.State.Delete(st.SID, editKey(id))
}

// BufferTotal is the total the order would have if the edit were saved.
func (s *AdminOrders) BufferTotal(st *State, id domain.ID) (domain.Amount, error) {
	buf, err := s.buffer(st, id)
	if err != nil {
		return 0, err
	}
	return buf.Total(), nil
}

// SaveItems persists the buffer and leaves edit mode. A failed save keeps
// the buffer so the operator can retry.
func (s *AdminOrders) SaveItems(ctx context.Context, st *State, id domain.ID) (domain.Order, error) {
	buf, err := s.buffer(st, id)
	if err != nil {
		return domain.Order{}, err
	}
	o, err := s.order(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	total := buf.Total()
	if err := s.API.UpdateOrderItems(ctx, o.ID, buf.Items, total, true); err != nil {
		return o, err
	}
	o.Items = buf.Items
	o.Total = total
	return o, s.Shell.State.Delete(st.SID, editKey(id))
}

func (s *AdminOrders) receiptFor(ctx context.Context, id domain.ID) (domain.Order, *domain.Receipt, error) {
	o, err := s.order(ctx, id)
	if err != nil {
		return domain.Order{}, nil, err
	}
	r, err := s.API.ReceiptForOrder(ctx, o.ID)
	if err != nil {
		return o, nil, err
	}
	if r == nil {
		return o, nil, ErrNoReceipt
	}
	return o, r, nil
}

// VerifyReceipt accepts the proof of payment and moves the order to
// Processing whatever its current status.
func (s *AdminOrders) VerifyReceipt(ctx context.Context, id domain.ID) (domain.Order, error) {
	return s.settleReceipt(ctx, id, domain.ReceiptVerified, domain.StatusProcessing, domain.TriggerStatusUpdate)
}

// RejectReceipt refuses the proof and returns the order to Pending.
func (s *AdminOrders) RejectReceipt(ctx context.Context, id domain.ID) (domain.Order, error) {
	return s.settleReceipt(ctx, id, domain.ReceiptRejected, domain.StatusPending, domain.TriggerPaymentRejected)
}

func (s *AdminOrders) settleReceipt(ctx context.Context, id domain.ID, v domain.VerificationStatus, status domain.OrderStatus, trigger domain.Trigger) (domain.Order, error) {
	o, r, err := s.receiptFor(ctx, id)
	if err != nil {
		return o, err
	}
	if err := s.API.UpdateReceiptStatus(ctx, r.ID, o.ID, v); err != nil {
		return o, err
	}
	if err := s.API.UpdateOrderStatus(ctx, o.ID, status, false); err != nil {
		return o, fmt.Errorf("%w (receipt %s now %s): %v", ErrStatusNotSynced, r.ID, v, err)
	}
	o.Status = status
	s.notifyOrder(ctx, trigger, o, map[string]any{"new_status": string(status)})
	return o, nil
}

func (s *AdminOrders) DeleteReceipt(ctx context.Context, id domain.ID) error {
	_, r, err := s.receiptFor(ctx, id)
	if err != nil {
		return err
	}
	return s.API.DeleteReceipt(ctx, r.ID)
}

// UploadReceipt attaches proof on the customer's behalf.
func (s *AdminOrders) UploadReceipt(ctx context.Context, id domain.ID, up apiclient.Upload) error {
	o, err := s.order(ctx, id)
	if err != nil {
		return err
	}
	r, err := s.API.ReceiptForOrder(ctx, o.ID)
	if err != nil {
		return err
	}
	if r != nil && r.VerificationStatus != domain.ReceiptRejected {
		return ErrReceiptExists
	}
	return s.API.UploadReceipt(ctx, o.ID, up)
}

// SendReminder emails the customer the amount due and where to pay it.
func (s *AdminOrders) SendReminder(ctx context.Context, id domain.ID, bank domain.Settlement) error {
	o, err := s.order(ctx, id)
	if err != nil {
		return err
	}
	if o.Status.IsPaid() || o.Status.IsTerminal() {
		return ErrAlreadyPaid
	}
	s.notifyOrder(ctx, domain.TriggerPaymentReminder, o, map[string]any{
		"bank_name":      bank.BankName,
		"account_name":   bank.AccountName,
		"account_number": bank.AccountNumber,
	})
	return nil
}

func (s *AdminOrders) SendMessage(ctx context.Context, id domain.ID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	o, err := s.order(ctx, id)
	if err != nil {
		return err
	}
	s.notifyOrder(ctx, domain.TriggerAdminMessage, o, map[string]any{"message": text})
	return nil
}
