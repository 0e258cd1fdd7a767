// Package checkout is the customer checkout state machine. It holds no I/O;
// services drive it and persist it between requests.
package checkout

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"steeze/internal/domain"
)

type Step string

const (
	StepCart    Step = "cart"
	StepDetails Step = "details"
	StepReview  Step = "review"
	StepPayment Step = "payment"
	StepSuccess Step = "success"
)

// Steps in order, for the progress indicator.
var Steps = []Step{StepCart, StepDetails, StepReview, StepPayment, StepSuccess}

const PaymentBankTransfer = "bank_transfer"

var (
	ErrEmptyCart      = errors.New("your cart is empty")
	ErrInvalidDetails = errors.New("please fill in your first name, last name, phone, address and email")
	ErrWrongStep      = errors.New("that action is not available at this step")
)

var validate = validator.New()

// Flow is the persisted checkout state of one session.
type Flow struct {
	Step        Step                `json:"step"`
	Details     domain.CustomerInfo `json:"details"`
	Notes       string              `json:"notes"`
	OrderID     domain.ID           `json:"order_id,omitempty"`
	OrderNumber string              `json:"order_number,omitempty"`
	OrderTotal  domain.Amount       `json:"order_total,omitempty"`
	// Receipt is true once proof was uploaded, false on the pay-later path.
	Receipt bool `json:"receipt"`
}

// New starts a flow at the cart step, prefilled from a logged-in customer.
func New(c *domain.Customer) Flow {
	f := Flow{Step: StepCart}
	if c != nil {
		first, last, _ := strings.Cut(strings.TrimSpace(c.Name), " ")
		f.Details = domain.CustomerInfo{
			FirstName: first,
			LastName:  strings.TrimSpace(last),
			Email:     c.Email,
			Phone:     c.Phone,
		}
	}
	return f
}

func (f Flow) Index() int {
	for i, s := range Steps {
		if s == f.Step {
			return i
		}
	}
	return 0
}

// Proceed moves cart -> details when the cart has lines.
func (f *Flow) Proceed(cartLines int) error {
	if f.Step != StepCart {
		return ErrWrongStep
	}
	if cartLines == 0 {
		return ErrEmptyCart
	}
	f.Step = StepDetails
	return nil
}

// ValidateDetails checks the required contact fields after trimming.
func ValidateDetails(d domain.CustomerInfo) error {
	d = d.Trimmed()
	if err := validate.Struct(d); err != nil {
		return ErrInvalidDetails
	}
	return nil
}

// SubmitDetails moves details -> review. Invalid details keep the step
// but are remembered so the form can be redisplayed.
func (f *Flow) SubmitDetails(d domain.CustomerInfo, notes string) error {
	if f.Step != StepDetails {
		return ErrWrongStep
	}
	f.Details = d.Trimmed()
	f.Notes = strings.TrimSpace(notes)
	if err := ValidateDetails(f.Details); err != nil {
		return err
	}
	f.Step = StepReview
	return nil
}

// Back steps review -> details and details -> cart. Once an order exists
// there is no way back.
func (f *Flow) Back() error {
	switch f.Step {
	case StepReview:
		f.Step = StepDetails
	case StepDetails:
		f.Step = StepCart
	default:
		return ErrWrongStep
	}
	return nil
}

// CanConfirm reports whether order submission is allowed now.
func (f Flow) CanConfirm(cartLines int) error {
	if f.Step != StepReview {
		return ErrWrongStep
	}
	if cartLines == 0 {
		return ErrEmptyCart
	}
	return ValidateDetails(f.Details)
}

// OrderPlaced records a created order and moves review -> payment.
func (f *Flow) OrderPlaced(id domain.ID, number string, total domain.Amount) error {
	if f.Step != StepReview {
		return ErrWrongStep
	}
	if id == "" {
		return errors.New("order id is required")
	}
	f.OrderID = id
	f.OrderNumber = number
	f.OrderTotal = total
	f.Step = StepPayment
	return nil
}

// Paid moves payment -> success; receipt says whether proof was uploaded.
func (f *Flow) Paid(receipt bool) error {
	if f.Step != StepPayment {
		return ErrWrongStep
	}
	f.Receipt = receipt
	f.Step = StepSuccess
	return nil
}

// DisplayOrder is the identifier shown to the shopper.
func (f Flow) DisplayOrder() string {
	if f.OrderNumber != "" {
		return f.OrderNumber
	}
	return f.OrderID.String()
}

// BuildOrder snapshots cart prices into order lines and totals them.
func BuildOrder(entries []domain.CartEntry) ([]domain.OrderItem, domain.Amount) {
	items := make([]domain.OrderItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, domain.OrderItem{
			ProductID: e.Product.ID,
			Name:      e.Product.Name,
			Quantity:  domain.Int(e.Quantity),
			Price:     e.Product.UnitPrice(),
			Image:     e.Product.Image(),
		})
	}
	return items, domain.ItemsTotal(items)
}
