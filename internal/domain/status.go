package domain

import (
	"encoding/json"
	"strings"
)

type OrderStatus string

const (
	StatusPending       OrderStatus = "Pending"
	StatusProofProvided OrderStatus = "Proof Provided"
	StatusProcessing    OrderStatus = "Processing"
	StatusShipped       OrderStatus = "Shipped"
	StatusDelivered     OrderStatus = "Delivered"
	StatusCompleted     OrderStatus = "Completed"
	StatusCancelled     OrderStatus = "Cancelled"
)

// Statuses lists every status in lifecycle order, for dropdowns.
var Statuses = []OrderStatus{
	StatusPending,
	StatusProofProvided,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCompleted,
	StatusCancelled,
}

// ParseStatus matches case-insensitively and tolerates snake_case and the
// "canceled" spelling. Unknown input reports false.
func ParseStatus(s string) (OrderStatus, bool) {
	norm := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "_", " ")))
	if norm == "canceled" {
		return StatusCancelled, true
	}
	for _, st := range Statuses {
		if strings.ToLower(string(st)) == norm {
			return st, true
		}
	}
	return "", false
}

func (s *OrderStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if st, ok := ParseStatus(raw); ok {
		*s = st
		return nil
	}
	*s = OrderStatus(raw)
	return nil
}

func (s OrderStatus) IsTerminal() bool {
	switch s {
	case StatusDelivered, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsPaid reports whether money has been received (or proof of it supplied).
func (s OrderStatus) IsPaid() bool {
	switch strings.ToLower(string(s)) {
	case "processing", "shipped", "delivered", "completed", "proof provided":
		return true
	}
	return false
}

// Unpaid orders may jump ahead to Shipped at most; Delivered and Completed
// are only reachable once the order is in fulfilment.
var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending: {
		StatusProofProvided: true,
		StatusProcessing:    true,
		StatusShipped:       true,
		StatusCancelled:     true,
	},
	StatusProofProvided: {
		StatusPending:    true,
		StatusProcessing: true,
		StatusShipped:    true,
		StatusCancelled:  true,
	},
	StatusProcessing: {
		StatusPending:   true,
		StatusShipped:   true,
		StatusDelivered: true,
		StatusCompleted: true,
		StatusCancelled: true,
	},
	StatusShipped: {
		StatusProcessing: true,
		StatusDelivered:  true,
		StatusCompleted:  true,
		StatusCancelled:  true,
	},
	StatusDelivered: {
		StatusCompleted: true,
	},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition reports whether an operator may move an order from s to next.
// Cancelled is reachable from every non-terminal state. An unrecognised
// current status is treated as Pending.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s == next {
		return false
	}
	from, ok := allowedTransitions[s]
	if !ok {
		from = allowedTransitions[StatusPending]
	}
	return from[next]
}

type VerificationStatus string

const (
	ReceiptPending  VerificationStatus = "Pending"
	ReceiptVerified VerificationStatus = "Verified"
	ReceiptRejected VerificationStatus = "Rejected"
)

func (v *VerificationStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "verified":
		*v = ReceiptVerified
	case "rejected":
		*v = ReceiptRejected
	default:
		*v = ReceiptPending
	}
	return nil
}

// Trigger names an email template on the remote mailer.
type Trigger string

const (
	TriggerOrderConfirmation Trigger = "order_confirmation"
	TriggerPaymentReceipt    Trigger = "payment_receipt"
	TriggerStatusUpdate      Trigger = "status_update"
	TriggerPaymentRejected   Trigger = "payment_rejected"
	TriggerPaymentReminder   Trigger = "payment_reminder"
	TriggerAdminMessage      Trigger = "admin_message"
	TriggerContactForm       Trigger = "contact_form_submission"
)
