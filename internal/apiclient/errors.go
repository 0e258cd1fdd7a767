package apiclient

import (
	"errors"
	"fmt"
)

var (
	// ErrSync marks a response body that was not the JSON we expected.
	ErrSync = errors.New("unexpected response from server")
	// ErrRejected marks a 2xx response whose body reports failure.
	ErrRejected = errors.New("request rejected by server")
	// ErrMissingOrderID marks an order creation that claimed success without an id.
	ErrMissingOrderID = errors.New("order created without an identifier")
)

// Error is returned by every Client method. Message is safe to show to a
// shopper or operator; Err carries the cause for logs.
type Error struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage extracts the user-facing text from err, falling back to
// fallback for errors that did not come from the API client.
func UserMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
