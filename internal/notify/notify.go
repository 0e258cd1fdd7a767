// Package notify sends transactional emails without ever blocking or failing
// the action that triggered them.
package notify

import (
	"context"
	"sync"
	"time"

	"steeze/internal/apiclient"
	"steeze/internal/domain"
	applog "steeze/internal/log"
)

type Message struct {
	Trigger domain.Trigger
	Email   string
	Name    string
	Data    map[string]any
}

// Sender is the transport; *apiclient.Client satisfies it.
type Sender interface {
	SendEmail(ctx context.Context, req apiclient.EmailRequest) error
}

type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(sender Sender, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Dispatcher{sender: sender, timeout: timeout}
}

// Send queues msg and returns immediately. The send is detached from ctx's
// cancellation so a finished request does not abort its email; failures are
// logged here and never reach the caller.
func (d *Dispatcher) Send(ctx context.Context, msg Message) {
	if d == nil || d.sender == nil {
		return
	}
	if msg.Email == "" {
		applog.Background("email.skip", nil, map[string]any{"trigger": msg.Trigger, "reason": "no recipient"})
		return
	}
	base := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		sendCtx, cancel := context.WithTimeout(base, d.timeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				applog.Background("email.panic", nil, map[string]any{"trigger": msg.Trigger, "panic": r})
			}
		}()
		err := d.sender.SendEmail(sendCtx, apiclient.EmailRequest{
			Trigger: msg.Trigger,
			Email:   msg.Email,
			Name:    msg.Name,
			Data:    msg.Data,
		})
		if err != nil {
			applog.Background("email.fail", err, map[string]any{"trigger": msg.Trigger, "email": msg.Email})
			return
		}
		applog.Background("email.sent", nil, map[string]any{"trigger": msg.Trigger})
	}()
}

// Wait blocks until every queued send has finished.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

// OrderData is the payload shape the mailer templates expect for order emails.
func OrderData(o domain.Order) map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, map[string]any{
			"name":     it.Name,
			"quantity": int(it.Quantity),
			"price":    int64(it.Price),
		})
	}
	return map[string]any{
		"order_id":     o.ID,
		"order_number": o.DisplayNumber(),
		"total":        int64(o.Total),
		"status":       string(o.Status),
		"items":        items,
	}
}

// Recipient picks the address and name an order email goes to.
func Recipient(o domain.Order) (email, name string) {
	return o.Customer.Email, o.Customer.FullName()
}
