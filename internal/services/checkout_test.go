package services_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steeze/internal/apiclient"
	"steeze/internal/checkout"
	"steeze/internal/domain"
	applog "steeze/internal/log"
	"steeze/internal/services"
)

var details = domain.CustomerInfo{
	FirstName: "Ada",
	LastName:  "Obi",
	Email:     "ada@example.com",
	Phone:     "08012345678",
	Address:   "1 Marina, Lagos",
}

func toReview(t *testing.T, e *env, svc *services.Checkout, st *services.State) {
	t.Helper()
	require.NoError(t, e.shell.AddToCart(st, domain.Product{ID: "3", Name: "Cap", Price: 8000}, 2))
	_, err := svc.Proceed(st)
	require.NoError(t, err)
	f, err := svc.SubmitDetails(st, details, "leave at gate")
	require.NoError(t, err)
	require.Equal(t, checkout.StepReview, f.Step)
}

func TestCheckout_FullFlowWithReceipt(t *testing.T) {
	e := newEnv(t)
	e.api.RespondToCreate(`{"success":true,"order_id":42}`)
	svc := services.NewCheckout(e.shell, e.client, e.mail)
	st := e.state(t, "s1")
	ctx := context.Background()

	toReview(t, e, svc, st)

	f, err := svc.Confirm(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepPayment, f.Step)
	assert.Equal(t, domain.ID("42"), f.OrderID)
	assert.Equal(t, domain.Amount(16000), f.OrderTotal)
	assert.Len(t, st.Cart, 1, "cart is kept until payment is settled")

	f, err = svc.UploadReceipt(ctx, st, apiclient.Upload{Filename: "proof.png", ContentType: "image/png", Data: strings.NewReader("png")})
	require.NoError(t, err)
	assert.Equal(t, checkout.StepSuccess, f.Step)
	assert.True(t, f.Receipt)
	assert.Empty(t, st.Cart)
	assert.Empty(t, e.state(t, "s1").Cart)
	assert.Equal(t, []string{"42"}, e.api.UploadedOrders())

	e.mail.Wait()
	confirm := e.api.EmailsFor(domain.TriggerOrderConfirmation)
	require.Len(t, confirm, 1)
	assert.Equal(t, "ada@example.com", confirm[0].Email)
	assert.Len(t, e.api.EmailsFor(domain.TriggerPaymentReceipt), 1)

	// the finished flow is still shown until a new cart starts
	got, err := svc.Flow(st)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepSuccess, got.Step)
}

func TestCheckout_MissingOrderIDStaysOnReview(t *testing.T) {
	e := newEnv(t)
	e.api.RespondToCreate(`{"success":true}`)
	svc := services.NewCheckout(e.shell, e.client, e.mail)
	st := e.state(t, "s1")
	toReview(t, e, svc, st)

	_, err := svc.Confirm(context.Background(), st)
	require.ErrorIs(t, err, apiclient.ErrMissingOrderID)

	f, err := svc.Flow(st)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepReview, f.Step)
	assert.Len(t, st.Cart, 1)

	e.mail.Wait()
	assert.Empty(t, e.api.EmailsFor(domain.TriggerOrderConfirmation))
}

func TestCheckout_APIFailureKeepsState(t *testing.T) {
	e := newEnv(t)
	e.api.FailOn("orders.create", "Out of stock")
	svc := services.NewCheckout(e.shell, e.client, e.mail)
	st := e.state(t, "s1")
	toReview(t, e, svc, st)

	_, err := svc.Confirm(context.Background(), st)
	require.Error(t, err)
	assert.Equal(t, "Out of stock", apiclient.UserMessage(err, "fallback"))

	f, err := svc.Flow(st)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepReview, f.Step)
}

func TestCheckout_UnsavedOrderIsLogged(t *testing.T) {
	e := newEnv(t)
	e.api.RespondToCreate(`{"success":true,"order_id":77,"order_number":"ST-77"}`)
	svc := services.NewCheckout(e.shell, e.client, e.mail)
	st := e.state(t, "s1")
	toReview(t, e, svc, st)

	e.db.MustExec(`CREATE TRIGGER fail_payment BEFORE UPDATE ON session_state
WHEN NEW.value_json LIKE '%"step":"payment"%'
BEGIN SELECT RAISE(ABORT, 'disk full'); END`)

	var logs bytes.Buffer
	prev := applog.Logger.Out
	applog.Logger.SetOutput(&logs)
	t.Cleanup(func() { applog.Logger.SetOutput(prev) })

	_, err := svc.Confirm(context.Background(), st)
	require.Error(t, err)

	var found map[string]any
	sc := bufio.NewScanner(strings.NewReader(logs.String()))
	for sc.Scan() {
		var line map[string]any
		if json.Unmarshal(sc.Bytes(), &line) == nil && line["action"] == "checkout.confirm.unsaved" {
			found = line
		}
	}
	require.NotNil(t, found, "checkout.confirm.unsaved entry")
	fields, _ := found["fields"].(map[string]any)
	assert.Equal(t, "77", fields["order_id"])
	assert.Equal(t, "ST-77", fields["order_number"])
	assert.Contains(t, found["error"], "disk full")

	e.mail.Wait()
	assert.Empty(t, e.api.EmailsFor(domain.TriggerOrderConfirmation))
}

func TestCheckout_EmailFailureDoesNotBlockOrder(t *testing.T) {
	e := newEnv(t)
	e.api.FailOn("email", "mailer down")
	svc := services.NewCheckout(e.shell, e.client, e.mail)
	st := e.state(t, "s1")
	toReview(t, e, svc, st)

	f, err := svc.Confirm(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepPayment, f.Step)
	e.mail.Wait()
}

func TestCheckout_InvalidDetailsAreKept(t *testing.T) {
	e := newEnv(t)
	svc := services.NewCheckout(e.shell, e.client, e.mail)
	st := e.state(t, "s1")
	require.NoError(t, e.shell.AddToCart(st, domain.Product{ID: "3", Price: 100}, 1))
	_, err := svc.Proceed(st)
	require.NoError(t, err)

	partial := details
	partial.Phone = "   "
	_, err = svc.SubmitDetails(st, partial, "")
	require.ErrorIs(t, err, checkout.ErrInvalidDetails)

	f, err := svc.Flow(st)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepDetails, f.Step)
	assert.Equal(t, "Ada", f.Details.FirstName)
}

func TestCheckout_EmptyCartCannotProceed(t *testing.T) {
	e := newEnv(t)
	svc := services.NewCheckout(e.shell, e.client, e.mail)
	st := e.state(t, "s1")

	_, err := svc.Proceed(st)
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
}

func TestCheckout_PayLaterClearsCart(t *testing.T) {
	e := newEnv(t)
	svc := services.NewCheckout(e.shell, e.client, e.mail)
	st := e.state(t, "s1")
	toReview(t, e, svc, st)
	_, err := svc.Confirm(context.Background(), st)
	require.NoError(t, err)

	f, err := svc.PayLater(st)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepSuccess, f.Step)
	assert.False(t, f.Receipt)
	assert.Empty(t, st.Cart)
	assert.Empty(t, e.api.UploadedOrders())
	e.mail.Wait()
}

func TestCheckout_BackFromReview(t *testing.T) {
	e := newEnv(t)
	svc := services.NewCheckout(e.shell, e.client, e.mail)
	st := e.state(t, "s1")
	toReview(t, e, svc, st)

	f, err := svc.Back(st)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepDetails, f.Step)
	f, err = svc.Back(st)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepCart, f.Step)
	_, err = svc.Back(st)
	assert.ErrorIs(t, err, checkout.ErrWrongStep)
}

func TestBuildOrderRequest_CarriesUser(t *testing.T) {
	f := checkout.Flow{Details: details, Notes: "n"}
	entries := []domain.CartEntry{{Product: domain.Product{ID: "1", Price: 500}, Quantity: 3}}
	req := services.BuildOrderRequest(f, entries, &domain.Customer{UserID: "9"}, checkout.PaymentBankTransfer)

	assert.Equal(t, domain.ID("9"), req.UserID)
	assert.Equal(t, domain.Amount(1500), req.Total)
	assert.Equal(t, "bank_transfer", req.PaymentMethod)
}
