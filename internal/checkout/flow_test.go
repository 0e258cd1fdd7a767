package checkout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steeze/internal/checkout"
	"steeze/internal/domain"
)

func validDetails() domain.CustomerInfo {
	return domain.CustomerInfo{
		FirstName: "Ada", LastName: "Obi", Email: "ada@example.com",
		Phone: "08030000000", Address: "12 Marina, Lagos",
	}
}

func TestProceed_RequiresItems(t *testing.T) {
	f := checkout.New(nil)
	assert.ErrorIs(t, f.Proceed(0), checkout.ErrEmptyCart)
	assert.Equal(t, checkout.StepCart, f.Step)
	require.NoError(t, f.Proceed(1))
	assert.Equal(t, checkout.StepDetails, f.Step)
}

func TestSubmitDetails_EveryFieldRequired(t *testing.T) {
	blank := []func(*domain.CustomerInfo){
		func(d *domain.CustomerInfo) { d.FirstName = "" },
		func(d *domain.CustomerInfo) { d.LastName = "  " },
		func(d *domain.CustomerInfo) { d.Phone = "" },
		func(d *domain.CustomerInfo) { d.Address = "" },
		func(d *domain.CustomerInfo) { d.Email = "" },
	}
	for i, mutate := range blank {
		f := checkout.Flow{Step: checkout.StepDetails}
		d := validDetails()
		mutate(&d)
		err := f.SubmitDetails(d, "")
		assert.ErrorIs(t, err, checkout.ErrInvalidDetails, "case %d", i)
		assert.Equal(t, checkout.StepDetails, f.Step, "case %d", i)
	}

	f := checkout.Flow{Step: checkout.StepDetails}
	require.NoError(t, f.SubmitDetails(validDetails(), " leave at gate "))
	assert.Equal(t, checkout.StepReview, f.Step)
	assert.Equal(t, "leave at gate", f.Notes)
}

func TestBack(t *testing.T) {
	f := checkout.Flow{Step: checkout.StepReview}
	require.NoError(t, f.Back())
	assert.Equal(t, checkout.StepDetails, f.Step)
	require.NoError(t, f.Back())
	assert.Equal(t, checkout.StepCart, f.Step)
	assert.ErrorIs(t, f.Back(), checkout.ErrWrongStep)

	p := checkout.Flow{Step: checkout.StepPayment}
	assert.ErrorIs(t, p.Back(), checkout.ErrWrongStep)
	assert.Equal(t, checkout.StepPayment, p.Step)
}

func TestOrderPlacedRequiresID(t *testing.T) {
	f := checkout.Flow{Step: checkout.StepReview}
	assert.Error(t, f.OrderPlaced("", "", 0))
	assert.Equal(t, checkout.StepReview, f.Step)
	require.NoError(t, f.OrderPlaced("42", "", 10000))
	assert.Equal(t, checkout.StepPayment, f.Step)
	assert.Equal(t, "42", f.DisplayOrder())
}

func TestPaid(t *testing.T) {
	f := checkout.Flow{Step: checkout.StepReview}
	assert.ErrorIs(t, f.Paid(true), checkout.ErrWrongStep)
	f.Step = checkout.StepPayment
	require.NoError(t, f.Paid(false))
	assert.Equal(t, checkout.StepSuccess, f.Step)
	assert.False(t, f.Receipt)
}

func TestBuildOrder_UsesSalePrice(t *testing.T) {
	entries := []domain.CartEntry{
		{Product: domain.Product{ID: "1", Name: "Tee", Price: 5000}, Quantity: 2},
		{Product: domain.Product{ID: "2", Name: "Cap", Price: 3000, SalePrice: 2000, OnSale: true}, Quantity: 3},
	}
	items, total := checkout.BuildOrder(entries)
	require.Len(t, items, 2)
	assert.EqualValues(t, 2000, items[1].Price)
	assert.EqualValues(t, 16000, total)
	assert.Equal(t, domain.Subtotal(entries), total)
}

func TestNewPrefillsCustomer(t *testing.T) {
	f := checkout.New(&domain.Customer{Name: "Ada Lovelace Obi", Email: "ada@example.com", Phone: "080"})
	assert.Equal(t, "Ada", f.Details.FirstName)
	assert.Equal(t, "Lovelace Obi", f.Details.LastName)
	assert.Equal(t, checkout.StepCart, f.Step)
}
