package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steeze/internal/domain"
)

func TestProductDecode_LooseScalars(t *testing.T) {
	raw := `{"id":12,"name":"Agbada","price":"45000","sale_price":"39,500","on_sale":"1",
		"stock":"4","images":"[\"/a.jpg\",\"/b.jpg\"]","is_featured":0}`
	var p domain.Product
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, domain.ID("12"), p.ID)
	assert.Equal(t, domain.Amount(45000), p.Price)
	assert.Equal(t, domain.Amount(39500), p.SalePrice)
	assert.True(t, bool(p.OnSale))
	assert.False(t, bool(p.IsFeatured))
	assert.Equal(t, domain.Int(4), p.Stock)
	assert.Equal(t, "/a.jpg", p.Image())
	assert.Equal(t, domain.Amount(39500), p.UnitPrice())
}

func TestUnitPrice_IgnoresBogusSale(t *testing.T) {
	p := domain.Product{Price: 1000, SalePrice: 1200, OnSale: true}
	assert.Equal(t, domain.Amount(1000), p.UnitPrice())

	p = domain.Product{Price: 1000, SalePrice: 800}
	assert.Equal(t, domain.Amount(1000), p.UnitPrice(), "sale price needs the on_sale flag")
}

func TestParseAmount_Invalid(t *testing.T) {
	assert.Equal(t, domain.Amount(0), domain.ParseAmount("abc"))
	assert.Equal(t, domain.Amount(0), domain.ParseAmount(""))
	assert.Equal(t, domain.Amount(12), domain.ParseAmount("12.7"))
}

func TestOrderDecode_Aliases(t *testing.T) {
	raw := `{"id":"42","total":"16000","status":"processing",
		"cart_items":[{"id":3,"name":"Cap","qty":"2","unit_price":8000}],
		"customer_name":"Ada","customer_email":"ada@example.com","shipping_address":"1 Marina"}`
	var o domain.Order
	require.NoError(t, json.Unmarshal([]byte(raw), &o))

	assert.Equal(t, domain.Amount(16000), o.Total)
	assert.Equal(t, domain.StatusProcessing, o.Status)
	require.Len(t, o.Items, 1)
	assert.Equal(t, domain.ID("3"), o.Items[0].ProductID)
	assert.Equal(t, domain.Amount(16000), o.Items[0].LineTotal())
	assert.Equal(t, "ada@example.com", o.Customer.Email)
	assert.Equal(t, "1 Marina", o.Customer.Address)
	assert.Equal(t, "42", o.DisplayNumber())
}

func TestOrderDecode_DefaultsToPending(t *testing.T) {
	var o domain.Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"order_number":"STZ-1"}`), &o))
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Equal(t, "STZ-1", o.DisplayNumber())
}

func TestParseStatus(t *testing.T) {
	cases := map[string]domain.OrderStatus{
		"pending":        domain.StatusPending,
		"PROOF_PROVIDED": domain.StatusProofProvided,
		"canceled":       domain.StatusCancelled,
		" Shipped ":      domain.StatusShipped,
	}
	for in, want := range cases {
		got, ok := domain.ParseStatus(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := domain.ParseStatus("lost")
	assert.False(t, ok)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, domain.StatusPending.CanTransition(domain.StatusProcessing))
	assert.True(t, domain.StatusShipped.CanTransition(domain.StatusCancelled))
	assert.False(t, domain.StatusPending.CanTransition(domain.StatusPending))
	assert.False(t, domain.StatusCompleted.CanTransition(domain.StatusPending))
	assert.False(t, domain.StatusCancelled.CanTransition(domain.StatusProcessing))
	assert.True(t, domain.OrderStatus("weird").CanTransition(domain.StatusProcessing))

	// Unpaid orders cannot skip straight to fulfilled.
	assert.False(t, domain.StatusPending.CanTransition(domain.StatusDelivered))
	assert.False(t, domain.StatusPending.CanTransition(domain.StatusCompleted))
	assert.False(t, domain.StatusProofProvided.CanTransition(domain.StatusDelivered))
	assert.True(t, domain.StatusDelivered.CanTransition(domain.StatusCompleted))
}

func TestIsPaid(t *testing.T) {
	assert.False(t, domain.StatusPending.IsPaid())
	assert.True(t, domain.StatusProcessing.IsPaid())
	assert.True(t, domain.OrderStatus("shipped").IsPaid())
	assert.False(t, domain.StatusCancelled.IsPaid())
}

func TestAverageRating(t *testing.T) {
	assert.Equal(t, 0.0, domain.AverageRating(nil))
	got := domain.AverageRating([]domain.Review{{Rating: 5}, {Rating: 4}, {Rating: 4}})
	assert.InDelta(t, 4.3, got, 0.001)
}

func TestSettings(t *testing.T) {
	var s domain.Settings
	require.NoError(t, json.Unmarshal([]byte(`{"rateUSD":"1600","rateGBP":2000,"show_sale":"0","bank_name":" GTBank "}`), &s))
	assert.Equal(t, 1600.0, s.Float(domain.SettingRateUSD))
	assert.Equal(t, 2000.0, s.Float(domain.SettingRateGBP))
	assert.False(t, s.Bool(domain.SettingShowSale, true))
	assert.True(t, s.Bool(domain.SettingShowReviews, true))
	assert.Equal(t, "GTBank", s.Settlement().BankName)
}
