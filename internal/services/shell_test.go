package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steeze/internal/domain"
	"steeze/internal/services"
)

func TestShell_CartMutations(t *testing.T) {
	e := newEnv(t)
	st := e.state(t, "s1")
	assert.Empty(t, st.Cart)
	assert.Equal(t, "NGN", st.Currency)

	shirt := domain.Product{ID: "1", Name: "Shirt", Price: 5000}
	cap := domain.Product{ID: "2", Name: "Cap", Price: 2000}

	require.NoError(t, e.shell.AddToCart(st, shirt, 1))
	require.NoError(t, e.shell.AddToCart(st, shirt, 1))
	require.NoError(t, e.shell.AddToCart(st, cap, 0))
	assert.Equal(t, 3, st.CartCount())
	assert.Equal(t, domain.Amount(12000), st.Subtotal())

	require.NoError(t, e.shell.Adjust(st, "2", -1))
	require.Len(t, st.Cart, 1)

	require.NoError(t, e.shell.UpdateQuantity(st, "1", 5))
	assert.Equal(t, domain.Amount(25000), st.Subtotal())

	assert.ErrorIs(t, e.shell.UpdateQuantity(st, "9", 1), services.ErrNotInCart)

	require.NoError(t, e.shell.UpdateQuantity(st, "1", 0))
	assert.Empty(t, st.Cart)

	// state survives a reload
	require.NoError(t, e.shell.AddToCart(st, cap, 2))
	again := e.state(t, "s1")
	require.Len(t, again.Cart, 1)
	assert.Equal(t, 2, again.Cart[0].Quantity)

	require.NoError(t, e.shell.ClearCart(again))
	assert.Empty(t, e.state(t, "s1").Cart)
}

func TestShell_SessionFlags(t *testing.T) {
	e := newEnv(t)
	st := e.state(t, "s1")

	c := &domain.Customer{UserID: "7", Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, e.shell.SetCustomer(st, c))
	require.NoError(t, e.shell.SetAdmin(st, true))
	require.NoError(t, e.shell.SetAdminTab(st, "receipts"))
	require.NoError(t, e.shell.SetCurrency(st, "gbp"))

	got := e.state(t, "s1")
	assert.True(t, got.LoggedIn())
	assert.True(t, got.IsAdmin)
	assert.Equal(t, "receipts", got.AdminTab)
	assert.Equal(t, "GBP", got.Currency)

	require.NoError(t, e.shell.SetCurrency(got, "XYZ"))
	assert.Equal(t, "NGN", got.Currency)

	require.NoError(t, e.shell.Logout(got))
	assert.False(t, e.state(t, "s1").LoggedIn())
}
