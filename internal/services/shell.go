package services

import (
	"errors"

	"github.com/jmoiron/sqlx"

	"steeze/internal/currency"
	"steeze/internal/domain"
	"steeze/internal/repos"
)

var ErrNotInCart = errors.New("that item is not in your cart")

// State is everything the shell remembers for one browser session.
type State struct {
	SID      string
	Customer *domain.Customer
	IsAdmin  bool
	AdminTab string
	Currency string
	Cart     []domain.CartEntry
}

func (s *State) LoggedIn() bool { return s.Customer != nil }

// Subtotal is recomputed from the entries on every call.
func (s *State) Subtotal() domain.Amount { return domain.Subtotal(s.Cart) }

// CartCount is the number of units across all lines.
func (s *State) CartCount() int {
	n := 0
	for _, e := range s.Cart {
		n += e.Quantity
	}
	return n
}

func (s *State) entry(productID domain.ID) (domain.CartEntry, bool) {
	for _, e := range s.Cart {
		if e.Product.ID == productID {
			return e, true
		}
	}
	return domain.CartEntry{}, false
}

// Shell owns the persisted per-session state. Every mutation writes through
// and then refreshes the in-memory State it was given.
type Shell struct {
	Sessions *repos.SessionRepo
	Carts    *repos.CartRepo
	State    *repos.StateRepo
}

func NewShell(db *sqlx.DB) *Shell {
	return &Shell{
		Sessions: repos.NewSessionRepo(db),
		Carts:    repos.NewCartRepo(db),
		State:    repos.NewStateRepo(db),
	}
}

func (sh *Shell) Load(sid string) (*State, error) {
	if err := sh.Sessions.Ensure(sid); err != nil {
		return nil, err
	}
	row, err := sh.Sessions.Get(sid)
	if err != nil {
		return nil, err
	}
	cart, err := sh.Carts.Items(sid)
	if err != nil {
		return nil, err
	}
	return &State{
		SID:      sid,
		Customer: row.Customer(),
		IsAdmin:  row.IsAdmin,
		AdminTab: row.AdminTab,
		Currency: currency.Normalize(row.Currency),
		Cart:     cart,
	}, nil
}

func (sh *Shell) reloadCart(st *State) error {
	cart, err := sh.Carts.Items(st.SID)
	if err != nil {
		return err
	}
	st.Cart = cart
	return nil
}

// AddToCart adds qty units, incrementing an existing line.
func (sh *Shell) AddToCart(st *State, p domain.Product, qty int) error {
	if qty < 1 {
		qty = 1
	}
	if err := sh.Carts.Add(st.SID, p, qty); err != nil {
		return err
	}
	return sh.reloadCart(st)
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (sh *Shell) UpdateQuantity(st *State, productID domain.ID, qty int) error {
	if _, ok := st.entry(productID); !ok {
		return ErrNotInCart
	}
	if qty <= 0 {
		return sh.RemoveFromCart(st, productID)
	}
	if err := sh.Carts.SetQty(st.SID, productID.String(), qty); err != nil {
		return err
	}
	return sh.reloadCart(st)
}

// Adjust nudges a line by delta, removing it when it drops to zero.
func (sh *Shell) Adjust(st *State, productID domain.ID, delta int) error {
	e, ok := st.entry(productID)
	if !ok {
		return ErrNotInCart
	}
	return sh.UpdateQuantity(st, productID, e.Quantity+delta)
}

func (sh *Shell) RemoveFromCart(st *State, productID domain.ID) error {
	if err := sh.Carts.Remove(st.SID, productID.String()); err != nil {
		return err
	}
	return sh.reloadCart(st)
}

func (sh *Shell) ClearCart(st *State) error {
	if err := sh.Carts.Clear(st.SID); err != nil {
		return err
	}
	st.Cart = nil
	return nil
}

func (sh *Shell) SetCustomer(st *State, c *domain.Customer) error {
	if err := sh.Sessions.SetCustomer(st.SID, c); err != nil {
		return err
	}
	st.Customer = c
	return nil
}

// Logout forgets the customer. The cart stays with the browser.
func (sh *Shell) Logout(st *State) error {
	if err := sh.State.Delete(st.SID, checkoutKey); err != nil {
		return err
	}
	return sh.SetCustomer(st, nil)
}

func (sh *Shell) SetAdmin(st *State, admin bool) error {
	if err := sh.Sessions.SetAdmin(st.SID, admin); err != nil {
		return err
	}
	st.IsAdmin = admin
	return nil
}

func (sh *Shell) SetAdminTab(st *State, tab string) error {
	if err := sh.Sessions.SetAdminTab(st.SID, tab); err != nil {
		return err
	}
	st.AdminTab = tab
	return nil
}

func (sh *Shell) SetCurrency(st *State, code string) error {
	code = currency.Normalize(code)
	if err := sh.Sessions.SetCurrency(st.SID, code); err != nil {
		return err
	}
	st.Currency = code
	return nil
}
