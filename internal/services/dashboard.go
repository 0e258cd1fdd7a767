package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"steeze/internal/apiclient"
	"steeze/internal/domain"
	"steeze/internal/theme"
)

// Admin tabs.
const (
	TabOverview = "overview"
	TabOrders   = "orders"
	TabProducts = "products"
	TabReceipts = "receipts"
	TabReviews  = "reviews"
	TabUsers    = "users"
	TabSettings = "settings"
)

var Tabs = []string{TabOverview, TabOrders, TabProducts, TabReceipts, TabReviews, TabUsers, TabSettings}

func NormalizeTab(tab string) string {
	tab = strings.ToLower(strings.TrimSpace(tab))
	for _, t := range Tabs {
		if t == tab {
			return t
		}
	}
	return TabOverview
}

var (
	ErrSalePrice  = errors.New("sale price must be above zero and below the regular price")
	ErrProductBad = errors.New("please give the product a name, category and a price above zero")
	ErrBadSetting = errors.New("unknown theme or font")
)

// Snapshot is one dashboard refresh. A slot that failed is empty and has
// its error under the slot name.
type Snapshot struct {
	Orders   []domain.Order
	Users    []domain.User
	Receipts []domain.Receipt
	Products []domain.Product
	Errs     map[string]error
}

func (s Snapshot) Err(slot string) error { return s.Errs[slot] }

type Stats struct {
	Orders          int
	PendingOrders   int
	Revenue         domain.Amount
	PendingReceipts int
	Products        int
	Customers       int
}

// Stats summarises what loaded. Revenue counts paid orders only.
func (s Snapshot) Stats() Stats {
	st := Stats{Orders: len(s.Orders), Products: len(s.Products), Customers: len(s.Users)}
	for _, o := range s.Orders {
		if o.Status == domain.StatusPending || o.Status == domain.StatusProofProvided {
			st.PendingOrders++
		}
		if o.Status.IsPaid() && o.Status != domain.StatusProofProvided {
			st.Revenue += o.Total
		}
	}
	for _, r := range s.Receipts {
		if r.VerificationStatus == domain.ReceiptPending || r.VerificationStatus == "" {
			st.PendingReceipts++
		}
	}
	return st
}

type Dashboard struct {
	API *apiclient.Client
}

func NewDashboard(api *apiclient.Client) *Dashboard { return &Dashboard{API: api} }

// Refresh loads the four collections concurrently and returns once all of
// them settled. One slot failing does not cancel the others.
func (s *Dashboard) Refresh(ctx context.Context) Snapshot {
	var snap Snapshot
	var ordersErr, usersErr, recErr, pErr error
	var g errgroup.Group
	g.Go(func() error {
		snap.Orders, ordersErr = s.API.ListOrders(ctx)
		return nil
	})
	g.Go(func() error {
		snap.Users, usersErr = s.API.ListUsers(ctx)
		return nil
	})
	g.Go(func() error {
		snap.Receipts, recErr = s.API.ListReceipts(ctx)
		return nil
	})
	g.Go(func() error {
		snap.Products, pErr = s.API.ListProducts(ctx)
		return nil
	})
	_ = g.Wait()

	snap.Errs = map[string]error{}
	for slot, err := range map[string]error{TabOrders: ordersErr, TabUsers: usersErr, TabReceipts: recErr, TabProducts: pErr} {
		if err != nil {
			snap.Errs[slot] = err
		}
	}
	return snap
}

// ProductForm is the admin product editor.
type ProductForm struct {
	ID          string `form:"id"`
	Name        string `form:"name" validate:"required,max=120"`
	Description string `form:"description"`
	Category    string `form:"category" validate:"required"`
	SubCategory string `form:"sub_category"`
	Price       string `form:"price" validate:"required"`
	SalePrice   string `form:"sale_price"`
	OnSale      bool   `form:"on_sale"`
	Stock       int    `form:"stock" validate:"gte=0"`
	Images      string `form:"images"`
	IsFeatured  bool   `form:"is_featured"`
}

var formValidator = validator.New()

// Input validates the form and converts it for the API.
func (f ProductForm) Input() (apiclient.ProductInput, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Category = strings.TrimSpace(f.Category)
	if err := formValidator.Struct(f); err != nil {
		return apiclient.ProductInput{}, ErrProductBad
	}
	price := domain.ParseAmount(f.Price)
	if price <= 0 {
		return apiclient.ProductInput{}, ErrProductBad
	}
	sale := domain.ParseAmount(f.SalePrice)
	if f.OnSale && (sale <= 0 || sale >= price) {
		return apiclient.ProductInput{}, ErrSalePrice
	}
	var images []string
	for _, line := range strings.FieldsFunc(f.Images, func(r rune) bool { return r == '\n' || r == ',' }) {
		if u := strings.TrimSpace(line); u != "" {
			images = append(images, u)
		}
	}
	return apiclient.ProductInput{
		ID:          domain.ID(strings.TrimSpace(f.ID)),
		Name:        f.Name,
		Description: strings.TrimSpace(f.Description),
		Category:    f.Category,
		SubCategory: strings.TrimSpace(f.SubCategory),
		Price:       int64(price),
		SalePrice:   int64(sale),
		OnSale:      f.OnSale,
		Stock:       f.Stock,
		Images:      images,
		IsFeatured:  f.IsFeatured,
	}, nil
}

// FormFor fills the editor from an existing product.
func FormFor(p domain.Product) ProductForm {
	return ProductForm{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		SubCategory: p.SubCategory,
		Price:       amountText(p.Price),
		SalePrice:   amountText(p.SalePrice),
		OnSale:      bool(p.OnSale),
		Stock:       int(p.Stock),
		Images:      strings.Join(p.Images, "\n"),
		IsFeatured:  bool(p.IsFeatured),
	}
}

func amountText(a domain.Amount) string {
	if a == 0 {
		return ""
	}
	return strconv.FormatInt(int64(a), 10)
}

// SaveProduct creates the product when the form has no id, else updates it.
func (s *Dashboard) SaveProduct(ctx context.Context, f ProductForm) error {
	in, err := f.Input()
	if err != nil {
		return err
	}
	if in.ID == "" {
		return s.API.CreateProduct(ctx, in)
	}
	return s.API.UpdateProduct(ctx, in)
}

func (s *Dashboard) DeleteProduct(ctx context.Context, id domain.ID) error {
	return s.API.DeleteProduct(ctx, id)
}

func (s *Dashboard) Product(ctx context.Context, id domain.ID) (domain.Product, error) {
	return s.API.GetProduct(ctx, id)
}

func (s *Dashboard) Reviews(ctx context.Context) ([]domain.Review, error) {
	return s.API.ListAllReviews(ctx)
}

func (s *Dashboard) DeleteReview(ctx context.Context, id domain.ID) error {
	return s.API.DeleteReview(ctx, id)
}

func (s *Dashboard) Settings(ctx context.Context) (domain.Settings, error) {
	return s.API.GetSettings(ctx)
}

// SaveSettings writes the editable keys found in form. Checkbox keys that
// are absent are saved as off.
func (s *Dashboard) SaveSettings(ctx context.Context, form map[string]string) (domain.Settings, error) {
	out := domain.Settings{}
	for _, key := range domain.EditableSettings {
		v, ok := form[key]
		switch key {
		case domain.SettingShowFeatured, domain.SettingShowSale, domain.SettingShowReviews:
			out[key] = ok && v != "" && v != "0" && v != "false"
			continue
		}
		if !ok {
			continue
		}
		out[key] = strings.TrimSpace(v)
	}
	if t, ok := out[domain.SettingTheme].(string); ok && t != "" && !theme.ValidTheme(t) {
		return nil, ErrBadSetting
	}
	if f, ok := out[domain.SettingFont].(string); ok && f != "" && !theme.ValidFont(f) {
		return nil, ErrBadSetting
	}
	if err := s.API.SaveSettings(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}
