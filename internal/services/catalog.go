package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"steeze/internal/apiclient"
	"steeze/internal/domain"
	"steeze/internal/validate"
)

var (
	ErrNotLoggedIn     = errors.New("please log in to continue")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrEmptyComment    = errors.New("please write a comment")
	ErrAlreadyReviewed = errors.New("you have already reviewed this product")
	ErrProductNotFound = errors.New("product not found")
)

// Sort keys accepted by the catalog.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

type Filter struct {
	Query       string
	Category    string
	SubCategory string
	OnSale      bool
	Featured    bool
	Sort        string
}

type Availability string

const (
	InStock    Availability = "IN_STOCK"
	LowStock   Availability = "LOW_STOCK"
	OutOfStock Availability = "OUT_OF_STOCK"
)

const lowStockThreshold = 3

// StockLevel buckets a product's stock count for display.
func StockLevel(p domain.Product) Availability {
	switch n := int(p.Stock); {
	case n <= 0:
		return OutOfStock
	case n <= lowStockThreshold:
		return LowStock
	default:
		return InStock
	}
}

type Catalog struct {
	API *apiclient.Client
}

func NewCatalog(api *apiclient.Client) *Catalog { return &Catalog{API: api} }

// List fetches every product and applies f locally.
func (s *Catalog) List(ctx context.Context, f Filter) ([]domain.Product, error) {
	all, err := s.API.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(all, f), nil
}

// Apply filters and sorts products without mutating the input.
func Apply(products []domain.Product, f Filter) []domain.Product {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if f.SubCategory != "" && !strings.EqualFold(p.SubCategory, f.SubCategory) {
			continue
		}
		if f.OnSale && p.UnitPrice() == p.Price {
			continue
		}
		if f.Featured && !bool(p.IsFeatured) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.Description+" "+p.Category), q) {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].UnitPrice() < out[j].UnitPrice() })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].UnitPrice() > out[j].UnitPrice() })
	case SortName:
		sort.SliceStable(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	}
	return out
}

// Categories lists the distinct categories in first-seen order.
func Categories(products []domain.Product) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range products {
		c := strings.TrimSpace(p.Category)
		if c == "" || seen[strings.ToLower(c)] {
			continue
		}
		seen[strings.ToLower(c)] = true
		out = append(out, c)
	}
	return out
}

func (s *Catalog) Product(ctx context.Context, id domain.ID) (domain.Product, error) {
	p, err := s.API.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if p.ID == "" {
		return domain.Product{}, ErrProductNotFound
	}
	return p, nil
}

func (s *Catalog) Reviews(ctx context.Context, productID domain.ID) ([]domain.Review, error) {
	return s.API.ListReviews(ctx, productID)
}

// SubmitReview posts a review for a logged-in customer. A customer gets one
// review per product, matched by user id, or by display name for rows
// that carry no user id.
func (s *Catalog) SubmitReview(ctx context.Context, c *domain.Customer, productID domain.ID, rating int, comment string) error {
	if c == nil {
		return ErrNotLoggedIn
	}
	if !validate.Rating(rating) {
		return ErrInvalidRating
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return ErrEmptyComment
	}
	existing, err := s.API.ListReviews(ctx, productID)
	if err != nil {
		return err
	}
	if HasReviewed(existing, c) {
		return ErrAlreadyReviewed
	}
	return s.API.CreateReview(ctx, apiclient.ReviewInput{
		ProductID: productID,
		UserID:    c.UserID,
		UserName:  c.Name,
		Rating:    rating,
		Comment:   comment,
	})
}

func HasReviewed(reviews []domain.Review, c *domain.Customer) bool {
	if c == nil {
		return false
	}
	for _, r := range reviews {
		if r.UserID != "" {
			if r.UserID == c.UserID {
				return true
			}
			continue
		}
		if c.Name != "" && strings.EqualFold(strings.TrimSpace(r.UserName), strings.TrimSpace(c.Name)) {
			return true
		}
	}
	return false
}
