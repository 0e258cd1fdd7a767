package domain

import "strings"

type Product struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
	Price       Amount `json:"price"`
	SalePrice   Amount `json:"sale_price"`
	OnSale      Flag   `json:"on_sale"`
	Stock       Int    `json:"stock"`
	Images      Images `json:"images"`
	IsFeatured  Flag   `json:"is_featured"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// UnitPrice is what one unit costs right now.
func (p Product) UnitPrice() Amount {
	if p.OnSale && p.SalePrice > 0 && p.SalePrice < p.Price {
		return p.SalePrice
	}
	return p.Price
}

func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

type CartEntry struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

func (e CartEntry) LineTotal() Amount {
	return e.Product.UnitPrice() * Amount(e.Quantity)
}

// Subtotal sums the live unit prices; it is never cached.
func Subtotal(entries []CartEntry) Amount {
	var total Amount
	for _, e := range entries {
		total += e.LineTotal()
	}
	return total
}

type CustomerInfo struct {
	FirstName string `json:"first_name" form:"first_name" validate:"required"`
	LastName  string `json:"last_name" form:"last_name" validate:"required"`
	Email     string `json:"email" form:"email" validate:"required"`
	Phone     string `json:"phone" form:"phone" validate:"required"`
	Address   string `json:"address" form:"address" validate:"required"`
	City      string `json:"city,omitempty" form:"city"`
	State     string `json:"state,omitempty" form:"state"`
}

func (c CustomerInfo) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (c CustomerInfo) Trimmed() CustomerInfo {
	return CustomerInfo{
		FirstName: strings.TrimSpace(c.FirstName),
		LastName:  strings.TrimSpace(c.LastName),
		Email:     strings.TrimSpace(c.Email),
		Phone:     strings.TrimSpace(c.Phone),
		Address:   strings.TrimSpace(c.Address),
		City:      strings.TrimSpace(c.City),
		State:     strings.TrimSpace(c.State),
	}
}

type OrderItem struct {
	ProductID ID     `json:"product_id"`
	Name      string `json:"name"`
	Quantity  Int    `json:"quantity"`
	Price     Amount `json:"price"`
	Image     string `json:"image,omitempty"`
}

func (i OrderItem) LineTotal() Amount { return i.Price * Amount(i.Quantity) }

// ItemsTotal recomputes an order total from its lines.
func ItemsTotal(items []OrderItem) Amount {
	var total Amount
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}

type Order struct {
	ID            ID           `json:"id"`
	OrderNumber   string       `json:"order_number"`
	UserID        ID           `json:"user_id"`
	Customer      CustomerInfo `json:"customer_info"`
	Items         []OrderItem  `json:"items"`
	Total         Amount       `json:"total_cents"`
	Status        OrderStatus  `json:"status"`
	PaymentMethod string       `json:"payment_method"`
	Notes         string       `json:"order_notes"`
	CreatedAt     string       `json:"created_at"`
	UpdatedAt     string       `json:"updated_at"`
}

// DisplayNumber prefers the human-readable number and falls back to the id.
func (o Order) DisplayNumber() string {
	if o.OrderNumber != "" {
		return o.OrderNumber
	}
	return o.ID.String()
}

type Receipt struct {
	ID                 ID                 `json:"id"`
	OrderID            ID                 `json:"order_id"`
	FilePath           string             `json:"file_path"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	UploadedAt         string             `json:"uploaded_at"`
	// Denormalised order fields some list endpoints join in.
	OrderNumber   string `json:"order_number,omitempty"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

type Customer struct {
	UserID ID     `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
}

type User struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type Review struct {
	ID        ID     `json:"id"`
	ProductID ID     `json:"product_id"`
	UserID    ID     `json:"user_id,omitempty"`
	UserName  string `json:"user_name"`
	Rating    Int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
	// Joined in by the admin list endpoint.
	ProductName string `json:"product_name,omitempty"`
}

// AverageRating is the mean rating rounded to one decimal place; zero when empty.
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += int(r.Rating)
	}
	avg := float64(sum) / float64(len(reviews))
	return float64(int(avg*10+0.5)) / 10
}
