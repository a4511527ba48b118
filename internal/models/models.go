package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type LineItem struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Price         decimal.Decimal  `json:"price"`
	Quantity      int              `json:"quantity"`
	Image         string           `json:"image,omitempty"`
	Currency      string           `json:"currency,omitempty"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	InStock       *bool            `json:"inStock,omitempty"`
	FreeShipping  *bool            `json:"freeShipping,omitempty"`
	URL           string           `json:"url,omitempty"`
}

// CartTotals is derived on demand and never stored on its own.
type CartTotals struct {
	Subtotal              decimal.Decimal `json:"subtotal"`
	Savings               decimal.Decimal `json:"savings"`
	Shipping              decimal.Decimal `json:"shipping"`
	Tax                   decimal.Decimal `json:"tax"`
	Total                 decimal.Decimal `json:"total"`
	ItemCount             int             `json:"itemCount"`
	FreeShippingRemaining decimal.Decimal `json:"freeShippingRemaining"`
}

// Rounded returns the two-digit presentation copy of t.
func (t CartTotals) Rounded() CartTotals {
	return CartTotals{
		Subtotal:              t.Subtotal.Round(2),
		Savings:               t.Savings.Round(2),
		Shipping:              t.Shipping.Round(2),
		Tax:                   t.Tax.Round(2),
		Total:                 t.Total.Round(2),
		ItemCount:             t.ItemCount,
		FreeShippingRemaining: t.FreeShippingRemaining.Round(2),
	}
}

type PricingConfig struct {
	TaxRate               decimal.Decimal `json:"taxRate"`
	FreeShippingThreshold decimal.Decimal `json:"freeShippingThreshold"`
	FlatShippingFee       decimal.Decimal `json:"flatShippingFee"`
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		TaxRate:               decimal.RequireFromString("0.21"),
		FreeShippingThreshold: decimal.NewFromInt(50),
		FlatShippingFee:       decimal.RequireFromString("5.99"),
	}
}

const (
	RoleAdmin          = "admin"
	DefaultMaxQuantity = 99
)

type AdminUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	LoginTime time.Time `json:"loginTime"`
}

type Session struct {
	User      AdminUser `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}

type Product struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Currency      string           `json:"currency"`
	Rating        float64          `json:"rating"`
	ReviewCount   int              `json:"reviewCount"`
	Image         string           `json:"image,omitempty"`
	Badge         string           `json:"badge,omitempty"`
	InStock       bool             `json:"inStock"`
	FreeShipping  bool             `json:"freeShipping"`
	Category      string           `json:"category"`
	Brand         string           `json:"brand"`
	URL           string           `json:"url,omitempty"`
}

// LineItem converts a catalog product into a cart line of quantity one.
func (p Product) LineItem() LineItem {
	inStock, freeShipping := p.InStock, p.FreeShipping
	return LineItem{
		ID:            p.ID,
		Title:         p.Title,
		Price:         p.Price,
		Quantity:      1,
		Image:         p.Image,
		Currency:      p.Currency,
		OriginalPrice: p.OriginalPrice,
		InStock:       &inStock,
		FreeShipping:  &freeShipping,
		URL:           p.URL,
	}
}

type Order struct {
	ID           string          `json:"id"`
	Items        []LineItem      `json:"items"`
	Totals       CartTotals      `json:"totals"`
	Total        decimal.Decimal `json:"total"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	CustomerInfo CustomerInfo    `json:"customerInfo"`
}

type CustomerInfo struct {
	Source   string `json:"source"`
	Platform string `json:"platform"`
}

const (
	OrderStatusPendingWhatsApp = "pending_whatsapp"
	OrderStatusConfirmed       = "confirmed"
	OrderStatusShipped         = "shipped"
	OrderStatusDelivered       = "delivered"
	OrderStatusCancelled       = "cancelled"
)

func ValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPendingWhatsApp, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type OrderMetrics struct {
	OrderCount        int             `json:"orderCount"`
	ItemsSold         int             `json:"itemsSold"`
	Revenue           decimal.Decimal `json:"revenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	ByStatus          map[string]int  `json:"byStatus"`
}
