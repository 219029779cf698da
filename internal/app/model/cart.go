package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Cart) TableName() string {
	return "carts"
}

// CartItem is unique per (cart, variant). UnitPrice is captured when the
// line is added or its quantity changes.
type CartItem struct {
	ID               uint            `gorm:"primarykey" json:"id"`
	CartID           uint            `gorm:"not null;uniqueIndex:idx_cart_items_cart_variant" json:"cart_id"`
	ProductVariantID uint            `gorm:"not null;uniqueIndex:idx_cart_items_cart_variant;index" json:"product_variant_id"`
	Quantity         int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	// Relationships
	Cart           *Cart           `gorm:"foreignKey:CartID" json:"-"`
	ProductVariant *ProductVariant `gorm:"foreignKey:ProductVariantID;constraint:OnDelete:CASCADE" json:"product_variant,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// LineTotal is unit price times quantity.
func (i *CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
