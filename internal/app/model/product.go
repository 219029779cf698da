package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID             uint                `gorm:"primarykey" json:"id"`
	Name           string              `gorm:"type:varchar(200);not null" json:"name"`
	Description    string              `gorm:"type:text" json:"description"`
	Price          decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"price"`
	MinPrice       decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"min_price"` // cached from variants
	MaxPrice       decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"max_price"` // cached from variants
	ImageURL       string              `gorm:"type:varchar(500)" json:"image_url"`
	Popularity     int                 `gorm:"not null;default:0;index" json:"popularity"`
	IsCustomizable bool                `gorm:"not null;default:false" json:"is_customizable"`
	ReleasedAt     time.Time           `gorm:"not null;index" json:"released_at"`
	RatingAvg      float64             `gorm:"not null;default:0" json:"rating_avg"`
	RatingCount    int                 `gorm:"not null;default:0" json:"rating_count"`
	CategoryID     uint                `gorm:"not null;index" json:"category_id"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	DeletedAt      gorm.DeletedAt      `gorm:"index" json:"-"`

	// Relationships
	Category    Category         `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	Flags       []Flag           `gorm:"many2many:product_flags" json:"flags,omitempty"`
	Ingredients []Ingredient     `gorm:"many2many:product_ingredients" json:"ingredients,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// DisplayPrice picks the price shown on listings: the default variant,
// then the cheapest variant, then the base price.
func (p *Product) DisplayPrice() decimal.Decimal {
	for _, v := range p.Variants {
		if v.IsDefault {
			return v.Price
		}
	}
	if p.MinPrice.Valid {
		return p.MinPrice.Decimal
	}
	return p.Price
}

// IsNewSince reports whether the product was released at or after since.
func (p *Product) IsNewSince(since time.Time) bool {
	return !p.ReleasedAt.Before(since)
}

type ProductVariant struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	ProductID    uint            `gorm:"not null;index;uniqueIndex:idx_product_variants_default,where:is_default = true" json:"product_id"`
	DoughTypeID  *uint           `gorm:"index" json:"dough_type_id,omitempty"`
	SizeOptionID *uint           `gorm:"index" json:"size_option_id,omitempty"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock        int             `gorm:"not null;default:0" json:"stock"`
	IsDefault    bool            `gorm:"not null;default:false" json:"is_default"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Product    *Product    `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	DoughType  *DoughType  `gorm:"foreignKey:DoughTypeID;constraint:OnDelete:SET NULL" json:"dough_type,omitempty"`
	SizeOption *SizeOption `gorm:"foreignKey:SizeOptionID;constraint:OnDelete:SET NULL" json:"size_option,omitempty"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}

// Label composes "<size> <dough>", skipping whichever part is missing.
func (v *ProductVariant) Label() string {
	var parts []string
	if v.SizeOption != nil {
		parts = append(parts, DisplayName(v.SizeOption.Key, v.SizeOption.Label))
	}
	if v.DoughType != nil {
		parts = append(parts, DisplayName(v.DoughType.Key, v.DoughType.Label))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
