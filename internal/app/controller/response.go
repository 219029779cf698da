package controller

import (
	"time"

	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/internal/app/service"
	"github.com/shopspring/decimal"
)

// Prices are fixed-point internally and plain JSON numbers on the wire.
func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func nullMoney(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	v := d.Decimal.InexactFloat64()
	return &v
}

func moneyPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	v := d.InexactFloat64()
	return &v
}

type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func newPagination(page, limit int, total int64) PaginationResponse {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return PaginationResponse{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// ==================== 카탈로그 ====================

type CategoryResponse struct {
	ID   uint   `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type TaxonomyResponse struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type VariantResponse struct {
	ID        uint              `json:"id"`
	Label     string            `json:"label"`
	Price     float64           `json:"price"`
	Stock     int               `json:"stock"`
	IsDefault bool              `json:"isDefault"`
	Dough     *TaxonomyResponse `json:"dough"`
	Size      *TaxonomyResponse `json:"size"`
}

type ProductResponse struct {
	ID             uint               `json:"id"`
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	ImageURL       string             `json:"imageUrl"`
	Price          float64            `json:"price"`
	MinPrice       *float64           `json:"minPrice"`
	MaxPrice       *float64           `json:"maxPrice"`
	Category       *CategoryResponse  `json:"category"`
	Flags          []TaxonomyResponse `json:"flags"`
	Ingredients    []TaxonomyResponse `json:"ingredients"`
	Variants       []VariantResponse  `json:"variants"`
	IsCustomizable bool               `json:"isCustomizable"`
	IsNew          bool               `json:"isNew"`
	Rating         float64            `json:"rating"`
	RatingCount    int                `json:"ratingCount"`
	Popularity     int                `json:"popularity"`
	ReleasedAt     time.Time          `json:"releasedAt"`
}

func newProductResponse(p *model.Product, newSince time.Time) ProductResponse {
	resp := ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		ImageURL:       p.ImageURL,
		Price:          money(p.DisplayPrice()),
		MinPrice:       nullMoney(p.MinPrice),
		MaxPrice:       nullMoney(p.MaxPrice),
		Flags:          make([]TaxonomyResponse, 0, len(p.Flags)),
		Ingredients:    make([]TaxonomyResponse, 0, len(p.Ingredients)),
		Variants:       make([]VariantResponse, 0, len(p.Variants)),
		IsCustomizable: p.IsCustomizable,
		IsNew:          p.IsNewSince(newSince),
		Rating:         p.RatingAvg,
		RatingCount:    p.RatingCount,
		Popularity:     p.Popularity,
		ReleasedAt:     p.ReleasedAt,
	}
	if p.Category.ID != 0 {
		resp.Category = &CategoryResponse{ID: p.Category.ID, Slug: p.Category.Slug, Name: p.Category.Name}
	}
	for _, f := range p.Flags {
		resp.Flags = append(resp.Flags, TaxonomyResponse{Key: f.Key, Label: model.DisplayName(f.Key, f.Label)})
	}
	for _, i := range p.Ingredients {
		resp.Ingredients = append(resp.Ingredients, TaxonomyResponse{Key: i.Key, Label: model.DisplayName(i.Key, i.Label)})
	}
	for i := range p.Variants {
		v := &p.Variants[i]
		vr := VariantResponse{
			ID:        v.ID,
			Label:     v.Label(),
			Price:     money(v.Price),
			Stock:     v.Stock,
			IsDefault: v.IsDefault,
		}
		if v.DoughType != nil {
			vr.Dough = &TaxonomyResponse{Key: v.DoughType.Key, Label: model.DisplayName(v.DoughType.Key, v.DoughType.Label)}
		}
		if v.SizeOption != nil {
			vr.Size = &TaxonomyResponse{Key: v.SizeOption.Key, Label: model.DisplayName(v.SizeOption.Key, v.SizeOption.Label)}
		}
		resp.Variants = append(resp.Variants, vr)
	}
	return resp
}

type FacetValueResponse struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type PriceRangeResponse struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

type FacetsResponse struct {
	Flags       []FacetValueResponse `json:"flags"`
	Ingredients []FacetValueResponse `json:"ingredients"`
	DoughTypes  []FacetValueResponse `json:"doughTypes"`
	SizeOptions []FacetValueResponse `json:"sizeOptions"`
	Price       PriceRangeResponse   `json:"price"`
}

func facetValues(values []service.FacetValue) []FacetValueResponse {
	out := make([]FacetValueResponse, 0, len(values))
	for _, v := range values {
		out = append(out, FacetValueResponse{Key: v.Key, Label: v.Label, Count: v.Count})
	}
	return out
}

func newFacetsResponse(f *service.Facets) FacetsResponse {
	return FacetsResponse{
		Flags:       facetValues(f.Flags),
		Ingredients: facetValues(f.Ingredients),
		DoughTypes:  facetValues(f.DoughTypes),
		SizeOptions: facetValues(f.SizeOptions),
		Price:       PriceRangeResponse{Min: moneyPtr(f.Price.Min), Max: moneyPtr(f.Price.Max)},
	}
}

// ==================== 장바구니 ====================

type CartItemResponse struct {
	ID               uint    `json:"id"`
	ProductVariantID uint    `json:"productVariantId"`
	ProductID        uint    `json:"productId"`
	ProductName      string  `json:"productName"`
	VariantLabel     string  `json:"variantLabel"`
	ImageURL         string  `json:"imageUrl"`
	UnitPrice        float64 `json:"unitPrice"`
	Quantity         int     `json:"quantity"`
	LineTotal        float64 `json:"lineTotal"`
}

type CartResponse struct {
	ID        uint               `json:"id"`
	Items     []CartItemResponse `json:"items"`
	ItemCount int                `json:"itemCount"`
	Subtotal  float64            `json:"subtotal"`
	Discounts float64            `json:"discounts"`
	Total     float64            `json:"total"`
}

func newCartResponse(s *service.CartSummary) CartResponse {
	resp := CartResponse{
		ID:        s.CartID,
		Items:     make([]CartItemResponse, 0, len(s.Items)),
		ItemCount: s.ItemCount,
		Subtotal:  money(s.Subtotal),
		Discounts: money(s.Discounts),
		Total:     money(s.Total),
	}
	for i := range s.Items {
		item := &s.Items[i]
		ir := CartItemResponse{
			ID:               item.ID,
			ProductVariantID: item.ProductVariantID,
			UnitPrice:        money(item.UnitPrice),
			Quantity:         item.Quantity,
			LineTotal:        money(item.LineTotal()),
		}
		if v := item.ProductVariant; v != nil {
			ir.ProductID = v.ProductID
			ir.VariantLabel = v.Label()
			if v.Product != nil {
				ir.ProductName = v.Product.Name
				ir.ImageURL = v.Product.ImageURL
			}
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}

// ==================== 주문 ====================

type CustomerResponse struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type AddressResponse struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Details    string `json:"details"`
}

type OrderItemResponse struct {
	ID           uint    `json:"id"`
	ProductName  string  `json:"productName"`
	VariantLabel string  `json:"variantLabel"`
	UnitPrice    float64 `json:"unitPrice"`
	Quantity     int     `json:"quantity"`
	LineTotal    float64 `json:"lineTotal"`
	ImageURL     string  `json:"imageUrl"`
}

type OrderResponse struct {
	ID            uint                `json:"id"`
	Status        model.OrderStatus   `json:"status"`
	Subtotal      float64             `json:"subtotal"`
	Discounts     float64             `json:"discounts"`
	Total         float64             `json:"total"`
	Customer      CustomerResponse    `json:"customer"`
	Address       AddressResponse     `json:"address"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	PaymentStatus model.PaymentStatus `json:"paymentStatus"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"createdAt"`
}

func newOrderResponse(o *model.Order) OrderResponse {
	resp := OrderResponse{
		ID:        o.ID,
		Status:    o.Status,
		Subtotal:  money(o.Subtotal),
		Discounts: money(o.Discounts),
		Total:     money(o.Total),
		Customer: CustomerResponse{
			Name:  o.CustomerName,
			Phone: o.CustomerPhone,
			Email: o.CustomerEmail,
		},
		Address: AddressResponse{
			Street:     o.AddressStreet,
			City:       o.AddressCity,
			PostalCode: o.AddressPostalCode,
			Details:    o.AddressDetails,
		},
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
		Items:         make([]OrderItemResponse, 0, len(o.OrderItems)),
		CreatedAt:     o.CreatedAt,
	}
	for i := range o.OrderItems {
		item := &o.OrderItems[i]
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:           item.ID,
			ProductName:  item.ProductName,
			VariantLabel: item.VariantLabel,
			UnitPrice:    money(item.UnitPrice),
			Quantity:     item.Quantity,
			LineTotal:    money(item.LineTotal()),
			ImageURL:     item.ImageURL,
		})
	}
	return resp
}
