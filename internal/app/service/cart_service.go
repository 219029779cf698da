package service

import (
	"errors"

	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/internal/app/repository"
	apperrors "github.com/ikkim/catalog-backend/internal/errors"
	"github.com/ikkim/catalog-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartSummary is a cart with its lines and totals computed from captured unit prices.
type CartSummary struct {
	CartID    uint
	UserID    uint
	Items     []model.CartItem
	ItemCount int
	Subtotal  decimal.Decimal
	Discounts decimal.Decimal
	Total     decimal.Decimal
}

type CartService interface {
	GetCart(userID uint) (*CartSummary, error)
	AddItem(userID, variantID uint, quantity int) (*CartSummary, error)
	UpdateItemQuantity(userID, itemID uint, quantity int) (*CartSummary, error)
	RemoveItem(userID, itemID uint) (*CartSummary, error)
	ClearCart(userID uint) (*CartSummary, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// summarize 장바구니 합계 계산 (할인은 현재 항상 0)
func summarize(cart *model.Cart, items []model.CartItem) *CartSummary {
	subtotal := decimal.Zero
	count := 0
	for i := range items {
		subtotal = subtotal.Add(items[i].LineTotal())
		count += items[i].Quantity
	}
	discounts := decimal.Zero
	return &CartSummary{
		CartID:    cart.ID,
		UserID:    cart.UserID,
		Items:     items,
		ItemCount: count,
		Subtotal:  subtotal,
		Discounts: discounts,
		Total:     subtotal.Sub(discounts),
	}
}

func (s *cartService) load(cart *model.Cart) (*CartSummary, error) {
	items, err := s.cartRepo.FindItems(cart.ID)
	if err != nil {
		return nil, apperrors.ParseError(err, "cart")
	}
	return summarize(cart, items), nil
}

func (s *cartService) GetCart(userID uint) (*CartSummary, error) {
	logger.Debug("Fetching user cart", map[string]interface{}{
		"user_id": userID,
	})

	cart, err := s.cartRepo.GetOrCreateCart(userID)
	if err != nil {
		return nil, apperrors.ParseError(err, "cart")
	}

	summary, err := s.load(cart)
	if err != nil {
		logger.Error("Failed to fetch user cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("User cart fetched successfully", map[string]interface{}{
		"user_id": userID,
		"lines":   len(summary.Items),
		"total":   summary.Total.String(),
	})
	return summary, nil
}

// AddItem merges into an existing line for the same variant, otherwise it
// creates one. Either way the line takes the variant's current price.
func (s *cartService) AddItem(userID, variantID uint, quantity int) (*CartSummary, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":            userID,
		"product_variant_id": variantID,
		"quantity":           quantity,
	})

	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	variant, err := s.productRepo.FindVariantByID(variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: variant not found", map[string]interface{}{
				"user_id":            userID,
				"product_variant_id": variantID,
			})
			return nil, ErrProductVariantNotFound
		}
		return nil, apperrors.ParseError(err, "product variant")
	}

	cart, err := s.cartRepo.GetOrCreateCart(userID)
	if err != nil {
		return nil, apperrors.ParseError(err, "cart")
	}

	if err := s.cartRepo.UpsertItem(cart.ID, variant.ID, quantity, variant.Price); err != nil {
		logger.Error("Failed to add item to cart", err, map[string]interface{}{
			"user_id":            userID,
			"product_variant_id": variantID,
		})
		return nil, apperrors.ParseError(err, "cart item")
	}

	logger.Info("Item added to cart successfully", map[string]interface{}{
		"user_id":            userID,
		"product_variant_id": variantID,
		"unit_price":         variant.Price.String(),
	})
	return s.load(cart)
}

// UpdateItemQuantity sets an absolute quantity and recaptures the unit price.
func (s *cartService) UpdateItemQuantity(userID, itemID uint, quantity int) (*CartSummary, error) {
	logger.Info("Updating cart item quantity", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": itemID,
		"quantity":     quantity,
	})

	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.cartRepo.FindItemForUser(userID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cart item not found for user", map[string]interface{}{
				"user_id":      userID,
				"cart_item_id": itemID,
			})
			return nil, ErrCartItemNotFound
		}
		return nil, apperrors.ParseError(err, "cart item")
	}

	unitPrice := item.UnitPrice
	if item.ProductVariant != nil {
		unitPrice = item.ProductVariant.Price
	}

	if err := s.cartRepo.UpdateItem(item.ID, quantity, unitPrice); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		logger.Error("Failed to update cart item", err, map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": itemID,
		})
		return nil, apperrors.ParseError(err, "cart item")
	}

	return s.GetCart(userID)
}

func (s *cartService) RemoveItem(userID, itemID uint) (*CartSummary, error) {
	logger.Info("Removing cart item", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": itemID,
	})

	if err := s.cartRepo.DeleteItemForUser(userID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cart item not found for user", map[string]interface{}{
				"user_id":      userID,
				"cart_item_id": itemID,
			})
			return nil, ErrCartItemNotFound
		}
		logger.Error("Failed to remove cart item", err, map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": itemID,
		})
		return nil, apperrors.ParseError(err, "cart item")
	}

	return s.GetCart(userID)
}

func (s *cartService) ClearCart(userID uint) (*CartSummary, error) {
	logger.Info("Clearing cart", map[string]interface{}{
		"user_id": userID,
	})

	cart, err := s.cartRepo.GetOrCreateCart(userID)
	if err != nil {
		return nil, apperrors.ParseError(err, "cart")
	}
	if err := s.cartRepo.Clear(cart.ID); err != nil {
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, apperrors.ParseError(err, "cart")
	}

	return summarize(cart, []model.CartItem{}), nil
}
