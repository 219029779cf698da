package service

import (
	"errors"
	"fmt"

	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/internal/app/repository"
	apperrors "github.com/ikkim/catalog-backend/internal/errors"
	"github.com/ikkim/catalog-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerInfo struct {
	Name  string
	Phone string
	Email string
}

type AddressInfo struct {
	Street     string
	City       string
	PostalCode string
	Details    string
}

type CheckoutInput struct {
	Customer      CustomerInfo
	Address       AddressInfo
	PaymentMethod model.PaymentMethod
}

type OrderService interface {
	Checkout(userID uint, input CheckoutInput) (*model.Order, error)
	GetUserOrders(userID uint, page, limit int) ([]model.Order, int64, error)
	GetOrder(userID, orderID uint) (*model.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	db        *gorm.DB
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	db *gorm.DB,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		db:        db,
	}
}

// Checkout turns the user's cart into an order. Stock decrement, order
// creation and cart clearing commit together or not at all.
func (s *orderService) Checkout(userID uint, input CheckoutInput) (*model.Order, error) {
	if input.PaymentMethod == "" {
		input.PaymentMethod = model.PaymentMethodCash
	}

	logger.Info("Checking out cart", map[string]interface{}{
		"user_id":        userID,
		"payment_method": input.PaymentMethod,
	})

	if !input.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	cart, err := s.cartRepo.GetOrCreateCart(userID)
	if err != nil {
		return nil, apperrors.ParseError(err, "cart")
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, apperrors.ParseError(tx.Error, "order")
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during checkout, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
			panic(r)
		}
	}()

	// 동일 사용자의 동시 결제를 직렬화
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model.Cart{}, cart.ID).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to lock cart for checkout", err, map[string]interface{}{
			"user_id": userID,
			"cart_id": cart.ID,
		})
		return nil, apperrors.ParseError(err, "cart")
	}

	txCart := s.cartRepo.WithTx(tx)
	items, err := txCart.FindItems(cart.ID)
	if err != nil {
		tx.Rollback()
		return nil, apperrors.ParseError(err, "cart")
	}

	if len(items) == 0 {
		tx.Rollback()
		logger.Warn("Cannot checkout: cart is empty", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrCartEmpty
	}

	subtotal := decimal.Zero
	orderItems := make([]model.OrderItem, 0, len(items))
	for _, item := range items {
		// 판매 중단된 상품은 주문 불가
		if item.ProductVariant == nil || item.ProductVariant.Product == nil {
			tx.Rollback()
			logger.Warn("Checkout failed: cart line refers to a delisted product", map[string]interface{}{
				"user_id":            userID,
				"product_variant_id": item.ProductVariantID,
			})
			return nil, ErrProductVariantNotFound
		}

		result := tx.Model(&model.ProductVariant{}).
			Where("id = ? AND stock >= ?", item.ProductVariantID, item.Quantity).
			Update("stock", gorm.Expr("stock - ?", item.Quantity))
		if result.Error != nil {
			tx.Rollback()
			logger.Error("Failed to update variant stock", result.Error, map[string]interface{}{
				"user_id":            userID,
				"product_variant_id": item.ProductVariantID,
			})
			return nil, apperrors.ParseError(result.Error, "product variant")
		}
		if result.RowsAffected == 0 {
			tx.Rollback()
			logger.Warn("Checkout failed: insufficient variant stock", map[string]interface{}{
				"user_id":            userID,
				"product_variant_id": item.ProductVariantID,
				"requested":          item.Quantity,
			})
			return nil, ErrInsufficientStock
		}

		orderItems = append(orderItems, snapshotItem(item))
		subtotal = subtotal.Add(item.LineTotal())
	}

	discounts := decimal.Zero
	order := &model.Order{
		UserID:            userID,
		Status:            model.OrderStatusPending,
		Subtotal:          subtotal,
		Discounts:         discounts,
		Total:             subtotal.Sub(discounts),
		CustomerName:      input.Customer.Name,
		CustomerPhone:     input.Customer.Phone,
		CustomerEmail:     input.Customer.Email,
		AddressStreet:     input.Address.Street,
		AddressCity:       input.Address.City,
		AddressPostalCode: input.Address.PostalCode,
		AddressDetails:    input.Address.Details,
		PaymentMethod:     input.PaymentMethod,
		PaymentStatus:     model.PaymentStatusUnpaid,
		OrderItems:        orderItems,
	}

	if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
		tx.Rollback()
		return nil, apperrors.ParseError(err, "order")
	}

	if err := txCart.Clear(cart.ID); err != nil {
		tx.Rollback()
		logger.Error("Failed to clear cart after order creation", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, apperrors.ParseError(err, "cart")
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit checkout transaction", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
		})
		return nil, apperrors.ParseError(err, "order")
	}

	logger.Info("Order created successfully", map[string]interface{}{
		"user_id":    userID,
		"order_id":   order.ID,
		"total":      order.Total.String(),
		"item_count": len(orderItems),
	})

	created, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		return nil, apperrors.ParseError(err, "order")
	}
	return created, nil
}

// snapshotItem copies display data so later catalog edits never reach the order.
// The item's variant and product must be loaded.
func snapshotItem(item model.CartItem) model.OrderItem {
	v := item.ProductVariant
	return model.OrderItem{
		ProductName:  v.Product.Name,
		VariantLabel: v.Label(),
		ImageURL:     v.Product.ImageURL,
		UnitPrice:    item.UnitPrice,
		Quantity:     item.Quantity,
	}
}

func (s *orderService) GetUserOrders(userID uint, page, limit int) ([]model.Order, int64, error) {
	logger.Debug("Fetching user orders", map[string]interface{}{
		"user_id": userID,
		"page":    page,
		"limit":   limit,
	})

	if page < 1 || limit < 1 {
		return nil, 0, apperrors.NewValidation(apperrors.ValidationInvalidRange, "page and limit must be positive")
	}

	orders, total, err := s.orderRepo.FindByUserID(userID, (page-1)*limit, limit)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, 0, apperrors.ParseError(err, "order")
	}

	logger.Info("User orders fetched successfully", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
		"total":   total,
	})
	return orders, total, nil
}

// GetOrder never distinguishes a missing order from someone else's.
func (s *orderService) GetOrder(userID, orderID uint) (*model.Order, error) {
	logger.Debug("Fetching order by ID", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})

	order, err := s.orderRepo.FindByIDForUser(userID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Order not found", map[string]interface{}{
				"user_id":  userID,
				"order_id": orderID,
			})
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return nil, apperrors.ParseError(err, "order")
	}
	return order, nil
}
