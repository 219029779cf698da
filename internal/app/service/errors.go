package service

import (
	apperrors "github.com/ikkim/catalog-backend/internal/errors"
)

// 서비스 계층 도메인 에러 (컨트롤러에서 apperrors.Respond로 변환)
var (
	ErrProductNotFound        = apperrors.NewNotFound(apperrors.ProductNotFound, "Product not found")
	ErrProductVariantNotFound = apperrors.NewNotFound(apperrors.ProductVariantNotFound, "Product variant not found")
	ErrCartItemNotFound       = apperrors.NewNotFound(apperrors.CartItemNotFound, "Cart item not found")
	ErrOrderNotFound          = apperrors.NewNotFound(apperrors.OrderNotFound, "Order not found")
	ErrInvalidQuantity        = apperrors.NewValidation(apperrors.ValidationInvalidQuantity, "Quantity must be a positive integer")
	ErrInvalidPaymentMethod   = apperrors.NewValidation(apperrors.ValidationInvalidInput, "Unsupported payment method")
	ErrInsufficientStock      = apperrors.NewConflict(apperrors.StockInsufficient, "Insufficient stock")
	ErrCartEmpty              = apperrors.NewCartEmpty("Cart is empty")
)
