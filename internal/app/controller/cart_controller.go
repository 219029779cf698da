package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalog-backend/internal/app/service"
	apperrors "github.com/ikkim/catalog-backend/internal/errors"
	"github.com/ikkim/catalog-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddCartItemRequest struct {
	ProductVariantID uint `json:"productVariantId" binding:"required"`
	Quantity         *int `json:"quantity" binding:"omitempty,gt=0"`
}

// 수량 생략 시 1개
func (r AddCartItemRequest) quantity() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// GetCart returns user's cart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.GetCart(userID)
	if err != nil {
		ctrl.fail(c, "Failed to fetch cart", err, userID)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": newCartResponse(cart)})
}

// AddItem adds a variant to the cart, merging with an existing line
// POST /api/v1/cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req AddCartItemRequest
	if fields := bindJSON(c, &req); fields != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"fields": fields,
		})
		apperrors.RespondWithValidationError(c, http.StatusBadRequest, apperrors.ValidationInvalidInput, fields)
		return
	}

	quantity := req.quantity()
	cart, err := ctrl.cartService.AddItem(userID, req.ProductVariantID, quantity)
	if err != nil {
		ctrl.fail(c, "Failed to add item to cart", err, userID)
		return
	}

	log.Info("Item added to cart", map[string]interface{}{
		"user_id":    userID,
		"variant_id": req.ProductVariantID,
		"quantity":   quantity,
	})

	c.JSON(http.StatusOK, gin.H{"data": newCartResponse(cart)})
}

// UpdateItem sets the quantity of one cart line
// PATCH /api/v1/cart/items/:itemId
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid cart item ID")
		return
	}

	var req UpdateCartItemRequest
	if fields := bindJSON(c, &req); fields != nil {
		apperrors.RespondWithValidationError(c, http.StatusBadRequest, apperrors.ValidationInvalidQuantity, fields)
		return
	}

	cart, err := ctrl.cartService.UpdateItemQuantity(userID, itemID, req.Quantity)
	if err != nil {
		ctrl.fail(c, "Failed to update cart item", err, userID)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": newCartResponse(cart)})
}

// RemoveItem deletes one cart line
// DELETE /api/v1/cart/items/:itemId
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid cart item ID")
		return
	}

	cart, err := ctrl.cartService.RemoveItem(userID, itemID)
	if err != nil {
		ctrl.fail(c, "Failed to remove cart item", err, userID)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": newCartResponse(cart)})
}

// ClearCart empties the cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.ClearCart(userID)
	if err != nil {
		ctrl.fail(c, "Failed to clear cart", err, userID)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": newCartResponse(cart)})
}

func (ctrl *CartController) fail(c *gin.Context, msg string, err error, userID uint) {
	appErr := apperrors.As(err)
	fields := map[string]interface{}{
		"user_id": userID,
		"code":    appErr.Code,
	}
	if appErr.Kind == apperrors.KindInternal {
		middleware.GetLoggerFromContext(c).Error(msg, err, fields)
	} else {
		middleware.GetLoggerFromContext(c).Warn(msg, fields)
	}
	apperrors.Respond(c, err)
}

// requireUser reads the authenticated user, answering 401 when absent.
func requireUser(c *gin.Context) (uint, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		middleware.GetLoggerFromContext(c).Warn("Unauthenticated request", map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		apperrors.Unauthorized(c, apperrors.AuthUnauthorized, "authentication required")
		return 0, false
	}
	return userID, true
}
