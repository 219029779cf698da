package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/internal/app/service"
	apperrors "github.com/ikkim/catalog-backend/internal/errors"
	"github.com/ikkim/catalog-backend/internal/middleware"
)

const (
	defaultOrderPageLimit = 20
	maxOrderPageLimit     = 100
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type CustomerRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Phone string `json:"phone" binding:"required,max=50"`
	Email string `json:"email" binding:"omitempty,email,max=200"`
}

type AddressRequest struct {
	Street     string `json:"street" binding:"required,max=300"`
	City       string `json:"city" binding:"required,max=100"`
	PostalCode string `json:"postalCode" binding:"max=20"`
	Details    string `json:"details" binding:"max=1000"`
}

type CheckoutRequest struct {
	Customer      CustomerRequest `json:"customer"`
	Address       AddressRequest  `json:"address"`
	PaymentMethod string          `json:"paymentMethod" binding:"omitempty,max=20"`
}

// Checkout turns the cart into an order
// POST /api/v1/checkout
func (ctrl *OrderController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if fields := bindJSON(c, &req); fields != nil {
		log.Warn("Invalid checkout request", map[string]interface{}{
			"user_id": userID,
			"fields":  fields,
		})
		apperrors.RespondWithValidationError(c, http.StatusUnprocessableEntity, apperrors.ValidationInvalidInput, fields)
		return
	}

	order, err := ctrl.orderService.Checkout(userID, service.CheckoutInput{
		Customer: service.CustomerInfo{
			Name:  strings.TrimSpace(req.Customer.Name),
			Phone: strings.TrimSpace(req.Customer.Phone),
			Email: strings.TrimSpace(req.Customer.Email),
		},
		Address: service.AddressInfo{
			Street:     strings.TrimSpace(req.Address.Street),
			City:       strings.TrimSpace(req.Address.City),
			PostalCode: strings.TrimSpace(req.Address.PostalCode),
			Details:    strings.TrimSpace(req.Address.Details),
		},
		PaymentMethod: model.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.PaymentMethod))),
	})
	if err != nil {
		appErr := apperrors.As(err)
		if appErr.Kind == apperrors.KindValidation {
			log.Warn("Checkout rejected", map[string]interface{}{
				"user_id": userID,
				"code":    appErr.Code,
			})
			var fields map[string]string
			if errors.Is(err, service.ErrInvalidPaymentMethod) {
				fields = map[string]string{"paymentMethod": "must be one of: CASH CARD"}
			}
			apperrors.RespondWithValidationError(c, http.StatusUnprocessableEntity, appErr.Code, fields)
			return
		}
		if appErr.Kind == apperrors.KindInternal {
			log.Error("Checkout failed", err, map[string]interface{}{"user_id": userID})
		} else {
			log.Warn("Checkout rejected", map[string]interface{}{
				"user_id": userID,
				"code":    appErr.Code,
			})
		}
		apperrors.Respond(c, err)
		return
	}

	log.Info("Order created", map[string]interface{}{
		"user_id":  userID,
		"order_id": order.ID,
		"total":    order.Total.String(),
	})

	c.JSON(http.StatusCreated, gin.H{"data": newOrderResponse(order)})
}

// GetOrders returns user's orders, newest first
// GET /api/v1/orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	fields := map[string]string{}
	page := queryInt(c, "page", 1, fields)
	limit := queryInt(c, "limit", defaultOrderPageLimit, fields)
	if page < 1 {
		fields["page"] = "must be at least 1"
	}
	if limit < 1 || limit > maxOrderPageLimit {
		fields["limit"] = "must be between 1 and " + strconv.Itoa(maxOrderPageLimit)
	}
	if len(fields) > 0 {
		apperrors.RespondWithValidationError(c, http.StatusUnprocessableEntity, apperrors.ValidationInvalidQuery, fields)
		return
	}

	orders, total, err := ctrl.orderService.GetUserOrders(userID, page, limit)
	if err != nil {
		log.Error("Failed to fetch orders", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.Respond(c, err)
		return
	}

	data := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		data = append(data, newOrderResponse(&orders[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       data,
		"pagination": newPagination(page, limit, total),
	})
}

// GetOrderByID returns one order owned by the user
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid order ID")
		return
	}

	order, err := ctrl.orderService.GetOrder(userID, orderID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Warn("Order lookup failed", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": newOrderResponse(order)})
}

func queryInt(c *gin.Context, key string, def int, fields map[string]string) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		fields[key] = "must be an integer"
		return def
	}
	return v
}
