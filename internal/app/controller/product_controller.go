package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalog-backend/internal/app/service"
	apperrors "github.com/ikkim/catalog-backend/internal/errors"
	"github.com/ikkim/catalog-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
	newerThanDays  int
	now            func() time.Time
}

func NewProductController(productService service.ProductService, newerThanDays int) *ProductController {
	return &ProductController{
		productService: productService,
		newerThanDays:  newerThanDays,
		now:            time.Now,
	}
}

// GetProductByID returns a single product with its variants
// GET /api/v1/browse/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		log.Warn("Invalid product ID format", map[string]interface{}{
			"product_id": c.Param("id"),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid product ID")
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	newSince := ctrl.now().UTC().AddDate(0, 0, -ctrl.newerThanDays)
	c.JSON(http.StatusOK, gin.H{
		"data": newProductResponse(product, newSince),
	})
}
