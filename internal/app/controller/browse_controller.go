package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalog-backend/internal/app/filter"
	"github.com/ikkim/catalog-backend/internal/app/service"
	apperrors "github.com/ikkim/catalog-backend/internal/errors"
	"github.com/ikkim/catalog-backend/internal/middleware"
)

type BrowseController struct {
	browseService service.BrowseService
	defaults      filter.Defaults
}

func NewBrowseController(browseService service.BrowseService, defaults filter.Defaults) *BrowseController {
	return &BrowseController{
		browseService: browseService,
		defaults:      defaults,
	}
}

// BrowseProducts lists products matching the filters, one page at a time
// GET /api/v1/browse/products
func (ctrl *BrowseController) BrowseProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	q, ok := ctrl.parseQuery(c)
	if !ok {
		return
	}

	page, err := ctrl.browseService.Browse(c.Request.Context(), q)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	products := make([]ProductResponse, 0, len(page.Products))
	for i := range page.Products {
		products = append(products, newProductResponse(&page.Products[i], page.NewSince))
	}

	log.Info("Products browsed", map[string]interface{}{
		"total": page.Total,
		"page":  page.Page,
	})

	c.JSON(http.StatusOK, gin.H{
		"data": products,
		"pagination": PaginationResponse{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
	})
}

// GetFilters returns facet counts and the price range for the filters
// GET /api/v1/browse/filters
func (ctrl *BrowseController) GetFilters(c *gin.Context) {
	q, ok := ctrl.parseQuery(c)
	if !ok {
		return
	}

	facets, err := ctrl.browseService.Facets(c.Request.Context(), q)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": newFacetsResponse(facets),
	})
}

func (ctrl *BrowseController) parseQuery(c *gin.Context) (filter.Query, bool) {
	q, err := filter.ParseValues(c.Request.URL.Query(), ctrl.defaults)
	if err == nil {
		err = q.Validate()
	}
	if err != nil {
		ctrl.respondError(c, err)
		return q, false
	}
	return q, true
}

func (ctrl *BrowseController) respondError(c *gin.Context, err error) {
	var verr *filter.ValidationError
	if errors.As(err, &verr) {
		middleware.GetLoggerFromContext(c).Warn("Invalid browse query", map[string]interface{}{
			"fields": verr.Fields,
		})
		apperrors.RespondWithValidationError(c, http.StatusUnprocessableEntity, apperrors.ValidationInvalidQuery, verr.Fields)
		return
	}

	middleware.GetLoggerFromContext(c).Error("Failed to browse catalog", err)
	apperrors.Respond(c, err)
}
