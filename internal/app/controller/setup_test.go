package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalog-backend/internal/app/filter"
	"github.com/ikkim/catalog-backend/internal/app/repository"
	"github.com/ikkim/catalog-backend/internal/app/service"
	"github.com/ikkim/catalog-backend/internal/db"
	"github.com/ikkim/catalog-backend/internal/middleware"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testUserHeader = "X-Test-User"

type controllerFixture struct {
	router *gin.Engine
	db     *gorm.DB
	tc     *db.TestCatalog
}

func setupControllerTest(t *testing.T) *controllerFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	tc, err := db.SeedTestCatalog(testDB)
	require.NoError(t, err)

	catalogRepo := repository.NewCatalogRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)

	browseController := NewBrowseController(
		service.NewBrowseService(catalogRepo, nil, time.Minute),
		filter.Defaults{NewerThanDays: 30, PageLimit: 20, MaxPageLimit: 100},
	)
	productController := NewProductController(service.NewProductService(productRepo), 30)
	cartController := NewCartController(service.NewCartService(cartRepo, productRepo))
	orderController := NewOrderController(service.NewOrderService(orderRepo, cartRepo, testDB))

	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.GET("/browse/products", browseController.BrowseProducts)
	router.GET("/browse/products/:id", productController.GetProductByID)
	router.GET("/browse/filters", browseController.GetFilters)

	// 테스트에서는 헤더로 사용자 지정 (토큰 검증은 middleware 패키지에서 테스트)
	authed := router.Group("/")
	authed.Use(func(c *gin.Context) {
		if raw := c.GetHeader(testUserHeader); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 32)
			require.NoError(t, err)
			c.Set(middleware.UserIDKey, uint(id))
		}
		c.Next()
	})
	authed.GET("/cart", cartController.GetCart)
	authed.POST("/cart/items", cartController.AddItem)
	authed.PATCH("/cart/items/:itemId", cartController.UpdateItem)
	authed.DELETE("/cart/items/:itemId", cartController.RemoveItem)
	authed.DELETE("/cart", cartController.ClearCart)
	authed.POST("/checkout", orderController.Checkout)
	authed.GET("/orders", orderController.GetOrders)
	authed.GET("/orders/:id", orderController.GetOrderByID)

	return &controllerFixture{router: router, db: testDB, tc: tc}
}

// do sends a request as userID (0 means anonymous) and decodes the JSON body.
func (f *controllerFixture) do(t *testing.T, method, path string, userID uint, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set(testUserHeader, strconv.FormatUint(uint64(userID), 10))
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}
