package service

import (
	"errors"
	"testing"

	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/internal/app/repository"
	"github.com/ikkim/catalog-backend/internal/db"
	apperrors "github.com/ikkim/catalog-backend/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderServiceFixture struct {
	orders OrderService
	carts  CartService
	tc     *db.TestCatalog
	db     *gorm.DB
}

func setupOrderServiceTest(t *testing.T) *orderServiceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	tc, err := db.SeedTestCatalog(testDB)
	require.NoError(t, err)

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)

	return &orderServiceFixture{
		orders: NewOrderService(orderRepo, cartRepo, testDB),
		carts:  NewCartService(cartRepo, productRepo),
		tc:     tc,
		db:     testDB,
	}
}

func checkoutInput() CheckoutInput {
	return CheckoutInput{
		Customer: CustomerInfo{Name: "Ana Popescu", Phone: "+37360000000", Email: "ana@example.com"},
		Address:  AddressInfo{Street: "Str. Independentei 5", City: "Chisinau", PostalCode: "MD-2001"},
	}
}

func (f *orderServiceFixture) fillCart(t *testing.T, userID uint) {
	t.Helper()
	_, err := f.carts.AddItem(userID, f.tc.Variants["margherita:small"].ID, 2)
	require.NoError(t, err)
	_, err = f.carts.AddItem(userID, f.tc.Variants["diavola:large"].ID, 1)
	require.NoError(t, err)
	_, err = f.carts.AddItem(userID, f.tc.Variants["vegan-garden:medium"].ID, 1)
	require.NoError(t, err)
}

func countOrders(t *testing.T, testDB *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, testDB.Model(&model.Order{}).Count(&n).Error)
	return n
}

func TestOrderService_Checkout(t *testing.T) {
	f := setupOrderServiceTest(t)
	f.fillCart(t, 1)

	order, err := f.orders.Checkout(1, checkoutInput())
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, model.PaymentMethodCash, order.PaymentMethod)
	assert.Equal(t, model.PaymentStatusUnpaid, order.PaymentStatus)
	assert.Equal(t, "Ana Popescu", order.CustomerName)
	assert.Equal(t, "Chisinau", order.AddressCity)

	// 2*90 + 180 + 95
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(455)))
	assert.True(t, order.Discounts.IsZero())
	assert.True(t, order.Total.Equal(decimal.NewFromInt(455)))

	require.Len(t, order.OrderItems, 3)
	first := order.OrderItems[0]
	assert.Equal(t, "Margherita", first.ProductName)
	assert.Equal(t, "Small (25cm) Classic", first.VariantLabel)
	assert.Equal(t, 2, first.Quantity)
	assert.True(t, first.UnitPrice.Equal(decimal.NewFromInt(90)))
	assert.Equal(t, "https://cdn.example.com/margherita.jpg", first.ImageURL)

	cart, err := f.carts.GetCart(1)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	var variant model.ProductVariant
	require.NoError(t, f.db.First(&variant, f.tc.Variants["margherita:small"].ID).Error)
	assert.Equal(t, 98, variant.Stock)
}

func TestOrderService_CheckoutUsesCapturedPrices(t *testing.T) {
	f := setupOrderServiceTest(t)
	variant := f.tc.Variants["diavola:large"]

	_, err := f.carts.AddItem(1, variant.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&model.ProductVariant{}).
		Where("id = ?", variant.ID).
		Update("price", decimal.NewFromInt(250)).Error)

	order, err := f.orders.Checkout(1, checkoutInput())
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(180)))
}

func TestOrderService_CheckoutEmptyCart(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.orders.Checkout(1, checkoutInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCartEmpty)
	assert.Equal(t, apperrors.KindCartEmpty, apperrors.As(err).Kind)
	assert.Zero(t, countOrders(t, f.db))
}

func TestOrderService_CheckoutInvalidPaymentMethod(t *testing.T) {
	f := setupOrderServiceTest(t)
	f.fillCart(t, 1)

	input := checkoutInput()
	input.PaymentMethod = "BITCOIN"
	_, err := f.orders.Checkout(1, input)
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
	assert.Zero(t, countOrders(t, f.db))
}

func TestOrderService_CheckoutIsAtomic(t *testing.T) {
	f := setupOrderServiceTest(t)
	f.fillCart(t, 1)

	simulated := errors.New("simulated failure while clearing cart")
	require.NoError(t, f.db.Callback().Delete().Before("gorm:delete").Register("test:fail_cart_clear", func(tx *gorm.DB) {
		if tx.Statement.Table == "cart_items" {
			tx.AddError(simulated)
		}
	}))

	_, err := f.orders.Checkout(1, checkoutInput())
	require.Error(t, err)

	assert.Zero(t, countOrders(t, f.db))
	var orderItems int64
	require.NoError(t, f.db.Model(&model.OrderItem{}).Count(&orderItems).Error)
	assert.Zero(t, orderItems)

	cart, err := f.carts.GetCart(1)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 3)

	var variant model.ProductVariant
	require.NoError(t, f.db.First(&variant, f.tc.Variants["margherita:small"].ID).Error)
	assert.Equal(t, 100, variant.Stock)
}

func TestOrderService_CheckoutInsufficientStock(t *testing.T) {
	f := setupOrderServiceTest(t)
	f.fillCart(t, 1)

	require.NoError(t, f.db.Model(&model.ProductVariant{}).
		Where("id = ?", f.tc.Variants["vegan-garden:medium"].ID).
		Update("stock", 0).Error)

	_, err := f.orders.Checkout(1, checkoutInput())
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Zero(t, countOrders(t, f.db))

	cart, err := f.carts.GetCart(1)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 3)

	var variant model.ProductVariant
	require.NoError(t, f.db.First(&variant, f.tc.Variants["margherita:small"].ID).Error)
	assert.Equal(t, 100, variant.Stock)
}

func TestOrderService_CheckoutRejectsDelistedProduct(t *testing.T) {
	f := setupOrderServiceTest(t)
	f.fillCart(t, 1)

	require.NoError(t, f.db.Delete(&model.Product{}, f.tc.Products["margherita"].ID).Error)

	_, err := f.orders.Checkout(1, checkoutInput())
	assert.ErrorIs(t, err, ErrProductVariantNotFound)
	assert.Zero(t, countOrders(t, f.db))

	var orderItems int64
	require.NoError(t, f.db.Model(&model.OrderItem{}).Count(&orderItems).Error)
	assert.Zero(t, orderItems)

	cart, err := f.carts.GetCart(1)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 3)

	var variant model.ProductVariant
	require.NoError(t, f.db.First(&variant, f.tc.Variants["diavola:large"].ID).Error)
	assert.Equal(t, 100, variant.Stock)
}

func TestOrderService_OrderSurvivesCatalogChanges(t *testing.T) {
	f := setupOrderServiceTest(t)
	f.fillCart(t, 1)

	order, err := f.orders.Checkout(1, checkoutInput())
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&model.Product{}).
		Where("id = ?", f.tc.Products["margherita"].ID).
		Update("name", "Margherita Deluxe").Error)
	require.NoError(t, f.db.Model(&model.ProductVariant{}).
		Where("id = ?", f.tc.Variants["margherita:small"].ID).
		Update("price", decimal.NewFromInt(1)).Error)
	require.NoError(t, f.db.Delete(&model.Product{}, f.tc.Products["diavola"].ID).Error)

	reloaded, err := f.orders.GetOrder(1, order.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.OrderItems, 3)
	assert.Equal(t, "Margherita", reloaded.OrderItems[0].ProductName)
	assert.True(t, reloaded.OrderItems[0].UnitPrice.Equal(decimal.NewFromInt(90)))
	assert.Equal(t, "Diavola", reloaded.OrderItems[1].ProductName)
	assert.True(t, reloaded.Total.Equal(order.Total))
}

func TestOrderService_GetOrderOwnership(t *testing.T) {
	f := setupOrderServiceTest(t)
	f.fillCart(t, 1)

	order, err := f.orders.Checkout(1, checkoutInput())
	require.NoError(t, err)

	_, err = f.orders.GetOrder(2, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = f.orders.GetOrder(1, 99999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_GetUserOrders(t *testing.T) {
	f := setupOrderServiceTest(t)

	var ids []uint
	for i := 0; i < 3; i++ {
		_, err := f.carts.AddItem(1, f.tc.Variants["inferno:medium"].ID, 1)
		require.NoError(t, err)
		order, err := f.orders.Checkout(1, checkoutInput())
		require.NoError(t, err)
		ids = append(ids, order.ID)
	}

	orders, total, err := f.orders.GetUserOrders(1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, orders, 2)
	assert.Equal(t, ids[2], orders[0].ID)

	orders, _, err = f.orders.GetUserOrders(1, 2, 2)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, ids[0], orders[0].ID)

	orders, total, err = f.orders.GetUserOrders(2, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)

	_, _, err = f.orders.GetUserOrders(1, 0, 10)
	assert.Error(t, err)
}
