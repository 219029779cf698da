package service

import (
	"testing"

	"github.com/ikkim/catalog-backend/internal/app/repository"
	"github.com/ikkim/catalog-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_GetProductByID(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	tc, err := db.SeedTestCatalog(testDB)
	require.NoError(t, err)

	svc := NewProductService(repository.NewProductRepository(testDB))

	product, err := svc.GetProductByID(tc.Products["margherita"].ID)
	require.NoError(t, err)
	assert.Equal(t, "Margherita", product.Name)
	assert.Len(t, product.Variants, 2)
	assert.Equal(t, "pizza", product.Category.Slug)

	_, err = svc.GetProductByID(99999)
	assert.ErrorIs(t, err, ErrProductNotFound)

	require.NoError(t, testDB.Delete(tc.Products["margherita"]).Error)
	_, err = svc.GetProductByID(tc.Products["margherita"].ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
