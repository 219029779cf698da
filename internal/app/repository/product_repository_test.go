package repository

import (
	"testing"

	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductTest(t *testing.T) (*gorm.DB, ProductRepository, *db.TestCatalog) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	tc, err := db.SeedTestCatalog(testDB)
	require.NoError(t, err)

	return testDB, NewProductRepository(testDB), tc
}

func TestProductRepository_FindByID(t *testing.T) {
	testDB, repo, tc := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	product, err := repo.FindByID(tc.Products["diavola"].ID)
	require.NoError(t, err)
	assert.Equal(t, "Diavola", product.Name)
	assert.Equal(t, "pizza", product.Category.Slug)
	assert.Len(t, product.Variants, 2)
	assert.Len(t, product.Flags, 1)
	assert.True(t, product.DisplayPrice().Equal(decimal.NewFromInt(180)))

	_, err = repo.FindByID(99999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepository_FindVariantByID(t *testing.T) {
	testDB, repo, tc := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	variant, err := repo.FindVariantByID(tc.Variants["margherita:large"].ID)
	require.NoError(t, err)
	require.NotNil(t, variant.Product)
	assert.Equal(t, "Margherita", variant.Product.Name)
	assert.Equal(t, "Large (35cm) Thin", variant.Label())

	_, err = repo.FindVariantByID(99999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepository_FindVariantOfDeletedProduct(t *testing.T) {
	testDB, repo, tc := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, testDB.Delete(&model.Product{}, tc.Products["inferno"].ID).Error)

	_, err := repo.FindVariantByID(tc.Variants["inferno:medium"].ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepository_RefreshPriceRanges(t *testing.T) {
	testDB, repo, tc := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, testDB.Model(&model.ProductVariant{}).
		Where("id = ?", tc.Variants["diavola:large"].ID).
		Update("price", decimal.NewFromInt(200)).Error)

	rows, err := repo.RefreshPriceRanges()
	require.NoError(t, err)
	assert.Equal(t, int64(5), rows)

	product, err := repo.FindByID(tc.Products["diavola"].ID)
	require.NoError(t, err)
	require.True(t, product.MaxPrice.Valid)
	assert.True(t, product.MaxPrice.Decimal.Equal(decimal.NewFromInt(200)))
	assert.True(t, product.MinPrice.Decimal.Equal(decimal.NewFromInt(110)))

	drink, err := repo.FindByID(tc.Products["lemonade"].ID)
	require.NoError(t, err)
	assert.False(t, drink.MinPrice.Valid)
	assert.True(t, drink.DisplayPrice().Equal(decimal.NewFromInt(15)))
}

func TestProductRepository_SingleDefaultVariant(t *testing.T) {
	testDB, _, tc := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	second := &model.ProductVariant{
		ProductID: tc.Products["margherita"].ID,
		Price:     decimal.NewFromInt(120),
		IsDefault: true,
	}
	assert.Error(t, testDB.Create(second).Error)
}

func TestProductRepository_EnsureIsIdempotent(t *testing.T) {
	testDB, repo, tc := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	category, err := repo.EnsureCategory("pizza", "Pizza")
	require.NoError(t, err)
	assert.Equal(t, tc.Categories["pizza"].ID, category.ID)

	created, err := repo.EnsureCategory("desserts", "Desserts")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	flag, err := repo.EnsureFlag("spicy")
	require.NoError(t, err)
	assert.Equal(t, tc.Flags["spicy"].ID, flag.ID)

	ingredient, err := repo.EnsureIngredient("olives")
	require.NoError(t, err)
	assert.NotZero(t, ingredient.ID)

	dough, err := repo.EnsureDoughType("thin")
	require.NoError(t, err)
	assert.Equal(t, tc.Doughs["thin"].ID, dough.ID)

	size, err := repo.EnsureSizeOption("xl")
	require.NoError(t, err)
	assert.NotZero(t, size.ID)
}

func TestProductRepository_ReservedCategorySlug(t *testing.T) {
	testDB, repo, _ := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	_, err := repo.EnsureCategory(model.ReservedCategorySlug, "All")
	assert.ErrorIs(t, err, model.ErrReservedCategorySlug)
}
