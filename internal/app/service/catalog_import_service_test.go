package service

import (
	"context"
	"testing"

	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/internal/app/repository"
	"github.com/ikkim/catalog-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newCatalogWorkbook(t *testing.T, rows [][]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })

	sheet := f.GetSheetName(0)
	header := make([]interface{}, len(catalogColumns))
	for i, c := range catalogColumns {
		header[i] = c
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &r))
	}
	return f
}

// columns follow catalogColumns
var sampleCatalogRows = [][]interface{}{
	{"pizza", "Pizza", "Capricciosa", "Ham and mushrooms", "", "120", "", "mozzarella, ham, mushrooms", "yes", "30", "2026-01-15", "classic", "small", "120", "10", "y"},
	{"pizza", "Pizza", "Capricciosa", "", "", "120", "", "", "", "", "", "classic", "large", "190", "5", ""},
	{"pizza", "Pizza", "Quattro Formaggi", "Four cheeses", "", "140", "vegetarian", "mozzarella, gorgonzola", "", "12", "2026-02-01", "thin", "medium", "140", "8", "y"},
	{"drinks", "Drinks", "Espresso", "", "", "25", "vegan", "", "", "", "", "", "", "", "", ""},
}

func TestReadCatalogSheet(t *testing.T) {
	f := newCatalogWorkbook(t, sampleCatalogRows)

	rows, err := ReadCatalogSheet(f)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	first := rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "pizza", first.CategorySlug)
	assert.Equal(t, "Capricciosa", first.Product)
	assert.Equal(t, []string{"mozzarella", "ham", "mushrooms"}, first.Ingredients)
	assert.True(t, first.IsCustomizable)
	assert.True(t, first.IsDefault)
	assert.Equal(t, 30, first.Popularity)
	assert.Equal(t, 2026, first.ReleasedAt.Year())
	require.True(t, first.VariantPrice.Valid)
	assert.True(t, first.VariantPrice.Decimal.Equal(decimal.NewFromInt(120)))

	assert.False(t, rows[3].VariantPrice.Valid)
	assert.Equal(t, []string{"vegan"}, rows[3].Flags)
}

func TestReadCatalogSheet_InvalidValues(t *testing.T) {
	f := newCatalogWorkbook(t, [][]interface{}{
		{"pizza", "Pizza", "Broken", "", "", "abc"},
	})
	_, err := ReadCatalogSheet(f)
	assert.ErrorContains(t, err, "line 2")

	f = newCatalogWorkbook(t, [][]interface{}{
		{"pizza", "Pizza", "Broken", "", "", "10", "", "", "", "", "", "", "", "-5"},
	})
	_, err = ReadCatalogSheet(f)
	assert.ErrorContains(t, err, "negative")
}

func TestReadCatalogSheet_MissingColumns(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"name", "price"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"x", "1"}))

	_, err := ReadCatalogSheet(f)
	assert.ErrorContains(t, err, "missing required column")
}

func TestCatalogImportService_Import(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	facetCache := newMemCache()
	svc := NewCatalogImportService(repository.NewProductRepository(testDB), testDB, facetCache)

	rows, err := ReadCatalogSheet(newCatalogWorkbook(t, sampleCatalogRows))
	require.NoError(t, err)

	result, err := svc.Import(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Categories)
	assert.Equal(t, 3, result.Products)
	assert.Equal(t, 3, result.Variants)
	assert.Zero(t, result.Skipped)
	assert.Equal(t, int64(1), facetCache.versions[FacetNamespace])

	var capricciosa model.Product
	require.NoError(t, testDB.Preload("Variants").Preload("Ingredients").
		Where("name = ?", "Capricciosa").First(&capricciosa).Error)
	assert.Len(t, capricciosa.Variants, 2)
	assert.Len(t, capricciosa.Ingredients, 3)
	assert.True(t, capricciosa.MinPrice.Decimal.Equal(decimal.NewFromInt(120)))
	assert.True(t, capricciosa.MaxPrice.Decimal.Equal(decimal.NewFromInt(190)))

	var espresso model.Product
	require.NoError(t, testDB.Where("name = ?", "Espresso").First(&espresso).Error)
	assert.False(t, espresso.MinPrice.Valid)

	// re-importing the same sheet skips existing products
	again, err := svc.Import(context.Background(), rows)
	require.NoError(t, err)
	assert.Zero(t, again.Products)
	assert.Equal(t, 3, again.Skipped)
	assert.Equal(t, int64(2), facetCache.versions[FacetNamespace])
}

func TestCatalogImportService_ReservedCategoryRollsBack(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	facetCache := newMemCache()
	svc := NewCatalogImportService(repository.NewProductRepository(testDB), testDB, facetCache)

	rows, err := ReadCatalogSheet(newCatalogWorkbook(t, [][]interface{}{
		sampleCatalogRows[0],
		{"toate", "All", "Nope", "", "", "10"},
	}))
	require.NoError(t, err)

	_, err = svc.Import(context.Background(), rows)
	assert.ErrorIs(t, err, model.ErrReservedCategorySlug)
	assert.Zero(t, facetCache.versions[FacetNamespace])

	var count int64
	require.NoError(t, testDB.Model(&model.Product{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, testDB.Model(&model.Category{}).Count(&count).Error)
	assert.Zero(t, count)
}
