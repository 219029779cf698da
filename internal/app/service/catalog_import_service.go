package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/internal/app/repository"
	"github.com/ikkim/catalog-backend/pkg/cache"
	"github.com/ikkim/catalog-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// 시트 헤더 (순서 무관, 이름으로 매칭)
var catalogColumns = []string{
	"category_slug", "category_name", "product", "description", "image_url", "base_price",
	"flags", "ingredients", "customizable", "popularity", "released_at",
	"dough", "size", "variant_price", "stock", "is_default",
}

// CatalogRow is one sheet row. Rows sharing category and product name form
// one product; rows without a variant price describe a product with no variants.
type CatalogRow struct {
	Line           int
	CategorySlug   string
	CategoryName   string
	Product        string
	Description    string
	ImageURL       string
	BasePrice      decimal.Decimal
	Flags          []string
	Ingredients    []string
	IsCustomizable bool
	Popularity     int
	ReleasedAt     time.Time
	Dough          string
	Size           string
	VariantPrice   decimal.NullDecimal
	Stock          int
	IsDefault      bool
}

type ImportResult struct {
	Categories int
	Products   int
	Variants   int
	Skipped    int
}

type CatalogImportService interface {
	Import(ctx context.Context, rows []CatalogRow) (*ImportResult, error)
}

type catalogImportService struct {
	productRepo repository.ProductRepository
	db          *gorm.DB
	facetCache  cache.Cache
}

func NewCatalogImportService(productRepo repository.ProductRepository, db *gorm.DB, facetCache cache.Cache) CatalogImportService {
	if facetCache == nil {
		facetCache = cache.Nop{}
	}
	return &catalogImportService{productRepo: productRepo, db: db, facetCache: facetCache}
}

// ReadCatalogSheet parses the first sheet of f. The first row must be the header.
func ReadCatalogSheet(f *excelize.File) ([]CatalogRow, error) {
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data found in sheet %q", sheetName)
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"category_slug", "product", "base_price"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var out []CatalogRow
	for i, raw := range rows[1:] {
		line := i + 2
		cell := func(name string) string {
			j, ok := index[name]
			if !ok || j >= len(raw) {
				return ""
			}
			return strings.TrimSpace(raw[j])
		}

		if cell("product") == "" {
			continue
		}
		row, err := parseCatalogRow(line, cell)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func parseCatalogRow(line int, cell func(string) string) (CatalogRow, error) {
	row := CatalogRow{
		Line:         line,
		CategorySlug: strings.ToLower(cell("category_slug")),
		CategoryName: cell("category_name"),
		Product:      cell("product"),
		Description:  cell("description"),
		ImageURL:     cell("image_url"),
		Flags:        splitKeys(cell("flags")),
		Ingredients:  splitKeys(cell("ingredients")),
		Dough:        strings.ToLower(cell("dough")),
		Size:         strings.ToLower(cell("size")),
	}
	if row.CategoryName == "" {
		row.CategoryName = row.CategorySlug
	}

	var err error
	if row.BasePrice, err = decimal.NewFromString(cell("base_price")); err != nil {
		return row, fmt.Errorf("line %d: invalid base_price: %w", line, err)
	}
	if v := cell("variant_price"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			return row, fmt.Errorf("line %d: invalid variant_price: %w", line, err)
		}
		row.VariantPrice = decimal.NewNullDecimal(price)
	}
	if row.BasePrice.IsNegative() || (row.VariantPrice.Valid && row.VariantPrice.Decimal.IsNegative()) {
		return row, fmt.Errorf("line %d: prices must not be negative", line)
	}
	if v := cell("stock"); v != "" {
		if row.Stock, err = strconv.Atoi(v); err != nil {
			return row, fmt.Errorf("line %d: invalid stock: %w", line, err)
		}
	}
	if v := cell("popularity"); v != "" {
		if row.Popularity, err = strconv.Atoi(v); err != nil {
			return row, fmt.Errorf("line %d: invalid popularity: %w", line, err)
		}
	}
	row.IsCustomizable = truthy(cell("customizable"))
	row.IsDefault = truthy(cell("is_default"))

	row.ReleasedAt = time.Now().UTC()
	if v := cell("released_at"); v != "" {
		if row.ReleasedAt, err = time.Parse("2006-01-02", v); err != nil {
			return row, fmt.Errorf("line %d: invalid released_at (want YYYY-MM-DD): %w", line, err)
		}
	}
	return row, nil
}

func splitKeys(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if k := strings.ToLower(strings.TrimSpace(part)); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func truthy(s string) bool {
	switch strings.ToLower(s) {
	case "1", "y", "yes", "true", "x":
		return true
	}
	return false
}

// Import creates missing categories, taxonomy entries and products in one
// transaction, then refreshes cached price ranges and invalidates cached
// facets. Products that already exist in their category are skipped.
func (s *catalogImportService) Import(ctx context.Context, rows []CatalogRow) (*ImportResult, error) {
	logger.Info("Importing catalog rows", map[string]interface{}{
		"rows": len(rows),
	})

	result := &ImportResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.productRepo.WithTx(tx)

		categories := map[string]*model.Category{}
		products := map[string]*model.Product{}
		var order []string

		for _, row := range rows {
			category, ok := categories[row.CategorySlug]
			if !ok {
				c, err := repo.EnsureCategory(row.CategorySlug, row.CategoryName)
				if err != nil {
					return fmt.Errorf("line %d: category %q: %w", row.Line, row.CategorySlug, err)
				}
				category = c
				categories[row.CategorySlug] = c
			}

			key := row.CategorySlug + "|" + strings.ToLower(row.Product)
			product, ok := products[key]
			if !ok {
				product = &model.Product{
					Name:           row.Product,
					Description:    row.Description,
					Price:          row.BasePrice,
					ImageURL:       row.ImageURL,
					Popularity:     row.Popularity,
					IsCustomizable: row.IsCustomizable,
					ReleasedAt:     row.ReleasedAt,
					CategoryID:     category.ID,
				}
				for _, k := range row.Flags {
					flag, err := repo.EnsureFlag(k)
					if err != nil {
						return fmt.Errorf("line %d: flag %q: %w", row.Line, k, err)
					}
					product.Flags = append(product.Flags, *flag)
				}
				for _, k := range row.Ingredients {
					ingredient, err := repo.EnsureIngredient(k)
					if err != nil {
						return fmt.Errorf("line %d: ingredient %q: %w", row.Line, k, err)
					}
					product.Ingredients = append(product.Ingredients, *ingredient)
				}
				products[key] = product
				order = append(order, key)
			}

			if !row.VariantPrice.Valid {
				continue
			}
			variant := model.ProductVariant{
				Price:     row.VariantPrice.Decimal,
				Stock:     row.Stock,
				IsDefault: row.IsDefault,
			}
			if row.Dough != "" {
				dough, err := repo.EnsureDoughType(row.Dough)
				if err != nil {
					return fmt.Errorf("line %d: dough %q: %w", row.Line, row.Dough, err)
				}
				variant.DoughTypeID = &dough.ID
			}
			if row.Size != "" {
				size, err := repo.EnsureSizeOption(row.Size)
				if err != nil {
					return fmt.Errorf("line %d: size %q: %w", row.Line, row.Size, err)
				}
				variant.SizeOptionID = &size.ID
			}
			product.Variants = append(product.Variants, variant)
		}
		result.Categories = len(categories)

		for _, key := range order {
			product := products[key]
			exists, err := repo.ExistsByName(product.CategoryID, product.Name)
			if err != nil {
				return err
			}
			if exists {
				result.Skipped++
				continue
			}
			normalizeDefaults(product)
			if err := repo.Create(product); err != nil {
				return fmt.Errorf("product %q: %w", product.Name, err)
			}
			result.Products++
			result.Variants += len(product.Variants)
		}

		_, err := repo.RefreshPriceRanges()
		return err
	})
	if err != nil {
		logger.Error("Catalog import failed", err)
		return nil, err
	}

	if _, err := s.facetCache.BumpVersion(ctx, FacetNamespace); err != nil {
		// 캐시 엔트리는 TTL 만료로 정리됨
		logger.Warn("Failed to invalidate facet cache after import", map[string]interface{}{
			"error": err.Error(),
		})
	}

	logger.Info("Catalog import completed", map[string]interface{}{
		"categories": result.Categories,
		"products":   result.Products,
		"variants":   result.Variants,
		"skipped":    result.Skipped,
	})
	return result, nil
}

// normalizeDefaults keeps at most one default variant, the first one marked.
func normalizeDefaults(p *model.Product) {
	seen := false
	for i := range p.Variants {
		if p.Variants[i].IsDefault {
			if seen {
				p.Variants[i].IsDefault = false
			}
			seen = true
		}
	}
}
