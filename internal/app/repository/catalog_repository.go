package repository

import (
	"context"
	"fmt"

	"github.com/ikkim/catalog-backend/internal/app/filter"
	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FacetCount is one taxonomy entry with the number of matching products linked to it.
type FacetCount struct {
	ID    uint    `gorm:"column:id"`
	Key   string  `gorm:"column:facet_key"`
	Label *string `gorm:"column:facet_label"`
	Count int64   `gorm:"column:product_count"`
}

// PriceRange is the effective price span of the matching products.
// Both ends are invalid when nothing matches.
type PriceRange struct {
	Min decimal.NullDecimal `gorm:"column:min_price"`
	Max decimal.NullDecimal `gorm:"column:max_price"`
}

type CatalogRepository interface {
	CountProducts(ctx context.Context, p filter.Predicate) (int64, error)
	FindProducts(ctx context.Context, p filter.Predicate, sort filter.SortField, order filter.SortOrder, offset, limit int) ([]model.Product, error)
	CountByAxis(ctx context.Context, p filter.Predicate, axis filter.Axis) ([]FacetCount, error)
	PriceRange(ctx context.Context, p filter.Predicate) (PriceRange, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) products(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Product{})
}

func (r *catalogRepository) CountProducts(ctx context.Context, p filter.Predicate) (int64, error) {
	logger.Debug("Counting products for predicate", map[string]interface{}{
		"predicate": p.String(),
	})

	var total int64
	if err := applyPredicate(r.products(ctx), p).Count(&total).Error; err != nil {
		logger.Error("Failed to count products", err, map[string]interface{}{
			"predicate": p.String(),
		})
		return 0, err
	}
	return total, nil
}

func (r *catalogRepository) FindProducts(ctx context.Context, p filter.Predicate, sort filter.SortField, order filter.SortOrder, offset, limit int) ([]model.Product, error) {
	logger.Debug("Finding products page", map[string]interface{}{
		"predicate": p.String(),
		"sort":      sort,
		"order":     order,
		"offset":    offset,
		"limit":     limit,
	})

	query := applyPredicate(r.products(ctx), p).
		Preload("Category").
		Preload("Flags", func(db *gorm.DB) *gorm.DB {
			return db.Order("flags.key ASC")
		}).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("ingredients.key ASC")
		}).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_variants.price ASC").Order("product_variants.id ASC")
		}).
		Preload("Variants.DoughType").
		Preload("Variants.SizeOption")

	var products []model.Product
	if err := applySort(query, sort, order).Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		logger.Error("Failed to find products page", err, map[string]interface{}{
			"predicate": p.String(),
		})
		return nil, err
	}
	return products, nil
}

// CountByAxis groups the link table by taxonomy entry, restricted to products
// matching p. Entries without a matching product never appear.
func (r *catalogRepository) CountByAxis(ctx context.Context, p filter.Predicate, axis filter.Axis) ([]FacetCount, error) {
	t, ok := axes[axis]
	if !ok {
		return nil, fmt.Errorf("unknown facet axis %q", axis)
	}

	matching := applyPredicate(r.products(ctx).Select("products.id"), p)
	countExpr := fmt.Sprintf("COUNT(DISTINCT %s.product_id)", t.link)

	var rows []FacetCount
	err := r.db.WithContext(ctx).
		Table(t.link).
		Select(fmt.Sprintf("%[1]s.id AS id, %[1]s.key AS facet_key, %[1]s.label AS facet_label, %[2]s AS product_count", t.entity, countExpr)).
		Joins(fmt.Sprintf("JOIN %[1]s ON %[1]s.id = %[2]s.%[3]s", t.entity, t.link, t.linkColumn)).
		Where(t.link+".product_id IN (?)", matching).
		Group(fmt.Sprintf("%[1]s.id, %[1]s.key, %[1]s.label", t.entity)).
		Having(countExpr + " > 0").
		Order(t.entity + ".key ASC").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to aggregate facet counts", err, map[string]interface{}{
			"axis":      axis,
			"predicate": p.String(),
		})
		return nil, err
	}

	logger.Debug("Facet counts aggregated", map[string]interface{}{
		"axis":   axis,
		"values": len(rows),
	})
	return rows, nil
}

func (r *catalogRepository) PriceRange(ctx context.Context, p filter.Predicate) (PriceRange, error) {
	var pr PriceRange
	err := applyPredicate(r.products(ctx), p).
		Select("MIN(COALESCE(products.min_price, products.price)) AS min_price, MAX(COALESCE(products.max_price, products.price)) AS max_price").
		Scan(&pr).Error
	if err != nil {
		logger.Error("Failed to aggregate price range", err, map[string]interface{}{
			"predicate": p.String(),
		})
		return PriceRange{}, err
	}
	return pr, nil
}
