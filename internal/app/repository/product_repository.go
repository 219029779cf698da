package repository

import (
	"strings"

	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id uint) (*model.Product, error)
	FindVariantByID(id uint) (*model.ProductVariant, error)
	ExistsByName(categoryID uint, name string) (bool, error)
	RefreshPriceRanges() (int64, error)

	EnsureCategory(slug, name string) (*model.Category, error)
	EnsureFlag(key string) (*model.Flag, error)
	EnsureIngredient(key string) (*model.Ingredient, error)
	EnsureDoughType(key string) (*model.DoughType, error)
	EnsureSizeOption(key string) (*model.SizeOption, error)
	WithTx(tx *gorm.DB) ProductRepository
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepository{db: tx}
}

// Create inserts a product together with its variants and taxonomy links.
func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":        product.Name,
		"category_id": product.CategoryID,
		"variants":    len(product.Variants),
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name":        product.Name,
			"category_id": product.CategoryID,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.
		Preload("Category").
		Preload("Flags").
		Preload("Ingredients").
		Preload("Variants.DoughType").
		Preload("Variants.SizeOption").
		First(&product, id).Error
	if err != nil {
		logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return &product, nil
}

// FindVariantByID loads a variant with the product and labels needed for
// cart display and order snapshots. Variants of soft-deleted products are
// reported as not found.
func (r *productRepository) FindVariantByID(id uint) (*model.ProductVariant, error) {
	logger.Debug("Finding product variant by ID in database", map[string]interface{}{
		"product_variant_id": id,
	})

	var variant model.ProductVariant
	err := r.db.
		Joins("JOIN products ON products.id = product_variants.product_id AND products.deleted_at IS NULL").
		Preload("Product").
		Preload("DoughType").
		Preload("SizeOption").
		First(&variant, "product_variants.id = ?", id).Error
	if err != nil {
		logger.Error("Failed to find product variant in database", err, map[string]interface{}{
			"product_variant_id": id,
		})
		return nil, err
	}
	return &variant, nil
}

func (r *productRepository) ExistsByName(categoryID uint, name string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Product{}).
		Where("category_id = ? AND LOWER(name) = ?", categoryID, strings.ToLower(name)).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check product name in database", err, map[string]interface{}{
			"category_id": categoryID,
			"name":        name,
		})
		return false, err
	}
	return count > 0, nil
}

// RefreshPriceRanges recomputes cached min/max prices from variants.
// Products without variants get NULL and fall back to their base price.
func (r *productRepository) RefreshPriceRanges() (int64, error) {
	logger.Debug("Refreshing cached product price ranges", nil)

	result := r.db.Exec(`
UPDATE products SET
	min_price = (SELECT MIN(product_variants.price) FROM product_variants WHERE product_variants.product_id = products.id),
	max_price = (SELECT MAX(product_variants.price) FROM product_variants WHERE product_variants.product_id = products.id)
WHERE products.deleted_at IS NULL`)
	if result.Error != nil {
		logger.Error("Failed to refresh product price ranges", result.Error)
		return 0, result.Error
	}

	logger.Debug("Product price ranges refreshed", map[string]interface{}{
		"rows_affected": result.RowsAffected,
	})
	return result.RowsAffected, nil
}

func (r *productRepository) EnsureCategory(slug, name string) (*model.Category, error) {
	category := model.Category{}
	err := r.db.Where(model.Category{Slug: slug}).
		Attrs(model.Category{Name: name}).
		FirstOrCreate(&category).Error
	if err != nil {
		logger.Error("Failed to ensure category", err, map[string]interface{}{"slug": slug})
		return nil, err
	}
	return &category, nil
}

func (r *productRepository) EnsureFlag(key string) (*model.Flag, error) {
	flag := model.Flag{}
	if err := r.db.Where(model.Flag{Key: key}).FirstOrCreate(&flag).Error; err != nil {
		logger.Error("Failed to ensure flag", err, map[string]interface{}{"key": key})
		return nil, err
	}
	return &flag, nil
}

func (r *productRepository) EnsureIngredient(key string) (*model.Ingredient, error) {
	ingredient := model.Ingredient{}
	if err := r.db.Where(model.Ingredient{Key: key}).FirstOrCreate(&ingredient).Error; err != nil {
		logger.Error("Failed to ensure ingredient", err, map[string]interface{}{"key": key})
		return nil, err
	}
	return &ingredient, nil
}

func (r *productRepository) EnsureDoughType(key string) (*model.DoughType, error) {
	dough := model.DoughType{}
	if err := r.db.Where(model.DoughType{Key: key}).FirstOrCreate(&dough).Error; err != nil {
		logger.Error("Failed to ensure dough type", err, map[string]interface{}{"key": key})
		return nil, err
	}
	return &dough, nil
}

func (r *productRepository) EnsureSizeOption(key string) (*model.SizeOption, error) {
	size := model.SizeOption{}
	if err := r.db.Where(model.SizeOption{Key: key}).FirstOrCreate(&size).Error; err != nil {
		logger.Error("Failed to ensure size option", err, map[string]interface{}{"key": key})
		return nil, err
	}
	return &size, nil
}
