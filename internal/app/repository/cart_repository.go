package repository

import (
	"time"

	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	GetOrCreateCart(userID uint) (*model.Cart, error)
	FindItems(cartID uint) ([]model.CartItem, error)
	UpsertItem(cartID, variantID uint, quantity int, unitPrice decimal.Decimal) error
	FindItemForUser(userID, itemID uint) (*model.CartItem, error)
	UpdateItem(itemID uint, quantity int, unitPrice decimal.Decimal) error
	DeleteItemForUser(userID, itemID uint) error
	Clear(cartID uint) error
	WithTx(tx *gorm.DB) CartRepository
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepository{db: tx}
}

// GetOrCreateCart returns the user's cart, creating it on first access.
// Concurrent first accesses converge on the single row allowed by the
// unique index on user_id.
func (r *cartRepository) GetOrCreateCart(userID uint) (*model.Cart, error) {
	logger.Debug("Getting or creating cart in database", map[string]interface{}{
		"user_id": userID,
	})

	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&model.Cart{UserID: userID}).Error; err != nil {
		logger.Error("Failed to create cart in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	var cart model.Cart
	if err := r.db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		logger.Error("Failed to find cart in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) itemsWithDisplay() *gorm.DB {
	return r.db.
		Preload("ProductVariant").
		Preload("ProductVariant.Product").
		Preload("ProductVariant.DoughType").
		Preload("ProductVariant.SizeOption")
}

func (r *cartRepository) FindItems(cartID uint) ([]model.CartItem, error) {
	logger.Debug("Finding cart items in database", map[string]interface{}{
		"cart_id": cartID,
	})

	var items []model.CartItem
	err := r.itemsWithDisplay().
		Where("cart_id = ?", cartID).
		Order("cart_items.id ASC").
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to find cart items in database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return nil, err
	}

	logger.Debug("Cart items found in database", map[string]interface{}{
		"cart_id": cartID,
		"count":   len(items),
	})
	return items, nil
}

// UpsertItem inserts a line or, when the (cart, variant) line already exists,
// adds quantity to it and refreshes the captured unit price in one statement.
func (r *cartRepository) UpsertItem(cartID, variantID uint, quantity int, unitPrice decimal.Decimal) error {
	logger.Debug("Upserting cart item in database", map[string]interface{}{
		"cart_id":            cartID,
		"product_variant_id": variantID,
		"quantity":           quantity,
	})

	item := model.CartItem{
		CartID:           cartID,
		ProductVariantID: variantID,
		Quantity:         quantity,
		UnitPrice:        unitPrice,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_variant_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"unit_price": gorm.Expr("excluded.unit_price"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Create(&item).Error
	if err != nil {
		logger.Error("Failed to upsert cart item in database", err, map[string]interface{}{
			"cart_id":            cartID,
			"product_variant_id": variantID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) ownedCartIDs(userID uint) *gorm.DB {
	return r.db.Model(&model.Cart{}).Select("id").Where("user_id = ?", userID)
}

// FindItemForUser looks the item up only inside the user's own cart.
func (r *cartRepository) FindItemForUser(userID, itemID uint) (*model.CartItem, error) {
	logger.Debug("Finding cart item for user in database", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": itemID,
	})

	var item model.CartItem
	err := r.itemsWithDisplay().
		Where("cart_items.id = ? AND cart_items.cart_id IN (?)", itemID, r.ownedCartIDs(userID)).
		First(&item).Error
	if err != nil {
		logger.Error("Failed to find cart item for user in database", err, map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": itemID,
		})
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) UpdateItem(itemID uint, quantity int, unitPrice decimal.Decimal) error {
	logger.Debug("Updating cart item in database", map[string]interface{}{
		"cart_item_id": itemID,
		"quantity":     quantity,
	})

	result := r.db.Model(&model.CartItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"unit_price": unitPrice,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		logger.Error("Failed to update cart item in database", result.Error, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *cartRepository) DeleteItemForUser(userID, itemID uint) error {
	logger.Debug("Deleting cart item for user in database", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": itemID,
	})

	result := r.db.
		Where("id = ? AND cart_id IN (?)", itemID, r.ownedCartIDs(userID)).
		Delete(&model.CartItem{})
	if result.Error != nil {
		logger.Error("Failed to delete cart item in database", result.Error, map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": itemID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *cartRepository) Clear(cartID uint) error {
	logger.Debug("Clearing cart in database", map[string]interface{}{
		"cart_id": cartID,
	})

	if err := r.db.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to clear cart in database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return err
	}
	return nil
}
