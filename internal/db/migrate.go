package db

import (
	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Category{},
		&model.Flag{},
		&model.Ingredient{},
		&model.DoughType{},
		&model.SizeOption{},
		&model.Product{},
		&model.ProductVariant{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB migrates the given handle and seeds the base vocabulary.
func MigrateDB(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedVocabulary(db); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

func label(s string) *string {
	return &s
}

// seedVocabulary 기본 도우/사이즈 항목 생성 (비어 있을 때만)
func seedVocabulary(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.DoughType{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		doughs := []model.DoughType{
			{Key: "classic", Label: label("Classic")},
			{Key: "thin", Label: label("Thin")},
			{Key: "pan", Label: label("Pan")},
		}
		if err := db.Create(&doughs).Error; err != nil {
			return err
		}
		logger.Info("Seeded dough types", map[string]interface{}{"count": len(doughs)})
	}

	if err := db.Model(&model.SizeOption{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		sizes := []model.SizeOption{
			{Key: "small", Label: label("Small (25cm)")},
			{Key: "medium", Label: label("Medium (30cm)")},
			{Key: "large", Label: label("Large (35cm)")},
		}
		if err := db.Create(&sizes).Error; err != nil {
			return err
		}
		logger.Info("Seeded size options", map[string]interface{}{"count": len(sizes)})
	}
	return nil
}
