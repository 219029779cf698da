package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TestCatalog indexes the rows created by SeedTestCatalog.
type TestCatalog struct {
	Categories  map[string]*model.Category
	Flags       map[string]*model.Flag
	Ingredients map[string]*model.Ingredient
	Doughs      map[string]*model.DoughType
	Sizes       map[string]*model.SizeOption
	Products    map[string]*model.Product
	// Variants is keyed "<product>:<size>", e.g. "diavola:large".
	Variants map[string]*model.ProductVariant
}

type fixtureVariant struct {
	size, dough string
	price       string
	isDefault   bool
}

type fixtureProduct struct {
	key          string
	name         string
	description  string
	category     string
	basePrice    string
	flags        []string
	ingredients  []string
	variants     []fixtureVariant
	customizable bool
	popularity   int
	rating       float64
	releasedDays int
}

var fixtureProducts = []fixtureProduct{
	{
		key: "margherita", name: "Margherita", description: "Tomato, mozzarella and fresh basil",
		category: "pizza", basePrice: "90", flags: []string{"vegetarian"},
		ingredients: []string{"mozzarella", "basil", "tomato"},
		variants: []fixtureVariant{
			{size: "small", dough: "classic", price: "90", isDefault: true},
			{size: "large", dough: "thin", price: "150"},
		},
		customizable: true, popularity: 50, rating: 4.5, releasedDays: 60,
	},
	{
		key: "diavola", name: "Diavola", description: "Spicy salami and chili oil",
		category: "pizza", basePrice: "110", flags: []string{"spicy"},
		ingredients: []string{"mozzarella", "pepperoni", "tomato"},
		variants: []fixtureVariant{
			{size: "small", dough: "classic", price: "110"},
			{size: "large", dough: "classic", price: "180", isDefault: true},
		},
		customizable: true, popularity: 80, rating: 4.8, releasedDays: 5,
	},
	{
		key: "inferno", name: "Inferno", description: "Habanero, jalapeno and tomato",
		category: "pizza", basePrice: "130", flags: []string{"spicy", "vegetarian"},
		ingredients: []string{"tomato"},
		variants: []fixtureVariant{
			{size: "medium", dough: "thin", price: "130", isDefault: true},
		},
		popularity: 20, rating: 3.9, releasedDays: 2,
	},
	{
		key: "vegan-garden", name: "Vegan Garden", description: "Roasted vegetables on a pan crust",
		category: "pizza", basePrice: "95", flags: []string{"vegan", "vegetarian"},
		ingredients: []string{"basil", "tomato"},
		variants: []fixtureVariant{
			{size: "medium", dough: "pan", price: "95", isDefault: true},
			{size: "large", dough: "pan", price: "520"},
		},
		popularity: 10, rating: 4.1, releasedDays: 100,
	},
	{
		key: "lemonade", name: "Lemonade", description: "Fresh lemons, mint",
		category: "drinks", basePrice: "15", flags: []string{"vegan"},
		popularity: 90, rating: 4.0, releasedDays: 10,
	},
}

// SeedTestCatalog fills a migrated database with a small pizzeria catalog:
// four pizzas with variants and one drink without any.
func SeedTestCatalog(db *gorm.DB) (*TestCatalog, error) {
	tc := &TestCatalog{
		Categories:  map[string]*model.Category{},
		Flags:       map[string]*model.Flag{},
		Ingredients: map[string]*model.Ingredient{},
		Doughs:      map[string]*model.DoughType{},
		Sizes:       map[string]*model.SizeOption{},
		Products:    map[string]*model.Product{},
		Variants:    map[string]*model.ProductVariant{},
	}

	var doughs []model.DoughType
	if err := db.Find(&doughs).Error; err != nil {
		return nil, err
	}
	for i := range doughs {
		tc.Doughs[doughs[i].Key] = &doughs[i]
	}
	var sizes []model.SizeOption
	if err := db.Find(&sizes).Error; err != nil {
		return nil, err
	}
	for i := range sizes {
		tc.Sizes[sizes[i].Key] = &sizes[i]
	}

	now := time.Now().UTC()
	for _, fp := range fixtureProducts {
		category, ok := tc.Categories[fp.category]
		if !ok {
			category = &model.Category{Slug: fp.category, Name: strings.ToUpper(fp.category[:1]) + fp.category[1:]}
			if err := db.Create(category).Error; err != nil {
				return nil, err
			}
			tc.Categories[fp.category] = category
		}

		product := &model.Product{
			Name:           fp.name,
			Description:    fp.description,
			Price:          decimal.RequireFromString(fp.basePrice),
			ImageURL:       "https://cdn.example.com/" + fp.key + ".jpg",
			Popularity:     fp.popularity,
			IsCustomizable: fp.customizable,
			ReleasedAt:     now.AddDate(0, 0, -fp.releasedDays),
			RatingAvg:      fp.rating,
			RatingCount:    10,
			CategoryID:     category.ID,
		}
		for _, key := range fp.flags {
			flag, err := ensureFlag(db, tc, key)
			if err != nil {
				return nil, err
			}
			product.Flags = append(product.Flags, *flag)
		}
		for _, key := range fp.ingredients {
			ingredient, err := ensureIngredient(db, tc, key)
			if err != nil {
				return nil, err
			}
			product.Ingredients = append(product.Ingredients, *ingredient)
		}
		for _, fv := range fp.variants {
			doughID := tc.Doughs[fv.dough].ID
			sizeID := tc.Sizes[fv.size].ID
			product.Variants = append(product.Variants, model.ProductVariant{
				DoughTypeID:  &doughID,
				SizeOptionID: &sizeID,
				Price:        decimal.RequireFromString(fv.price),
				Stock:        100,
				IsDefault:    fv.isDefault,
			})
		}

		if err := db.Create(product).Error; err != nil {
			return nil, fmt.Errorf("create product %s: %w", fp.key, err)
		}
		tc.Products[fp.key] = product
		for i, fv := range fp.variants {
			v := product.Variants[i]
			v.DoughType = tc.Doughs[fv.dough]
			v.SizeOption = tc.Sizes[fv.size]
			tc.Variants[fp.key+":"+fv.size] = &v
		}
	}

	if err := db.Exec(`
UPDATE products SET
	min_price = (SELECT MIN(product_variants.price) FROM product_variants WHERE product_variants.product_id = products.id),
	max_price = (SELECT MAX(product_variants.price) FROM product_variants WHERE product_variants.product_id = products.id)`).Error; err != nil {
		return nil, err
	}

	return tc, nil
}

func ensureFlag(db *gorm.DB, tc *TestCatalog, key string) (*model.Flag, error) {
	if f, ok := tc.Flags[key]; ok {
		return f, nil
	}
	f := &model.Flag{Key: key}
	if err := db.Create(f).Error; err != nil {
		return nil, err
	}
	tc.Flags[key] = f
	return f, nil
}

func ensureIngredient(db *gorm.DB, tc *TestCatalog, key string) (*model.Ingredient, error) {
	if i, ok := tc.Ingredients[key]; ok {
		return i, nil
	}
	i := &model.Ingredient{Key: key}
	if err := db.Create(i).Error; err != nil {
		return nil, err
	}
	tc.Ingredients[key] = i
	return i, nil
}
