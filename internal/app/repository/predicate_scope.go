package repository

import (
	"fmt"
	"strings"

	"github.com/ikkim/catalog-backend/internal/app/filter"
	"gorm.io/gorm"
)

// axisTables describes how an axis hangs off products. Flags and ingredients
// use many2many link tables; dough types and sizes are reached through variants.
type axisTables struct {
	link       string // table holding product_id
	linkColumn string // column in link pointing at the entry
	entity     string // taxonomy table
}

var axes = map[filter.Axis]axisTables{
	filter.AxisFlags:       {link: "product_flags", linkColumn: "flag_id", entity: "flags"},
	filter.AxisIngredients: {link: "product_ingredients", linkColumn: "ingredient_id", entity: "ingredients"},
	filter.AxisDoughTypes:  {link: "product_variants", linkColumn: "dough_type_id", entity: "dough_types"},
	filter.AxisSizeOptions: {link: "product_variants", linkColumn: "size_option_id", entity: "size_options"},
}

func (t axisTables) exists(keyCondition string) string {
	return fmt.Sprintf(
		"EXISTS (SELECT 1 FROM %[1]s JOIN %[3]s ON %[3]s.id = %[1]s.%[2]s WHERE %[1]s.product_id = products.id AND %[3]s.key %[4]s)",
		t.link, t.linkColumn, t.entity, keyCondition,
	)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// applyPredicate adds one WHERE condition per clause to a query over products.
func applyPredicate(db *gorm.DB, p filter.Predicate) *gorm.DB {
	for _, c := range p.Clauses {
		db = applyClause(db, c)
	}
	return db
}

func applyClause(db *gorm.DB, c filter.Clause) *gorm.DB {
	switch c := c.(type) {
	case filter.CategoryClause:
		return db.Where("products.category_id IN (SELECT categories.id FROM categories WHERE categories.slug = ?)", c.Slug)

	case filter.TextClause:
		pattern := "%" + likeEscaper.Replace(strings.ToLower(c.Text)) + "%"
		return db.Where(`(LOWER(products.name) LIKE ? ESCAPE '\' OR LOWER(products.description) LIKE ? ESCAPE '\')`, pattern, pattern)

	// Price bounds use overlap semantics: a product matches when its
	// [min_price, max_price] range intersects [priceMin, priceMax], i.e. some
	// variant may be in range. minPrice itself can be below priceMin
	// (a 50..150 product matches priceMin=100).
	case filter.PriceMinClause:
		return db.Where("COALESCE(products.max_price, products.price) >= CAST(? AS NUMERIC)", c.Min)
	case filter.PriceMaxClause:
		return db.Where("COALESCE(products.min_price, products.price) <= CAST(? AS NUMERIC)", c.Max)

	case filter.LinkedKeyClause:
		t, ok := axes[c.Axis]
		if !ok {
			break
		}
		return db.Where(t.exists("= ?"), c.Key)
	case filter.LinkedAnyClause:
		t, ok := axes[c.Axis]
		if !ok {
			break
		}
		return db.Where(t.exists("IN ?"), c.Keys)
	case filter.VariantClause:
		t, ok := axes[c.Axis]
		if !ok {
			break
		}
		return db.Where(t.exists("= ?"), c.Key)

	case filter.CustomizableClause:
		return db.Where("products.is_customizable = ?", c.Value)
	case filter.ReleasedSinceClause:
		return db.Where("products.released_at >= ?", c.Since)
	}

	db.AddError(fmt.Errorf("unsupported predicate clause %T", c))
	return db
}

// applySort orders products and always ends with products.id so pages are stable.
func applySort(db *gorm.DB, field filter.SortField, order filter.SortOrder) *gorm.DB {
	dir := "DESC"
	if order == filter.OrderAsc {
		dir = "ASC"
	}

	switch field {
	case filter.SortPrice:
		db = db.Order("COALESCE(products.min_price, products.price) " + dir)
	case filter.SortRating:
		db = db.Order("products.rating_avg " + dir).Order("products.rating_count " + dir)
	case filter.SortPopularity:
		db = db.Order("products.popularity " + dir)
	default:
		db = db.Order("products.released_at " + dir).Order("products.created_at DESC")
	}
	return db.Order("products.id " + dir)
}
