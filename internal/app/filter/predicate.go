package filter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Axis names a taxonomy dimension a product can be filtered or faceted on.
type Axis string

const (
	AxisFlags       Axis = "flags"
	AxisIngredients Axis = "ingredients"
	AxisDoughTypes  Axis = "doughTypes"
	AxisSizeOptions Axis = "sizeOptions"
)

// Clause is one conjunct of a Predicate. The set of implementations is closed;
// the repository compiles each kind into SQL.
type Clause interface {
	clause()
	String() string
}

type CategoryClause struct {
	Slug string
}

// TextClause matches name or description, case-insensitively.
type TextClause struct {
	Text string
}

// PriceMinClause keeps products whose most expensive variant reaches Min.
type PriceMinClause struct {
	Min decimal.Decimal
}

// PriceMaxClause keeps products whose cheapest variant stays within Max.
type PriceMaxClause struct {
	Max decimal.Decimal
}

// LinkedKeyClause requires a link to the entry with Key on a link-table axis.
type LinkedKeyClause struct {
	Axis Axis
	Key  string
}

// LinkedAnyClause requires a link to at least one of Keys.
type LinkedAnyClause struct {
	Axis Axis
	Keys []string
}

// VariantClause requires a variant whose dough type or size option has Key.
type VariantClause struct {
	Axis Axis
	Key  string
}

type CustomizableClause struct {
	Value bool
}

type ReleasedSinceClause struct {
	Since time.Time
}

func (CategoryClause) clause()      {}
func (TextClause) clause()          {}
func (PriceMinClause) clause()      {}
func (PriceMaxClause) clause()      {}
func (LinkedKeyClause) clause()     {}
func (LinkedAnyClause) clause()     {}
func (VariantClause) clause()       {}
func (CustomizableClause) clause()  {}
func (ReleasedSinceClause) clause() {}

func (c CategoryClause) String() string { return "category=" + c.Slug }
func (c TextClause) String() string     { return "text~" + strings.ToLower(c.Text) }
func (c PriceMinClause) String() string { return "price>=" + c.Min.String() }
func (c PriceMaxClause) String() string { return "price<=" + c.Max.String() }
func (c LinkedKeyClause) String() string {
	return fmt.Sprintf("%s has %s", c.Axis, c.Key)
}
func (c LinkedAnyClause) String() string {
	keys := append([]string(nil), c.Keys...)
	sort.Strings(keys)
	return fmt.Sprintf("%s any[%s]", c.Axis, strings.Join(keys, ","))
}
func (c VariantClause) String() string {
	return fmt.Sprintf("variant %s=%s", c.Axis, c.Key)
}
func (c CustomizableClause) String() string { return fmt.Sprintf("customizable=%t", c.Value) }
func (c ReleasedSinceClause) String() string {
	return "released>=" + c.Since.UTC().Format("2006-01-02")
}

// Predicate is the conjunction of its clauses. An empty predicate matches
// every product.
type Predicate struct {
	Clauses []Clause
}

func (p Predicate) Empty() bool {
	return len(p.Clauses) == 0
}

// String renders a canonical form. Clause order does not affect it.
func (p Predicate) String() string {
	parts := make([]string, 0, len(p.Clauses))
	for _, c := range p.Clauses {
		parts = append(parts, c.String())
	}
	sort.Strings(parts)
	return strings.Join(parts, " AND ")
}

// Build maps a validated query to a predicate. now anchors the "is new" window.
func Build(q Query, now time.Time) Predicate {
	var clauses []Clause

	if q.CategorySlug != "" {
		clauses = append(clauses, CategoryClause{Slug: q.CategorySlug})
	}
	if q.Text != "" {
		clauses = append(clauses, TextClause{Text: q.Text})
	}
	if q.PriceMin != nil {
		clauses = append(clauses, PriceMinClause{Min: *q.PriceMin})
	}
	if q.PriceMax != nil {
		clauses = append(clauses, PriceMaxClause{Max: *q.PriceMax})
	}
	clauses = append(clauses, linkClauses(AxisFlags, q.Flags, q.FlagsMode)...)
	clauses = append(clauses, linkClauses(AxisIngredients, q.Ingredients, q.IngredientsMode)...)
	if q.DoughKey != "" {
		clauses = append(clauses, VariantClause{Axis: AxisDoughTypes, Key: q.DoughKey})
	}
	if q.SizeKey != "" {
		clauses = append(clauses, VariantClause{Axis: AxisSizeOptions, Key: q.SizeKey})
	}
	if q.IsCustomizable != nil {
		clauses = append(clauses, CustomizableClause{Value: *q.IsCustomizable})
	}
	if q.IsNew {
		days := q.NewerThanDays
		if days < 1 {
			days = 30
		}
		clauses = append(clauses, ReleasedSinceClause{Since: now.UTC().AddDate(0, 0, -days)})
	}

	return Predicate{Clauses: clauses}
}

func linkClauses(axis Axis, keys []string, mode Mode) []Clause {
	if len(keys) == 0 {
		return nil
	}
	if mode == ModeAll {
		out := make([]Clause, 0, len(keys))
		for _, k := range keys {
			out = append(out, LinkedKeyClause{Axis: axis, Key: k})
		}
		return out
	}
	return []Clause{LinkedAnyClause{Axis: axis, Keys: append([]string(nil), keys...)}}
}
