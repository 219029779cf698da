package filter

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/shopspring/decimal"
)

type Mode string

const (
	ModeAny Mode = "any"
	ModeAll Mode = "all"
)

type SortField string

const (
	SortPrice      SortField = "price"
	SortRating     SortField = "rating"
	SortPopularity SortField = "popularity"
	SortNewest     SortField = "newest"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Defaults fill in whatever the request leaves out.
type Defaults struct {
	NewerThanDays int
	PageLimit     int
	MaxPageLimit  int
}

// Query is a browse request after parsing. Call Validate before building a predicate.
type Query struct {
	Text            string           `query:"q" validate:"max=200"`
	CategorySlug    string           `query:"category" validate:"max=100"`
	PriceMin        *decimal.Decimal `query:"priceMin" validate:"-"`
	PriceMax        *decimal.Decimal `query:"priceMax" validate:"-"`
	Flags           []string         `query:"flags" validate:"max=50,dive,min=1,max=100"`
	FlagsMode       Mode             `query:"flagsMode" validate:"oneof=any all"`
	Ingredients     []string         `query:"ingredients" validate:"max=50,dive,min=1,max=100"`
	IngredientsMode Mode             `query:"ingredientsMode" validate:"oneof=any all"`
	DoughKey        string           `query:"dough" validate:"max=100"`
	SizeKey         string           `query:"size" validate:"max=100"`
	IsCustomizable  *bool            `query:"isCustomizable" validate:"-"`
	IsNew           bool             `query:"isNew"`
	NewerThanDays   int              `query:"newerThanDays" validate:"gte=1,lte=3650"`

	Page     int       `query:"page" validate:"gte=1"`
	Limit    int       `query:"limit" validate:"gte=1,ltefield=MaxLimit"`
	MaxLimit int       `query:"-" validate:"-"`
	Sort     SortField `query:"sort" validate:"oneof=price rating popularity newest"`
	Order    SortOrder `query:"order" validate:"oneof=asc desc"`
}

// Offset is the number of rows skipped before the current page.
func (q Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ValidationError carries a message per offending query parameter.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid query: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("query"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validatePriceBounds, Query{})
	return v
}

func validatePriceBounds(sl validator.StructLevel) {
	q := sl.Current().Interface().(Query)
	if q.PriceMin != nil && q.PriceMin.IsNegative() {
		sl.ReportError(q.PriceMin, "priceMin", "PriceMin", "nonnegative", "")
	}
	if q.PriceMax != nil && q.PriceMax.IsNegative() {
		sl.ReportError(q.PriceMax, "priceMax", "PriceMax", "nonnegative", "")
	}
	if q.PriceMin != nil && q.PriceMax != nil && q.PriceMax.LessThan(*q.PriceMin) {
		sl.ReportError(q.PriceMax, "priceMax", "PriceMax", "gtefield", "priceMin")
	}
}

// Validate checks ranges and enumerations. It never touches the store.
func (q Query) Validate() error {
	err := validate.Struct(q)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.add(fieldName(fe), validationMessage(fe))
	}
	return out.orNil()
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "ltefield":
		return "exceeds the maximum page size"
	case "gtefield":
		return "must not be lower than " + fe.Param()
	case "nonnegative":
		return "must not be negative"
	case "max":
		return "is too long"
	case "min":
		return "must not be empty"
	default:
		return "is invalid"
	}
}

// ParseValues reads browse parameters from a URL query. List parameters
// accept repeated keys, comma separated values or both.
func ParseValues(values url.Values, d Defaults) (Query, error) {
	q := Query{
		Text:            strings.TrimSpace(firstNonEmpty(values.Get("q"), values.Get("search"))),
		CategorySlug:    strings.ToLower(strings.TrimSpace(values.Get("category"))),
		Flags:           splitList(values["flags"]),
		FlagsMode:       Mode(strings.ToLower(strings.TrimSpace(values.Get("flagsMode")))),
		Ingredients:     splitList(values["ingredients"]),
		IngredientsMode: Mode(strings.ToLower(strings.TrimSpace(values.Get("ingredientsMode")))),
		DoughKey:        strings.ToLower(strings.TrimSpace(values.Get("dough"))),
		SizeKey:         strings.ToLower(strings.TrimSpace(values.Get("size"))),
		NewerThanDays:   d.NewerThanDays,
		Page:            1,
		Limit:           d.PageLimit,
		MaxLimit:        d.MaxPageLimit,
		Sort:            SortField(strings.ToLower(strings.TrimSpace(values.Get("sort")))),
		Order:           SortOrder(strings.ToLower(strings.TrimSpace(values.Get("order")))),
	}
	if q.FlagsMode == "" {
		q.FlagsMode = ModeAny
	}
	if q.IngredientsMode == "" {
		q.IngredientsMode = ModeAny
	}
	if q.Sort == "" {
		q.Sort = SortNewest
	}
	if q.Order == "" {
		q.Order = OrderDesc
	}
	if q.CategorySlug == model.ReservedCategorySlug {
		q.CategorySlug = ""
	}

	verr := &ValidationError{}
	q.PriceMin = parseDecimal(values, "priceMin", verr)
	q.PriceMax = parseDecimal(values, "priceMax", verr)
	q.IsCustomizable = parseOptionalBool(values, "isCustomizable", verr)
	if isNew := parseOptionalBool(values, "isNew", verr); isNew != nil {
		q.IsNew = *isNew
	}
	parseInt(values, "newerThanDays", &q.NewerThanDays, verr)
	parseInt(values, "page", &q.Page, verr)
	parseInt(values, "limit", &q.Limit, verr)

	if err := verr.orNil(); err != nil {
		return q, err
	}
	return q, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func splitList(raw []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			key := strings.ToLower(strings.TrimSpace(part))
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, key)
		}
	}
	return out
}

func parseDecimal(values url.Values, key string, verr *ValidationError) *decimal.Decimal {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		verr.add(key, "must be a number")
		return nil
	}
	return &d
}

func parseOptionalBool(values url.Values, key string, verr *ValidationError) *bool {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		verr.add(key, "must be true or false")
		return nil
	}
	return &b
}

func parseInt(values url.Values, key string, dst *int, verr *ValidationError) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		verr.add(key, fmt.Sprintf("must be an integer, got %q", raw))
		return
	}
	*dst = n
}
