package filter

import (
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDefaults = Defaults{NewerThanDays: 30, PageLimit: 20, MaxPageLimit: 100}

func mustParse(t *testing.T, raw string) Query {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	q, err := ParseValues(values, testDefaults)
	require.NoError(t, err)
	require.NoError(t, q.Validate())
	return q
}

func TestBuild_EmptyQueryMatchesEverything(t *testing.T) {
	q := mustParse(t, "")

	p := Build(q, time.Now())
	assert.True(t, p.Empty())
	assert.Equal(t, SortNewest, q.Sort)
	assert.Equal(t, OrderDesc, q.Order)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 20, q.Limit)
}

func TestBuild_ReservedCategoryIsNoFilter(t *testing.T) {
	q := mustParse(t, "category=Toate")
	assert.True(t, Build(q, time.Now()).Empty())
}

func TestBuild_OneClausePerField(t *testing.T) {
	q := mustParse(t, "category=pizza&q=Diavola&priceMin=100&priceMax=500&isCustomizable=true&dough=thin&size=large")
	p := Build(q, time.Now())

	require.Len(t, p.Clauses, 7)
	assert.Contains(t, p.Clauses, Clause(CategoryClause{Slug: "pizza"}))
	assert.Contains(t, p.Clauses, Clause(TextClause{Text: "Diavola"}))
	assert.Contains(t, p.Clauses, Clause(PriceMinClause{Min: decimal.NewFromInt(100)}))
	assert.Contains(t, p.Clauses, Clause(PriceMaxClause{Max: decimal.NewFromInt(500)}))
	assert.Contains(t, p.Clauses, Clause(CustomizableClause{Value: true}))
	assert.Contains(t, p.Clauses, Clause(VariantClause{Axis: AxisDoughTypes, Key: "thin"}))
	assert.Contains(t, p.Clauses, Clause(VariantClause{Axis: AxisSizeOptions, Key: "large"}))
}

func TestBuild_AllModeEmitsClausePerKey(t *testing.T) {
	q := mustParse(t, "flags=spicy,vegan&flagsMode=ALL")
	p := Build(q, time.Now())

	assert.Equal(t, []Clause{
		LinkedKeyClause{Axis: AxisFlags, Key: "spicy"},
		LinkedKeyClause{Axis: AxisFlags, Key: "vegan"},
	}, p.Clauses)
}

func TestBuild_AnyModeEmitsSingleClause(t *testing.T) {
	q := mustParse(t, "ingredients=mozzarella&ingredients=basil,%20Mozzarella")
	p := Build(q, time.Now())

	assert.Equal(t, []Clause{
		LinkedAnyClause{Axis: AxisIngredients, Keys: []string{"mozzarella", "basil"}},
	}, p.Clauses)
}

func TestBuild_IsNewUsesWindow(t *testing.T) {
	now := time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)

	q := mustParse(t, "isNew=true&newerThanDays=7")
	p := Build(q, now)

	require.Len(t, p.Clauses, 1)
	assert.Equal(t, ReleasedSinceClause{Since: now.AddDate(0, 0, -7)}, p.Clauses[0])

	q = mustParse(t, "isNew=false")
	assert.True(t, Build(q, now).Empty())
}

func TestPredicate_StringIsOrderIndependent(t *testing.T) {
	a := Predicate{Clauses: []Clause{CategoryClause{Slug: "pizza"}, LinkedAnyClause{Axis: AxisFlags, Keys: []string{"b", "a"}}}}
	b := Predicate{Clauses: []Clause{LinkedAnyClause{Axis: AxisFlags, Keys: []string{"a", "b"}}, CategoryClause{Slug: "pizza"}}}
	assert.Equal(t, a.String(), b.String())
}

func TestParseValues_RejectsMalformedNumbers(t *testing.T) {
	values, _ := url.ParseQuery("priceMin=cheap&page=two")
	_, err := ParseValues(values, testDefaults)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "priceMin")
	assert.Contains(t, verr.Fields, "page")
}

func TestQueryValidate(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"page below one", "page=0", "page"},
		{"limit above max", "limit=101", "limit"},
		{"limit zero", "limit=0", "limit"},
		{"unknown sort", "sort=name", "sort"},
		{"unknown order", "order=up", "order"},
		{"unknown mode", "flags=a&flagsMode=some", "flagsMode"},
		{"negative min", "priceMin=-1", "priceMin"},
		{"inverted range", "priceMin=50&priceMax=10", "priceMax"},
		{"window too long", "newerThanDays=5000", "newerThanDays"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.raw)
			require.NoError(t, err)
			q, err := ParseValues(values, testDefaults)
			require.NoError(t, err)

			err = q.Validate()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestQueryValidate_AcceptsBoundaries(t *testing.T) {
	q := mustParse(t, "limit=100&page=3&priceMin=0&priceMax=0&sort=price&order=asc")
	assert.Equal(t, 200, q.Offset())
}
