package service

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/ikkim/catalog-backend/internal/app/filter"
	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/internal/app/repository"
	"github.com/ikkim/catalog-backend/pkg/cache"
	"github.com/ikkim/catalog-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// FacetNamespace is the cache namespace whose version invalidates every facet entry.
const FacetNamespace = "facets"

// ProductPage is one slice of the browse result.
type ProductPage struct {
	Products   []model.Product
	Page       int
	Limit      int
	Total      int64
	TotalPages int
	// NewSince is the start of the "new" window used to flag products.
	NewSince time.Time
}

type FacetValue struct {
	ID    uint   `json:"id"`
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type PriceBounds struct {
	Min *decimal.Decimal `json:"min"`
	Max *decimal.Decimal `json:"max"`
}

// Facets lists, per axis, the values still reachable under the current filters.
type Facets struct {
	Flags       []FacetValue `json:"flags"`
	Ingredients []FacetValue `json:"ingredients"`
	DoughTypes  []FacetValue `json:"doughTypes"`
	SizeOptions []FacetValue `json:"sizeOptions"`
	Price       PriceBounds  `json:"price"`
}

type BrowseService interface {
	Browse(ctx context.Context, q filter.Query) (*ProductPage, error)
	Facets(ctx context.Context, q filter.Query) (*Facets, error)
}

type browseService struct {
	catalogRepo repository.CatalogRepository
	facetCache  cache.Cache
	cacheTTL    time.Duration
	now         func() time.Time
}

func NewBrowseService(catalogRepo repository.CatalogRepository, facetCache cache.Cache, cacheTTL time.Duration) BrowseService {
	if facetCache == nil {
		facetCache = cache.Nop{}
	}
	return &browseService{
		catalogRepo: catalogRepo,
		facetCache:  facetCache,
		cacheTTL:    cacheTTL,
		now:         time.Now,
	}
}

// Browse counts the matching set and loads the requested page concurrently.
func (s *browseService) Browse(ctx context.Context, q filter.Query) (*ProductPage, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	p := filter.Build(q, now)

	logger.Debug("Browsing products", map[string]interface{}{
		"predicate": p.String(),
		"page":      q.Page,
		"limit":     q.Limit,
		"sort":      q.Sort,
		"order":     q.Order,
	})

	var (
		total    int64
		products []model.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.catalogRepo.CountProducts(gctx, p)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.catalogRepo.FindProducts(gctx, p, q.Sort, q.Order, q.Offset(), q.Limit)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error("Failed to browse products", err, map[string]interface{}{
			"predicate": p.String(),
		})
		return nil, err
	}

	page := &ProductPage{
		Products:   products,
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(q.Limit))),
		NewSince:   now.UTC().AddDate(0, 0, -q.NewerThanDays),
	}

	logger.Info("Products browsed", map[string]interface{}{
		"predicate": p.String(),
		"total":     total,
		"returned":  len(products),
	})
	return page, nil
}

// Facets aggregates every axis and the price range for the query's predicate.
// Paging and sorting fields of q are ignored.
func (s *browseService) Facets(ctx context.Context, q filter.Query) (*Facets, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	p := filter.Build(q, s.now())
	cacheKey := s.cacheKey(ctx, p)

	if cacheKey != "" {
		if raw, hit, err := s.facetCache.Get(ctx, cacheKey); err != nil {
			logger.Warn("Facet cache read failed", map[string]interface{}{
				"error": err.Error(),
			})
		} else if hit {
			var cached Facets
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				logger.Debug("Facet cache hit", map[string]interface{}{
					"predicate": p.String(),
				})
				return &cached, nil
			}
		}
	}

	facets, err := s.aggregate(ctx, p)
	if err != nil {
		logger.Error("Failed to aggregate facets", err, map[string]interface{}{
			"predicate": p.String(),
		})
		return nil, err
	}

	if cacheKey != "" {
		if raw, err := json.Marshal(facets); err == nil {
			if err := s.facetCache.Set(ctx, cacheKey, string(raw), s.cacheTTL); err != nil {
				logger.Warn("Facet cache write failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}

	return facets, nil
}

func (s *browseService) cacheKey(ctx context.Context, p filter.Predicate) string {
	version, err := s.facetCache.Version(ctx, FacetNamespace)
	if err != nil {
		logger.Warn("Facet cache version lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
		return ""
	}
	key := p.String()
	if key == "" {
		key = "*"
	}
	return s.facetCache.GenerateKey(FacetNamespace, version, key)
}

func (s *browseService) aggregate(ctx context.Context, p filter.Predicate) (*Facets, error) {
	facets := &Facets{}
	targets := []struct {
		axis filter.Axis
		dst  *[]FacetValue
	}{
		{filter.AxisFlags, &facets.Flags},
		{filter.AxisIngredients, &facets.Ingredients},
		{filter.AxisDoughTypes, &facets.DoughTypes},
		{filter.AxisSizeOptions, &facets.SizeOptions},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		t := t
		g.Go(func() error {
			counts, err := s.catalogRepo.CountByAxis(gctx, p, t.axis)
			if err != nil {
				return err
			}
			values := make([]FacetValue, 0, len(counts))
			for _, c := range counts {
				values = append(values, FacetValue{
					ID:    c.ID,
					Key:   c.Key,
					Label: model.DisplayName(c.Key, c.Label),
					Count: c.Count,
				})
			}
			*t.dst = values
			return nil
		})
	}
	g.Go(func() error {
		pr, err := s.catalogRepo.PriceRange(gctx, p)
		if err != nil {
			return err
		}
		if pr.Min.Valid {
			min := pr.Min.Decimal
			facets.Price.Min = &min
		}
		if pr.Max.Valid {
			max := pr.Max.Decimal
			facets.Price.Max = &max
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return facets, nil
}
