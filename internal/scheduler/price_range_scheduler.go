package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/catalog-backend/internal/app/repository"
	"github.com/ikkim/catalog-backend/internal/app/service"
	"github.com/ikkim/catalog-backend/pkg/cache"
	"github.com/ikkim/catalog-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// PriceRangeScheduler 상품 가격 범위(min/max) 캐시 주기적 재계산 스케줄러
type PriceRangeScheduler struct {
	cron        *cron.Cron
	spec        string
	productRepo repository.ProductRepository
	facetCache  cache.Cache
}

// NewPriceRangeScheduler 가격 범위 스케줄러 생성. facetCache가 nil이면 무효화 생략
func NewPriceRangeScheduler(spec string, productRepo repository.ProductRepository, facetCache cache.Cache) *PriceRangeScheduler {
	if facetCache == nil {
		facetCache = cache.Nop{}
	}
	return &PriceRangeScheduler{
		cron:        cron.New(),
		spec:        spec,
		productRepo: productRepo,
		facetCache:  facetCache,
	}
}

// RunOnce recomputes every product's price range, then invalidates cached facets.
func (s *PriceRangeScheduler) RunOnce(ctx context.Context) error {
	start := time.Now()

	rows, err := s.productRepo.RefreshPriceRanges()
	if err != nil {
		logger.Error("Failed to refresh product price ranges", err)
		return err
	}

	version, err := s.facetCache.BumpVersion(ctx, service.FacetNamespace)
	if err != nil {
		// 캐시 엔트리는 TTL 만료로 정리됨
		logger.Warn("Failed to invalidate facet cache", map[string]interface{}{
			"error": err.Error(),
		})
	}

	logger.Info("Product price ranges refreshed", map[string]interface{}{
		"products":      rows,
		"facet_version": version,
		"duration":      time.Since(start).String(),
	})
	return nil
}

// Start 스케줄러 시작
func (s *PriceRangeScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		logger.Info("Starting scheduled price range refresh", nil)
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		_ = s.RunOnce(ctx)
	})
	if err != nil {
		logger.Error("Failed to add cron job for price range refresh", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Price range scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// Stop 스케줄러 중지. 실행 중인 작업이 끝날 때까지 대기
func (s *PriceRangeScheduler) Stop() {
	logger.Info("Stopping price range scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Price range scheduler stopped", nil)
}
