package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/manajir-storefront/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Refresher reloads cached catalog data from the store API.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// CatalogScheduler 카탈로그 캐시 주기적 갱신 스케줄러
type CatalogScheduler struct {
	cron      *cron.Cron
	refresher Refresher
	spec      string
	timeout   time.Duration
}

// NewCatalogScheduler 카탈로그 스케줄러 생성
// spec은 robfig/cron 표현식 ("@every 30s", "*/5 * * * *" 등)
func NewCatalogScheduler(refresher Refresher, spec string, timeout time.Duration) *CatalogScheduler {
	return &CatalogScheduler{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		refresher: refresher,
		spec:      spec,
		timeout:   timeout,
	}
}

// Start 스케줄러 시작
func (s *CatalogScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		logger.Error("Failed to add cron job for catalog refresh", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Catalog scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// RunOnce 카탈로그 캐시 1회 갱신
func (s *CatalogScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	logger.Debug("Starting scheduled catalog refresh")
	if err := s.refresher.Refresh(ctx); err != nil {
		logger.Error("Failed to refresh catalog from scheduler", err)
		return
	}
	logger.Debug("Catalog refreshed from scheduler")
}

// Stop 스케줄러 중지 (실행 중인 작업 완료까지 대기)
func (s *CatalogScheduler) Stop() {
	logger.Info("Stopping catalog scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Catalog scheduler stopped")
}
