package scheduler

import (
	"time"

	"github.com/ikkim/manajir-storefront/pkg/logger"
	"github.com/robfig/cron/v3"
)

// IdleEvicter drops sessions that have not been used for a while.
type IdleEvicter interface {
	EvictIdle(maxIdle time.Duration) []string
	Sessions() int
}

// SessionForgetter releases per-session state held outside the registry.
type SessionForgetter interface {
	Forget(sessionID string)
}

// SessionSweeper 유휴 세션 정리 스케줄러
type SessionSweeper struct {
	cron    *cron.Cron
	stores  IdleEvicter
	forget  []SessionForgetter
	spec    string
	maxIdle time.Duration
}

// NewSessionSweeper 세션 정리 스케줄러 생성
func NewSessionSweeper(stores IdleEvicter, spec string, maxIdle time.Duration, forget ...SessionForgetter) *SessionSweeper {
	return &SessionSweeper{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		stores:  stores,
		forget:  forget,
		spec:    spec,
		maxIdle: maxIdle,
	}
}

// Start 스케줄러 시작
func (s *SessionSweeper) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce() }); err != nil {
		logger.Error("Failed to add cron job for session sweep", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Session sweeper started", map[string]interface{}{
		"spec":     s.spec,
		"max_idle": s.maxIdle.String(),
	})
	return nil
}

// RunOnce 유휴 세션 1회 정리, 정리된 세션 수 반환
func (s *SessionSweeper) RunOnce() int {
	evicted := s.stores.EvictIdle(s.maxIdle)
	for _, sessionID := range evicted {
		for _, f := range s.forget {
			f.Forget(sessionID)
		}
	}

	if len(evicted) > 0 {
		logger.Debug("Idle sessions evicted", map[string]interface{}{
			"evicted":   len(evicted),
			"remaining": s.stores.Sessions(),
		})
	}
	return len(evicted)
}

// Stop 스케줄러 중지
func (s *SessionSweeper) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("Session sweeper stopped")
}
