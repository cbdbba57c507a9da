package services

import (
	"context"
	"fmt"
	"time"

	"tradenexus/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronService runs background maintenance jobs
type CronService struct {
	cron     *cron.Cron
	sessions *SessionService
	store    *DataStore
	log      *zap.Logger
}

// NewCronService schedules the jobs enabled in cfg. An empty spec disables its job.
func NewCronService(sessions *SessionService, store *DataStore, cfg config.CronConfig, log *zap.Logger) (*CronService, error) {
	s := &CronService{
		cron:     cron.New(),
		sessions: sessions,
		store:    store,
		log:      log,
	}

	if cfg.SessionSweep != "" {
		if _, err := s.cron.AddFunc(cfg.SessionSweep, s.sweepSessions); err != nil {
			return nil, fmt.Errorf("invalid SESSION_SWEEP_SPEC %q: %w", cfg.SessionSweep, err)
		}
	}
	if cfg.DataReset != "" {
		if _, err := s.cron.AddFunc(cfg.DataReset, s.resetData); err != nil {
			return nil, fmt.Errorf("invalid DATA_RESET_SPEC %q: %w", cfg.DataReset, err)
		}
	}

	return s, nil
}

// Start runs the scheduler in its own goroutine
func (s *CronService) Start() {
	s.cron.Start()
	s.log.Info("cron started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("cron stopped")
}

func (s *CronService) sweepSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.sessions.SweepExpired(ctx)
	if err != nil {
		s.log.Error("session sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.log.Info("expired sessions removed", zap.Int("count", removed))
	}
}

func (s *CronService) resetData() {
	s.store.Reset()
	s.log.Info("demo data reset")
}
