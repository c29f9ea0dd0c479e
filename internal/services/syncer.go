package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/domain"
)

// SessionRefresher is the part of the session store the syncer drives.
type SessionRefresher interface {
	Snapshot() domain.AuthState
	RefreshSession(ctx context.Context) (*domain.Session, error)
}

// Reloader is a store whose collection can be refetched.
type Reloader interface {
	Refresh(ctx context.Context) error
}

// SyncerConfig controls how often stores are refetched.
type SyncerConfig struct {
	Interval time.Duration
	// Schedule is an optional cron spec with a seconds field (or a descriptor
	// such as "@hourly") that replaces the fixed interval. Interval still
	// bounds each run and sets the session refresh horizon.
	Schedule string
	// RefreshSession renews the access token when it expires within two intervals.
	RefreshSession bool
}

// Syncer periodically refetches store collections while a user is signed in.
type Syncer struct {
	session SessionRefresher
	stores  map[string]Reloader
	order   []string
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     SyncerConfig
	now     func() time.Time
}

// NewSyncer schedules Sync every cfg.Interval (at least one second) or on
// cfg.Schedule. It does not start the scheduler.
func NewSyncer(session SessionRefresher, logger *zap.Logger, cfg SyncerConfig) (*Syncer, error) {
	if cfg.Interval < time.Second {
		cfg.Interval = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Syncer{
		session: session,
		stores:  make(map[string]Reloader),
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
		now:     time.Now,
	}

	schedule := cfg.Schedule
	if schedule == "" {
		schedule = fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	}
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := s.Sync(ctx); err != nil {
			s.logger.Error("sync failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", schedule, err)
	}

	return s, nil
}

// Track adds a store to every sync run. Stores are refetched in the order added.
func (s *Syncer) Track(name string, store Reloader) {
	if store == nil {
		return
	}
	if _, exists := s.stores[name]; !exists {
		s.order = append(s.order, name)
	}
	s.stores[name] = store
}

// Start launches the cron scheduler.
func (s *Syncer) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("syncer started", zap.Duration("interval", s.cfg.Interval), zap.String("schedule", s.cfg.Schedule))
}

// Stop gracefully stops the scheduler, waiting for a running sync or ctx.
func (s *Syncer) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("syncer stopped")
}

// Sync runs one pass synchronously. It does nothing while signed out.
func (s *Syncer) Sync(ctx context.Context) error {
	if s == nil || s.session == nil {
		return nil
	}
	state := s.session.Snapshot()
	if !state.Ready() {
		s.logger.Debug("skipping sync (signed out)")
		return nil
	}

	if s.cfg.RefreshSession && state.Session != nil && state.Session.IsExpired(s.now().Add(2*s.cfg.Interval)) {
		if _, err := s.session.RefreshSession(ctx); err != nil {
			s.logger.Warn("session refresh failed", zap.Error(err))
			if domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
				return nil
			}
		} else {
			s.logger.Debug("session refreshed")
		}
	}

	var result error
	for _, name := range s.order {
		if err := s.stores[name].Refresh(ctx); err != nil {
			s.logger.Warn("store refetch failed", zap.String("store", name), zap.Error(err))
			result = errors.Join(result, fmt.Errorf("%s: %w", name, err))
		}
	}
	return result
}
