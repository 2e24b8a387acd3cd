package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type autosaveStore interface {
	Dirty() bool
	Flush(ctx context.Context) error
	LastSaved() time.Time
}

// AutosaveStatus is the snapshot exposed on the status endpoint.
type AutosaveStatus struct {
	Enabled   bool       `json:"enabled"`
	Interval  string     `json:"interval"`
	Dirty     bool       `json:"dirty"`
	Editing   bool       `json:"editing"`
	LastSaved *time.Time `json:"lastSaved,omitempty"`
}

// AutosaveService periodically flushes dirty state. A tick with nothing to
// save writes nothing; an open ledger edit is committed before the flush so
// its staged value is not lost.
type AutosaveService struct {
	store    autosaveStore
	ledger   *LedgerService
	interval time.Duration
	enabled  bool
	logger   *zap.Logger
	metrics  *MetricsService

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewAutosaveService constructs the autosave loop.
func NewAutosaveService(store autosaveStore, ledger *LedgerService, interval time.Duration, enabled bool, metrics *MetricsService, logger *zap.Logger) *AutosaveService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutosaveService{
		store:    store,
		ledger:   ledger,
		interval: interval,
		enabled:  enabled,
		logger:   logger,
		metrics:  metrics,
	}
}

// Start launches the background loop. Safe to call once; disabled autosave
// starts nothing.
func (s *AutosaveService) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || !s.enabled {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.started = true
	go s.loop(loopCtx)
	s.logger.Info("autosave started", zap.Duration("interval", s.interval))
}

// Stop halts the loop and performs a final save.
func (s *AutosaveService) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.cancel()
	done := s.done
	s.started = false
	s.mu.Unlock()
	<-done

	if _, err := s.SaveNow(ctx); err != nil {
		s.logger.Error("final autosave failed", zap.Error(err))
	}
	s.logger.Info("autosave stopped")
}

func (s *AutosaveService) loop(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				s.logger.Error("autosave tick failed", zap.Error(err))
			}
		}
	}
}

// Tick runs one autosave pass and reports whether anything was written.
func (s *AutosaveService) Tick(ctx context.Context) (bool, error) {
	if s.ledger != nil && s.ledger.EditingState() != nil {
		if err := s.ledger.ForceCommit(ctx); err != nil {
			// A rejected staged value is dropped; the flush still runs so
			// earlier edits are not held hostage.
			s.logger.Warn("autosave discarded invalid staged edit", zap.Error(err))
		}
	}
	if !s.store.Dirty() {
		s.observe("noop")
		return false, nil
	}
	if err := s.store.Flush(ctx); err != nil {
		s.observe("error")
		return false, err
	}
	s.observe("saved")
	s.logger.Debug("autosave flushed state")
	return true, nil
}

// SaveNow runs an immediate save regardless of the loop.
func (s *AutosaveService) SaveNow(ctx context.Context) (bool, error) {
	return s.Tick(ctx)
}

// Status reports the loop's current state.
func (s *AutosaveService) Status() AutosaveStatus {
	status := AutosaveStatus{
		Enabled:  s.enabled,
		Interval: s.interval.String(),
		Dirty:    s.store.Dirty(),
	}
	if s.ledger != nil {
		status.Editing = s.ledger.EditingState() != nil
	}
	if last := s.store.LastSaved(); !last.IsZero() {
		status.LastSaved = &last
	}
	return status
}

func (s *AutosaveService) observe(result string) {
	if s.metrics != nil {
		s.metrics.ObserveAutosave(result)
	}
}
