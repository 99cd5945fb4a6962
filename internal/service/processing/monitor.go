package processing

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

// StageSource yields the live stage of all active runs.
type StageSource interface {
	ActiveRuns(ctx context.Context) ([]models.StageView, error)
}

// Transition records a batch moving from one derived stage to the next.
type Transition struct {
	BatchID string
	From    models.Stage
	To      models.Stage
}

// Monitor polls active runs on a fixed interval and reports stage changes.
// Stages are re-derived on every tick; the monitor only remembers the last
// stage it saw so it can log transitions.
type Monitor struct {
	source   StageSource
	interval time.Duration
	logger   *zap.Logger

	mu   sync.Mutex
	seen map[string]models.Stage
}

// NewMonitor builds a monitor. A non-positive interval defaults to one second.
func NewMonitor(source StageSource, interval time.Duration, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Monitor{
		source:   source,
		interval: interval,
		logger:   logger,
		seen:     make(map[string]models.Stage),
	}
}

// Run polls until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("stage monitor started", zap.Duration("interval", m.interval))
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("stage monitor stopped")
			return
		case <-ticker.C:
			if _, err := m.Poll(ctx); err != nil {
				m.logger.Warn("stage poll failed", zap.Error(err))
			}
		}
	}
}

// Poll derives every active stage once and returns the transitions observed
// since the previous poll. Batches that are no longer active are forgotten.
func (m *Monitor) Poll(ctx context.Context) ([]Transition, error) {
	views, err := m.source.ActiveRuns(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	active := make(map[string]struct{}, len(views))
	var transitions []Transition
	for _, view := range views {
		active[view.BatchID] = struct{}{}
		prev, ok := m.seen[view.BatchID]
		m.seen[view.BatchID] = view.Stage
		if ok && prev == view.Stage {
			continue
		}

		transitions = append(transitions, Transition{BatchID: view.BatchID, From: prev, To: view.Stage})
		if view.Stage == models.StageComplete {
			m.logger.Info("processing cycle complete, ready for QC", zap.String("batch_id", view.BatchID))
		} else {
			m.logger.Debug("stage entered",
				zap.String("batch_id", view.BatchID),
				zap.String("stage", string(view.Stage)),
				zap.Int64("remaining_seconds", view.RemainingSeconds))
		}
	}

	for id := range m.seen {
		if _, ok := active[id]; !ok {
			delete(m.seen, id)
		}
	}

	return transitions, nil
}
