// Package legacysync mirrors the operational collections into the legacy
// spreadsheet backend and reads them back.
package legacysync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
	"github.com/mamadbah2/shroomtrack/internal/metrics"
	"github.com/mamadbah2/shroomtrack/internal/repository/lock"
	"github.com/mamadbah2/shroomtrack/internal/repository/sheets"
)

const (
	// DefaultLockName is the named lock held for the duration of a full sync.
	DefaultLockName = "shroomtrack:sync:lock"
	// DefaultLockWait bounds how long a sync waits for the lock.
	DefaultLockWait = 30 * time.Second

	msgSynced        = "Full Database Synced"
	msgInvalidAction = "Invalid Action"
)

// Summary reports the rows written per sheet by one full sync.
type Summary map[string]UpsertResult

// Snapshotter produces the full dataset to push into the spreadsheet.
type Snapshotter interface {
	Snapshot(ctx context.Context) (models.SyncPayload, error)
}

// Service runs full-database synchronization against a tabular store.
type Service struct {
	table    sheets.Repository
	locker   lock.Locker
	lockName string
	wait     time.Duration
	logger   *zap.Logger
}

// NewService wires a synchronizer. Empty lockName or non-positive wait fall
// back to the defaults.
func NewService(table sheets.Repository, locker lock.Locker, lockName string, wait time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	if lockName == "" {
		lockName = DefaultLockName
	}
	if wait <= 0 {
		wait = DefaultLockWait
	}
	return &Service{
		table:    table,
		locker:   locker,
		lockName: lockName,
		wait:     wait,
		logger:   logger,
	}
}

// SyncFull upserts every present sub-array of the payload, one sheet after
// the other, while holding the sync lock. Nil sub-arrays are skipped.
func (s *Service) SyncFull(ctx context.Context, payload models.SyncPayload) (Summary, error) {
	release, err := s.locker.Acquire(ctx, s.lockName, s.wait)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("failed to release sync lock", zap.Error(err))
		}
	}()

	summary := make(Summary)
	steps := []struct {
		sheet string
		run   func() (UpsertResult, error)
		skip  bool
	}{
		{SheetBatches, func() (UpsertResult, error) { return Upsert(ctx, s.table, BatchSchema, payload.Batches) }, payload.Batches == nil},
		{SheetInventory, func() (UpsertResult, error) { return Upsert(ctx, s.table, InventorySchema, payload.Inventory) }, payload.Inventory == nil},
		{SheetFinishedGoods, func() (UpsertResult, error) { return Upsert(ctx, s.table, FinishedGoodSchema, payload.FinishedGoods) }, payload.FinishedGoods == nil},
		{SheetDailyCosts, func() (UpsertResult, error) { return Upsert(ctx, s.table, DailyCostSchema, payload.DailyCosts) }, payload.DailyCosts == nil},
		{SheetCustomers, func() (UpsertResult, error) { return Upsert(ctx, s.table, CustomerSchema, payload.Customers) }, payload.Customers == nil},
	}

	for _, step := range steps {
		if step.skip {
			continue
		}
		result, err := step.run()
		if err != nil {
			return summary, err
		}
		summary[step.sheet] = result
		metrics.SyncRows.WithLabelValues(step.sheet, "update").Add(float64(result.Updated))
		metrics.SyncRows.WithLabelValues(step.sheet, "append").Add(float64(result.Appended))
		s.logger.Debug("sheet synced",
			zap.String("sheet", step.sheet),
			zap.Int("updated", result.Updated),
			zap.Int("appended", result.Appended),
		)
	}

	s.logger.Info("full database synced", zap.Int("sheets", len(summary)))
	return summary, nil
}

// GetFull reads and parses all five sheets concurrently.
func (s *Service) GetFull(ctx context.Context) (models.SyncPayload, error) {
	var out models.SyncPayload
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.Batches, err = ReadAll(gctx, s.table, BatchSchema)
		return err
	})
	g.Go(func() (err error) {
		out.Inventory, err = ReadAll(gctx, s.table, InventorySchema)
		return err
	})
	g.Go(func() (err error) {
		out.FinishedGoods, err = ReadAll(gctx, s.table, FinishedGoodSchema)
		return err
	})
	g.Go(func() (err error) {
		out.DailyCosts, err = ReadAll(gctx, s.table, DailyCostSchema)
		return err
	})
	g.Go(func() (err error) {
		out.Customers, err = ReadAll(gctx, s.table, CustomerSchema)
		return err
	})

	if err := g.Wait(); err != nil {
		return models.SyncPayload{}, err
	}
	return out, nil
}

// Mirror pushes a snapshot of the document store into the spreadsheet.
func (s *Service) Mirror(ctx context.Context, src Snapshotter) (Summary, error) {
	payload, err := src.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot document store: %w", err)
	}
	return s.SyncFull(ctx, payload)
}

// HandlePost serves the body of the legacy POST endpoint. It never returns an
// error: failures are reported inside the envelope.
func (s *Service) HandlePost(ctx context.Context, req models.SyncRequest) (resp models.APIResponse) {
	defer s.recoverInto(req.Action, &resp)

	if req.Action != models.ActionSyncFullDB {
		metrics.SyncRequests.WithLabelValues("unknown", "invalid").Inc()
		return models.APIResponse{Success: false, Message: msgInvalidAction}
	}

	summary, err := s.SyncFull(ctx, req.Payload)
	if err != nil {
		return s.failure(req.Action, err)
	}

	metrics.SyncRequests.WithLabelValues(req.Action, "ok").Inc()
	return models.APIResponse{Success: true, Message: msgSynced, Data: summary}
}

// HandleGet serves the legacy GET endpoint.
func (s *Service) HandleGet(ctx context.Context, action string) (resp models.APIResponse) {
	defer s.recoverInto(action, &resp)

	if action != models.ActionGetFullDB {
		metrics.SyncRequests.WithLabelValues("unknown", "invalid").Inc()
		return models.APIResponse{Success: false, Message: msgInvalidAction}
	}

	data, err := s.GetFull(ctx)
	if err != nil {
		return s.failure(action, err)
	}

	metrics.SyncRequests.WithLabelValues(action, "ok").Inc()
	return models.APIResponse{Success: true, Data: data}
}

func (s *Service) failure(action string, err error) models.APIResponse {
	outcome := "error"
	if errors.Is(err, lock.ErrBusy) {
		outcome = "busy"
	}
	metrics.SyncRequests.WithLabelValues(action, outcome).Inc()
	s.logger.Error("sync request failed", zap.String("action", action), zap.Error(err))
	return models.APIResponse{Success: false, Error: err.Error()}
}

func (s *Service) recoverInto(action string, resp *models.APIResponse) {
	if r := recover(); r != nil {
		*resp = s.failure(action, fmt.Errorf("panic: %v", r))
	}
}
