package legacysync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
	"github.com/mamadbah2/shroomtrack/internal/repository/lock"
	"github.com/mamadbah2/shroomtrack/internal/repository/sheets"
)

type staticSnapshot struct {
	payload models.SyncPayload
	err     error
}

func (s staticSnapshot) Snapshot(context.Context) (models.SyncPayload, error) {
	return s.payload, s.err
}

func newTestService(t *testing.T) (*Service, *sheets.MemoryRepository, *lock.LocalLocker) {
	t.Helper()
	table := sheets.NewMemoryRepository()
	locker := lock.NewLocalLocker()
	return NewService(table, locker, "test-lock", 50*time.Millisecond, nil), table, locker
}

func TestHandlePostSyncsPresentSheetsOnly(t *testing.T) {
	svc, table, _ := newTestService(t)
	ctx := context.Background()

	resp := svc.HandlePost(ctx, models.SyncRequest{
		Action: models.ActionSyncFullDB,
		Payload: models.SyncPayload{
			Batches:   []models.Batch{batch("B-100", 2)},
			Customers: []models.Customer{{ID: "c-1", Name: "Ana"}},
		},
	})

	require.True(t, resp.Success)
	assert.Equal(t, "Full Database Synced", resp.Message)
	summary, ok := resp.Data.(Summary)
	require.True(t, ok)
	assert.Len(t, summary, 2)
	assert.Equal(t, UpsertResult{Appended: 1}, summary[SheetBatches])

	inventory, err := table.ReadRows(ctx, SheetInventory)
	require.NoError(t, err)
	assert.Empty(t, inventory)
}

func TestHandlePostEmptySliceStillCreatesSheet(t *testing.T) {
	svc, table, _ := newTestService(t)
	ctx := context.Background()

	resp := svc.HandlePost(ctx, models.SyncRequest{
		Action:  models.ActionSyncFullDB,
		Payload: models.SyncPayload{DailyCosts: []models.DailyCostMetric{}},
	})

	require.True(t, resp.Success)
	rows, err := table.ReadRows(ctx, SheetDailyCosts)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Reference", rows[0][1])
}

func TestHandlePostRejectsUnknownAction(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp := svc.HandlePost(context.Background(), models.SyncRequest{Action: "CHECK_ALERTS"})

	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid Action", resp.Message)
}

func TestHandlePostReportsBusyLock(t *testing.T) {
	svc, _, locker := newTestService(t)
	ctx := context.Background()
	release, err := locker.Acquire(ctx, "test-lock", time.Second)
	require.NoError(t, err)
	defer func() { _ = release(ctx) }()

	resp := svc.HandlePost(ctx, models.SyncRequest{
		Action:  models.ActionSyncFullDB,
		Payload: models.SyncPayload{Batches: []models.Batch{batch("B-1", 1)}},
	})

	assert.False(t, resp.Success)
	assert.Equal(t, "sync lock busy", resp.Error)
}

func TestSyncFullReleasesLock(t *testing.T) {
	svc, _, locker := newTestService(t)
	ctx := context.Background()

	_, err := svc.SyncFull(ctx, models.SyncPayload{Batches: []models.Batch{batch("B-1", 1)}})
	require.NoError(t, err)

	release, err := locker.Acquire(ctx, "test-lock", 10*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}

func TestHandleGetReturnsAllTables(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.SyncFull(ctx, models.SyncPayload{
		Batches:       []models.Batch{batch("B-1", 1), batch("B-2", 2)},
		Inventory:     []models.InventoryItem{{ID: "i-1", Name: "Pouch", Quantity: 40, UnitCost: 0.2}},
		FinishedGoods: []models.FinishedGood{{ID: "fg-1", BatchID: "B-1", Quantity: 10, SellingPrice: 15}},
		DailyCosts:    []models.DailyCostMetric{{ID: "cost-1", ReferenceID: "B-1", Date: "2025-03-14", TotalCost: 9.5}},
	})
	require.NoError(t, err)

	resp := svc.HandleGet(ctx, models.ActionGetFullDB)

	require.True(t, resp.Success)
	data, ok := resp.Data.(models.SyncPayload)
	require.True(t, ok)
	assert.Len(t, data.Batches, 2)
	assert.Len(t, data.Inventory, 1)
	assert.InDelta(t, 0.2, data.Inventory[0].UnitCost, 1e-9)
	assert.Equal(t, 10, data.FinishedGoods[0].Quantity)
	assert.InDelta(t, 9.5, data.DailyCosts[0].TotalCost, 1e-9)
	assert.NotNil(t, data.Customers)
	assert.Empty(t, data.Customers)
}

func TestHandleGetRejectsUnknownAction(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp := svc.HandleGet(context.Background(), "CHECK_ALERTS")

	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid Action", resp.Message)
}

func TestMirrorPushesSnapshot(t *testing.T) {
	svc, table, _ := newTestService(t)
	ctx := context.Background()

	summary, err := svc.Mirror(ctx, staticSnapshot{payload: models.SyncPayload{Batches: []models.Batch{batch("B-7", 1)}}})
	require.NoError(t, err)
	assert.Equal(t, 1, summary[SheetBatches].Appended)

	rows, err := table.ReadRows(ctx, SheetBatches)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = svc.Mirror(ctx, staticSnapshot{err: errors.New("mongo down")})
	assert.ErrorContains(t, err, "mongo down")
}
