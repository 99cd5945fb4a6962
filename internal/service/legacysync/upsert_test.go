package legacysync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
	"github.com/mamadbah2/shroomtrack/internal/repository/sheets"
)

func batch(id string, net float64) models.Batch {
	return models.Batch{
		ID:              id,
		Status:          models.BatchReceived,
		SourceFarm:      "Hillside",
		DateReceived:    "2025-03-14T09:00:00Z",
		RawWeightKg:     net + 0.5,
		SpoiledWeightKg: 0.5,
		NetWeightKg:     net,
	}
}

func TestUpsertUpdatesInPlaceAndAppendsNew(t *testing.T) {
	ctx := context.Background()
	table := sheets.NewMemoryRepository()
	_, err := Upsert(ctx, table, BatchSchema, []models.Batch{batch("B-100", 2.0)})
	require.NoError(t, err)

	updated := batch("B-100", 3.0)
	updated.Status = models.BatchProcessing
	result, err := Upsert(ctx, table, BatchSchema, []models.Batch{updated, batch("B-200", 1.0)})
	require.NoError(t, err)
	assert.Equal(t, UpsertResult{Updated: 1, Appended: 1}, result)

	rows, err := table.ReadRows(ctx, SheetBatches)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "B-100", rows[1][0])
	assert.Equal(t, "PROCESSING", rows[1][1])
	assert.Equal(t, 3.0, rows[1][6])
	assert.Equal(t, "B-200", rows[2][0])
}

func TestUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	table := sheets.NewMemoryRepository()
	items := []models.Batch{batch("B-1", 1), batch("B-2", 2), batch("B-3", 3)}

	_, err := Upsert(ctx, table, BatchSchema, items)
	require.NoError(t, err)
	first, err := table.ReadRows(ctx, SheetBatches)
	require.NoError(t, err)

	result, err := Upsert(ctx, table, BatchSchema, items)
	require.NoError(t, err)
	second, err := table.ReadRows(ctx, SheetBatches)
	require.NoError(t, err)

	assert.Equal(t, UpsertResult{Updated: 3}, result)
	assert.Equal(t, first, second)
}

func TestUpsertCoalescesAppendsIntoOneWrite(t *testing.T) {
	ctx := context.Background()
	table := sheets.NewMemoryRepository()
	require.NoError(t, table.EnsureSheet(ctx, SheetBatches, BatchSchema.Headers))
	before := table.Writes()

	_, err := Upsert(ctx, table, BatchSchema, []models.Batch{batch("B-1", 1), batch("B-2", 2), batch("B-3", 3), batch("B-4", 4)})
	require.NoError(t, err)

	assert.Equal(t, 1, table.Writes()-before)
	rows, err := table.ReadRows(ctx, SheetBatches)
	require.NoError(t, err)
	ids := []string{CellText(rows[1][0]), CellText(rows[2][0]), CellText(rows[3][0]), CellText(rows[4][0])}
	assert.Equal(t, []string{"B-1", "B-2", "B-3", "B-4"}, ids)
}

func TestUpsertMatchesNumericKeys(t *testing.T) {
	ctx := context.Background()
	table := sheets.NewMemoryRepository()
	require.NoError(t, table.EnsureSheet(ctx, SheetCustomers, CustomerSchema.Headers))
	// a spreadsheet may hand numeric ids back as numbers
	require.NoError(t, table.WriteRows(ctx, SheetCustomers, 2, [][]interface{}{{float64(100), "Old name"}}))

	result, err := Upsert(ctx, table, CustomerSchema, []models.Customer{{ID: "100", Name: "New name"}})
	require.NoError(t, err)

	assert.Equal(t, UpsertResult{Updated: 1}, result)
	rows, err := table.ReadRows(ctx, SheetCustomers)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "New name", rows[1][1])
}

func TestUpsertWritesHeaderIntoBlankSheet(t *testing.T) {
	ctx := context.Background()
	table := sheets.NewMemoryRepository()
	// the sheet exists but every row was cleared
	require.NoError(t, table.WriteRows(ctx, SheetBatches, 1, nil))

	result, err := Upsert(ctx, table, BatchSchema, []models.Batch{batch("B-1", 1.0)})
	require.NoError(t, err)
	assert.Equal(t, UpsertResult{Appended: 1}, result)

	rows, err := table.ReadRows(ctx, SheetBatches)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "B-1", rows[1][0])
}

func TestUpsertLaterDuplicateWins(t *testing.T) {
	ctx := context.Background()
	table := sheets.NewMemoryRepository()

	result, err := Upsert(ctx, table, CustomerSchema, []models.Customer{
		{ID: "c-1", Name: "First"},
		{ID: "c-2", Name: "Other"},
		{ID: "c-1", Name: "Second"},
	})
	require.NoError(t, err)

	assert.Equal(t, UpsertResult{Appended: 2}, result)
	rows, err := table.ReadRows(ctx, SheetCustomers)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Second", rows[1][1])
	assert.Equal(t, "Other", rows[2][1])
}

func TestReadAllToleratesSparseRows(t *testing.T) {
	ctx := context.Background()
	table := sheets.NewMemoryRepository()
	require.NoError(t, table.EnsureSheet(ctx, SheetBatches, BatchSchema.Headers))
	require.NoError(t, table.WriteRows(ctx, SheetBatches, 2, [][]interface{}{
		{"B-1", "RECEIVED", "Hillside", "2025-03-14", "2.5", "", "2.5"},
		{},
		{"B-2", "PROCESSING", "Valley", "2025-03-15", "3", "0.5", "2.5", "", "", "", "CHIPS", "", `{"startTime":1000,"washDurationSeconds":240,"drainDurationSeconds":120,"cookDurationSeconds":2400,"totalDurationSeconds":2760}`},
	}))

	got, err := ReadAll(ctx, table, BatchSchema)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "B-1", got[0].ID)
	assert.InDelta(t, 2.5, got[0].RawWeightKg, 1e-9)
	assert.Zero(t, got[0].SpoiledWeightKg)
	assert.Empty(t, got[0].PackedDate)
	assert.Zero(t, got[0].PackCount)
	assert.Nil(t, got[0].ProcessConfig)

	assert.Equal(t, "CHIPS", got[1].RecipeType)
	assert.Equal(t, "CHIPS", got[1].SelectedRecipeName)
	require.NotNil(t, got[1].ProcessConfig)
	assert.EqualValues(t, 2760, got[1].ProcessConfig.TotalDurationSeconds)
	assert.EqualValues(t, 1000, got[1].ProcessConfig.StartTime)
}

func TestReadAllRejectsMalformedConfig(t *testing.T) {
	ctx := context.Background()
	table := sheets.NewMemoryRepository()
	require.NoError(t, table.EnsureSheet(ctx, SheetBatches, BatchSchema.Headers))
	require.NoError(t, table.WriteRows(ctx, SheetBatches, 2, [][]interface{}{
		{"B-1", "PROCESSING", "", "", "", "", "", "", "", "", "", "", "{not json"},
	}))

	_, err := ReadAll(ctx, table, BatchSchema)

	assert.ErrorContains(t, err, "row 2")
}

func TestBatchRowRoundTripKeepsConfig(t *testing.T) {
	b := batch("B-9", 2)
	b.PackCount = 12
	b.RecipeType = "CHIPS"
	b.ProcessConfig = &models.ProcessConfig{StartTime: 42, WashDurationSeconds: 240, DrainDurationSeconds: 120, CookDurationSeconds: 2400, TotalDurationSeconds: 2760}

	row := BatchSchema.ToRow(b)
	require.Len(t, row, len(BatchSchema.Headers))

	parsed, err := BatchSchema.FromRow(Row(row))
	require.NoError(t, err)
	assert.Equal(t, *b.ProcessConfig, *parsed.ProcessConfig)
	assert.Equal(t, 12, parsed.PackCount)
	assert.Equal(t, "", BatchSchema.ToRow(batch("B-0", 1))[11])
}

func TestRowCoercion(t *testing.T) {
	row := Row{float64(7), "1,250.5", "abc", nil}

	assert.Equal(t, "7", row.Text(0))
	assert.InDelta(t, 1250.5, row.Number(1), 1e-9)
	assert.Zero(t, row.Number(2))
	assert.Equal(t, "", row.Text(3))
	assert.Equal(t, "", row.Text(10))
	assert.Equal(t, 7, row.Int(0))
}
