package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

type stubRepo struct {
	batches  []models.Batch
	goods    []models.FinishedGood
	sales    []models.SalesRecord
	salesErr error
}

func (s stubRepo) ListBatches(context.Context) ([]models.Batch, error) { return s.batches, nil }
func (s stubRepo) ListFinishedGoods(context.Context) ([]models.FinishedGood, error) {
	return s.goods, nil
}
func (s stubRepo) List(context.Context) ([]models.SalesRecord, error) {
	return s.sales, s.salesErr
}

type fixedRates models.Rates

func (f fixedRates) Rates(context.Context) models.Rates { return models.Rates(f) }

type fixedReport models.PeriodReport

func (f fixedReport) PeriodReport(context.Context, models.ReportPeriod) (models.PeriodReport, error) {
	return models.PeriodReport(f), nil
}

func sampleRepo() stubRepo {
	return stubRepo{
		batches: []models.Batch{
			{Status: models.BatchReceived, NetWeightKg: 10},
			{Status: models.BatchReceived, NetWeightKg: 5},
			{Status: models.BatchProcessing, NetWeightKg: 8},
			{Status: models.BatchDryingComplete, NetWeightKg: 2.5},
			{Status: models.BatchPacked, NetWeightKg: 1},
		},
		goods: []models.FinishedGood{{Quantity: 20}, {Quantity: 12}},
		sales: []models.SalesRecord{
			{Status: models.SalePaid, TotalAmount: 90},
			{Status: models.SaleInvoiced, TotalAmount: 500},
		},
	}
}

func TestOverview(t *testing.T) {
	repo := sampleRepo()
	svc := NewService(repo, repo, fixedRates{LaborRate: 12.5, RawMaterialRate: 8}, nil, nil)

	stats, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Received)
	assert.Equal(t, 1, stats.Processing)
	assert.Equal(t, 1, stats.ReadyToPack)
	assert.Equal(t, 32, stats.FinishedUnits)
	assert.InDelta(t, 26.5, stats.TotalNetWeightKg, 1e-9)
	assert.InDelta(t, 90, stats.PaidRevenue, 1e-9)
	assert.InDelta(t, 12.5, stats.LaborRate, 1e-9)
}

func TestOverviewSurfacesErrors(t *testing.T) {
	repo := sampleRepo()
	repo.salesErr = errors.New("connection reset")
	svc := NewService(repo, repo, fixedRates{}, nil, nil)

	_, err := svc.Overview(context.Background())

	assert.ErrorContains(t, err, "connection reset")
}

func TestWeeklySummary(t *testing.T) {
	report := fixedReport{
		Period: models.PeriodWeek, From: "2025-03-07", Revenue: 100, OrderCount: 2, AvgOrderValue: 50,
		RawCost: 10, LaborCost: 5, WastageCost: 1, PackageCost: 8, TotalExpense: 24, NetProfit: 76, MarginPercent: 76,
	}
	repo := sampleRepo()
	svc := NewService(repo, repo, fixedRates{}, report, nil)

	text, err := svc.WeeklySummary(context.Background(), time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "Weekly summary (2025-03-07-2025-03-14)\n"+
		"Sales: 100.00 across 2 paid orders (avg 50.00).\n"+
		"Costs: 24.00 (raw 10.00, labor 5.00, wastage 1.00, packaging 8.00).\n"+
		"Net: 76.00, margin 76.0%.\n"+
		"Floor: 2 received, 1 processing, 1 ready to pack, 32 units in stock.", text)
}

func TestFormatWeeklySummaryWithoutSales(t *testing.T) {
	text := FormatWeeklySummary(models.PeriodReport{From: "2025-03-07", TotalExpense: 4, NetProfit: -4}, models.OverviewStats{}, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))

	assert.Contains(t, text, "Sales: no paid orders this week.")
	assert.Contains(t, text, "Net: -4.00.")
}
