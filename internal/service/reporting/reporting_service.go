package reporting

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

const dateLayout = "2006-01-02"

// Repository exposes the collections the dashboards summarise.
type Repository interface {
	ListBatches(ctx context.Context) ([]models.Batch, error)
	ListFinishedGoods(ctx context.Context) ([]models.FinishedGood, error)
}

// SalesSource lists sales documents.
type SalesSource interface {
	List(ctx context.Context) ([]models.SalesRecord, error)
}

// RateProvider exposes the current costing rates.
type RateProvider interface {
	Rates(ctx context.Context) models.Rates
}

// PeriodReporter produces trailing-window finance reports.
type PeriodReporter interface {
	PeriodReport(ctx context.Context, period models.ReportPeriod) (models.PeriodReport, error)
}

// Service exposes the overview dashboard and the weekly WhatsApp summary.
type Service struct {
	repo    Repository
	sales   SalesSource
	rates   RateProvider
	finance PeriodReporter
	logger  *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(repository Repository, sales SalesSource, rates RateProvider, finance PeriodReporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repository, sales: sales, rates: rates, finance: finance, logger: logger}
}

// Overview counts batches per stage and totals stock and paid revenue.
func (s *Service) Overview(ctx context.Context) (models.OverviewStats, error) {
	var (
		batches []models.Batch
		goods   []models.FinishedGood
		sales   []models.SalesRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { batches, err = s.repo.ListBatches(gctx); return err })
	g.Go(func() (err error) { goods, err = s.repo.ListFinishedGoods(gctx); return err })
	g.Go(func() (err error) { sales, err = s.sales.List(gctx); return err })
	if err := g.Wait(); err != nil {
		return models.OverviewStats{}, fmt.Errorf("load overview data: %w", err)
	}

	stats := OverviewStats(batches, goods, sales)
	rates := s.rates.Rates(ctx)
	stats.LaborRate = rates.LaborRate
	stats.RawMaterialRate = rates.RawMaterialRate
	return stats, nil
}

// OverviewStats derives the dashboard counters.
func OverviewStats(batches []models.Batch, goods []models.FinishedGood, sales []models.SalesRecord) models.OverviewStats {
	var stats models.OverviewStats
	for _, b := range batches {
		switch b.Status {
		case models.BatchReceived:
			stats.Received++
		case models.BatchProcessing:
			stats.Processing++
		case models.BatchDryingComplete:
			stats.ReadyToPack++
		}
		stats.TotalNetWeightKg += b.NetWeightKg
	}
	for _, g := range goods {
		stats.FinishedUnits += g.Quantity
	}
	for _, sale := range sales {
		if sale.Status == models.SalePaid {
			stats.PaidRevenue += sale.TotalAmount
		}
	}
	return stats
}

// WeeklySummary renders the trailing week as a short text message.
func (s *Service) WeeklySummary(ctx context.Context, now time.Time) (string, error) {
	report, err := s.finance.PeriodReport(ctx, models.PeriodWeek)
	if err != nil {
		return "", fmt.Errorf("weekly finance report: %w", err)
	}
	overview, err := s.Overview(ctx)
	if err != nil {
		return "", err
	}
	return FormatWeeklySummary(report, overview, now), nil
}

// FormatWeeklySummary lays out the weekly message.
func FormatWeeklySummary(r models.PeriodReport, o models.OverviewStats, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weekly summary (%s-%s)\n", r.From, now.Format(dateLayout))

	if r.OrderCount == 0 {
		b.WriteString("Sales: no paid orders this week.\n")
	} else {
		fmt.Fprintf(&b, "Sales: %.2f across %d paid orders (avg %.2f).\n", r.Revenue, r.OrderCount, r.AvgOrderValue)
	}
	fmt.Fprintf(&b, "Costs: %.2f (raw %.2f, labor %.2f, wastage %.2f, packaging %.2f).\n",
		r.TotalExpense, r.RawCost, r.LaborCost, r.WastageCost, r.PackageCost)

	if r.Revenue > 0 {
		fmt.Fprintf(&b, "Net: %.2f, margin %.1f%%.\n", r.NetProfit, math.Round(r.MarginPercent*10)/10)
	} else {
		fmt.Fprintf(&b, "Net: %.2f.\n", r.NetProfit)
	}
	fmt.Fprintf(&b, "Floor: %d received, %d processing, %d ready to pack, %d units in stock.",
		o.Received, o.Processing, o.ReadyToPack, o.FinishedUnits)
	return b.String()
}
