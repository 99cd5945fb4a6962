// Package finance derives the cost, revenue and budget figures of the
// business from the document store.
package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

// DefaultMaxWastageKg is stored with budgets that do not set a wastage cap.
const DefaultMaxWastageKg = 50

// Repository exposes the collections finance reads from.
type Repository interface {
	ListDailyCosts(ctx context.Context) ([]models.DailyCostMetric, error)
	GetDailyCost(ctx context.Context, id string) (models.DailyCostMetric, error)
	SaveDailyCost(ctx context.Context, cost models.DailyCostMetric) error
	ListPurchaseOrders(ctx context.Context) ([]models.PurchaseOrder, error)
	ListFinishedGoods(ctx context.Context) ([]models.FinishedGood, error)
	GetBudget(ctx context.Context, month string) (models.Budget, error)
	SaveBudget(ctx context.Context, budget models.Budget) error
}

// SalesSource lists sales documents, serving the last good copy when the
// store is unreachable.
type SalesSource interface {
	List(ctx context.Context) ([]models.SalesRecord, error)
}

// Service answers finance dashboard and reporting queries.
type Service struct {
	repo   Repository
	sales  SalesSource
	rates  *RateStore
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the finance service.
func NewService(repo Repository, sales SalesSource, rates *RateStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, sales: sales, rates: rates, logger: logger, now: time.Now}
}

// Rates returns the current costing rates.
func (s *Service) Rates(ctx context.Context) models.Rates {
	return s.rates.Rates(ctx)
}

// SetRates replaces the costing rates.
func (s *Service) SetRates(ctx context.Context, rates models.Rates) (models.Rates, error) {
	return s.rates.SetRates(ctx, rates)
}

// DailyCosts returns the cost rows aggregated per day and reference.
func (s *Service) DailyCosts(ctx context.Context) ([]models.DailyCostMetric, error) {
	costs, err := s.repo.ListDailyCosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list daily costs: %w", err)
	}
	return AggregateDailyCosts(costs), nil
}

// UpdateDailyCost overwrites the editable amounts of a cost row and
// recomputes its total.
func (s *Service) UpdateDailyCost(ctx context.Context, id string, update models.DailyCostMetric) (models.DailyCostMetric, error) {
	cost, err := s.repo.GetDailyCost(ctx, id)
	if err != nil {
		return models.DailyCostMetric{}, err
	}
	cost.RawMaterialCost = update.RawMaterialCost
	cost.PackagingCost = update.PackagingCost
	cost.LaborCost = update.LaborCost
	cost.WastageCost = update.WastageCost
	if update.WeightProcessed != 0 {
		cost.WeightProcessed = update.WeightProcessed
	}
	if update.ProcessingHours != 0 {
		cost.ProcessingHours = update.ProcessingHours
	}
	cost.TotalCost = cost.RawMaterialCost + cost.PackagingCost + cost.LaborCost + cost.WastageCost

	if err := s.repo.SaveDailyCost(ctx, cost); err != nil {
		return models.DailyCostMetric{}, fmt.Errorf("save daily cost: %w", err)
	}
	return cost, nil
}

// WeeklyRevenue returns the trailing seven days of paid revenue.
func (s *Service) WeeklyRevenue(ctx context.Context) ([]models.RevenuePoint, error) {
	sales, err := s.sales.List(ctx)
	if err != nil {
		return nil, err
	}
	return WeeklyRevenue(sales, s.now()), nil
}

// Budget returns the budget of month (YYYY-MM), defaulting to the current month.
func (s *Service) Budget(ctx context.Context, month string) (models.Budget, error) {
	if month == "" {
		month = s.currentMonth()
	}
	return s.repo.GetBudget(ctx, month)
}

// SetBudget stores the targets of a month.
func (s *Service) SetBudget(ctx context.Context, req models.BudgetRequest) (models.Budget, error) {
	month := req.Month
	if month == "" {
		month = s.currentMonth()
	}
	budget := models.Budget{
		ID:            month,
		Month:         month,
		TargetRevenue: req.TargetRevenue,
		TargetProfit:  req.TargetProfit,
		MaxWastageKg:  req.MaxWastageKg,
	}
	if budget.MaxWastageKg <= 0 {
		budget.MaxWastageKg = DefaultMaxWastageKg
	}
	if err := s.repo.SaveBudget(ctx, budget); err != nil {
		return models.Budget{}, fmt.Errorf("save budget: %w", err)
	}
	s.logger.Info("budget saved", zap.String("month", month))
	return budget, nil
}

type ledger struct {
	costs  []models.DailyCostMetric
	sales  []models.SalesRecord
	orders []models.PurchaseOrder
	goods  []models.FinishedGood
}

func (s *Service) load(ctx context.Context, withGoods bool) (ledger, error) {
	var l ledger
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) { l.costs, err = s.repo.ListDailyCosts(gctx); return err })
	g.Go(func() (err error) { l.sales, err = s.sales.List(gctx); return err })
	g.Go(func() (err error) { l.orders, err = s.repo.ListPurchaseOrders(gctx); return err })
	if withGoods {
		g.Go(func() (err error) { l.goods, err = s.repo.ListFinishedGoods(gctx); return err })
	}

	if err := g.Wait(); err != nil {
		return ledger{}, fmt.Errorf("load finance data: %w", err)
	}
	return l, nil
}

// Overview computes the finance dashboard against the current month budget.
func (s *Service) Overview(ctx context.Context) (models.FinanceOverview, error) {
	l, err := s.load(ctx, true)
	if err != nil {
		return models.FinanceOverview{}, err
	}

	var budget *models.Budget
	b, err := s.repo.GetBudget(ctx, s.currentMonth())
	switch {
	case err == nil:
		budget = &b
	case errors.Is(err, models.ErrNotFound):
	default:
		s.logger.Warn("failed to load budget", zap.Error(err))
	}

	return Overview(l.costs, l.sales, l.orders, l.goods, budget), nil
}

// PeriodReport summarises the trailing week or month.
func (s *Service) PeriodReport(ctx context.Context, period models.ReportPeriod) (models.PeriodReport, error) {
	l, err := s.load(ctx, false)
	if err != nil {
		return models.PeriodReport{}, err
	}
	return BuildPeriodReport(period, s.now(), l.costs, l.sales, l.orders), nil
}

// ExportPeriodReport renders the period report as a workbook. The caller
// closes the returned file.
func (s *Service) ExportPeriodReport(ctx context.Context, period models.ReportPeriod) (*excelize.File, string, error) {
	report, err := s.PeriodReport(ctx, period)
	if err != nil {
		return nil, "", err
	}
	f, err := ReportWorkbook(report)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("finance-report-%s-%s.xlsx", report.Period, report.To)
	return f, filename, nil
}

func (s *Service) currentMonth() string {
	return s.now().Format("2006-01")
}
