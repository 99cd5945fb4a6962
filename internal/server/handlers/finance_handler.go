package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FinanceService computes costs, revenue and budgets.
type FinanceService interface {
	Rates(ctx context.Context) models.Rates
	SetRates(ctx context.Context, rates models.Rates) (models.Rates, error)
	DailyCosts(ctx context.Context) ([]models.DailyCostMetric, error)
	UpdateDailyCost(ctx context.Context, id string, update models.DailyCostMetric) (models.DailyCostMetric, error)
	WeeklyRevenue(ctx context.Context) ([]models.RevenuePoint, error)
	Budget(ctx context.Context, month string) (models.Budget, error)
	SetBudget(ctx context.Context, req models.BudgetRequest) (models.Budget, error)
	Overview(ctx context.Context) (models.FinanceOverview, error)
	PeriodReport(ctx context.Context, period models.ReportPeriod) (models.PeriodReport, error)
	ExportPeriodReport(ctx context.Context, period models.ReportPeriod) (*excelize.File, string, error)
}

// FinanceHandler exposes the finance module.
type FinanceHandler struct {
	svc    FinanceService
	logger *zap.Logger
}

// NewFinanceHandler constructs the finance endpoints.
func NewFinanceHandler(svc FinanceService, logger *zap.Logger) *FinanceHandler {
	return &FinanceHandler{svc: svc, logger: orNop(logger)}
}

func (h *FinanceHandler) GetRates(c *gin.Context) {
	ok(c, h.svc.Rates(c.Request.Context()))
}

func (h *FinanceHandler) SetRates(c *gin.Context) {
	var rates models.Rates
	if !bind(c, h.logger, &rates) {
		return
	}
	saved, err := h.svc.SetRates(c.Request.Context(), rates)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, saved)
}

func (h *FinanceHandler) DailyCosts(c *gin.Context) {
	costs, err := h.svc.DailyCosts(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, costs)
}

// UpdateDailyCost edits one day's cost line; the total is recomputed.
func (h *FinanceHandler) UpdateDailyCost(c *gin.Context) {
	var update models.DailyCostMetric
	if !bind(c, h.logger, &update) {
		return
	}
	saved, err := h.svc.UpdateDailyCost(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, saved)
}

func (h *FinanceHandler) WeeklyRevenue(c *gin.Context) {
	points, err := h.svc.WeeklyRevenue(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, points)
}

func (h *FinanceHandler) Overview(c *gin.Context) {
	overview, err := h.svc.Overview(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, overview)
}

func (h *FinanceHandler) Report(c *gin.Context) {
	period, valid := h.period(c)
	if !valid {
		return
	}
	report, err := h.svc.PeriodReport(c.Request.Context(), period)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, report)
}

// Export streams the period report as an xlsx attachment.
func (h *FinanceHandler) Export(c *gin.Context) {
	period, valid := h.period(c)
	if !valid {
		return
	}
	f, filename, err := h.svc.ExportPeriodReport(c.Request.Context(), period)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			h.logger.Warn("failed to close workbook", zap.Error(err))
		}
	}()

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("failed to write workbook", zap.String("file", filename), zap.Error(err))
	}
}

func (h *FinanceHandler) GetBudget(c *gin.Context) {
	budget, err := h.svc.Budget(c.Request.Context(), c.Query("month"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, budget)
}

func (h *FinanceHandler) SetBudget(c *gin.Context) {
	var req models.BudgetRequest
	if !bind(c, h.logger, &req) {
		return
	}
	budget, err := h.svc.SetBudget(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, budget)
}

// period reads ?period=, defaulting to the trailing week.
func (h *FinanceHandler) period(c *gin.Context) (models.ReportPeriod, bool) {
	switch p := models.ReportPeriod(strings.ToUpper(c.DefaultQuery("period", string(models.PeriodWeek)))); p {
	case models.PeriodWeek, models.PeriodMonth:
		return p, true
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: "period must be WEEK or MONTH"})
		return "", false
	}
}
