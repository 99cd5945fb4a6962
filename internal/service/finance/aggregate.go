package finance

import (
	"sort"
	"strings"
	"time"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

const dateLayout = "2006-01-02"

// AggregateDailyCosts merges cost rows sharing (date, referenceId) by summing
// every numeric field. The result is sorted by date, most recent first.
func AggregateDailyCosts(costs []models.DailyCostMetric) []models.DailyCostMetric {
	index := make(map[string]int, len(costs))
	out := make([]models.DailyCostMetric, 0, len(costs))

	for _, c := range costs {
		key := c.Date + "|" + c.ReferenceID
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, c)
			continue
		}
		agg := &out[i]
		agg.WeightProcessed += c.WeightProcessed
		agg.ProcessingHours += c.ProcessingHours
		agg.RawMaterialCost += c.RawMaterialCost
		agg.PackagingCost += c.PackagingCost
		agg.LaborCost += c.LaborCost
		agg.WastageCost += c.WastageCost
		agg.TotalCost += c.TotalCost
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := parseInstant(out[i].Date)
		tj, _ := parseInstant(out[j].Date)
		return ti.After(tj)
	})
	return out
}

// WeeklyRevenue returns the PAID revenue of the seven days ending on today,
// oldest first. Days without sales are present with a zero amount.
func WeeklyRevenue(sales []models.SalesRecord, today time.Time) []models.RevenuePoint {
	today = today.UTC()
	points := make([]models.RevenuePoint, 7)
	index := make(map[string]int, 7)
	for i := 0; i < 7; i++ {
		day := today.AddDate(0, 0, i-6).Format(dateLayout)
		points[i] = models.RevenuePoint{Date: day}
		index[day] = i
	}

	for _, s := range sales {
		if s.Status != models.SalePaid {
			continue
		}
		day, _, _ := strings.Cut(s.DateCreated, "T")
		if i, ok := index[day]; ok {
			points[i].Amount += s.TotalAmount
		}
	}
	return points
}

// Progress returns actual as a percentage of target, or 0 when no positive
// target is set.
func Progress(actual, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return actual / target * 100
}

// DisplayStatus maps a purchase order to the status shown to operators:
// resolved orders whose resolution mentions a refund read as CANCELLED.
func DisplayStatus(po models.PurchaseOrder) models.PurchaseOrderStatus {
	if po.Status == models.POResolved && strings.Contains(po.ComplaintResolution, "Refund") {
		return models.POCancelled
	}
	return po.Status
}

// Overview computes the finance dashboard figures.
func Overview(costs []models.DailyCostMetric, sales []models.SalesRecord, orders []models.PurchaseOrder, goods []models.FinishedGood, budget *models.Budget) models.FinanceOverview {
	var o models.FinanceOverview

	for _, po := range orders {
		if po.Status == models.POReceived || po.Status == models.POOrdered {
			o.PackagingProcurement += po.TotalCost
		}
	}
	for _, c := range costs {
		o.RawMaterialCost += c.RawMaterialCost
		o.LaborCost += c.LaborCost
		o.WastageCost += c.WastageCost
	}
	o.OverallCost = o.PackagingProcurement + o.RawMaterialCost + o.LaborCost + o.WastageCost

	for _, s := range sales {
		if s.Status == models.SalePaid {
			o.SalesRevenue += s.TotalAmount
		}
	}
	o.NetProfit = o.SalesRevenue - o.OverallCost

	units := 0
	for _, g := range goods {
		units += g.Quantity
	}
	if units > 0 {
		o.AvgCostPerUnit = o.OverallCost / float64(units)
	}

	if budget != nil {
		o.Budget = budget
		o.RevenueProgress = Progress(o.SalesRevenue, budget.TargetRevenue)
		o.ProfitProgress = Progress(o.NetProfit, budget.TargetProfit)
	}
	return o
}

// PeriodDays returns the length of a report period; anything but WEEK is a month.
func PeriodDays(p models.ReportPeriod) int {
	if p == models.PeriodWeek {
		return 7
	}
	return 30
}

// BuildPeriodReport summarises the trailing window of period ending at now.
func BuildPeriodReport(period models.ReportPeriod, now time.Time, costs []models.DailyCostMetric, sales []models.SalesRecord, orders []models.PurchaseOrder) models.PeriodReport {
	if period != models.PeriodWeek {
		period = models.PeriodMonth
	}
	cutoff := now.AddDate(0, 0, -PeriodDays(period))
	r := models.PeriodReport{
		Period: period,
		From:   cutoff.Format(dateLayout),
		To:     now.Format(dateLayout),
	}

	for _, s := range sales {
		if s.Status != models.SalePaid || !onOrAfter(s.DateCreated, cutoff) {
			continue
		}
		r.Revenue += s.TotalAmount
		r.OrderCount++
	}
	for _, c := range costs {
		if !onOrAfter(c.Date, cutoff) {
			continue
		}
		r.RawCost += c.RawMaterialCost
		r.LaborCost += c.LaborCost
		r.WastageCost += c.WastageCost
	}
	for _, po := range orders {
		when := po.DateReceived
		if when == "" {
			when = po.DateOrdered
		}
		if po.Status == models.POReceived && onOrAfter(when, cutoff) {
			r.PackageCost += po.TotalCost
		}
	}

	r.TotalExpense = r.RawCost + r.LaborCost + r.WastageCost + r.PackageCost
	r.NetProfit = r.Revenue - r.TotalExpense
	if r.OrderCount > 0 {
		r.AvgOrderValue = r.Revenue / float64(r.OrderCount)
	}
	if r.Revenue > 0 {
		r.MarginPercent = r.NetProfit / r.Revenue * 100
	}
	return r
}

func onOrAfter(value string, cutoff time.Time) bool {
	t, ok := parseInstant(value)
	return ok && !t.Before(cutoff)
}

func parseInstant(value string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, dateLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
