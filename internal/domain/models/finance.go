package models

// DailyCostMetric is one cost entry logged against a batch or activity on a day.
type DailyCostMetric struct {
	ID              string  `bson:"_id" json:"id"`
	ReferenceID     string  `bson:"referenceId" json:"referenceId"`
	Date            string  `bson:"date" json:"date"`
	RawMaterialCost float64 `bson:"rawMaterialCost" json:"rawMaterialCost"`
	PackagingCost   float64 `bson:"packagingCost" json:"packagingCost"`
	LaborCost       float64 `bson:"laborCost" json:"laborCost"`
	WastageCost     float64 `bson:"wastageCost" json:"wastageCost"`
	TotalCost       float64 `bson:"totalCost" json:"totalCost"`
	WeightProcessed float64 `bson:"weightProcessed" json:"weightProcessed"`
	ProcessingHours float64 `bson:"processingHours" json:"processingHours"`
}

// Budget holds the monthly financial targets.
type Budget struct {
	ID            string  `bson:"_id" json:"id"`
	Month         string  `bson:"month" json:"month"`
	TargetRevenue float64 `bson:"targetRevenue" json:"targetRevenue"`
	TargetProfit  float64 `bson:"targetProfit" json:"targetProfit"`
	MaxWastageKg  float64 `bson:"maxWastageKg" json:"maxWastageKg"`
}

// Rates are the process-wide costing settings.
type Rates struct {
	LaborRate       float64 `bson:"laborRate" json:"laborRate"`
	RawMaterialRate float64 `bson:"rawMaterialRate" json:"rawMaterialRate"`
}

// RevenuePoint is one day of the trailing revenue series.
type RevenuePoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// FinanceOverview is the read model behind the finance dashboard.
type FinanceOverview struct {
	PackagingProcurement float64 `json:"packagingProcurement"`
	RawMaterialCost      float64 `json:"rawMaterialCost"`
	LaborCost            float64 `json:"laborCost"`
	WastageCost          float64 `json:"wastageCost"`
	OverallCost          float64 `json:"overallCost"`
	SalesRevenue         float64 `json:"salesRevenue"`
	NetProfit            float64 `json:"netProfit"`
	AvgCostPerUnit       float64 `json:"avgCostPerUnit"`
	RevenueProgress      float64 `json:"revenueProgress"`
	ProfitProgress       float64 `json:"profitProgress"`
	Budget               *Budget `json:"budget,omitempty"`
}

// ReportPeriod selects the trailing window of a period report.
type ReportPeriod string

const (
	PeriodWeek  ReportPeriod = "WEEK"
	PeriodMonth ReportPeriod = "MONTH"
)

// PeriodReport summarises revenue and expenses over a trailing window.
type PeriodReport struct {
	Period        ReportPeriod `json:"period"`
	From          string       `json:"from"`
	To            string       `json:"to"`
	Revenue       float64      `json:"revenue"`
	RawCost       float64      `json:"rawCost"`
	LaborCost     float64      `json:"laborCost"`
	WastageCost   float64      `json:"wastageCost"`
	PackageCost   float64      `json:"packageCost"`
	TotalExpense  float64      `json:"totalExpense"`
	NetProfit     float64      `json:"netProfit"`
	OrderCount    int          `json:"orderCount"`
	AvgOrderValue float64      `json:"avgOrderValue"`
	MarginPercent float64      `json:"marginPercent"`
}

// OverviewStats feeds the operations overview dashboard.
type OverviewStats struct {
	Received         int     `json:"received"`
	Processing       int     `json:"processing"`
	ReadyToPack      int     `json:"readyToPack"`
	FinishedUnits    int     `json:"finishedUnits"`
	TotalNetWeightKg float64 `json:"totalNetWeightKg"`
	PaidRevenue      float64 `json:"paidRevenue"`
	LaborRate        float64 `json:"laborRate"`
	RawMaterialRate  float64 `json:"rawMaterialRate"`
}

// BudgetRequest sets the targets of one month.
type BudgetRequest struct {
	Month         string  `json:"month" binding:"omitempty,datetime=2006-01"`
	TargetRevenue float64 `json:"targetRevenue" binding:"gte=0"`
	TargetProfit  float64 `json:"targetProfit"`
	MaxWastageKg  float64 `json:"maxWastageKg" binding:"gte=0"`
}
