package finance

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

const reportSheet = "Report"

// ReportWorkbook lays a period report out as a two-column workbook.
func ReportWorkbook(r models.PeriodReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("name report sheet: %w", err)
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	labelStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E2EFDA"}},
	})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4})

	f.SetCellValue(reportSheet, "A1", fmt.Sprintf("Financial report (%s)", r.Period))
	f.SetCellStyle(reportSheet, "A1", "A1", titleStyle)
	f.SetCellValue(reportSheet, "A2", fmt.Sprintf("%s to %s", r.From, r.To))

	rows := []struct {
		label string
		value interface{}
		money bool
	}{
		{"Revenue", r.Revenue, true},
		{"Orders", r.OrderCount, false},
		{"Average order value", r.AvgOrderValue, true},
		{"Raw material cost", r.RawCost, true},
		{"Labor cost", r.LaborCost, true},
		{"Wastage cost", r.WastageCost, true},
		{"Packaging cost", r.PackageCost, true},
		{"Total expense", r.TotalExpense, true},
		{"Net profit", r.NetProfit, true},
		{"Margin %", r.MarginPercent, true},
	}

	for i, row := range rows {
		n := i + 4
		label := fmt.Sprintf("A%d", n)
		value := fmt.Sprintf("B%d", n)
		f.SetCellValue(reportSheet, label, row.label)
		f.SetCellStyle(reportSheet, label, label, labelStyle)
		f.SetCellValue(reportSheet, value, row.value)
		if row.money {
			f.SetCellStyle(reportSheet, value, value, moneyStyle)
		}
	}
	f.SetColWidth(reportSheet, "A", "A", 24)
	f.SetColWidth(reportSheet, "B", "B", 16)

	return f, nil
}
