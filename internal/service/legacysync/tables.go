package legacysync

import (
	"encoding/json"
	"fmt"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

// Sheet names of the legacy spreadsheet backend.
const (
	SheetBatches       = "Processing_Batches"
	SheetInventory     = "Inventory"
	SheetFinishedGoods = "Finished_Goods"
	SheetDailyCosts    = "Daily_Costs"
	SheetCustomers     = "Customers"
)

// BatchSchema maps batches onto the Processing_Batches sheet. The Wash and
// Dry columns are kept blank; the Recipe column carries the recipe type and
// Config the JSON encoded process configuration.
var BatchSchema = Schema[models.Batch]{
	Sheet:   SheetBatches,
	Headers: []string{"ID", "Status", "Source Farm", "Date Received", "Raw Weight", "Spoiled", "Net Weight", "Wash", "Dry", "Packed Date", "Recipe", "Count", "Config"},
	Key:     func(b models.Batch) string { return b.ID },
	ToRow: func(b models.Batch) []interface{} {
		var count interface{} = ""
		if b.PackCount != 0 {
			count = b.PackCount
		}
		config := ""
		if b.ProcessConfig != nil {
			// a struct of int64 fields always marshals
			raw, _ := json.Marshal(b.ProcessConfig)
			config = string(raw)
		}
		return []interface{}{
			b.ID, string(b.Status), b.SourceFarm, b.DateReceived,
			b.RawWeightKg, b.SpoiledWeightKg, b.NetWeightKg,
			"", "", b.PackedDate, b.RecipeType, count, config,
		}
	},
	FromRow: func(r Row) (models.Batch, error) {
		b := models.Batch{
			ID:                 r.Text(0),
			Status:             models.BatchStatus(r.Text(1)),
			SourceFarm:         r.Text(2),
			DateReceived:       r.Text(3),
			RawWeightKg:        r.Number(4),
			SpoiledWeightKg:    r.Number(5),
			NetWeightKg:        r.Number(6),
			PackedDate:         r.Text(9),
			RecipeType:         r.Text(10),
			SelectedRecipeName: r.Text(10),
			PackCount:          r.Int(11),
		}
		if raw := r.Text(12); raw != "" {
			var cfg models.ProcessConfig
			if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
				return b, fmt.Errorf("batch %s config: %w", b.ID, err)
			}
			b.ProcessConfig = &cfg
		}
		return b, nil
	},
}

// InventorySchema maps inventory items onto the Inventory sheet.
var InventorySchema = Schema[models.InventoryItem]{
	Sheet:   SheetInventory,
	Headers: []string{"ID", "Name", "Type", "Subtype", "Quantity", "Threshold", "Unit", "UnitCost", "Supplier", "PackSize"},
	Key:     func(i models.InventoryItem) string { return i.ID },
	ToRow: func(i models.InventoryItem) []interface{} {
		return []interface{}{i.ID, i.Name, i.Type, i.Subtype, i.Quantity, i.Threshold, i.Unit, i.UnitCost, i.Supplier, i.PackSize}
	},
	FromRow: func(r Row) (models.InventoryItem, error) {
		return models.InventoryItem{
			ID:        r.Text(0),
			Name:      r.Text(1),
			Type:      r.Text(2),
			Subtype:   r.Text(3),
			Quantity:  r.Number(4),
			Threshold: r.Number(5),
			Unit:      r.Text(6),
			UnitCost:  r.Number(7),
			Supplier:  r.Text(8),
			PackSize:  r.Number(9),
		}, nil
	},
}

// FinishedGoodSchema maps packed stock onto the Finished_Goods sheet.
var FinishedGoodSchema = Schema[models.FinishedGood]{
	Sheet:   SheetFinishedGoods,
	Headers: []string{"ID", "BatchID", "Recipe", "Packaging", "Quantity", "DatePacked", "SellingPrice"},
	Key:     func(f models.FinishedGood) string { return f.ID },
	ToRow: func(f models.FinishedGood) []interface{} {
		return []interface{}{f.ID, f.BatchID, f.RecipeName, f.PackagingType, f.Quantity, f.DatePacked, f.SellingPrice}
	},
	FromRow: func(r Row) (models.FinishedGood, error) {
		return models.FinishedGood{
			ID:            r.Text(0),
			BatchID:       r.Text(1),
			RecipeName:    r.Text(2),
			PackagingType: r.Text(3),
			Quantity:      r.Int(4),
			DatePacked:    r.Text(5),
			SellingPrice:  r.Number(6),
		}, nil
	},
}

// DailyCostSchema maps cost rows onto the Daily_Costs sheet.
var DailyCostSchema = Schema[models.DailyCostMetric]{
	Sheet:   SheetDailyCosts,
	Headers: []string{"ID", "Reference", "Date", "RawCost", "PkgCost", "LaborCost", "WastageCost", "TotalCost", "WeightProcessed", "Hours"},
	Key:     func(c models.DailyCostMetric) string { return c.ID },
	ToRow: func(c models.DailyCostMetric) []interface{} {
		return []interface{}{
			c.ID, c.ReferenceID, c.Date, c.RawMaterialCost, c.PackagingCost,
			c.LaborCost, c.WastageCost, c.TotalCost, c.WeightProcessed, c.ProcessingHours,
		}
	},
	FromRow: func(r Row) (models.DailyCostMetric, error) {
		return models.DailyCostMetric{
			ID:              r.Text(0),
			ReferenceID:     r.Text(1),
			Date:            r.Text(2),
			RawMaterialCost: r.Number(3),
			PackagingCost:   r.Number(4),
			LaborCost:       r.Number(5),
			WastageCost:     r.Number(6),
			TotalCost:       r.Number(7),
			WeightProcessed: r.Number(8),
			ProcessingHours: r.Number(9),
		}, nil
	},
}

// CustomerSchema maps CRM contacts onto the Customers sheet.
var CustomerSchema = Schema[models.Customer]{
	Sheet:   SheetCustomers,
	Headers: []string{"ID", "Name", "Contact", "Email", "Address", "Type", "Status", "Notes", "JoinDate"},
	Key:     func(c models.Customer) string { return c.ID },
	ToRow: func(c models.Customer) []interface{} {
		return []interface{}{c.ID, c.Name, c.Contact, c.Email, c.Address, c.Type, c.Status, c.Notes, c.JoinDate}
	},
	FromRow: func(r Row) (models.Customer, error) {
		return models.Customer{
			ID:       r.Text(0),
			Name:     r.Text(1),
			Contact:  r.Text(2),
			Email:    r.Text(3),
			Address:  r.Text(4),
			Type:     r.Text(5),
			Status:   r.Text(6),
			Notes:    r.Text(7),
			JoinDate: r.Text(8),
		}, nil
	},
}
