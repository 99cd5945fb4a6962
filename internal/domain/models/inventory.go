package models

// InventoryItem is a stocked input such as packaging or ingredients.
type InventoryItem struct {
	ID        string  `bson:"_id" json:"id"`
	Name      string  `bson:"name" json:"name"`
	Type      string  `bson:"type" json:"type"`
	Subtype   string  `bson:"subtype" json:"subtype"`
	Quantity  float64 `bson:"quantity" json:"quantity"`
	Threshold float64 `bson:"threshold" json:"threshold"`
	Unit      string  `bson:"unit" json:"unit"`
	UnitCost  float64 `bson:"unitCost" json:"unitCost"`
	Supplier  string  `bson:"supplier" json:"supplier"`
	PackSize  float64 `bson:"packSize" json:"packSize"`
}

// FinishedGood is a packed product line ready for sale.
type FinishedGood struct {
	ID            string  `bson:"_id" json:"id"`
	BatchID       string  `bson:"batchId" json:"batchId"`
	RecipeName    string  `bson:"recipeName" json:"recipeName"`
	PackagingType string  `bson:"packagingType" json:"packagingType"`
	Quantity      int     `bson:"quantity" json:"quantity"`
	DatePacked    string  `bson:"datePacked" json:"datePacked"`
	SellingPrice  float64 `bson:"sellingPrice" json:"sellingPrice"`
	ImageURL      string  `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
}

// Supplier is a vendor of inventory items.
type Supplier struct {
	ID      string `bson:"_id" json:"id"`
	Name    string `bson:"name" json:"name"`
	Address string `bson:"address" json:"address"`
	Contact string `bson:"contact" json:"contact"`
}

// PurchaseOrderStatus enumerates purchase order states.
type PurchaseOrderStatus string

const (
	POOrdered   PurchaseOrderStatus = "ORDERED"
	POReceived  PurchaseOrderStatus = "RECEIVED"
	POComplaint PurchaseOrderStatus = "COMPLAINT"
	POResolved  PurchaseOrderStatus = "RESOLVED"
	// POCancelled is never stored; it is the display status of a refunded order.
	POCancelled PurchaseOrderStatus = "CANCELLED"
)

// PurchaseOrder tracks a restock order placed with a supplier.
type PurchaseOrder struct {
	ID                  string              `bson:"_id" json:"id"`
	ItemID              string              `bson:"itemId" json:"itemId"`
	ItemName            string              `bson:"itemName" json:"itemName"`
	Quantity            float64             `bson:"quantity" json:"quantity"`
	PackSize            float64             `bson:"packSize" json:"packSize"`
	TotalUnits          float64             `bson:"totalUnits" json:"totalUnits"`
	UnitCost            float64             `bson:"unitCost" json:"unitCost"`
	TotalCost           float64             `bson:"totalCost" json:"totalCost"`
	Status              PurchaseOrderStatus `bson:"status" json:"status"`
	DateOrdered         string              `bson:"dateOrdered" json:"dateOrdered"`
	DateReceived        string              `bson:"dateReceived,omitempty" json:"dateReceived,omitempty"`
	Supplier            string              `bson:"supplier" json:"supplier"`
	ComplaintReason     string              `bson:"complaintReason,omitempty" json:"complaintReason,omitempty"`
	ComplaintResolution string              `bson:"complaintResolution,omitempty" json:"complaintResolution,omitempty"`
	DisplayStatus       PurchaseOrderStatus `bson:"-" json:"displayStatus,omitempty"`
}

// PurchaseOrderRequest places a restock order for an inventory item.
type PurchaseOrderRequest struct {
	ItemID   string  `json:"itemId" binding:"required"`
	Quantity float64 `json:"quantity" binding:"gt=0"`
	Supplier string  `json:"supplier"`
}

// ReceiveRequest records the QC outcome of a delivered order.
type ReceiveRequest struct {
	QCPassed bool   `json:"qcPassed"`
	Reason   string `json:"reason"`
}

// SupplierRequest registers a supplier and, optionally, the item it supplies.
type SupplierRequest struct {
	Name        string  `json:"name" binding:"required"`
	Address     string  `json:"address"`
	Contact     string  `json:"contact"`
	ItemName    string  `json:"itemName"`
	ItemType    string  `json:"itemType"`
	ItemSubtype string  `json:"itemSubtype"`
	PackSize    float64 `json:"packSize" binding:"gte=0"`
	UnitCost    float64 `json:"unitCost" binding:"gte=0"`
}

// PackRequest records packed units of a recipe.
type PackRequest struct {
	RecipeName    string  `json:"recipeName" binding:"required"`
	WeightKg      float64 `json:"weightKg" binding:"gte=0"`
	Count         int     `json:"count" binding:"gt=0"`
	PackagingType string  `json:"packagingType" binding:"required,oneof=TIN POUCH"`
}

// ProductUpdate changes every finished good of a recipe and packaging.
type ProductUpdate struct {
	RecipeName    string   `json:"recipeName" binding:"required"`
	PackagingType string   `json:"packagingType" binding:"required"`
	SellingPrice  *float64 `json:"sellingPrice,omitempty" binding:"omitempty,gte=0"`
	ImageURL      *string  `json:"imageUrl,omitempty"`
}

// ComplaintRequest opens a quality complaint on a purchase order.
type ComplaintRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ResolveRequest closes a purchase order complaint.
type ResolveRequest struct {
	Resolution string `json:"resolution" binding:"required"`
}
