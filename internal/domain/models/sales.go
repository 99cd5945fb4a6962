package models

// SalesStatus enumerates the sales document lifecycle.
type SalesStatus string

const (
	SaleQuotation SalesStatus = "QUOTATION"
	SaleInvoiced  SalesStatus = "INVOICED"
	SaleShipped   SalesStatus = "SHIPPED"
	SalePaid      SalesStatus = "PAID"
	SaleCancelled SalesStatus = "CANCELLED"
)

// PaymentMethod enumerates accepted payment methods.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "CASH"
	PaymentCOD        PaymentMethod = "COD"
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
)

// SaleItem is one line of a sales document.
type SaleItem struct {
	FinishedGoodID string  `bson:"finishedGoodId,omitempty" json:"finishedGoodId,omitempty"`
	RecipeName     string  `bson:"recipeName" json:"recipeName"`
	PackagingType  string  `bson:"packagingType" json:"packagingType"`
	Quantity       int     `bson:"quantity" json:"quantity" binding:"gt=0"`
	UnitPrice      float64 `bson:"unitPrice" json:"unitPrice" binding:"gte=0"`
}

// SalesRecord is a quotation, invoice or order.
type SalesRecord struct {
	ID                 string        `bson:"_id" json:"id"`
	InvoiceID          string        `bson:"invoiceId" json:"invoiceId"`
	CustomerID         string        `bson:"customerId" json:"customerId"`
	CustomerName       string        `bson:"customerName" json:"customerName"`
	CustomerPhone      string        `bson:"customerPhone,omitempty" json:"customerPhone,omitempty"`
	CustomerEmail      string        `bson:"customerEmail,omitempty" json:"customerEmail,omitempty"`
	ShippingAddress    string        `bson:"shippingAddress,omitempty" json:"shippingAddress,omitempty"`
	Items              []SaleItem    `bson:"items" json:"items"`
	TotalAmount        float64       `bson:"totalAmount" json:"totalAmount"`
	PaymentMethod      PaymentMethod `bson:"paymentMethod" json:"paymentMethod"`
	Status             SalesStatus   `bson:"status" json:"status"`
	DateCreated        string        `bson:"dateCreated" json:"dateCreated"`
	CancellationReason string        `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
}

// CreateSaleRequest is the point-of-sale payload.
type CreateSaleRequest struct {
	CustomerID    string        `json:"customerId" binding:"required"`
	Items         []SaleItem    `json:"items" binding:"required,min=1,dive"`
	PaymentMethod PaymentMethod `json:"paymentMethod" binding:"required,oneof=CASH COD CREDIT_CARD"`
	Status        SalesStatus   `json:"status" binding:"omitempty,oneof=QUOTATION INVOICED"`
}

// CartLine is one line of a storefront cart.
type CartLine struct {
	FinishedGoodID string `json:"finishedGoodId" binding:"required"`
	Quantity       int    `json:"quantity" binding:"gt=0"`
}

// OnlineOrderRequest is submitted by the public storefront.
type OnlineOrderRequest struct {
	CustomerName    string     `json:"customerName" binding:"required"`
	CustomerPhone   string     `json:"customerPhone"`
	CustomerEmail   string     `json:"customerEmail"`
	CustomerAddress string     `json:"customerAddress"`
	Cart            []CartLine `json:"cart" binding:"required,min=1,dive"`
}

// SaleStatusRequest advances a sale to its next status.
type SaleStatusRequest struct {
	Status SalesStatus `json:"status" binding:"required,oneof=INVOICED SHIPPED PAID"`
}

// CancelSaleRequest cancels an open sale.
type CancelSaleRequest struct {
	Reason string `json:"reason"`
}
