// Package sales handles quotations, invoices and storefront orders.
package sales

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
	"github.com/mamadbah2/shroomtrack/internal/service/fallback"
)

// Guest is the customer id of an order that could not be linked to a profile.
const Guest = "GUEST"

var (
	// ErrCancelReason is returned when a sale is cancelled without a reason.
	ErrCancelReason = errors.New("a cancellation reason is required")
	// ErrEmptyOrder is returned for a sale without items.
	ErrEmptyOrder = errors.New("a sale needs at least one item")
)

// next lists the only status a sale may move to from each state.
var next = map[models.SalesStatus]models.SalesStatus{
	models.SaleQuotation: models.SaleInvoiced,
	models.SaleInvoiced:  models.SaleShipped,
	models.SaleShipped:   models.SalePaid,
}

// Repository persists sales and reads the catalog they reference.
type Repository interface {
	ListSales(ctx context.Context) ([]models.SalesRecord, error)
	GetSale(ctx context.Context, id string) (models.SalesRecord, error)
	SaveSale(ctx context.Context, sale models.SalesRecord) error
	GetFinishedGood(ctx context.Context, id string) (models.FinishedGood, error)
}

// Customers resolves and creates the customer profiles sales link to.
type Customers interface {
	GetCustomer(ctx context.Context, id string) (models.Customer, error)
	FindCustomerByEmail(ctx context.Context, email string) (models.Customer, error)
	FindCustomerByContact(ctx context.Context, contact string) (models.Customer, error)
	SaveCustomer(ctx context.Context, customer models.Customer) error
}

// Service is the sales use-case layer.
type Service struct {
	repo      Repository
	customers Customers
	cache     *fallback.Snapshot[models.SalesRecord]
	logger    *zap.Logger
	now       func() time.Time
	invoiceNo func(limit int) int
}

// NewService wires the sales service.
func NewService(repo Repository, customers Customers, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		customers: customers,
		cache:     fallback.NewSnapshot("sales", func(s models.SalesRecord) string { return s.ID }, logger),
		logger:    logger,
		now:       time.Now,
		invoiceNo: rand.IntN,
	}
}

// List returns every sale, newest first, or the last loaded copy when the
// store fails.
func (s *Service) List(ctx context.Context) ([]models.SalesRecord, error) {
	sales, err := s.cache.Load(ctx, s.repo.ListSales)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

// Get returns one sale.
func (s *Service) Get(ctx context.Context, id string) (models.SalesRecord, error) {
	return s.repo.GetSale(ctx, id)
}

// Create records a point-of-sale document. Status defaults to INVOICED.
func (s *Service) Create(ctx context.Context, req models.CreateSaleRequest) (models.SalesRecord, error) {
	if len(req.Items) == 0 {
		return models.SalesRecord{}, ErrEmptyOrder
	}
	status := req.Status
	if status == "" {
		status = models.SaleInvoiced
	}
	if status != models.SaleQuotation && status != models.SaleInvoiced {
		return models.SalesRecord{}, fmt.Errorf("%w: new sales start as QUOTATION or INVOICED", models.ErrInvalidTransition)
	}

	name := "Unknown"
	if c, err := s.customers.GetCustomer(ctx, req.CustomerID); err == nil {
		name = c.Name
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Warn("customer lookup failed", zap.String("customer_id", req.CustomerID), zap.Error(err))
	}

	now := s.now()
	sale := models.SalesRecord{
		ID:            fmt.Sprintf("SALE-%d", now.UnixMilli()),
		InvoiceID:     fmt.Sprintf("INV-%d", s.invoiceNo(100000)),
		CustomerID:    req.CustomerID,
		CustomerName:  name,
		Items:         req.Items,
		TotalAmount:   Total(req.Items),
		PaymentMethod: req.PaymentMethod,
		Status:        status,
		DateCreated:   now.UTC().Format(time.RFC3339Nano),
	}

	if err := s.repo.SaveSale(ctx, sale); err != nil {
		return models.SalesRecord{}, fmt.Errorf("save sale: %w", err)
	}
	s.cache.Put(sale)
	s.logger.Info("sale created",
		zap.String("sale_id", sale.ID),
		zap.String("status", string(sale.Status)),
		zap.Float64("total", sale.TotalAmount),
	)
	return sale, nil
}

// SubmitOnlineOrder records a storefront order as a cash-on-delivery
// quotation, linking or creating the buyer's profile. It returns the
// invoice id shown to the buyer.
func (s *Service) SubmitOnlineOrder(ctx context.Context, req models.OnlineOrderRequest) (string, error) {
	if len(req.Cart) == 0 {
		return "", ErrEmptyOrder
	}

	items := make([]models.SaleItem, 0, len(req.Cart))
	for _, line := range req.Cart {
		good, err := s.repo.GetFinishedGood(ctx, line.FinishedGoodID)
		if err != nil {
			return "", fmt.Errorf("cart item %s: %w", line.FinishedGoodID, err)
		}
		items = append(items, models.SaleItem{
			FinishedGoodID: good.ID,
			RecipeName:     good.RecipeName,
			PackagingType:  good.PackagingType,
			Quantity:       line.Quantity,
			UnitPrice:      good.SellingPrice,
		})
	}

	now := s.now()
	sale := models.SalesRecord{
		ID:              fmt.Sprintf("ORDER-%d", now.UnixMilli()),
		InvoiceID:       fmt.Sprintf("WEB-%d", s.invoiceNo(10000)),
		CustomerID:      s.linkCustomer(ctx, req, now),
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		ShippingAddress: req.CustomerAddress,
		Items:           items,
		TotalAmount:     Total(items),
		PaymentMethod:   models.PaymentCOD,
		Status:          models.SaleQuotation,
		DateCreated:     now.UTC().Format(time.RFC3339Nano),
	}

	if err := s.repo.SaveSale(ctx, sale); err != nil {
		return "", fmt.Errorf("save online order: %w", err)
	}
	s.cache.Put(sale)
	s.logger.Info("online order received",
		zap.String("sale_id", sale.ID),
		zap.String("customer_id", sale.CustomerID),
		zap.Float64("total", sale.TotalAmount),
	)
	return sale.InvoiceID, nil
}

// linkCustomer finds the buyer by email then by phone, filling missing
// profile fields, or creates a storefront profile. Failures degrade to a
// guest id and never block the order.
func (s *Service) linkCustomer(ctx context.Context, req models.OnlineOrderRequest, now time.Time) string {
	existing, found, err := s.findBuyer(ctx, req)
	if err != nil {
		s.logger.Warn("customer auto-link failed", zap.Error(err))
		return Guest
	}

	if found {
		changed := false
		if existing.Type == "" {
			existing.Type = "B2C"
			changed = true
		}
		if existing.Address == "" && req.CustomerAddress != "" {
			existing.Address = req.CustomerAddress
			changed = true
		}
		if changed {
			if err := s.customers.SaveCustomer(ctx, existing); err != nil {
				s.logger.Warn("customer profile update failed", zap.String("customer_id", existing.ID), zap.Error(err))
			}
		}
		return existing.ID
	}

	c := models.Customer{
		ID:       fmt.Sprintf("cust-shop-%d", now.UnixMilli()),
		Name:     req.CustomerName,
		Contact:  req.CustomerPhone,
		Email:    req.CustomerEmail,
		Address:  req.CustomerAddress,
		Type:     "B2C",
		Status:   "ACTIVE",
		JoinDate: now.UTC().Format(time.RFC3339),
	}
	if err := s.customers.SaveCustomer(ctx, c); err != nil {
		s.logger.Warn("customer profile creation failed, ordering as guest", zap.Error(err))
		return fmt.Sprintf("%s-%d", Guest, now.UnixMilli())
	}
	return c.ID
}

func (s *Service) findBuyer(ctx context.Context, req models.OnlineOrderRequest) (models.Customer, bool, error) {
	lookups := []struct {
		value string
		find  func(context.Context, string) (models.Customer, error)
	}{
		{strings.TrimSpace(req.CustomerEmail), s.customers.FindCustomerByEmail},
		{strings.TrimSpace(req.CustomerPhone), s.customers.FindCustomerByContact},
	}
	for _, l := range lookups {
		if l.value == "" {
			continue
		}
		c, err := l.find(ctx, l.value)
		if err == nil {
			return c, true, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return models.Customer{}, false, err
		}
	}
	return models.Customer{}, false, nil
}

// Advance moves a sale one step along QUOTATION, INVOICED, SHIPPED, PAID.
func (s *Service) Advance(ctx context.Context, id string, status models.SalesStatus) (models.SalesRecord, error) {
	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return models.SalesRecord{}, err
	}
	if to, ok := next[sale.Status]; !ok || to != status {
		return models.SalesRecord{}, fmt.Errorf("%w: %s to %s", models.ErrInvalidTransition, sale.Status, status)
	}
	return s.save(ctx, sale, status)
}

// Cancel cancels a sale that has not shipped yet.
func (s *Service) Cancel(ctx context.Context, id, reason string) (models.SalesRecord, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.SalesRecord{}, ErrCancelReason
	}
	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return models.SalesRecord{}, err
	}
	if sale.Status != models.SaleQuotation && sale.Status != models.SaleInvoiced {
		return models.SalesRecord{}, fmt.Errorf("%w: cannot cancel a %s sale", models.ErrInvalidTransition, sale.Status)
	}
	sale.CancellationReason = reason
	return s.save(ctx, sale, models.SaleCancelled)
}

func (s *Service) save(ctx context.Context, sale models.SalesRecord, status models.SalesStatus) (models.SalesRecord, error) {
	from := sale.Status
	sale.Status = status
	if err := s.repo.SaveSale(ctx, sale); err != nil {
		return models.SalesRecord{}, fmt.Errorf("save sale: %w", err)
	}
	s.cache.Put(sale)
	s.logger.Info("sale status changed",
		zap.String("sale_id", sale.ID),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
	)
	return sale, nil
}

// Total sums quantity times unit price over items.
func Total(items []models.SaleItem) float64 {
	var total float64
	for _, it := range items {
		total += float64(it.Quantity) * it.UnitPrice
	}
	return total
}
