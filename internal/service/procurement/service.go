// Package procurement tracks purchase orders from placement to receipt.
package procurement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
	"github.com/mamadbah2/shroomtrack/internal/service/finance"
)

// DefaultSupplier is used when neither the order nor the item names one.
const DefaultSupplier = "Generic"

var (
	// ErrComplaintReason is returned when a complaint has no reason.
	ErrComplaintReason = errors.New("a complaint reason is required")
	// ErrResolution is returned when a complaint is resolved without a resolution.
	ErrResolution = errors.New("a resolution is required")
	// ErrQuantity is returned for orders of zero or fewer packs.
	ErrQuantity = errors.New("quantity must be positive")
)

// Repository persists purchase orders and the stock they replenish.
type Repository interface {
	ListPurchaseOrders(ctx context.Context) ([]models.PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, id string) (models.PurchaseOrder, error)
	SavePurchaseOrder(ctx context.Context, po models.PurchaseOrder) error
	GetInventoryItem(ctx context.Context, id string) (models.InventoryItem, error)
	SaveInventoryItem(ctx context.Context, item models.InventoryItem) error
}

// Service manages purchase orders.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the procurement service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// List returns every order, newest first, with its display status set.
func (s *Service) List(ctx context.Context) ([]models.PurchaseOrder, error) {
	orders, err := s.repo.ListPurchaseOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	for i := range orders {
		orders[i].DisplayStatus = finance.DisplayStatus(orders[i])
	}
	return orders, nil
}

// Create places an ORDERED purchase order for quantity packs of an item.
func (s *Service) Create(ctx context.Context, req models.PurchaseOrderRequest) (models.PurchaseOrder, error) {
	if req.Quantity <= 0 {
		return models.PurchaseOrder{}, ErrQuantity
	}
	item, err := s.repo.GetInventoryItem(ctx, req.ItemID)
	if err != nil {
		return models.PurchaseOrder{}, fmt.Errorf("inventory item %s: %w", req.ItemID, err)
	}

	packSize := item.PackSize
	if packSize <= 0 {
		packSize = 1
	}
	supplier := strings.TrimSpace(req.Supplier)
	if supplier == "" {
		supplier = item.Supplier
	}
	if supplier == "" {
		supplier = DefaultSupplier
	}

	now := s.now()
	po := models.PurchaseOrder{
		ID:          fmt.Sprintf("PO-%d", now.UnixMilli()),
		ItemID:      item.ID,
		ItemName:    item.Name,
		Quantity:    req.Quantity,
		PackSize:    packSize,
		TotalUnits:  req.Quantity * packSize,
		UnitCost:    item.UnitCost,
		TotalCost:   req.Quantity * item.UnitCost,
		Status:      models.POOrdered,
		DateOrdered: now.UTC().Format(time.RFC3339Nano),
		Supplier:    supplier,
	}

	if err := s.repo.SavePurchaseOrder(ctx, po); err != nil {
		return models.PurchaseOrder{}, fmt.Errorf("save purchase order: %w", err)
	}
	s.logger.Info("purchase order placed",
		zap.String("po_id", po.ID),
		zap.String("item_id", po.ItemID),
		zap.Float64("units", po.TotalUnits),
	)
	po.DisplayStatus = po.Status
	return po, nil
}

// Receive records the QC outcome of an ORDERED delivery. A pass marks the
// order RECEIVED and adds its units to stock; a fail opens a complaint.
func (s *Service) Receive(ctx context.Context, id string, req models.ReceiveRequest) (models.PurchaseOrder, error) {
	po, err := s.repo.GetPurchaseOrder(ctx, id)
	if err != nil {
		return models.PurchaseOrder{}, err
	}
	if po.Status != models.POOrdered {
		return models.PurchaseOrder{}, fmt.Errorf("%w: cannot receive a %s order", models.ErrInvalidTransition, po.Status)
	}

	if !req.QCPassed {
		return s.complain(ctx, po, req.Reason)
	}

	po.Status = models.POReceived
	po.DateReceived = s.now().UTC().Format(time.RFC3339Nano)
	if err := s.repo.SavePurchaseOrder(ctx, po); err != nil {
		return models.PurchaseOrder{}, fmt.Errorf("save purchase order: %w", err)
	}
	s.restock(ctx, po)

	po.DisplayStatus = po.Status
	return po, nil
}

// restock adds the received units to the item. A failure leaves the order
// received and is only logged.
func (s *Service) restock(ctx context.Context, po models.PurchaseOrder) {
	item, err := s.repo.GetInventoryItem(ctx, po.ItemID)
	if err == nil {
		item.Quantity += po.TotalUnits
		err = s.repo.SaveInventoryItem(ctx, item)
	}
	if err != nil {
		s.logger.Error("failed to restock received order",
			zap.String("po_id", po.ID),
			zap.String("item_id", po.ItemID),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("purchase order received",
		zap.String("po_id", po.ID),
		zap.Float64("stock", item.Quantity),
	)
}

// Complain flags an order with a quality complaint.
func (s *Service) Complain(ctx context.Context, id, reason string) (models.PurchaseOrder, error) {
	po, err := s.repo.GetPurchaseOrder(ctx, id)
	if err != nil {
		return models.PurchaseOrder{}, err
	}
	if po.Status == models.POResolved {
		return models.PurchaseOrder{}, fmt.Errorf("%w: order already resolved", models.ErrInvalidTransition)
	}
	return s.complain(ctx, po, reason)
}

func (s *Service) complain(ctx context.Context, po models.PurchaseOrder, reason string) (models.PurchaseOrder, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.PurchaseOrder{}, ErrComplaintReason
	}
	po.Status = models.POComplaint
	po.ComplaintReason = reason
	if err := s.repo.SavePurchaseOrder(ctx, po); err != nil {
		return models.PurchaseOrder{}, fmt.Errorf("save purchase order: %w", err)
	}
	s.logger.Warn("purchase order complaint", zap.String("po_id", po.ID), zap.String("reason", reason))
	po.DisplayStatus = po.Status
	return po, nil
}

// Resolve closes a complaint. Resolutions mentioning a refund display the
// order as CANCELLED.
func (s *Service) Resolve(ctx context.Context, id, resolution string) (models.PurchaseOrder, error) {
	resolution = strings.TrimSpace(resolution)
	if resolution == "" {
		return models.PurchaseOrder{}, ErrResolution
	}
	po, err := s.repo.GetPurchaseOrder(ctx, id)
	if err != nil {
		return models.PurchaseOrder{}, err
	}
	if po.Status != models.POComplaint {
		return models.PurchaseOrder{}, fmt.Errorf("%w: no open complaint on %s order", models.ErrInvalidTransition, po.Status)
	}

	po.Status = models.POResolved
	po.ComplaintResolution = resolution
	if err := s.repo.SavePurchaseOrder(ctx, po); err != nil {
		return models.PurchaseOrder{}, fmt.Errorf("save purchase order: %w", err)
	}
	po.DisplayStatus = finance.DisplayStatus(po)
	s.logger.Info("complaint resolved", zap.String("po_id", po.ID), zap.String("display_status", string(po.DisplayStatus)))
	return po, nil
}
