// Package inventory manages stocked inputs, suppliers and finished goods.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

// Defaults applied to items and goods created without explicit values.
const (
	DefaultThreshold = 50
	DefaultUnit      = "units"
	DefaultPrice     = 15
	// FIFOBatch marks finished goods packed from pooled stock.
	FIFOBatch = "FIFO"
)

var (
	// ErrItemName is returned when an inventory item has no name.
	ErrItemName = errors.New("an item name is required")
	// ErrSupplierName is returned when a supplier has no name.
	ErrSupplierName = errors.New("a supplier name is required")
	// ErrPackCount is returned when packing zero or fewer units.
	ErrPackCount = errors.New("pack count must be positive")
	// ErrNoMatchingGoods is returned when a product update matches nothing.
	ErrNoMatchingGoods = errors.New("no finished goods match this recipe and packaging")
)

// Repository persists the inventory collections.
type Repository interface {
	ListInventory(ctx context.Context) ([]models.InventoryItem, error)
	SaveInventoryItem(ctx context.Context, item models.InventoryItem) error
	DeleteInventoryItem(ctx context.Context, id string) error
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
	SaveSupplier(ctx context.Context, supplier models.Supplier) error
	ListFinishedGoods(ctx context.Context) ([]models.FinishedGood, error)
	SaveFinishedGood(ctx context.Context, good models.FinishedGood) error
}

// SupplierResult is a registered supplier and the item added with it, if any.
type SupplierResult struct {
	Supplier models.Supplier       `json:"supplier"`
	Item     *models.InventoryItem `json:"item,omitempty"`
}

// Service is the inventory use-case layer.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the inventory service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Items lists stocked inputs.
func (s *Service) Items(ctx context.Context) ([]models.InventoryItem, error) {
	return s.repo.ListInventory(ctx)
}

// LowStock lists items at or below their reorder threshold.
func (s *Service) LowStock(ctx context.Context) ([]models.InventoryItem, error) {
	items, err := s.repo.ListInventory(ctx)
	if err != nil {
		return nil, err
	}
	low := make([]models.InventoryItem, 0)
	for _, it := range items {
		if it.Quantity <= it.Threshold {
			low = append(low, it)
		}
	}
	return low, nil
}

// AddItem stores an inventory item, assigning an id when missing.
func (s *Service) AddItem(ctx context.Context, item models.InventoryItem) (models.InventoryItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return models.InventoryItem{}, ErrItemName
	}
	if item.ID == "" {
		item.ID = fmt.Sprintf("inv-%d", s.now().UnixMilli())
	}
	if item.Unit == "" {
		item.Unit = DefaultUnit
	}
	if err := s.repo.SaveInventoryItem(ctx, item); err != nil {
		return models.InventoryItem{}, fmt.Errorf("save inventory item: %w", err)
	}
	s.logger.Info("inventory item saved", zap.String("item_id", item.ID), zap.String("name", item.Name))
	return item, nil
}

// DeleteItem removes an inventory item.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	if err := s.repo.DeleteInventoryItem(ctx, id); err != nil {
		return err
	}
	s.logger.Info("inventory item deleted", zap.String("item_id", id))
	return nil
}

// Suppliers lists vendors.
func (s *Service) Suppliers(ctx context.Context) ([]models.Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

// AddSupplier registers a supplier. When the request names a supplied item,
// an empty inventory item is created for it too.
func (s *Service) AddSupplier(ctx context.Context, req models.SupplierRequest) (SupplierResult, error) {
	ms := s.now().UnixMilli()
	sup := models.Supplier{
		ID:      fmt.Sprintf("sup-%d", ms),
		Name:    strings.TrimSpace(req.Name),
		Address: req.Address,
		Contact: req.Contact,
	}
	if sup.Name == "" {
		return SupplierResult{}, ErrSupplierName
	}
	if err := s.repo.SaveSupplier(ctx, sup); err != nil {
		return SupplierResult{}, fmt.Errorf("save supplier: %w", err)
	}
	res := SupplierResult{Supplier: sup}

	if name := strings.TrimSpace(req.ItemName); name != "" {
		item := models.InventoryItem{
			ID:        fmt.Sprintf("inv-%d", ms),
			Name:      name,
			Type:      req.ItemType,
			Subtype:   req.ItemSubtype,
			Threshold: DefaultThreshold,
			Unit:      DefaultUnit,
			UnitCost:  req.UnitCost,
			Supplier:  sup.Name,
			PackSize:  req.PackSize,
		}
		if err := s.repo.SaveInventoryItem(ctx, item); err != nil {
			return res, fmt.Errorf("save supplied item: %w", err)
		}
		res.Item = &item
	}

	s.logger.Info("supplier added", zap.String("supplier_id", sup.ID), zap.Bool("with_item", res.Item != nil))
	return res, nil
}

// FinishedGoods lists packed goods, newest first.
func (s *Service) FinishedGoods(ctx context.Context) ([]models.FinishedGood, error) {
	return s.repo.ListFinishedGoods(ctx)
}

// Pack records count units of a recipe drawn from pooled stock.
func (s *Service) Pack(ctx context.Context, req models.PackRequest) (models.FinishedGood, error) {
	if req.Count <= 0 {
		return models.FinishedGood{}, ErrPackCount
	}
	now := s.now()
	good := models.FinishedGood{
		ID:            fmt.Sprintf("FG-%d", now.UnixMilli()),
		BatchID:       FIFOBatch,
		RecipeName:    strings.TrimSpace(req.RecipeName),
		PackagingType: req.PackagingType,
		Quantity:      req.Count,
		DatePacked:    now.UTC().Format(time.RFC3339Nano),
		SellingPrice:  DefaultPrice,
	}
	if err := s.repo.SaveFinishedGood(ctx, good); err != nil {
		return models.FinishedGood{}, fmt.Errorf("save finished good: %w", err)
	}
	s.logger.Info("recipe packed",
		zap.String("good_id", good.ID),
		zap.String("recipe", good.RecipeName),
		zap.Int("count", good.Quantity),
		zap.Float64("weight_kg", req.WeightKg),
	)
	return good, nil
}

// UpdateProduct applies a price and/or image to every finished good of a
// recipe and packaging type. It returns how many goods changed.
func (s *Service) UpdateProduct(ctx context.Context, req models.ProductUpdate) (int, error) {
	goods, err := s.repo.ListFinishedGoods(ctx)
	if err != nil {
		return 0, fmt.Errorf("list finished goods: %w", err)
	}

	updated := 0
	for _, g := range goods {
		if g.RecipeName != req.RecipeName || g.PackagingType != req.PackagingType {
			continue
		}
		if req.SellingPrice != nil {
			g.SellingPrice = *req.SellingPrice
		}
		if req.ImageURL != nil {
			g.ImageURL = *req.ImageURL
		}
		if err := s.repo.SaveFinishedGood(ctx, g); err != nil {
			return updated, fmt.Errorf("save finished good %s: %w", g.ID, err)
		}
		updated++
	}
	if updated == 0 {
		return 0, ErrNoMatchingGoods
	}

	s.logger.Info("product updated",
		zap.String("recipe", req.RecipeName),
		zap.String("packaging", req.PackagingType),
		zap.Int("goods", updated),
	)
	return updated, nil
}
