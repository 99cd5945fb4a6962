package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
	"github.com/mamadbah2/shroomtrack/internal/service/inventory"
)

// InventoryService manages stock, suppliers and finished goods.
type InventoryService interface {
	Items(ctx context.Context) ([]models.InventoryItem, error)
	LowStock(ctx context.Context) ([]models.InventoryItem, error)
	AddItem(ctx context.Context, item models.InventoryItem) (models.InventoryItem, error)
	DeleteItem(ctx context.Context, id string) error
	Suppliers(ctx context.Context) ([]models.Supplier, error)
	AddSupplier(ctx context.Context, req models.SupplierRequest) (inventory.SupplierResult, error)
	FinishedGoods(ctx context.Context) ([]models.FinishedGood, error)
	Pack(ctx context.Context, req models.PackRequest) (models.FinishedGood, error)
	UpdateProduct(ctx context.Context, req models.ProductUpdate) (int, error)
}

// InventoryHandler exposes the warehouse.
type InventoryHandler struct {
	svc    InventoryService
	logger *zap.Logger
}

// NewInventoryHandler constructs the inventory endpoints.
func NewInventoryHandler(svc InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{svc: svc, logger: orNop(logger)}
}

func (h *InventoryHandler) Items(c *gin.Context) {
	items, err := h.svc.Items(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, items)
}

func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.svc.LowStock(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, items)
}

func (h *InventoryHandler) AddItem(c *gin.Context) {
	var item models.InventoryItem
	if !bind(c, h.logger, &item) {
		return
	}
	saved, err := h.svc.AddItem(c.Request.Context(), item)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	created(c, saved)
}

func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	if err := h.svc.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, h.logger, err)
		return
	}
	done(c, "Item deleted")
}

func (h *InventoryHandler) Suppliers(c *gin.Context) {
	suppliers, err := h.svc.Suppliers(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, suppliers)
}

func (h *InventoryHandler) AddSupplier(c *gin.Context) {
	var req models.SupplierRequest
	if !bind(c, h.logger, &req) {
		return
	}
	result, err := h.svc.AddSupplier(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	created(c, result)
}

func (h *InventoryHandler) FinishedGoods(c *gin.Context) {
	goods, err := h.svc.FinishedGoods(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, goods)
}

// Pack records packed units of a recipe.
func (h *InventoryHandler) Pack(c *gin.Context) {
	var req models.PackRequest
	if !bind(c, h.logger, &req) {
		return
	}
	good, err := h.svc.Pack(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	created(c, good)
}

// UpdateProduct changes price or image of every matching finished good.
func (h *InventoryHandler) UpdateProduct(c *gin.Context) {
	var req models.ProductUpdate
	if !bind(c, h.logger, &req) {
		return
	}
	updated, err := h.svc.UpdateProduct(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, gin.H{"updated": updated})
}
