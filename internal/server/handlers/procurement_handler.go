package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

// ProcurementService manages purchase orders.
type ProcurementService interface {
	List(ctx context.Context) ([]models.PurchaseOrder, error)
	Create(ctx context.Context, req models.PurchaseOrderRequest) (models.PurchaseOrder, error)
	Receive(ctx context.Context, id string, req models.ReceiveRequest) (models.PurchaseOrder, error)
	Complain(ctx context.Context, id, reason string) (models.PurchaseOrder, error)
	Resolve(ctx context.Context, id, resolution string) (models.PurchaseOrder, error)
}

// ProcurementHandler exposes purchase orders.
type ProcurementHandler struct {
	svc    ProcurementService
	logger *zap.Logger
}

// NewProcurementHandler constructs the procurement endpoints.
func NewProcurementHandler(svc ProcurementService, logger *zap.Logger) *ProcurementHandler {
	return &ProcurementHandler{svc: svc, logger: orNop(logger)}
}

func (h *ProcurementHandler) List(c *gin.Context) {
	orders, err := h.svc.List(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, orders)
}

func (h *ProcurementHandler) Create(c *gin.Context) {
	var req models.PurchaseOrderRequest
	if !bind(c, h.logger, &req) {
		return
	}
	po, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	created(c, po)
}

// Receive records the QC outcome of a delivery.
func (h *ProcurementHandler) Receive(c *gin.Context) {
	var req models.ReceiveRequest
	if !bind(c, h.logger, &req) {
		return
	}
	po, err := h.svc.Receive(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, po)
}

func (h *ProcurementHandler) Complain(c *gin.Context) {
	var req models.ComplaintRequest
	if !bind(c, h.logger, &req) {
		return
	}
	po, err := h.svc.Complain(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, po)
}

func (h *ProcurementHandler) Resolve(c *gin.Context) {
	var req models.ResolveRequest
	if !bind(c, h.logger, &req) {
		return
	}
	po, err := h.svc.Resolve(c.Request.Context(), c.Param("id"), req.Resolution)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, po)
}
