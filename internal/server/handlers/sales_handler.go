package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

// SalesService manages invoices and storefront orders.
type SalesService interface {
	List(ctx context.Context) ([]models.SalesRecord, error)
	Get(ctx context.Context, id string) (models.SalesRecord, error)
	Create(ctx context.Context, req models.CreateSaleRequest) (models.SalesRecord, error)
	SubmitOnlineOrder(ctx context.Context, req models.OnlineOrderRequest) (string, error)
	Advance(ctx context.Context, id string, status models.SalesStatus) (models.SalesRecord, error)
	Cancel(ctx context.Context, id, reason string) (models.SalesRecord, error)
}

// SalesHandler exposes sales and the public order endpoint.
type SalesHandler struct {
	svc    SalesService
	logger *zap.Logger
}

// NewSalesHandler constructs the sales endpoints.
func NewSalesHandler(svc SalesService, logger *zap.Logger) *SalesHandler {
	return &SalesHandler{svc: svc, logger: orNop(logger)}
}

func (h *SalesHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, list)
}

func (h *SalesHandler) Get(c *gin.Context) {
	sale, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, sale)
}

func (h *SalesHandler) Create(c *gin.Context) {
	var req models.CreateSaleRequest
	if !bind(c, h.logger, &req) {
		return
	}
	sale, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	created(c, sale)
}

// OnlineOrder accepts a storefront cart and returns the new invoice id.
func (h *SalesHandler) OnlineOrder(c *gin.Context) {
	var req models.OnlineOrderRequest
	if !bind(c, h.logger, &req) {
		return
	}
	id, err := h.svc.SubmitOnlineOrder(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	created(c, gin.H{"invoiceId": id})
}

func (h *SalesHandler) Advance(c *gin.Context) {
	var req models.SaleStatusRequest
	if !bind(c, h.logger, &req) {
		return
	}
	sale, err := h.svc.Advance(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, sale)
}

func (h *SalesHandler) Cancel(c *gin.Context) {
	var req models.CancelSaleRequest
	if !bind(c, h.logger, &req) {
		return
	}
	sale, err := h.svc.Cancel(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, sale)
}
