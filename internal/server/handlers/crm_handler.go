package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
	"github.com/mamadbah2/shroomtrack/internal/service/crm"
)

// CRMService manages customers and outreach.
type CRMService interface {
	Search(ctx context.Context, search, customerType string) ([]models.Customer, error)
	Get(ctx context.Context, id string) (models.Customer, error)
	Add(ctx context.Context, c models.Customer) (models.Customer, error)
	Update(ctx context.Context, id string, patch models.CustomerPatch) (models.Customer, error)
	Stats(ctx context.Context, customerID string) (models.CustomerStats, error)
	Outreach(ctx context.Context, customerID string, kind models.OutreachKind) (crm.OutreachResult, error)
}

// CRMHandler exposes the customer directory.
type CRMHandler struct {
	svc    CRMService
	logger *zap.Logger
}

// NewCRMHandler constructs the CRM endpoints.
func NewCRMHandler(svc CRMService, logger *zap.Logger) *CRMHandler {
	return &CRMHandler{svc: svc, logger: orNop(logger)}
}

// List filters customers by ?search= and ?type=.
func (h *CRMHandler) List(c *gin.Context) {
	customers, err := h.svc.Search(c.Request.Context(), c.Query("search"), c.Query("type"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, customers)
}

func (h *CRMHandler) Get(c *gin.Context) {
	customer, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, customer)
}

func (h *CRMHandler) Add(c *gin.Context) {
	var customer models.Customer
	if !bind(c, h.logger, &customer) {
		return
	}
	saved, err := h.svc.Add(c.Request.Context(), customer)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	created(c, saved)
}

func (h *CRMHandler) Update(c *gin.Context) {
	var patch models.CustomerPatch
	if !bind(c, h.logger, &patch) {
		return
	}
	saved, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, saved)
}

func (h *CRMHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, stats)
}

// Outreach messages a customer. When delivery fails after the message was
// built, the click-to-chat link is still returned so staff can send it by hand.
func (h *CRMHandler) Outreach(c *gin.Context) {
	var req models.OutreachRequest
	if !bind(c, h.logger, &req) {
		return
	}
	result, err := h.svc.Outreach(c.Request.Context(), c.Param("id"), req.Kind)
	if err != nil && result.Link != "" {
		h.logger.Warn("outreach delivery failed", zap.String("customer", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusBadGateway, models.APIResponse{Success: false, Data: result, Message: err.Error()})
		return
	}
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, result)
}
