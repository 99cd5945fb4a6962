package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

// SyncService serves the legacy spreadsheet sync protocol.
type SyncService interface {
	HandlePost(ctx context.Context, req models.SyncRequest) models.APIResponse
	HandleGet(ctx context.Context, action string) models.APIResponse
}

// SyncHandler exposes the legacy sync endpoint. Every response is HTTP 200;
// the outcome is carried by the envelope.
type SyncHandler struct {
	svc    SyncService
	logger *zap.Logger
}

// NewSyncHandler constructs the sync endpoint adapter.
func NewSyncHandler(svc SyncService, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{svc: svc, logger: orNop(logger)}
}

// Post accepts a full database push.
func (h *SyncHandler) Post(c *gin.Context) {
	var req models.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sync payload", zap.Error(err))
		c.JSON(http.StatusOK, models.APIResponse{Success: false, Error: "invalid payload: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.svc.HandlePost(c.Request.Context(), req))
}

// Get returns every legacy table.
func (h *SyncHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.HandleGet(c.Request.Context(), c.Query("action")))
}
