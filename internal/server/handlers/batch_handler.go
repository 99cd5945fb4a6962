package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

// ProcessingService drives batches through the processing line.
type ProcessingService interface {
	ListBatches(ctx context.Context) ([]models.Batch, error)
	GetBatch(ctx context.Context, id string) (models.Batch, error)
	Intake(ctx context.Context, req models.IntakeRequest) (models.Batch, error)
	Start(ctx context.Context, batchID, recipeID string) (models.Batch, error)
	SwitchRecipe(ctx context.Context, batchID, recipeID string) (models.Batch, error)
	Accelerate(ctx context.Context, batchID string) (models.Batch, error)
	Stage(ctx context.Context, batchID string) (models.StageView, error)
	ActiveStages(ctx context.Context) ([]models.StageView, error)
	Finalize(ctx context.Context, batchID string, req models.FinalizeRequest) (models.Batch, error)
}

// BatchHandler exposes batch intake and processing.
type BatchHandler struct {
	svc    ProcessingService
	logger *zap.Logger
}

// NewBatchHandler constructs the batch endpoints.
func NewBatchHandler(svc ProcessingService, logger *zap.Logger) *BatchHandler {
	return &BatchHandler{svc: svc, logger: orNop(logger)}
}

func (h *BatchHandler) List(c *gin.Context) {
	batches, err := h.svc.ListBatches(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, batches)
}

func (h *BatchHandler) Get(c *gin.Context) {
	batch, err := h.svc.GetBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, batch)
}

// Intake records raw material received from a farm.
func (h *BatchHandler) Intake(c *gin.Context) {
	var req models.IntakeRequest
	if !bind(c, h.logger, &req) {
		return
	}
	batch, err := h.svc.Intake(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	created(c, batch)
}

func (h *BatchHandler) Start(c *gin.Context) {
	var req models.StartRequest
	if !bind(c, h.logger, &req) {
		return
	}
	batch, err := h.svc.Start(c.Request.Context(), c.Param("id"), req.RecipeID)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, batch)
}

func (h *BatchHandler) SwitchRecipe(c *gin.Context) {
	var req models.StartRequest
	if !bind(c, h.logger, &req) {
		return
	}
	batch, err := h.svc.SwitchRecipe(c.Request.Context(), c.Param("id"), req.RecipeID)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, batch)
}

func (h *BatchHandler) Accelerate(c *gin.Context) {
	batch, err := h.svc.Accelerate(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, batch)
}

// Stage returns the live stage view of one run.
func (h *BatchHandler) Stage(c *gin.Context) {
	view, err := h.svc.Stage(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, view)
}

func (h *BatchHandler) ActiveStages(c *gin.Context) {
	views, err := h.svc.ActiveStages(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, views)
}

// Finalize records QC weights of a completed run.
func (h *BatchHandler) Finalize(c *gin.Context) {
	var req models.FinalizeRequest
	if !bind(c, h.logger, &req) {
		return
	}
	batch, err := h.svc.Finalize(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, batch)
}
