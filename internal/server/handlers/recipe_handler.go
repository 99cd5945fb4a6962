package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

// RecipeService manages the recipe catalog.
type RecipeService interface {
	List(ctx context.Context) ([]models.Recipe, error)
	Get(ctx context.Context, id string) (models.Recipe, error)
	Save(ctx context.Context, recipe models.Recipe) (models.Recipe, error)
	Delete(ctx context.Context, id string) error
	RemoveDuplicates(ctx context.Context) ([]string, error)
}

// RecipeHandler exposes the recipe catalog.
type RecipeHandler struct {
	svc    RecipeService
	logger *zap.Logger
}

// NewRecipeHandler constructs the recipe endpoints.
func NewRecipeHandler(svc RecipeService, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{svc: svc, logger: orNop(logger)}
}

func (h *RecipeHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, list)
}

func (h *RecipeHandler) Get(c *gin.Context) {
	recipe, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, recipe)
}

// Save creates a recipe, or replaces the one named by the path id.
func (h *RecipeHandler) Save(c *gin.Context) {
	var recipe models.Recipe
	if !bind(c, h.logger, &recipe) {
		return
	}
	if id := c.Param("id"); id != "" {
		recipe.ID = id
	}
	saved, err := h.svc.Save(c.Request.Context(), recipe)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, saved)
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, h.logger, err)
		return
	}
	done(c, "Recipe deleted")
}

// Deduplicate removes recipes whose names repeat an earlier one.
func (h *RecipeHandler) Deduplicate(c *gin.Context) {
	removed, err := h.svc.RemoveDuplicates(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, gin.H{"removed": removed})
}
