package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

// RoleService resolves the dashboard role of a user.
type RoleService interface {
	Role(ctx context.Context, uid string) string
}

// OverviewService builds the operations dashboard.
type OverviewService interface {
	Overview(ctx context.Context) (models.OverviewStats, error)
}

// DashboardHandler serves the landing dashboard and role lookups.
type DashboardHandler struct {
	roles    RoleService
	overview OverviewService
	logger   *zap.Logger
}

// NewDashboardHandler constructs the dashboard endpoints.
func NewDashboardHandler(roles RoleService, overview OverviewService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{roles: roles, overview: overview, logger: orNop(logger)}
}

// Role never fails; unknown users are guests.
func (h *DashboardHandler) Role(c *gin.Context) {
	uid := c.Param("uid")
	ok(c, models.UserRole{UID: uid, Role: h.roles.Role(c.Request.Context(), uid)})
}

func (h *DashboardHandler) Overview(c *gin.Context) {
	stats, err := h.overview.Overview(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, stats)
}
