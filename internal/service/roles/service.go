// Package roles maps authenticated users to dashboard roles.
package roles

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

// Repository reads stored role assignments.
type Repository interface {
	GetUserRole(ctx context.Context, uid string) (models.UserRole, error)
}

// Service resolves user roles.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService wires the role lookup.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Role returns the role of uid. Unknown users, empty roles and lookup
// failures all resolve to GUEST.
func (s *Service) Role(ctx context.Context, uid string) string {
	if uid == "" {
		return models.RoleGuest
	}
	r, err := s.repo.GetUserRole(ctx, uid)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Warn("role lookup failed", zap.String("uid", uid), zap.Error(err))
		}
		return models.RoleGuest
	}
	if r.Role == "" {
		return models.RoleGuest
	}
	return r.Role
}
