// Package recipes manages the catalog of process templates.
package recipes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

// Defaults applied to fields left empty when a recipe is saved.
const (
	DefaultBaseWeightKg    = 0.5
	DefaultCookTimeMinutes = 10
	DefaultTemperature     = 160
)

// ErrDuplicateRecipe is returned when another recipe already uses the name.
var ErrDuplicateRecipe = errors.New("a recipe with this name already exists")

// Repository persists recipes.
type Repository interface {
	ListRecipes(ctx context.Context) ([]models.Recipe, error)
	GetRecipe(ctx context.Context, id string) (models.Recipe, error)
	SaveRecipe(ctx context.Context, recipe models.Recipe) error
	DeleteRecipe(ctx context.Context, id string) error
}

// Service validates and stores recipes.
type Service struct {
	repo     Repository
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a recipe catalog.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// List returns every recipe.
func (s *Service) List(ctx context.Context) ([]models.Recipe, error) {
	return s.repo.ListRecipes(ctx)
}

// Get returns one recipe.
func (s *Service) Get(ctx context.Context, id string) (models.Recipe, error) {
	return s.repo.GetRecipe(ctx, id)
}

// Save creates or updates a recipe. Names are unique ignoring case and
// surrounding blanks.
func (s *Service) Save(ctx context.Context, recipe models.Recipe) (models.Recipe, error) {
	recipe.Name = strings.TrimSpace(recipe.Name)
	s.applyDefaults(&recipe)

	if err := s.validate.Struct(recipe); err != nil {
		return models.Recipe{}, fmt.Errorf("invalid recipe: %w", err)
	}

	existing, err := s.repo.ListRecipes(ctx)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("list recipes: %w", err)
	}
	key := s.key(recipe.Name)
	for _, other := range existing {
		if other.ID != recipe.ID && s.key(other.Name) == key {
			return models.Recipe{}, fmt.Errorf("%w: %q", ErrDuplicateRecipe, recipe.Name)
		}
	}

	if err := s.repo.SaveRecipe(ctx, recipe); err != nil {
		return models.Recipe{}, fmt.Errorf("save recipe: %w", err)
	}
	s.logger.Info("recipe saved", zap.String("recipe_id", recipe.ID), zap.String("name", recipe.Name))
	return recipe, nil
}

// Delete removes a recipe.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteRecipe(ctx, id)
}

// RemoveDuplicates keeps the first recipe of every name and deletes the rest.
// It returns the ids it removed. Individual delete failures are logged and
// skipped.
func (s *Service) RemoveDuplicates(ctx context.Context) ([]string, error) {
	all, err := s.repo.ListRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	seen := make(map[string]struct{}, len(all))
	removed := make([]string, 0)
	for _, r := range all {
		key := s.key(r.Name)
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			continue
		}
		if err := s.repo.DeleteRecipe(ctx, r.ID); err != nil {
			s.logger.Warn("failed to delete duplicate recipe", zap.String("recipe_id", r.ID), zap.Error(err))
			continue
		}
		removed = append(removed, r.ID)
	}

	s.logger.Info("recipe duplicates removed", zap.Int("count", len(removed)))
	return removed, nil
}

func (s *Service) key(name string) string {
	// a Caser keeps state between calls, so each key gets its own
	return cases.Fold().String(strings.TrimSpace(name))
}

func (s *Service) applyDefaults(r *models.Recipe) {
	if r.ID == "" {
		r.ID = fmt.Sprintf("r-%d", s.now().UnixMilli())
	}
	if r.Type == "" {
		r.Type = models.RecipeChips
	}
	if r.BaseWeightKg <= 0 {
		r.BaseWeightKg = DefaultBaseWeightKg
	}
	if r.CookTimeMinutes <= 0 {
		r.CookTimeMinutes = DefaultCookTimeMinutes
	}
	if r.Temperature <= 0 {
		r.Temperature = DefaultTemperature
	}
}
