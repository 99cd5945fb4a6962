package processing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
	"github.com/mamadbah2/shroomtrack/internal/metrics"
)

const dateLayout = "2006-01-02"

var (
	// ErrInvalidIntake indicates intake weights that cannot form a batch.
	ErrInvalidIntake = errors.New("invalid intake weights")
	// ErrNotComplete indicates finalize was attempted before the COMPLETE stage.
	ErrNotComplete = errors.New("processing run has not reached COMPLETE")
)

// BatchRepository persists batches in the document store.
type BatchRepository interface {
	GetBatch(ctx context.Context, id string) (models.Batch, error)
	ListBatches(ctx context.Context) ([]models.Batch, error)
	ListBatchesByStatus(ctx context.Context, status models.BatchStatus) ([]models.Batch, error)
	SaveBatch(ctx context.Context, batch models.Batch) error
}

// RecipeLookup resolves the recipes a run is parameterised by.
type RecipeLookup interface {
	GetRecipe(ctx context.Context, id string) (models.Recipe, error)
	FindRecipeByName(ctx context.Context, name string) (models.Recipe, error)
}

// CostRecorder receives the cost attribution of a finished run.
type CostRecorder interface {
	SaveDailyCost(ctx context.Context, cost models.DailyCostMetric) error
}

// RateProvider exposes the current costing rates.
type RateProvider interface {
	Rates(ctx context.Context) models.Rates
}

// Service drives batches through intake, timed processing and QC.
type Service struct {
	batches BatchRepository
	recipes RecipeLookup
	costs   CostRecorder
	rates   RateProvider
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a processing service.
func NewService(batches BatchRepository, recipes RecipeLookup, costs CostRecorder, rates RateProvider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		batches: batches,
		recipes: recipes,
		costs:   costs,
		rates:   rates,
		logger:  logger,
		now:     time.Now,
	}
}

// ListBatches returns every batch in the document store.
func (s *Service) ListBatches(ctx context.Context) ([]models.Batch, error) {
	return s.batches.ListBatches(ctx)
}

// GetBatch returns a single batch.
func (s *Service) GetBatch(ctx context.Context, id string) (models.Batch, error) {
	return s.batches.GetBatch(ctx, id)
}

// Intake records a new batch of raw material in RECEIVED status.
func (s *Service) Intake(ctx context.Context, req models.IntakeRequest) (models.Batch, error) {
	if req.RawWeightKg <= 0 || req.SpoiledWeightKg < 0 || req.SpoiledWeightKg > req.RawWeightKg {
		return models.Batch{}, fmt.Errorf("%w: raw %.2fkg, spoiled %.2fkg", ErrInvalidIntake, req.RawWeightKg, req.SpoiledWeightKg)
	}

	now := s.now()
	batch := models.Batch{
		ID:              fmt.Sprintf("B-%d", now.UnixMilli()),
		Status:          models.BatchReceived,
		SourceFarm:      strings.TrimSpace(req.SourceFarm),
		FarmBatchID:     req.FarmBatchID,
		Species:         req.Species,
		FlushNumber:     req.FlushNumber,
		DateReceived:    now.UTC().Format(time.RFC3339),
		RawWeightKg:     req.RawWeightKg,
		SpoiledWeightKg: req.SpoiledWeightKg,
		NetWeightKg:     math.Max(req.RawWeightKg-req.SpoiledWeightKg, 0),
	}

	if err := s.batches.SaveBatch(ctx, batch); err != nil {
		return models.Batch{}, fmt.Errorf("save batch %s: %w", batch.ID, err)
	}

	metrics.BatchTransitions.WithLabelValues("intake").Inc()
	s.logger.Info("batch received",
		zap.String("batch_id", batch.ID),
		zap.String("farm", batch.SourceFarm),
		zap.Float64("net_kg", batch.NetWeightKg))
	return batch, nil
}

// Start attaches a process config to a RECEIVED batch and moves it to PROCESSING.
func (s *Service) Start(ctx context.Context, batchID, recipeID string) (models.Batch, error) {
	batch, err := s.batches.GetBatch(ctx, batchID)
	if err != nil {
		return models.Batch{}, fmt.Errorf("load batch %s: %w", batchID, err)
	}
	if batch.Status != models.BatchReceived {
		return models.Batch{}, fmt.Errorf("%w: batch %s is %s, expected %s", models.ErrInvalidTransition, batchID, batch.Status, models.BatchReceived)
	}

	recipe, err := s.recipes.GetRecipe(ctx, recipeID)
	if err != nil {
		return models.Batch{}, fmt.Errorf("load recipe %s: %w", recipeID, err)
	}

	cfg := NewProcessConfig(batch.NetWeightKg, recipe, s.now())
	batch.Status = models.BatchProcessing
	batch.ProcessConfig = &cfg
	batch.SelectedRecipeName = recipe.Name
	batch.RecipeType = recipe.Name

	if err := s.batches.SaveBatch(ctx, batch); err != nil {
		return models.Batch{}, fmt.Errorf("save batch %s: %w", batchID, err)
	}

	metrics.BatchTransitions.WithLabelValues("start").Inc()
	s.logger.Info("processing started",
		zap.String("batch_id", batch.ID),
		zap.String("recipe", recipe.Name),
		zap.Int64("total_seconds", cfg.TotalDurationSeconds))
	return batch, nil
}

// SwitchRecipe swaps the recipe of an in-flight run, recomputing only the cook stage.
func (s *Service) SwitchRecipe(ctx context.Context, batchID, recipeID string) (models.Batch, error) {
	batch, err := s.processingBatch(ctx, batchID)
	if err != nil {
		return models.Batch{}, err
	}

	recipe, err := s.recipes.GetRecipe(ctx, recipeID)
	if err != nil {
		return models.Batch{}, fmt.Errorf("load recipe %s: %w", recipeID, err)
	}

	cfg := SwitchRecipe(*batch.ProcessConfig, batch.NetWeightKg, recipe)
	batch.ProcessConfig = &cfg
	batch.SelectedRecipeName = recipe.Name
	batch.RecipeType = recipe.Name

	if err := s.batches.SaveBatch(ctx, batch); err != nil {
		return models.Batch{}, fmt.Errorf("save batch %s: %w", batchID, err)
	}

	metrics.BatchTransitions.WithLabelValues("switch_recipe").Inc()
	s.logger.Info("recipe switched",
		zap.String("batch_id", batch.ID),
		zap.String("recipe", recipe.Name),
		zap.Int64("cook_seconds", cfg.CookDurationSeconds))
	return batch, nil
}

// Accelerate marks an in-flight run as already finished. It exists for
// operator testing and overrides only.
func (s *Service) Accelerate(ctx context.Context, batchID string) (models.Batch, error) {
	batch, err := s.processingBatch(ctx, batchID)
	if err != nil {
		return models.Batch{}, err
	}

	cfg := Accelerate(*batch.ProcessConfig, s.now())
	batch.ProcessConfig = &cfg

	if err := s.batches.SaveBatch(ctx, batch); err != nil {
		return models.Batch{}, fmt.Errorf("save batch %s: %w", batchID, err)
	}

	metrics.BatchTransitions.WithLabelValues("accelerate").Inc()
	s.logger.Warn("processing run accelerated", zap.String("batch_id", batch.ID))
	return batch, nil
}

// Stage derives the live stage view of a batch's current run.
func (s *Service) Stage(ctx context.Context, batchID string) (models.StageView, error) {
	batch, err := s.processingBatch(ctx, batchID)
	if err != nil {
		return models.StageView{}, err
	}
	return s.describe(ctx, batch, s.now()), nil
}

// ActiveStages derives stage views for every batch currently processing.
func (s *Service) ActiveStages(ctx context.Context) ([]models.StageView, error) {
	return s.active(ctx, func(batch models.Batch, now time.Time) models.StageView {
		return s.describe(ctx, batch, now)
	})
}

// ActiveRuns derives the bare stage of every batch currently processing,
// without the recipe-specific labels.
func (s *Service) ActiveRuns(ctx context.Context) ([]models.StageView, error) {
	return s.active(ctx, func(batch models.Batch, now time.Time) models.StageView {
		view := DeriveStage(*batch.ProcessConfig, now)
		view.BatchID = batch.ID
		return view
	})
}

func (s *Service) active(ctx context.Context, derive func(models.Batch, time.Time) models.StageView) ([]models.StageView, error) {
	batches, err := s.batches.ListBatchesByStatus(ctx, models.BatchProcessing)
	if err != nil {
		return nil, fmt.Errorf("list processing batches: %w", err)
	}

	now := s.now()
	views := make([]models.StageView, 0, len(batches))
	for _, batch := range batches {
		if batch.ProcessConfig == nil {
			continue
		}
		views = append(views, derive(batch, now))
	}
	return views, nil
}

// Finalize records QC output for a completed run and moves the batch to
// DRYING_COMPLETE. Nothing is written when validation fails.
func (s *Service) Finalize(ctx context.Context, batchID string, req models.FinalizeRequest) (models.Batch, error) {
	batch, err := s.processingBatch(ctx, batchID)
	if err != nil {
		return models.Batch{}, err
	}

	now := s.now()
	if view := DeriveStage(*batch.ProcessConfig, now); view.Stage != models.StageComplete {
		return models.Batch{}, fmt.Errorf("%w: batch %s is in %s with %ds remaining", ErrNotComplete, batchID, view.Stage, view.RemainingSeconds)
	}

	if err := ValidateFinalize(batch.InputWeightKg(), req); err != nil {
		return models.Batch{}, err
	}

	runHours := float64(batch.ProcessConfig.TotalDurationSeconds) / 3600

	batch.Status = models.BatchDryingComplete
	batch.ProcessingWastageKg = req.WastageWeightKg
	batch.WastageReason = strings.TrimSpace(req.WastageReason)
	batch.QualityCheckPassed = true
	batch.ProcessConfig = nil

	if err := s.batches.SaveBatch(ctx, batch); err != nil {
		return models.Batch{}, fmt.Errorf("save batch %s: %w", batchID, err)
	}

	metrics.BatchTransitions.WithLabelValues("finalize").Inc()
	metrics.WastageKg.Add(req.WastageWeightKg)
	s.logger.Info("batch finalized",
		zap.String("batch_id", batch.ID),
		zap.Float64("good_kg", req.GoodWeightKg),
		zap.Float64("wastage_kg", req.WastageWeightKg),
		zap.String("reason", batch.WastageReason))

	s.attributeCost(ctx, batch, req, runHours, now)
	return batch, nil
}

// attributeCost hands the run's cost to finance. The batch update is not
// rolled back when this fails.
func (s *Service) attributeCost(ctx context.Context, batch models.Batch, req models.FinalizeRequest, hours float64, now time.Time) {
	if s.costs == nil {
		return
	}

	rates := models.Rates{}
	if s.rates != nil {
		rates = s.rates.Rates(ctx)
	}

	wastage := req.WastageWeightKg * rates.RawMaterialRate
	labor := hours * rates.LaborRate
	cost := models.DailyCostMetric{
		ID:              "cost-waste-" + batch.ID,
		ReferenceID:     batch.ID,
		Date:            now.UTC().Format(dateLayout),
		LaborCost:       labor,
		WastageCost:     wastage,
		TotalCost:       labor + wastage,
		WeightProcessed: req.GoodWeightKg,
		ProcessingHours: hours,
	}

	if err := s.costs.SaveDailyCost(ctx, cost); err != nil {
		s.logger.Error("failed to attribute processing cost",
			zap.String("batch_id", batch.ID),
			zap.Error(err))
	}
}

func (s *Service) processingBatch(ctx context.Context, batchID string) (models.Batch, error) {
	batch, err := s.batches.GetBatch(ctx, batchID)
	if err != nil {
		return models.Batch{}, fmt.Errorf("load batch %s: %w", batchID, err)
	}
	if batch.Status != models.BatchProcessing || batch.ProcessConfig == nil {
		return models.Batch{}, fmt.Errorf("%w: batch %s is %s, expected %s", models.ErrInvalidTransition, batchID, batch.Status, models.BatchProcessing)
	}
	return batch, nil
}

func (s *Service) describe(ctx context.Context, batch models.Batch, now time.Time) models.StageView {
	view := DeriveStage(*batch.ProcessConfig, now)
	view.BatchID = batch.ID

	recipeType := models.RecipeChips
	if batch.SelectedRecipeName != "" && s.recipes != nil {
		if recipe, err := s.recipes.FindRecipeByName(ctx, batch.SelectedRecipeName); err == nil && recipe.Type != "" {
			recipeType = recipe.Type
		}
	}
	return Describe(view, recipeType)
}
