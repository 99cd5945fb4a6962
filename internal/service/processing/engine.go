package processing

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

const (
	// DefaultBaseWeightKg is assumed when a recipe carries no reference weight.
	DefaultBaseWeightKg = 0.5
	// DrainDurationSeconds is fixed and never scaled by batch size.
	DrainDurationSeconds = 120
	// MassBalanceToleranceKg is the allowed gap between input and QC output.
	MassBalanceToleranceKg = 0.1

	washSecondsPerUnit = 60
	// absorbs float noise so that a gap of exactly 0.1 kg is accepted
	toleranceEpsilon = 1e-9
)

var (
	// ErrMassBalance indicates good + wastage does not reconcile with the input weight.
	ErrMassBalance = errors.New("mass balance mismatch")
	// ErrWastageReason indicates wastage was recorded without a reason.
	ErrWastageReason = errors.New("wastage reason is required when wastage is recorded")
)

// ScaleRatio returns how many recipe base weights fit into netWeightKg.
func ScaleRatio(netWeightKg float64, recipe models.Recipe) float64 {
	base := recipe.BaseWeightKg
	if base <= 0 {
		base = DefaultBaseWeightKg
	}
	return netWeightKg / base
}

// NewProcessConfig computes the stage durations for a run starting at now.
func NewProcessConfig(netWeightKg float64, recipe models.Recipe, now time.Time) models.ProcessConfig {
	ratio := ScaleRatio(netWeightKg, recipe)
	wash := int64(math.Ceil(ratio * washSecondsPerUnit))
	cook := cookSeconds(ratio, recipe.CookTimeMinutes)

	return models.ProcessConfig{
		StartTime:            now.UnixMilli(),
		WashDurationSeconds:  wash,
		DrainDurationSeconds: DrainDurationSeconds,
		CookDurationSeconds:  cook,
		TotalDurationSeconds: wash + DrainDurationSeconds + cook,
	}
}

// SwitchRecipe recomputes the cook stage for a new recipe. The ratio is taken
// from the batch's fixed net weight; start time, wash and drain are kept.
func SwitchRecipe(cfg models.ProcessConfig, netWeightKg float64, recipe models.Recipe) models.ProcessConfig {
	cook := cookSeconds(ScaleRatio(netWeightKg, recipe), recipe.CookTimeMinutes)

	return models.ProcessConfig{
		StartTime:            cfg.StartTime,
		WashDurationSeconds:  cfg.WashDurationSeconds,
		DrainDurationSeconds: cfg.DrainDurationSeconds,
		CookDurationSeconds:  cook,
		TotalDurationSeconds: cfg.WashDurationSeconds + cfg.DrainDurationSeconds + cook,
	}
}

// Accelerate moves the start time back so the run reads as finished one
// second ago. Durations are left untouched.
func Accelerate(cfg models.ProcessConfig, now time.Time) models.ProcessConfig {
	cfg.StartTime = now.UnixMilli() - cfg.TotalDurationSeconds*1000 - 1000
	return cfg
}

// DeriveStage evaluates which stage a run is in at now. It is a pure function
// of its inputs; no stage is ever stored.
func DeriveStage(cfg models.ProcessConfig, now time.Time) models.StageView {
	elapsed := (now.UnixMilli() - cfg.StartTime) / 1000
	if elapsed < 0 {
		elapsed = 0
	}

	drainStart := cfg.WashDurationSeconds
	cookStart := drainStart + cfg.DrainDurationSeconds
	finish := cookStart + cfg.CookDurationSeconds

	view := models.StageView{ElapsedSeconds: elapsed}
	switch {
	case elapsed < drainStart:
		view.Stage = models.StageWash
		view.RemainingSeconds = drainStart - elapsed
		view.Progress = percent(elapsed, cfg.WashDurationSeconds)
	case elapsed < cookStart:
		view.Stage = models.StageDrain
		view.RemainingSeconds = cookStart - elapsed
		view.Progress = percent(elapsed-drainStart, cfg.DrainDurationSeconds)
	case elapsed < finish:
		view.Stage = models.StageCook
		view.RemainingSeconds = finish - elapsed
		view.Progress = percent(elapsed-cookStart, cfg.CookDurationSeconds)
	default:
		view.Stage = models.StageComplete
		view.RemainingSeconds = 0
		view.Progress = 100
	}

	return view
}

// Describe attaches the operator-facing label and safety warning for a stage.
func Describe(view models.StageView, recipeType models.RecipeType) models.StageView {
	switch view.Stage {
	case models.StageWash:
		view.Label, view.Warning = "WASHING CYCLE", "CAUTION: ROTATING DRUM ACTIVE"
	case models.StageDrain:
		view.Label, view.Warning = "DRAINING / AIR DRY", "HIGH VELOCITY AIRFLOW"
	case models.StageCook:
		if recipeType == models.RecipeChips {
			view.Label, view.Warning = "FRYING PROCESS", "DANGER: HOT OIL 160°C"
		} else {
			view.Label, view.Warning = "DEHYDRATION", "HEAT CHAMBER SEALED"
		}
	case models.StageComplete:
		view.Label, view.Warning = "CYCLE COMPLETE", "SAFE TO UNLOAD"
	}
	return view
}

// ValidateFinalize checks QC output against the input weight of the run.
func ValidateFinalize(inputWeightKg float64, req models.FinalizeRequest) error {
	if req.WastageWeightKg > 0 && strings.TrimSpace(req.WastageReason) == "" {
		return ErrWastageReason
	}

	total := req.GoodWeightKg + req.WastageWeightKg
	if math.Abs(total-inputWeightKg) > MassBalanceToleranceKg+toleranceEpsilon {
		return fmt.Errorf("%w: total weight (%.2fkg) must match input (%.2fkg)", ErrMassBalance, total, inputWeightKg)
	}

	return nil
}

func cookSeconds(ratio, cookTimeMinutes float64) int64 {
	return int64(math.Ceil(ratio * (cookTimeMinutes * 60)))
}

func percent(part, whole int64) float64 {
	if whole <= 0 {
		return 100
	}
	return float64(part) / float64(whole) * 100
}
