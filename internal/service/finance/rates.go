package finance

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

// ErrInvalidRate is returned for negative costing rates.
var ErrInvalidRate = errors.New("rates must not be negative")

// SettingsStore persists the costing rates.
type SettingsStore interface {
	LoadRates(ctx context.Context) (models.Rates, bool, error)
	SaveRates(ctx context.Context, rates models.Rates) error
}

// RateStore serves the process-wide labor and raw-material rates. Values are
// loaded once from the settings collection and cached; until rates are saved
// the configured defaults apply.
type RateStore struct {
	store    SettingsStore
	defaults models.Rates
	logger   *zap.Logger

	mu     sync.RWMutex
	cached *models.Rates
}

// NewRateStore builds a RateStore falling back to defaults.
func NewRateStore(store SettingsStore, defaults models.Rates, logger *zap.Logger) *RateStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateStore{store: store, defaults: defaults, logger: logger}
}

// Rates returns the current rates. A store failure yields the defaults and is
// retried on the next call.
func (r *RateStore) Rates(ctx context.Context) models.Rates {
	r.mu.RLock()
	if r.cached != nil {
		rates := *r.cached
		r.mu.RUnlock()
		return rates
	}
	r.mu.RUnlock()

	rates, ok, err := r.store.LoadRates(ctx)
	if err != nil {
		r.logger.Warn("failed to load rates, using defaults", zap.Error(err))
		return r.defaults
	}
	if !ok {
		rates = r.defaults
	}

	r.mu.Lock()
	r.cached = &rates
	r.mu.Unlock()
	return rates
}

// SetRates validates and persists new rates.
func (r *RateStore) SetRates(ctx context.Context, rates models.Rates) (models.Rates, error) {
	if rates.LaborRate < 0 || rates.RawMaterialRate < 0 {
		return models.Rates{}, ErrInvalidRate
	}
	if err := r.store.SaveRates(ctx, rates); err != nil {
		return models.Rates{}, fmt.Errorf("save rates: %w", err)
	}

	r.mu.Lock()
	r.cached = &rates
	r.mu.Unlock()

	r.logger.Info("rates updated",
		zap.Float64("labor_rate", rates.LaborRate),
		zap.Float64("raw_material_rate", rates.RawMaterialRate),
	)
	return rates, nil
}
