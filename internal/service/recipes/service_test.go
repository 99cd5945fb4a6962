package recipes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

type memoryRepo struct {
	order   []string
	recipes map[string]models.Recipe
	failDel map[string]bool
}

func newMemoryRepo(seed ...models.Recipe) *memoryRepo {
	r := &memoryRepo{recipes: map[string]models.Recipe{}, failDel: map[string]bool{}}
	for _, rec := range seed {
		_ = r.SaveRecipe(context.Background(), rec)
	}
	return r
}

func (m *memoryRepo) ListRecipes(context.Context) ([]models.Recipe, error) {
	out := make([]models.Recipe, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.recipes[id])
	}
	return out, nil
}

func (m *memoryRepo) GetRecipe(_ context.Context, id string) (models.Recipe, error) {
	r, ok := m.recipes[id]
	if !ok {
		return models.Recipe{}, models.ErrNotFound
	}
	return r, nil
}

func (m *memoryRepo) SaveRecipe(_ context.Context, recipe models.Recipe) error {
	if _, ok := m.recipes[recipe.ID]; !ok {
		m.order = append(m.order, recipe.ID)
	}
	m.recipes[recipe.ID] = recipe
	return nil
}

func (m *memoryRepo) DeleteRecipe(_ context.Context, id string) error {
	if m.failDel[id] {
		return errors.New("permission denied")
	}
	if _, ok := m.recipes[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.recipes, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func newTestService(repo *memoryRepo) *Service {
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc
}

func TestSaveAppliesDefaults(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	saved, err := svc.Save(context.Background(), models.Recipe{Name: "  Garlic Chips "})
	require.NoError(t, err)

	assert.Equal(t, "r-1700000000000", saved.ID)
	assert.Equal(t, "Garlic Chips", saved.Name)
	assert.Equal(t, models.RecipeChips, saved.Type)
	assert.InDelta(t, 0.5, saved.BaseWeightKg, 1e-9)
	assert.InDelta(t, 10, saved.CookTimeMinutes, 1e-9)
	assert.InDelta(t, 160, saved.Temperature, 1e-9)
}

func TestSaveRejectsDuplicateNameIgnoringCase(t *testing.T) {
	svc := newTestService(newMemoryRepo(models.Recipe{ID: "r-1", Name: "Garlic Chips"}))

	_, err := svc.Save(context.Background(), models.Recipe{ID: "r-2", Name: "GARLIC chips "})

	assert.ErrorIs(t, err, ErrDuplicateRecipe)
}

func TestSaveAllowsRenamingItself(t *testing.T) {
	repo := newMemoryRepo(models.Recipe{ID: "r-1", Name: "Garlic Chips"})
	svc := newTestService(repo)

	_, err := svc.Save(context.Background(), models.Recipe{ID: "r-1", Name: "garlic chips", CookTimeMinutes: 12})

	require.NoError(t, err)
	assert.InDelta(t, 12, repo.recipes["r-1"].CookTimeMinutes, 1e-9)
}

func TestSaveValidatesFields(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.Save(context.Background(), models.Recipe{Name: "   "})
	assert.Error(t, err)

	_, err = svc.Save(context.Background(), models.Recipe{Name: "Soup", Type: "SOUP"})
	assert.Error(t, err)
}

func TestRemoveDuplicatesKeepsFirst(t *testing.T) {
	repo := newMemoryRepo(
		models.Recipe{ID: "r-1", Name: "Garlic Chips"},
		models.Recipe{ID: "r-2", Name: "Dried Oyster"},
		models.Recipe{ID: "r-3", Name: " garlic chips"},
		models.Recipe{ID: "r-4", Name: "DRIED OYSTER"},
	)
	svc := newTestService(repo)

	removed, err := svc.RemoveDuplicates(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"r-3", "r-4"}, removed)
	assert.Equal(t, []string{"r-1", "r-2"}, repo.order)
}

func TestRemoveDuplicatesSkipsFailedDeletes(t *testing.T) {
	repo := newMemoryRepo(
		models.Recipe{ID: "r-1", Name: "A"},
		models.Recipe{ID: "r-2", Name: "a"},
		models.Recipe{ID: "r-3", Name: "A"},
	)
	repo.failDel["r-2"] = true
	svc := newTestService(repo)

	removed, err := svc.RemoveDuplicates(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"r-3"}, removed)
}

func TestRemoveDuplicatesNoneFound(t *testing.T) {
	svc := newTestService(newMemoryRepo(models.Recipe{ID: "r-1", Name: "A"}))

	removed, err := svc.RemoveDuplicates(context.Background())
	require.NoError(t, err)

	assert.Empty(t, removed)
}
