package sheets

import (
	"context"
	"fmt"
	"sync"
)

// MemoryRepository is an in-process Repository used when no spreadsheet is
// configured and in tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	sheets map[string][][]interface{}
	writes int
}

// NewMemoryRepository returns an empty in-memory tabular store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sheets: make(map[string][][]interface{})}
}

// EnsureSheet creates the sheet with a header row if it is missing.
func (m *MemoryRepository) EnsureSheet(_ context.Context, sheet string, headers []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sheets[sheet]; ok {
		return nil
	}
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	m.sheets[sheet] = [][]interface{}{header}
	return nil
}

// ReadRows returns a copy of every row of the sheet.
func (m *MemoryRepository) ReadRows(_ context.Context, sheet string) ([][]interface{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.sheets[sheet]
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		out[i] = append([]interface{}(nil), row...)
	}
	return out, nil
}

// UpdateRow overwrites one row in place.
func (m *MemoryRepository) UpdateRow(ctx context.Context, sheet string, row int, values []interface{}) error {
	return m.WriteRows(ctx, sheet, row, [][]interface{}{values})
}

// WriteRows writes a block of rows starting at startRow, growing the sheet as needed.
func (m *MemoryRepository) WriteRows(_ context.Context, sheet string, startRow int, rows [][]interface{}) error {
	if startRow < 1 {
		return fmt.Errorf("row %d out of range", startRow)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	data := m.sheets[sheet]
	for i, row := range rows {
		idx := startRow - 1 + i
		for len(data) <= idx {
			data = append(data, nil)
		}
		data[idx] = append([]interface{}(nil), row...)
	}
	m.sheets[sheet] = data
	m.writes++
	return nil
}

// Writes reports how many write calls have been served.
func (m *MemoryRepository) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
