package legacysync

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mamadbah2/shroomtrack/internal/repository/sheets"
)

// Schema binds a record type to one sheet: its header row, its key and the
// conversions to and from a row.
type Schema[T any] struct {
	Sheet   string
	Headers []string
	Key     func(T) string
	ToRow   func(T) []interface{}
	FromRow func(Row) (T, error)
}

// UpsertResult counts what one upsert wrote.
type UpsertResult struct {
	Updated  int `json:"updated"`
	Appended int `json:"appended"`
}

// Upsert writes items into the sheet keyed by column A. Rows whose key is
// already present are overwritten in place; unseen keys are appended after the
// last occupied row in a single ranged write. Later duplicates of a key in
// items win.
func Upsert[T any](ctx context.Context, table sheets.Repository, schema Schema[T], items []T) (UpsertResult, error) {
	var result UpsertResult

	if err := table.EnsureSheet(ctx, schema.Sheet, schema.Headers); err != nil {
		return result, fmt.Errorf("ensure %s: %w", schema.Sheet, err)
	}

	rows, err := table.ReadRows(ctx, schema.Sheet)
	if err != nil {
		return result, fmt.Errorf("read %s: %w", schema.Sheet, err)
	}

	if len(rows) == 0 {
		header := make([]interface{}, len(schema.Headers))
		for i, h := range schema.Headers {
			header[i] = h
		}
		if err := table.WriteRows(ctx, schema.Sheet, 1, [][]interface{}{header}); err != nil {
			return result, fmt.Errorf("write header of %s: %w", schema.Sheet, err)
		}
		rows = [][]interface{}{header}
	}

	existing := make(map[string]int, len(rows))
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) == 0 {
			continue
		}
		existing[CellText(rows[i][0])] = i + 1
	}
	lastRow := len(rows)

	var appended [][]interface{}
	pending := make(map[string]int)

	for _, item := range items {
		key := schema.Key(item)
		values := schema.ToRow(item)

		if row, ok := existing[key]; ok {
			if err := table.UpdateRow(ctx, schema.Sheet, row, values); err != nil {
				return result, fmt.Errorf("update %s row %d: %w", schema.Sheet, row, err)
			}
			result.Updated++
			continue
		}

		if idx, ok := pending[key]; ok {
			appended[idx] = values
			continue
		}
		pending[key] = len(appended)
		appended = append(appended, values)
	}

	if len(appended) > 0 {
		if err := table.WriteRows(ctx, schema.Sheet, lastRow+1, appended); err != nil {
			return result, fmt.Errorf("append to %s: %w", schema.Sheet, err)
		}
		result.Appended = len(appended)
	}

	return result, nil
}

// ReadAll parses every data row of the sheet. A sheet that does not exist yet
// is created and reads as empty.
func ReadAll[T any](ctx context.Context, table sheets.Repository, schema Schema[T]) ([]T, error) {
	if err := table.EnsureSheet(ctx, schema.Sheet, schema.Headers); err != nil {
		return nil, fmt.Errorf("ensure %s: %w", schema.Sheet, err)
	}

	rows, err := table.ReadRows(ctx, schema.Sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", schema.Sheet, err)
	}

	items := make([]T, 0, len(rows))
	for i := 1; i < len(rows); i++ {
		row := Row(rows[i])
		if row.Empty() {
			continue
		}
		item, err := schema.FromRow(row)
		if err != nil {
			return nil, fmt.Errorf("parse %s row %d: %w", schema.Sheet, i+1, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Row is one data row as returned by the tabular store. Missing trailing
// cells read as empty.
type Row []interface{}

// Empty reports whether the row has no key.
func (r Row) Empty() bool {
	return r.Text(0) == ""
}

// Text returns the cell as a string.
func (r Row) Text(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return CellText(r[i])
}

// Number returns the cell as a float; empty or non-numeric cells read as 0.
func (r Row) Number(i int) float64 {
	text := strings.TrimSpace(r.Text(i))
	if text == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

// Int returns the cell truncated to an int.
func (r Row) Int(i int) int {
	return int(r.Number(i))
}

// CellText coerces a cell value to its key string so that 100 and "100"
// compare equal.
func CellText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
