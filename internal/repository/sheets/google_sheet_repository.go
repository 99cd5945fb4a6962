package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/shroomtrack/internal/config"
)

// Repository is a keyed tabular store: every sheet holds a header row
// followed by data rows. Row numbers are 1-based, row 1 being the header.
type Repository interface {
	EnsureSheet(ctx context.Context, sheet string, headers []string) error
	ReadRows(ctx context.Context, sheet string) ([][]interface{}, error)
	UpdateRow(ctx context.Context, sheet string, row int, values []interface{}) error
	WriteRows(ctx context.Context, sheet string, startRow int, rows [][]interface{}) error
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// EnsureSheet creates the sheet with its header row when it does not exist yet.
func (r *GoogleSheetRepository) EnsureSheet(ctx context.Context, sheet string, headers []string) error {
	if sheet == "" {
		return fmt.Errorf("sheet must not be empty")
	}

	spreadsheet, err := r.service.Spreadsheets.Get(r.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("load spreadsheet metadata: %w", err)
	}

	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil && s.Properties.Title == sheet {
			return nil
		}
	}

	add := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{Properties: &sheetsapi.SheetProperties{Title: sheet}},
		}},
	}
	if _, err := r.service.Spreadsheets.BatchUpdate(r.spreadsheetID, add).Context(ctx).Do(); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := r.WriteRows(ctx, sheet, 1, [][]interface{}{header}); err != nil {
		return fmt.Errorf("write header of %s: %w", sheet, err)
	}

	r.logger.Info("sheet created", zap.String("sheet", sheet), zap.Int("columns", len(headers)))
	return nil
}

// ReadRows fetches every occupied row of the sheet, header included.
func (r *GoogleSheetRepository) ReadRows(ctx context.Context, sheet string) ([][]interface{}, error) {
	if sheet == "" {
		return nil, fmt.Errorf("sheet must not be empty")
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, quote(sheet)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	return resp.Values, nil
}

// UpdateRow overwrites a single row in place starting at column A.
func (r *GoogleSheetRepository) UpdateRow(ctx context.Context, sheet string, row int, values []interface{}) error {
	return r.WriteRows(ctx, sheet, row, [][]interface{}{values})
}

// WriteRows writes a block of rows in one ranged call starting at startRow, column A.
func (r *GoogleSheetRepository) WriteRows(ctx context.Context, sheet string, startRow int, rows [][]interface{}) error {
	if sheet == "" {
		return fmt.Errorf("sheet must not be empty")
	}
	if startRow < 1 {
		return fmt.Errorf("row %d out of range", startRow)
	}
	if len(rows) == 0 {
		return nil
	}

	target := fmt.Sprintf("%s!A%d", quote(sheet), startRow)
	payload := &sheetsapi.ValueRange{Values: rows}

	call := r.service.Spreadsheets.Values.Update(r.spreadsheetID, target, payload).
		ValueInputOption("RAW").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("write %d rows into %s: %w", len(rows), target, err)
	}

	r.logger.Debug("rows written to sheet", zap.String("range", target), zap.Int("rows", len(rows)))
	return nil
}

func quote(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}
