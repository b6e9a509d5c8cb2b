package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/gagesampsonn/barbershop/internal/config"
	"github.com/gagesampsonn/barbershop/internal/domain/models"
)

// SnapshotHeader is the column order produced by models.SalesSnapshot.Row.
var SnapshotHeader = []interface{}{"Date", "Gross Sales", "Tips", "Net Sales", "Transactions", "Status"}

// Repository appends sales snapshots to the owner's spreadsheet.
type Repository interface {
	AppendSnapshot(ctx context.Context, snapshot models.SalesSnapshot) error
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	sheetRange    string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}
	return newRepository(service, cfg, logger), nil
}

func newRepository(service *sheetsapi.Service, cfg config.SheetsConfig, logger *zap.Logger) *GoogleSheetRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	sheetRange := cfg.SnapshotRange
	if sheetRange == "" {
		sheetRange = "Sales!A:F"
	}
	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetRange:    sheetRange,
		logger:        logger,
	}
}

// AppendSnapshot writes one row per snapshot. An empty sheet gets the header first.
func (r *GoogleSheetRepository) AppendSnapshot(ctx context.Context, snapshot models.SalesSnapshot) error {
	existing, err := r.readRange(ctx, headerRange(r.sheetRange))
	if err != nil {
		return err
	}
	rows := [][]interface{}{snapshot.Row()}
	if len(existing) == 0 {
		rows = append([][]interface{}{SnapshotHeader}, rows...)
	}
	return r.writeRows(ctx, r.sheetRange, rows)
}

// headerRange narrows an append range to its first row, so "Sales!A:F"
// becomes "Sales!A1:F1" and a bare sheet name becomes "Sales!1:1".
func headerRange(sheetRange string) string {
	sheet, cells := "", sheetRange
	if i := strings.LastIndex(sheetRange, "!"); i >= 0 {
		sheet, cells = sheetRange[:i+1], sheetRange[i+1:]
	} else if !strings.Contains(sheetRange, ":") {
		sheet, cells = sheetRange+"!", ""
	}
	if cells == "" {
		return sheet + "1:1"
	}

	column := func(ref string) string { return strings.TrimRight(ref, "0123456789") }
	from, to, ok := strings.Cut(cells, ":")
	if !ok {
		to = from
	}
	return fmt.Sprintf("%s%s1:%s1", sheet, column(from), column(to))
}

func (r *GoogleSheetRepository) writeRows(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	payload := &sheetsapi.ValueRange{Values: rows}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append rows into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("rows appended to sheet", zap.String("range", sheetRange), zap.Int("rows", len(rows)))
	return nil
}

func (r *GoogleSheetRepository) readRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}
	return resp.Values, nil
}
