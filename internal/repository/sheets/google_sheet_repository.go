// Package sheets stores the sales journal in a Google spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/pos/internal/config"
)

const (
	inputRaw        = "RAW"
	insertRows      = "INSERT_ROWS"
	renderNumbers   = "UNFORMATTED_VALUE"
	renderDateTimes = "FORMATTED_STRING"
)

var errEmptyRange = errors.New("sheet range must not be empty")

// Repository is the spreadsheet surface used by the sales journal.
type Repository interface {
	AppendRow(ctx context.Context, sheetRange string, values []interface{}) error
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
	EnsureHeader(ctx context.Context, headerRange string, header []interface{}) error
}

// GoogleSheetRepository talks to one spreadsheet through the Sheets API.
type GoogleSheetRepository struct {
	values        *sheetsapi.SpreadsheetsValuesService
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository authenticates with a service account credentials
// file and binds the repository to the configured spreadsheet.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("init sheets service: %w", err)
	}

	return &GoogleSheetRepository{
		values:        svc.Spreadsheets.Values,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendRow inserts values as a new row below the table found in sheetRange.
// Values are written raw so amounts stay numeric.
func (r *GoogleSheetRepository) AppendRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return errEmptyRange
	}

	row := &sheetsapi.ValueRange{Values: [][]interface{}{values}}
	_, err := r.values.Append(r.spreadsheetID, sheetRange, row).
		ValueInputOption(inputRaw).
		InsertDataOption(insertRows).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", sheetRange, err)
	}

	r.logger.Debug("journal row appended", zap.String("range", sheetRange), zap.Int("cells", len(values)))
	return nil
}

// ReadRange returns the cells of sheetRange. Numbers come back as float64 and
// dates as their display string.
func (r *GoogleSheetRepository) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, errEmptyRange
	}

	resp, err := r.values.Get(r.spreadsheetID, sheetRange).
		ValueRenderOption(renderNumbers).
		DateTimeRenderOption(renderDateTimes).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheetRange, err)
	}
	return resp.Values, nil
}

// EnsureHeader writes header into headerRange unless that row already has
// content. Existing headers are never overwritten.
func (r *GoogleSheetRepository) EnsureHeader(ctx context.Context, headerRange string, header []interface{}) error {
	existing, err := r.ReadRange(ctx, headerRange)
	if err != nil {
		return err
	}
	if len(existing) > 0 && len(existing[0]) > 0 {
		return nil
	}

	row := &sheetsapi.ValueRange{Values: [][]interface{}{header}}
	if _, err := r.values.Update(r.spreadsheetID, headerRange, row).
		ValueInputOption(inputRaw).
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("write header %s: %w", headerRange, err)
	}

	r.logger.Info("journal header written", zap.String("range", headerRange))
	return nil
}
