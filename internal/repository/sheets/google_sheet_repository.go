package sheets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/cropdash/internal/config"
)

// ErrEmptyRange is returned when no A1 range was supplied.
var ErrEmptyRange = errors.New("sheet range must not be empty")

// Repository reads harvest rows kept in a Google Sheet.
type Repository interface {
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// valuesGetter isolates the single Sheets API call used here.
type valuesGetter func(ctx context.Context, spreadsheetID, sheetRange string) ([][]interface{}, error)

// GoogleSheetRepository implements Repository using the official Google Sheets API.
type GoogleSheetRepository struct {
	get           valuesGetter
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a read-only Sheets backed repository.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	service, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return newRepository(serviceGetter(service), cfg.SpreadsheetID, logger), nil
}

// serviceGetter reads raw cell values: numbers come back as numbers and dates
// as serial numbers, so locale display formats never reach the parser.
func serviceGetter(service *sheetsapi.Service) valuesGetter {
	return func(ctx context.Context, spreadsheetID, sheetRange string) ([][]interface{}, error) {
		resp, err := service.Spreadsheets.Values.Get(spreadsheetID, sheetRange).
			ValueRenderOption("UNFORMATTED_VALUE").
			DateTimeRenderOption("SERIAL_NUMBER").
			Context(ctx).
			Do()
		if err != nil {
			return nil, err
		}
		return resp.Values, nil
	}
}

func newRepository(get valuesGetter, spreadsheetID string, logger *zap.Logger) *GoogleSheetRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoogleSheetRepository{get: get, spreadsheetID: spreadsheetID, logger: logger}
}

// ReadRange fetches a rectangular data range from the spreadsheet.
func (r *GoogleSheetRepository) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, ErrEmptyRange
	}

	values, err := r.get(ctx, r.spreadsheetID, sheetRange)
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	r.logger.Debug("sheet range read", zap.String("range", sheetRange), zap.Int("rows", len(values)))
	return values, nil
}
