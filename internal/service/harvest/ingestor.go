package harvest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/cropdash/internal/domain/models"
)

// maxExcelSerial is 9999-12-31 in the 1900 date system.
const maxExcelSerial = 2958465

// dateLayouts are tried in order. Day-first precedes month-first, so an
// ambiguous "03/04/2024" is 3 April as Brazilian sheets write it.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006",
	"02/01/2006 15:04:05",
	"01/02/2006",
	"2006/01/02",
	"02-01-2006",
	"02.01.2006",
}

// ParseError reports a harvest sheet that could not be read at all.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("harvest sheet unreadable: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RowReader fetches raw rows from a spreadsheet range.
type RowReader interface {
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// Ingestor normalizes uploaded harvest sheets into HarvestSets.
type Ingestor struct {
	logger *zap.Logger
}

// NewIngestor wires a harvest ingestor.
func NewIngestor(logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{logger: logger}
}

// Parse reads the first worksheet of an xlsx workbook.
func (i *Ingestor) Parse(r io.Reader) (*models.HarvestSet, error) {
	if r == nil {
		return nil, &ParseError{Err: errors.New("no file provided")}
	}

	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("open workbook: %w", err)}
	}
	defer func() { _ = file.Close() }()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Err: errors.New("workbook has no sheets")}
	}

	rows, err := file.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("read sheet %s: %w", sheets[0], err)}
	}

	i.logger.Debug("harvest workbook loaded", zap.String("sheet", sheets[0]), zap.Int("rows", len(rows)))
	return i.FromRows(rows), nil
}

// FromSheet reads harvest rows from a Google Sheets range. The reader is
// expected to return unformatted values; numeric cells are stringified with
// fmt.Sprint so CoerceBoxes and CoerceDate see plain decimals and serials.
func (i *Ingestor) FromSheet(ctx context.Context, reader RowReader, sheetRange string) (*models.HarvestSet, error) {
	if reader == nil {
		return nil, &ParseError{Err: errors.New("sheet source not configured")}
	}

	values, err := reader.ReadRange(ctx, sheetRange)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	rows := make([][]string, 0, len(values))
	for _, row := range values {
		cells := make([]string, 0, len(row))
		for _, v := range row {
			cells = append(cells, fmt.Sprint(v))
		}
		rows = append(rows, cells)
	}

	return i.FromRows(rows), nil
}

// FromRows normalizes a header row followed by data rows. Fully blank rows are skipped.
func (i *Ingestor) FromRows(rows [][]string) *models.HarvestSet {
	set := &models.HarvestSet{Columns: []string{}, Records: []models.HarvestRecord{}}
	if len(rows) == 0 {
		return set
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	set.Columns = normalizeHeader(rows[0], width)
	dateIdx := indexOf(set.Columns, models.HarvestDateColumn)
	boxIdx := indexOf(set.Columns, models.HarvestBoxesColumn)

	for n, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		cells := make([]string, width)
		copy(cells, row)
		rec := models.HarvestRecord{Cells: cells}

		if dateIdx >= 0 {
			if d, ok := CoerceDate(cells[dateIdx]); ok {
				rec.Date = &d
				cells[dateIdx] = formatDate(d)
			} else {
				i.logger.Debug("harvest row with invalid date", zap.Int("row", n+2), zap.String("value", cells[dateIdx]))
				set.MissingDates++
				cells[dateIdx] = ""
			}
		}

		if boxIdx >= 0 {
			raw := strings.TrimSpace(cells[boxIdx])
			if v, ok := CoerceBoxes(raw); ok {
				rec.Boxes = &v
			} else if raw != "" {
				i.logger.Debug("harvest row with invalid boxes", zap.Int("row", n+2), zap.String("value", raw))
				set.InvalidBoxes++
			}
		}

		set.Records = append(set.Records, rec)
	}

	return set
}

// CoerceDate converts a cell to a date. Excel serial numbers and the common
// ISO and day-first layouts are accepted; anything else reports false.
func CoerceDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if math.IsNaN(serial) || serial <= 0 || serial > maxExcelSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CoerceBoxes converts a cell to a finite box count, accepting a decimal comma.
func CoerceBoxes(value string) (float64, bool) {
	if value == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil && strings.Count(value, ",") == 1 && !strings.Contains(value, ".") {
		v, err = strconv.ParseFloat(strings.Replace(value, ",", ".", 1), 64)
	}
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

func normalizeHeader(header []string, width int) []string {
	columns := make([]string, width)
	seen := make(map[string]int, width)

	for idx := range columns {
		name := ""
		if idx < len(header) {
			name = header[idx]
		}
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", idx)
		}

		if count, dup := seen[name]; dup {
			seen[name] = count + 1
			name = fmt.Sprintf("%s.%d", name, count+1)
		} else {
			seen[name] = 0
		}
		columns[idx] = name
	}
	return columns
}

func indexOf(columns []string, name string) int {
	for idx, col := range columns {
		if col == name {
			return idx
		}
	}
	return -1
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
