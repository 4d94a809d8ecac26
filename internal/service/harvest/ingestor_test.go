package harvest

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/cropdash/internal/domain/models"
)

func buildWorkbook(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse_NormalizesDatesAndBoxes(t *testing.T) {
	data := buildWorkbook(t,
		[]interface{}{"Data", "Caixas", "Talhão"},
		[]interface{}{day(2024, time.March, 5), 120, "T1"},
		[]interface{}{day(2024, time.March, 1), 80, "T2"},
	)

	set, err := NewIngestor(nil).Parse(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"Data", "Caixas", "Talhão"}, set.Columns)
	require.Len(t, set.Records, 2)

	first := set.Records[0]
	require.NotNil(t, first.Date)
	assert.Equal(t, "2024-03-05", first.Date.Format("2006-01-02"))
	require.NotNil(t, first.Boxes)
	assert.InDelta(t, 120.0, *first.Boxes, 0.0001)
	assert.Equal(t, "T1", first.Cells[2])
	assert.Equal(t, "2024-03-05", first.Cells[0])

	assert.Equal(t, []float64{120, 80}, set.BoxValues())
	assert.Zero(t, set.MissingDates)
	assert.Zero(t, set.InvalidBoxes)
}

func TestParse_InvalidDateIsMarkedMissing(t *testing.T) {
	data := buildWorkbook(t,
		[]interface{}{"Data", "Caixas"},
		[]interface{}{"not-a-date", 10},
		[]interface{}{"2024-02-10", 15},
	)

	set, err := NewIngestor(nil).Parse(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, set.Records, 2)

	assert.Nil(t, set.Records[0].Date)
	require.NotNil(t, set.Records[0].Boxes)
	assert.InDelta(t, 10.0, *set.Records[0].Boxes, 0.0001)

	require.NotNil(t, set.Records[1].Date)
	assert.Equal(t, day(2024, time.February, 10), *set.Records[1].Date)
	assert.Equal(t, 1, set.MissingDates)
}

func TestParse_WithoutBoxColumn(t *testing.T) {
	data := buildWorkbook(t,
		[]interface{}{"Data", "Peso"},
		[]interface{}{"2024-02-10", 15},
	)

	set, err := NewIngestor(nil).Parse(bytes.NewReader(data))
	require.NoError(t, err)

	assert.True(t, set.HasDates())
	assert.False(t, set.HasBoxes())
	assert.Nil(t, set.Records[0].Boxes)
	assert.Empty(t, set.BoxValues())
	assert.Nil(t, set.Timeline())
}

func TestParse_NonNumericBoxesAreFlagged(t *testing.T) {
	data := buildWorkbook(t,
		[]interface{}{"Caixas"},
		[]interface{}{"dez"},
		[]interface{}{"12,5"},
	)

	set, err := NewIngestor(nil).Parse(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, 1, set.InvalidBoxes)
	assert.Equal(t, []float64{12.5}, set.BoxValues())
}

func TestParse_MalformedFile(t *testing.T) {
	_, err := NewIngestor(nil).Parse(bytes.NewReader([]byte("definitely not a workbook")))
	require.Error(t, err)

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestParse_NilReader(t *testing.T) {
	_, err := NewIngestor(nil).Parse(nil)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestFromRows_HeaderNormalization(t *testing.T) {
	set := NewIngestor(nil).FromRows([][]string{
		{"Caixas", "", "Caixas"},
		{"1", "x", "2", "extra"},
		{},
		{"3"},
	})

	assert.Equal(t, []string{"Caixas", "Unnamed: 1", "Caixas.1", "Unnamed: 3"}, set.Columns)
	require.Len(t, set.Records, 2)
	assert.Equal(t, []string{"3", "", "", ""}, set.Records[1].Cells)
	assert.Equal(t, []float64{1, 3}, set.BoxValues())
}

func TestFromRows_Empty(t *testing.T) {
	set := NewIngestor(nil).FromRows(nil)
	require.NotNil(t, set)
	assert.Empty(t, set.Columns)
	assert.Empty(t, set.Records)
}

func TestCoerceDate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
		ok    bool
	}{
		{"iso", "2024-01-15", day(2024, time.January, 15), true},
		{"iso datetime", "2024-01-15 08:30:00", time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC), true},
		{"day first", "15/01/2024", day(2024, time.January, 15), true},
		{"month first fallback", "01/31/2024", day(2024, time.January, 31), true},
		{"ambiguous reads day first", "03/04/2024", day(2024, time.April, 3), true},
		{"excel serial", "45292", day(2024, time.January, 1), true},
		{"blank", "  ", time.Time{}, false},
		{"garbage", "not-a-date", time.Time{}, false},
		{"negative serial", "-4", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceDate(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestCoerceBoxes(t *testing.T) {
	tests := []struct {
		value string
		want  float64
		ok    bool
	}{
		{"10", 10, true},
		{"7.25", 7.25, true},
		{"7,25", 7.25, true},
		{"", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1,2,3", 0, false},
		{"caixa", 0, false},
	}

	for _, tt := range tests {
		got, ok := CoerceBoxes(tt.value)
		assert.Equal(t, tt.ok, ok, tt.value)
		assert.InDelta(t, tt.want, got, 0.0001, tt.value)
	}
}

type fakeRowReader struct {
	rows [][]interface{}
	err  error
	got  string
}

func (f *fakeRowReader) ReadRange(_ context.Context, sheetRange string) ([][]interface{}, error) {
	f.got = sheetRange
	return f.rows, f.err
}

func TestFromSheet(t *testing.T) {
	reader := &fakeRowReader{rows: [][]interface{}{
		{"Data", "Caixas"},
		{"05/03/2024", 40},
	}}

	set, err := NewIngestor(nil).FromSheet(context.Background(), reader, "Colheitas!A:B")
	require.NoError(t, err)

	assert.Equal(t, "Colheitas!A:B", reader.got)
	require.Len(t, set.Records, 1)
	assert.Equal(t, day(2024, time.March, 5), *set.Records[0].Date)
	assert.Equal(t, []float64{40}, set.BoxValues())
}

func TestFromSheet_NumericCells(t *testing.T) {
	reader := &fakeRowReader{rows: [][]interface{}{
		{"Data", "Caixas"},
		{45356.0, 1234.0},
		{45357.0, 1234.5},
		{45358.0, 1e6},
	}}

	set, err := NewIngestor(nil).FromSheet(context.Background(), reader, "Colheitas!A:B")
	require.NoError(t, err)

	assert.Equal(t, []float64{1234, 1234.5, 1e6}, set.BoxValues())
	assert.Zero(t, set.InvalidBoxes)
	assert.Zero(t, set.MissingDates)
	assert.True(t, day(2024, time.March, 5).Equal(*set.Records[0].Date))
	assert.Equal(t, "2024-03-06", set.Records[1].Cells[0])
}

func TestFromSheet_Errors(t *testing.T) {
	var parseErr *ParseError

	_, err := NewIngestor(nil).FromSheet(context.Background(), nil, "A:B")
	require.ErrorAs(t, err, &parseErr)

	_, err = NewIngestor(nil).FromSheet(context.Background(), &fakeRowReader{err: errors.New("quota")}, "A:B")
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), "quota")
}

func TestTimeline_SortsByDateWithMissingLast(t *testing.T) {
	set := NewIngestor(nil).FromRows([][]string{
		{"Data", "Caixas"},
		{"2024-03-10", "5"},
		{"???", "7"},
		{"2024-03-01", "3"},
		{"2024-03-05", ""},
	})

	timeline := set.Timeline()
	require.Len(t, timeline, 3)

	assert.Equal(t, day(2024, time.March, 1), *timeline[0].Date)
	assert.InDelta(t, 3.0, timeline[0].Boxes, 0.0001)
	assert.Equal(t, day(2024, time.March, 10), *timeline[1].Date)
	assert.Nil(t, timeline[2].Date)
	assert.InDelta(t, 7.0, timeline[2].Boxes, 0.0001)

	var nilSet *models.HarvestSet
	assert.Nil(t, nilSet.Timeline())
}
