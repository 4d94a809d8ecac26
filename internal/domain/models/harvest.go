package models

import (
	"sort"
	"time"
)

const (
	// HarvestDateColumn is the spreadsheet column coerced to dates.
	HarvestDateColumn = "Data"
	// HarvestBoxesColumn is the spreadsheet column holding box counts.
	HarvestBoxesColumn = "Caixas"
)

// HarvestRecord is one spreadsheet row. Cells are aligned with HarvestSet.Columns.
// Date and Boxes are nil when the source column is missing or the cell could not be coerced.
type HarvestRecord struct {
	Cells []string   `json:"cells"`
	Date  *time.Time `json:"date,omitempty"`
	Boxes *float64   `json:"boxes,omitempty"`
}

// HarvestSet is the normalized content of an uploaded harvest sheet.
type HarvestSet struct {
	Columns      []string        `json:"columns"`
	Records      []HarvestRecord `json:"records"`
	MissingDates int             `json:"missing_dates"`
	InvalidBoxes int             `json:"invalid_boxes"`
}

// TimelinePoint is one bar of the production-over-time chart.
type TimelinePoint struct {
	Date  *time.Time `json:"date"`
	Boxes float64    `json:"boxes"`
}

// HasColumn reports whether the sheet carried the named column.
func (h *HarvestSet) HasColumn(name string) bool {
	if h == nil {
		return false
	}
	for _, col := range h.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// HasDates reports whether a "Data" column was present.
func (h *HarvestSet) HasDates() bool { return h.HasColumn(HarvestDateColumn) }

// HasBoxes reports whether a "Caixas" column was present.
func (h *HarvestSet) HasBoxes() bool { return h.HasColumn(HarvestBoxesColumn) }

// BoxValues returns every usable box count in row order.
func (h *HarvestSet) BoxValues() []float64 {
	if h == nil {
		return nil
	}
	values := make([]float64, 0, len(h.Records))
	for _, rec := range h.Records {
		if rec.Boxes != nil {
			values = append(values, *rec.Boxes)
		}
	}
	return values
}

// Timeline returns the rows carrying a box count, stably sorted by date with
// missing dates last. It is empty unless both "Data" and "Caixas" exist.
func (h *HarvestSet) Timeline() []TimelinePoint {
	if !h.HasDates() || !h.HasBoxes() {
		return nil
	}

	points := make([]TimelinePoint, 0, len(h.Records))
	for _, rec := range h.Records {
		if rec.Boxes == nil {
			continue
		}
		points = append(points, TimelinePoint{Date: rec.Date, Boxes: *rec.Boxes})
	}

	sort.SliceStable(points, func(i, j int) bool {
		a, b := points[i].Date, points[j].Date
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return points
}
