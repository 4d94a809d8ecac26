package models

// StageInput is the raw form state for one phenological stage.
type StageInput struct {
	Name         string `json:"name"`
	DayRange     string `json:"day_range"`
	FertilizerKg int    `json:"fertilizer_kg"`
}

// StageEntry is one row of the nutrient absorption curve.
type StageEntry struct {
	Label        string `json:"label"`
	Name         string `json:"name"`
	DayRange     string `json:"day_range"` // opaque, never parsed
	FertilizerKg int    `json:"fertilizer_kg"`
}

// StageCurve keeps stages in user-entry order. Duplicate labels are allowed.
type StageCurve []StageEntry

// CurvePoint is one point of the absorption curve chart.
type CurvePoint struct {
	Stage        string `json:"stage"`
	FertilizerKg int    `json:"fertilizer_kg"`
}

// TotalFertilizerKg sums the fertilizer recommended across all stages.
func (c StageCurve) TotalFertilizerKg() int {
	total := 0
	for _, entry := range c {
		total += entry.FertilizerKg
	}
	return total
}

// Points returns the chart series for the curve.
func (c StageCurve) Points() []CurvePoint {
	points := make([]CurvePoint, 0, len(c))
	for _, entry := range c {
		points = append(points, CurvePoint{Stage: entry.Label, FertilizerKg: entry.FertilizerKg})
	}
	return points
}
