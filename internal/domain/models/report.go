package models

// UnavailableReason explains why an efficiency report could not be produced.
type UnavailableReason string

const (
	ReasonNoHarvest   UnavailableReason = "no_harvest"
	ReasonNoBoxColumn UnavailableReason = "no_box_column"
)

// ComparisonBar is one bar of the production versus fertilizer chart.
type ComparisonBar struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// EfficiencyReport is derived on every pass and never cached.
type EfficiencyReport struct {
	Available           bool              `json:"available"`
	Reason              UnavailableReason `json:"reason,omitempty"`
	TotalBoxes          float64           `json:"total_boxes"`
	TotalFertilizerKg   int               `json:"total_fertilizer_kg"`
	Efficiency          *float64          `json:"efficiency,omitempty"`
	HarvestCount        int               `json:"harvest_count"`
	MeanBoxesPerHarvest *float64          `json:"mean_boxes_per_harvest,omitempty"`
	Comparison          []ComparisonBar   `json:"comparison,omitempty"`
}
