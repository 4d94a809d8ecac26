package efficiency

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/mamadbah2/cropdash/internal/domain/models"
)

const (
	categoryProduction = "Produção (Caixas)"
	categoryFertilizer = "Adubo (kg)"
)

// Calculator derives harvest efficiency from the stage curve and the harvest sheet.
type Calculator struct {
	logger *zap.Logger
}

// NewCalculator wires a calculator instance.
func NewCalculator(logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger}
}

// Compute builds the efficiency report. A nil harvest set or one without a box
// column yields an unavailable report rather than zeroed totals.
func (c *Calculator) Compute(curve models.StageCurve, set *models.HarvestSet) models.EfficiencyReport {
	report := models.EfficiencyReport{TotalFertilizerKg: curve.TotalFertilizerKg()}

	switch {
	case set == nil:
		report.Reason = models.ReasonNoHarvest
		return report
	case !set.HasBoxes():
		report.Reason = models.ReasonNoBoxColumn
		return report
	}

	boxes := set.BoxValues()
	report.Available = true
	report.TotalBoxes = floats.Sum(boxes)
	report.HarvestCount = len(boxes)

	if len(boxes) > 0 {
		mean := Round2(stat.Mean(boxes, nil))
		report.MeanBoxesPerHarvest = &mean
	}

	if report.TotalFertilizerKg > 0 {
		ratio := Round2(report.TotalBoxes / float64(report.TotalFertilizerKg))
		report.Efficiency = &ratio
	} else {
		c.logger.Debug("fertilizer total is zero, efficiency left unset")
	}

	report.Comparison = []models.ComparisonBar{
		{Category: categoryProduction, Value: report.TotalBoxes},
		{Category: categoryFertilizer, Value: float64(report.TotalFertilizerKg)},
	}

	return report
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
