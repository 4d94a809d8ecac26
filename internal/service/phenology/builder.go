package phenology

import (
	"fmt"

	"github.com/mamadbah2/cropdash/internal/domain/models"
)

const (
	// MinStages and MaxStages bound the number of stages a curve may hold.
	MinStages = 1
	MaxStages = 10

	// DefaultStageCount is the number of stages offered on a fresh form.
	DefaultStageCount = 4

	stageSpanDays  = 20
	kgPerStageStep = 2
)

// ClampStageCount forces n into [MinStages, MaxStages].
func ClampStageCount(n int) int {
	if n < MinStages {
		return MinStages
	}
	if n > MaxStages {
		return MaxStages
	}
	return n
}

// DefaultStageInput returns the pre-filled values for the 1-based stage index i.
func DefaultStageInput(i int) models.StageInput {
	return models.StageInput{
		Name:         fmt.Sprintf("Estágio %d", i),
		DayRange:     fmt.Sprintf("%d-%d", stageSpanDays*(i-1), stageSpanDays*i),
		FertilizerKg: kgPerStageStep * i,
	}
}

// DefaultStageInputs returns the defaults for a form of n stages.
func DefaultStageInputs(n int) []models.StageInput {
	inputs := make([]models.StageInput, 0, n)
	for i := 1; i <= n; i++ {
		inputs = append(inputs, DefaultStageInput(i))
	}
	return inputs
}

// Label renders the table key for a stage.
func Label(dayRange, name string) string {
	return fmt.Sprintf("%s (%s)", dayRange, name)
}

// Build turns form state into a StageCurve. The caller guarantees the number of
// inputs is already within [MinStages, MaxStages].
func Build(inputs []models.StageInput) models.StageCurve {
	curve := make(models.StageCurve, 0, len(inputs))
	for _, in := range inputs {
		curve = append(curve, models.StageEntry{
			Label:        Label(in.DayRange, in.Name),
			Name:         in.Name,
			DayRange:     in.DayRange,
			FertilizerKg: in.FertilizerKg,
		})
	}
	return curve
}
