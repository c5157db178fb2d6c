package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScenarioValidate(t *testing.T) {
	valid := Scenario{Name: "Corn 2026", Calculation: CalculationResult{Success: true}}
	assert.NoError(t, valid.Validate())

	unnamed := Scenario{Calculation: CalculationResult{Success: true}}
	assert.Error(t, unnamed.Validate())

	failedCalc := Scenario{Name: "x", Calculation: CalculationResult{Success: false}}
	assert.Error(t, failedCalc.Validate())
}

func TestScenarioPatch_Apply(t *testing.T) {
	scenario := Scenario{Name: "old", Description: "desc"}

	name := "new"
	ScenarioPatch{Name: &name}.Apply(&scenario)

	assert.Equal(t, "new", scenario.Name)
	assert.Equal(t, "desc", scenario.Description)
}

func TestHistoryItem_CropType(t *testing.T) {
	item := HistoryItem{Calculation: CalculationResult{CropType: "corn"}}
	assert.Equal(t, "corn", item.CropType())
}
