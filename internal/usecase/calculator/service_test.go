package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Evan-Linder/AgriProfit/internal/domain"
)

// cornInput mirrors a typical corn budget: 100 acres at 180 bu/acre and
// $4.50/bu, with $270/acre of input costs.
func cornInput() domain.CalculationInput {
	return domain.CalculationInput{
		CropType:       "corn",
		Acres:          "100",
		YieldPerAcre:   "180",
		MarketPrice:    "4.50",
		SeedCost:       "60",
		FertilizerCost: "80",
		ChemicalCost:   "40",
		LaborCost:      "50",
		EquipmentCost:  "30",
		MiscCost:       "10",
	}
}

func assertDecimal(t *testing.T, name, want string, got decimal.Decimal) {
	t.Helper()
	expected := decimal.RequireFromString(want)
	assert.Truef(t, got.Equal(expected), "%s = %s, want %s", name, got, expected)
}

func TestValidateInputs_Valid(t *testing.T) {
	service := NewService()

	validation := service.ValidateInputs(cornInput())

	assert.True(t, validation.IsValid)
	assert.Empty(t, validation.Errors)
}

func TestValidateInputs_CollectsAllViolationsInOrder(t *testing.T) {
	service := NewService()

	validation := service.ValidateInputs(domain.CalculationInput{
		CropType:     "",
		Acres:        "0",
		YieldPerAcre: "-1",
		MarketPrice:  "abc",
		SeedCost:     "-5",
	})

	assert.False(t, validation.IsValid)
	assert.Equal(t, []string{
		"crop type is required",
		"acres must be a number greater than zero",
		"yield per acre must be a non-negative number",
		"market price must be a non-negative number",
		"seed cost must be a non-negative number",
	}, validation.Errors)
}

func TestValidateInputs_BlankCostFieldsDefaultToZero(t *testing.T) {
	service := NewService()

	validation := service.ValidateInputs(domain.CalculationInput{
		CropType:     "wheat",
		Acres:        "50",
		YieldPerAcre: "60",
		MarketPrice:  "5.60",
	})

	assert.True(t, validation.IsValid)
}

func TestCalculate_CornExample(t *testing.T) {
	service := NewService()

	result := service.Calculate(cornInput())

	require.True(t, result.Success)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "corn", result.CropType)

	assertDecimal(t, "production", "18000", result.Production)
	assertDecimal(t, "revenue", "81000", result.Revenue)
	assertDecimal(t, "totalCost", "27000", result.TotalCost)
	assertDecimal(t, "netProfit", "54000", result.NetProfit)
	assertDecimal(t, "profitPerAcre", "540", result.ProfitPerAcre)
	assertDecimal(t, "costPerAcre", "270", result.CostPerAcre)
	assertDecimal(t, "costPerUnit", "1.5", result.CostPerUnit)
	assert.InDelta(t, 66.67, result.ProfitMargin.InexactFloat64(), 0.01)
	assert.False(t, result.CalculatedAt.IsZero())

	// The breakdown sums to the total cost, and the core identity holds.
	assertDecimal(t, "breakdown total", "27000", result.CostBreakdown.Total())
	assertDecimal(t, "seed", "6000", result.CostBreakdown.Seed)
	assert.True(t, result.NetProfit.Equal(result.Revenue.Sub(result.TotalCost)))
	assert.True(t, result.ProfitPerAcre.Mul(result.Acres).Equal(result.NetProfit))
}

func TestCalculate_InvalidInputFailsClosed(t *testing.T) {
	service := NewService()
	input := domain.CalculationInput{CropType: "corn", Acres: "-3"}

	result := service.Calculate(input)

	assert.False(t, result.Success)
	assert.Equal(t, service.ValidateInputs(input).Errors, result.Errors)
	assert.True(t, result.Revenue.IsZero())
}

func TestCalculate_ZeroYieldGuardsDivisions(t *testing.T) {
	service := NewService()
	input := cornInput()
	input.YieldPerAcre = "0"

	result := service.Calculate(input)

	require.True(t, result.Success)
	assertDecimal(t, "production", "0", result.Production)
	assertDecimal(t, "revenue", "0", result.Revenue)
	assertDecimal(t, "netProfit", "-27000", result.NetProfit)
	assertDecimal(t, "profitMargin", "0", result.ProfitMargin)
	assertDecimal(t, "costPerUnit", "0", result.CostPerUnit)
	assertDecimal(t, "profitPerAcre", "-270", result.ProfitPerAcre)
}

func TestWhatIfPriceChange(t *testing.T) {
	service := NewService()
	original := service.Calculate(cornInput())
	require.True(t, original.Success)

	result := service.WhatIfPriceChange(original, decimal.NewFromInt(10))

	require.NotNil(t, result)
	assertDecimal(t, "priceChangePercent", "10", result.PriceChangePercent)

	// Original is untouched, modified reflects the scaled price only.
	assertDecimal(t, "original price", "4.50", result.Original.MarketPrice)
	assertDecimal(t, "modified price", "4.95", result.Modified.MarketPrice)
	assertDecimal(t, "modified revenue", "89100", result.Modified.Revenue)
	assertDecimal(t, "modified totalCost", "27000", result.Modified.TotalCost)
	assertDecimal(t, "modified netProfit", "62100", result.Modified.NetProfit)
	assertDecimal(t, "modified production", "18000", result.Modified.Production)
}

func TestWhatIfPriceChange_FullPriceCollapse(t *testing.T) {
	service := NewService()
	original := service.Calculate(cornInput())

	result := service.WhatIfPriceChange(original, decimal.NewFromInt(-100))

	require.NotNil(t, result)
	assertDecimal(t, "modified revenue", "0", result.Modified.Revenue)
	assertDecimal(t, "modified profitMargin", "0", result.Modified.ProfitMargin)
	assertDecimal(t, "modified netProfit", "-27000", result.Modified.NetProfit)
}

func TestWhatIfPriceChange_FailedSourceReturnsNil(t *testing.T) {
	service := NewService()

	failed := domain.CalculationResult{Success: false, Errors: []string{"crop type is required"}}

	assert.Nil(t, service.WhatIfPriceChange(failed, decimal.NewFromInt(5)))
}

func scenarioFromInput(t *testing.T, service *Service, name string, input domain.CalculationInput) domain.Scenario {
	t.Helper()
	result := service.Calculate(input)
	require.True(t, result.Success)
	return domain.Scenario{ID: name, Name: name, Calculation: result}
}

func TestCompareScenarios(t *testing.T) {
	service := NewService()

	corn := scenarioFromInput(t, service, "corn", cornInput())

	wheatInput := domain.CalculationInput{
		CropType: "wheat", Acres: "200", YieldPerAcre: "60", MarketPrice: "5.60",
		SeedCost: "30", FertilizerCost: "45",
	}
	wheat := scenarioFromInput(t, service, "wheat", wheatInput)

	failed := domain.Scenario{ID: "bad", Name: "bad", Calculation: domain.CalculationResult{Success: false}}

	summary := service.CompareScenarios([]domain.Scenario{corn, wheat, failed})

	require.NotNil(t, summary)
	assert.Equal(t, 2, summary.Count)

	// corn: netProfit 54000, profit/acre 540
	// wheat: revenue 67200, cost 15000, netProfit 52200, profit/acre 261
	assert.Equal(t, "corn", summary.BestNetProfit.Name)
	assert.Equal(t, "corn", summary.BestProfitPerAcre.Name)
	assertDecimal(t, "totalRevenue", "148200", summary.TotalRevenue)
	assertDecimal(t, "totalCost", "42000", summary.TotalCost)
	assertDecimal(t, "totalNetProfit", "106200", summary.TotalNetProfit)
	assertDecimal(t, "averageProfitPerAcre", "400.5", summary.AverageProfitPerAcre)
}

func TestCompareScenarios_TieKeepsFirstEncountered(t *testing.T) {
	service := NewService()

	first := scenarioFromInput(t, service, "first", cornInput())
	second := scenarioFromInput(t, service, "second", cornInput())

	summary := service.CompareScenarios([]domain.Scenario{first, second})

	require.NotNil(t, summary)
	assert.Equal(t, "first", summary.BestNetProfit.Name)
	assert.Equal(t, "first", summary.BestProfitPerAcre.Name)
}

func TestCompareScenarios_NoSuccessfulCalculations(t *testing.T) {
	service := NewService()

	assert.Nil(t, service.CompareScenarios(nil))
	assert.Nil(t, service.CompareScenarios([]domain.Scenario{
		{Name: "bad", Calculation: domain.CalculationResult{Success: false}},
	}))
}
