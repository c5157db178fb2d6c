package calculator

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Evan-Linder/AgriProfit/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Service computes crop profitability metrics. It is pure: it never touches
// storage and never returns errors for domain values, invalid input is
// reported through the validation result instead.
type Service struct{}

// NewService creates a new calculator Service instance.
func NewService() *Service {
	return &Service{}
}

// Validation is the outcome of input validation. Errors lists every violated
// rule in input-declaration order; validation does not short-circuit.
type Validation struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// WhatIfResult pairs a source calculation with a recomputation under a
// changed market price.
type WhatIfResult struct {
	Original           domain.CalculationResult `json:"original"`
	Modified           domain.CalculationResult `json:"modified"`
	PriceChangePercent decimal.Decimal          `json:"priceChangePercent"`
}

// ComparisonSummary aggregates a set of scenarios with successful
// calculations.
type ComparisonSummary struct {
	Count                int             `json:"count"`
	BestNetProfit        domain.Scenario `json:"bestNetProfit"`
	BestProfitPerAcre    domain.Scenario `json:"bestProfitPerAcre"`
	TotalRevenue         decimal.Decimal `json:"totalRevenue"`
	TotalCost            decimal.Decimal `json:"totalCost"`
	TotalNetProfit       decimal.Decimal `json:"totalNetProfit"`
	AverageProfitPerAcre decimal.Decimal `json:"averageProfitPerAcre"`
}

// parsedInput holds the numeric form of a validated CalculationInput.
// Cost values are per-acre rates.
type parsedInput struct {
	cropType string
	acres    decimal.Decimal
	yield    decimal.Decimal
	price    decimal.Decimal
	seed     decimal.Decimal
	fert     decimal.Decimal
	chem     decimal.Decimal
	labor    decimal.Decimal
	equip    decimal.Decimal
	misc     decimal.Decimal
}

// ValidateInputs checks every field of the input and collects all violations.
func (s *Service) ValidateInputs(input domain.CalculationInput) Validation {
	_, errs := parse(input)
	return Validation{IsValid: len(errs) == 0, Errors: errs}
}

// Calculate validates the input and, when valid, computes the full set of
// derived profitability metrics. An invalid input yields a failed result
// carrying the same error list ValidateInputs would report.
func (s *Service) Calculate(input domain.CalculationInput) domain.CalculationResult {
	parsed, errs := parse(input)
	if len(errs) > 0 {
		return domain.CalculationResult{Success: false, Errors: errs}
	}

	breakdown := domain.CostBreakdown{
		Seed:       parsed.seed.Mul(parsed.acres),
		Fertilizer: parsed.fert.Mul(parsed.acres),
		Chemical:   parsed.chem.Mul(parsed.acres),
		Labor:      parsed.labor.Mul(parsed.acres),
		Equipment:  parsed.equip.Mul(parsed.acres),
		Misc:       parsed.misc.Mul(parsed.acres),
	}

	return derive(parsed.cropType, parsed.acres, parsed.yield, parsed.price, breakdown, time.Now())
}

// WhatIfPriceChange recomputes a successful calculation with the market price
// scaled by (1 + percentChange/100), holding every other input fixed.
// Returns nil when the source calculation was not successful.
func (s *Service) WhatIfPriceChange(result domain.CalculationResult, percentChange decimal.Decimal) *WhatIfResult {
	if !result.Success {
		return nil
	}

	factor := decimal.NewFromInt(1).Add(percentChange.Div(hundred))
	newPrice := result.MarketPrice.Mul(factor)
	modified := derive(result.CropType, result.Acres, result.YieldPerAcre, newPrice, result.CostBreakdown, time.Now())

	return &WhatIfResult{
		Original:           result,
		Modified:           modified,
		PriceChangePercent: percentChange,
	}
}

// CompareScenarios summarizes the scenarios whose calculations succeeded.
// Ties for best net profit or best profit per acre resolve to the scenario
// encountered first in input order. Returns nil when no scenario qualifies.
func (s *Service) CompareScenarios(scenarios []domain.Scenario) *ComparisonSummary {
	valid := make([]domain.Scenario, 0, len(scenarios))
	for _, sc := range scenarios {
		if sc.Calculation.Success {
			valid = append(valid, sc)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	summary := &ComparisonSummary{
		Count:             len(valid),
		BestNetProfit:     valid[0],
		BestProfitPerAcre: valid[0],
	}

	var sumProfitPerAcre decimal.Decimal
	for _, sc := range valid {
		calc := sc.Calculation
		summary.TotalRevenue = summary.TotalRevenue.Add(calc.Revenue)
		summary.TotalCost = summary.TotalCost.Add(calc.TotalCost)
		summary.TotalNetProfit = summary.TotalNetProfit.Add(calc.NetProfit)
		sumProfitPerAcre = sumProfitPerAcre.Add(calc.ProfitPerAcre)

		if calc.NetProfit.GreaterThan(summary.BestNetProfit.Calculation.NetProfit) {
			summary.BestNetProfit = sc
		}
		if calc.ProfitPerAcre.GreaterThan(summary.BestProfitPerAcre.Calculation.ProfitPerAcre) {
			summary.BestProfitPerAcre = sc
		}
	}
	summary.AverageProfitPerAcre = sumProfitPerAcre.Div(decimal.NewFromInt(int64(len(valid))))

	return summary
}

// derive computes all metrics from already-validated values. Divisions guard
// their zero denominators even though validation enforces acres > 0, so the
// arithmetic stays total over every input that reaches it.
func derive(cropType string, acres, yield, price decimal.Decimal, breakdown domain.CostBreakdown, at time.Time) domain.CalculationResult {
	production := acres.Mul(yield)
	revenue := production.Mul(price)
	totalCost := breakdown.Total()
	netProfit := revenue.Sub(totalCost)

	profitPerAcre := decimal.Zero
	costPerAcre := decimal.Zero
	if !acres.IsZero() {
		profitPerAcre = netProfit.Div(acres)
		costPerAcre = totalCost.Div(acres)
	}

	profitMargin := decimal.Zero
	if !revenue.IsZero() {
		profitMargin = netProfit.Div(revenue).Mul(hundred)
	}

	costPerUnit := decimal.Zero
	if !production.IsZero() {
		costPerUnit = totalCost.Div(production)
	}

	return domain.CalculationResult{
		Success:       true,
		CropType:      cropType,
		Acres:         acres,
		YieldPerAcre:  yield,
		MarketPrice:   price,
		Production:    production,
		Revenue:       revenue,
		TotalCost:     totalCost,
		CostBreakdown: breakdown,
		CostPerAcre:   costPerAcre,
		CostPerUnit:   costPerUnit,
		NetProfit:     netProfit,
		ProfitPerAcre: profitPerAcre,
		ProfitMargin:  profitMargin,
		CalculatedAt:  at,
	}
}

// parse converts the raw input into numeric form, collecting one message per
// violated rule in field-declaration order. Invalid fields parse to zero so
// later arithmetic stays defined.
func parse(input domain.CalculationInput) (parsedInput, []string) {
	var errs []string
	p := parsedInput{cropType: strings.TrimSpace(input.CropType)}

	if p.cropType == "" {
		errs = append(errs, "crop type is required")
	}

	if acres, err := decimal.NewFromString(strings.TrimSpace(input.Acres)); err != nil || !acres.IsPositive() {
		errs = append(errs, "acres must be a number greater than zero")
	} else {
		p.acres = acres
	}

	p.yield = parseNonNegative("yield per acre", input.YieldPerAcre, false, &errs)
	p.price = parseNonNegative("market price", input.MarketPrice, false, &errs)
	p.seed = parseNonNegative("seed cost", input.SeedCost, true, &errs)
	p.fert = parseNonNegative("fertilizer cost", input.FertilizerCost, true, &errs)
	p.chem = parseNonNegative("chemical cost", input.ChemicalCost, true, &errs)
	p.labor = parseNonNegative("labor cost", input.LaborCost, true, &errs)
	p.equip = parseNonNegative("equipment cost", input.EquipmentCost, true, &errs)
	p.misc = parseNonNegative("misc cost", input.MiscCost, true, &errs)

	return p, errs
}

// parseNonNegative parses a field that must be a number >= 0. Optional fields
// default to zero when blank; required ones report a violation.
func parseNonNegative(name, raw string, optional bool, errs *[]string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if !optional {
			*errs = append(*errs, name+" must be a non-negative number")
		}
		return decimal.Zero
	}

	value, err := decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		*errs = append(*errs, name+" must be a non-negative number")
		return decimal.Zero
	}
	return value
}
