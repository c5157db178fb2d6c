package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculationInput carries the raw per-calculation form values. Numeric fields
// are kept as strings because they arrive unparsed from the client; the
// calculator service owns parsing and validation. Inputs are transient and
// never persisted directly.
type CalculationInput struct {
	CropType       string `json:"cropType"`
	Acres          string `json:"acres"`
	YieldPerAcre   string `json:"yieldPerAcre"`
	MarketPrice    string `json:"marketPrice"`
	SeedCost       string `json:"seedCost"`
	FertilizerCost string `json:"fertilizerCost"`
	ChemicalCost   string `json:"chemicalCost"`
	LaborCost      string `json:"laborCost"`
	EquipmentCost  string `json:"equipmentCost"`
	MiscCost       string `json:"miscCost"`
}

// CostBreakdown holds the total cost per category for a calculation.
// Every value is the per-acre rate multiplied by the acreage, so the six
// fields always sum to the calculation's TotalCost.
type CostBreakdown struct {
	Seed       decimal.Decimal `json:"seed"`
	Fertilizer decimal.Decimal `json:"fertilizer"`
	Chemical   decimal.Decimal `json:"chemical"`
	Labor      decimal.Decimal `json:"labor"`
	Equipment  decimal.Decimal `json:"equipment"`
	Misc       decimal.Decimal `json:"misc"`
}

// Total returns the sum of all cost categories.
func (b CostBreakdown) Total() decimal.Decimal {
	return b.Seed.
		Add(b.Fertilizer).
		Add(b.Chemical).
		Add(b.Labor).
		Add(b.Equipment).
		Add(b.Misc)
}

// CalculationResult is the tagged outcome of a profitability calculation.
// On failure only Success and Errors are meaningful. On success all derived
// metrics are populated and the value is treated as immutable from then on:
// NetProfit is always Revenue minus TotalCost, there is no mutation path that
// could break that relation.
type CalculationResult struct {
	Success bool     `json:"success"`
	Errors  []string `json:"errors,omitempty"`

	CropType     string          `json:"cropType,omitempty"`
	Acres        decimal.Decimal `json:"acres"`
	YieldPerAcre decimal.Decimal `json:"yieldPerAcre"`
	MarketPrice  decimal.Decimal `json:"marketPrice"`

	Production    decimal.Decimal `json:"production"`
	Revenue       decimal.Decimal `json:"revenue"`
	TotalCost     decimal.Decimal `json:"totalCost"`
	CostBreakdown CostBreakdown   `json:"costBreakdown"`
	CostPerAcre   decimal.Decimal `json:"costPerAcre"`
	CostPerUnit   decimal.Decimal `json:"costPerUnit"`
	NetProfit     decimal.Decimal `json:"netProfit"`
	ProfitPerAcre decimal.Decimal `json:"profitPerAcre"`
	ProfitMargin  decimal.Decimal `json:"profitMargin"`

	CalculatedAt time.Time `json:"calculatedAt"`
}
