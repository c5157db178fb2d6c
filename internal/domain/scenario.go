package domain

import (
	"errors"
	"time"
)

// Scenario represents a named, user-saved calculation result.
// Identity is the ID; the store keeps at most one scenario per ID.
type Scenario struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Calculation CalculationResult `json:"calculation"`
	SavedAt     time.Time         `json:"savedAt"`
	UpdatedAt   *time.Time        `json:"updatedAt,omitempty"`
}

// Validate ensures the scenario adheres to domain rules.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("scenario name cannot be empty")
	}
	if !s.Calculation.Success {
		return errors.New("scenario must wrap a successful calculation")
	}
	return nil
}

// ScenarioPatch is a partial update applied over an existing scenario.
// Nil fields are left untouched.
type ScenarioPatch struct {
	Name        *string            `json:"name,omitempty"`
	Description *string            `json:"description,omitempty"`
	Calculation *CalculationResult `json:"calculation,omitempty"`
}

// Apply merges the patch into the scenario.
func (p ScenarioPatch) Apply(s *Scenario) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.Calculation != nil {
		s.Calculation = *p.Calculation
	}
}

// HistoryItem is a shallow copy of a saved scenario (or a raw calculation)
// recorded in the history log. It has its own identity and lifecycle:
// deleting a scenario does not remove its history entry and vice versa.
type HistoryItem struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Calculation CalculationResult `json:"calculation"`
	AddedAt     time.Time         `json:"addedAt"`
}

// CropType returns the crop of the underlying calculation.
func (h HistoryItem) CropType() string {
	return h.Calculation.CropType
}
