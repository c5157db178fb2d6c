package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Evan-Linder/AgriProfit/internal/domain"
)

const (
	// historyLimit caps the history log; the oldest entry is evicted on
	// overflow.
	historyLimit = 100

	// exportVersion tags exported snapshots.
	exportVersion = "1.0"

	// probeKey is the sentinel key used by the availability probe.
	probeKey = "agriprofit.__probe"
)

// ErrNotFound is returned when a scenario or history item does not exist.
var ErrNotFound = errors.New("not found")

// Service is the persistent store over a key-value Medium. It keeps four
// partitions (scenarios, history, settings, last calculation), each a JSON
// document under its own key.
//
// Failure policy: reads degrade to empty collections or defaults when the
// medium is unavailable or a partition fails to parse (a corrupt partition
// self-heals on the next write); writes return the underlying error. Nothing
// here panics.
//
// In-process mutations are serialized by a mutex so concurrent handlers
// cannot lose a read-modify-write. Writers from other processes against the
// same medium are not coordinated: last write wins.
type Service struct {
	medium domain.Medium
	logger *zap.Logger

	mu sync.Mutex // guards read-modify-write sequences on the partitions
}

// NewService creates a new store Service instance.
func NewService(medium domain.Medium, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{medium: medium, logger: logger}
}

// IsAvailable probes the medium by writing and removing a sentinel key.
func (s *Service) IsAvailable(ctx context.Context) bool {
	if err := s.medium.Set(ctx, probeKey, "1"); err != nil {
		return false
	}
	if err := s.medium.Remove(ctx, probeKey); err != nil {
		return false
	}
	return true
}

// SaveScenario upserts the scenario by ID and appends a matching history
// entry. A missing ID or SavedAt is assigned before the write.
//
// The scenario write and the history append are two separate medium writes;
// a crash between them can leave a scenario without a history entry.
func (s *Service) SaveScenario(ctx context.Context, scenario *domain.Scenario) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveScenarioLocked(ctx, scenario)
}

func (s *Service) saveScenarioLocked(ctx context.Context, scenario *domain.Scenario) error {
	if scenario == nil {
		return errors.New("scenario is nil")
	}
	if err := scenario.Validate(); err != nil {
		return err
	}

	if scenario.ID == "" {
		scenario.ID = uuid.New().String()
	}
	if scenario.SavedAt.IsZero() {
		scenario.SavedAt = time.Now()
	}

	scenarios := s.readScenarios(ctx)
	replaced := false
	for i := range scenarios {
		if scenarios[i].ID == scenario.ID {
			scenarios[i] = *scenario
			replaced = true
			break
		}
	}
	if !replaced {
		scenarios = append(scenarios, *scenario)
	}

	if err := s.writeScenarios(ctx, scenarios); err != nil {
		return fmt.Errorf("save scenario: %w", err)
	}

	return s.addToHistoryLocked(ctx, domain.HistoryItem{
		Name:        scenario.Name,
		Description: scenario.Description,
		Calculation: scenario.Calculation,
	})
}

// Scenarios returns all saved scenarios, empty when the partition is missing
// or unreadable.
func (s *Service) Scenarios(ctx context.Context) []domain.Scenario {
	return s.readScenarios(ctx)
}

// Scenario returns the scenario with the given ID.
func (s *Service) Scenario(ctx context.Context, id string) (*domain.Scenario, bool) {
	for _, sc := range s.readScenarios(ctx) {
		if sc.ID == id {
			return &sc, true
		}
	}
	return nil, false
}

// UpdateScenario merges the patch over the existing scenario and stamps
// UpdatedAt.
func (s *Service) UpdateScenario(ctx context.Context, id string, patch domain.ScenarioPatch) (*domain.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scenarios := s.readScenarios(ctx)
	for i := range scenarios {
		if scenarios[i].ID != id {
			continue
		}
		patch.Apply(&scenarios[i])
		now := time.Now()
		scenarios[i].UpdatedAt = &now

		if err := s.writeScenarios(ctx, scenarios); err != nil {
			return nil, fmt.Errorf("update scenario: %w", err)
		}
		updated := scenarios[i]
		return &updated, nil
	}
	return nil, fmt.Errorf("scenario %s: %w", id, ErrNotFound)
}

// DeleteScenario removes the scenario with the given ID. Its history entries
// are untouched.
func (s *Service) DeleteScenario(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scenarios := s.readScenarios(ctx)
	for i := range scenarios {
		if scenarios[i].ID == id {
			scenarios = append(scenarios[:i], scenarios[i+1:]...)
			if err := s.writeScenarios(ctx, scenarios); err != nil {
				return fmt.Errorf("delete scenario: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("scenario %s: %w", id, ErrNotFound)
}

// DeleteAllScenarios drops the scenarios partition.
func (s *Service) DeleteAllScenarios(ctx context.Context) error {
	if err := s.medium.Remove(ctx, domain.KeyScenarios); err != nil {
		return fmt.Errorf("delete all scenarios: %w", err)
	}
	return nil
}

// AddToHistory prepends the item with a fresh ID and AddedAt stamp, then
// truncates the log to the most recent entries. Insertion order is recency
// order, newest first.
func (s *Service) AddToHistory(ctx context.Context, item domain.HistoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addToHistoryLocked(ctx, item)
}

func (s *Service) addToHistoryLocked(ctx context.Context, item domain.HistoryItem) error {
	item.ID = uuid.New().String()
	item.AddedAt = time.Now()

	history := append([]domain.HistoryItem{item}, s.readHistory(ctx)...)
	if len(history) > historyLimit {
		history = history[:historyLimit]
	}

	if err := s.writeHistory(ctx, history); err != nil {
		return fmt.Errorf("add to history: %w", err)
	}
	return nil
}

// History returns the most recent entries, newest first. A limit <= 0 returns
// everything.
func (s *Service) History(ctx context.Context, limit int) []domain.HistoryItem {
	history := s.readHistory(ctx)
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history
}

// SearchHistory returns the entries whose name, description, or crop type
// contains the query, case-insensitively, preserving log order.
func (s *Service) SearchHistory(ctx context.Context, query string) []domain.HistoryItem {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return s.readHistory(ctx)
	}

	var matches []domain.HistoryItem
	for _, item := range s.readHistory(ctx) {
		if strings.Contains(strings.ToLower(item.Name), query) ||
			strings.Contains(strings.ToLower(item.Description), query) ||
			strings.Contains(strings.ToLower(item.CropType()), query) {
			matches = append(matches, item)
		}
	}
	return matches
}

// ClearHistory drops the history partition.
func (s *Service) ClearHistory(ctx context.Context) error {
	if err := s.medium.Remove(ctx, domain.KeyHistory); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// DeleteHistoryItem removes a single history entry by ID.
func (s *Service) DeleteHistoryItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.readHistory(ctx)
	for i := range history {
		if history[i].ID == id {
			history = append(history[:i], history[i+1:]...)
			if err := s.writeHistory(ctx, history); err != nil {
				return fmt.Errorf("delete history item: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("history item %s: %w", id, ErrNotFound)
}

// Settings returns defaults overlaid with whatever is persisted. A missing
// medium or unparseable partition yields pure defaults.
func (s *Service) Settings(ctx context.Context) domain.Settings {
	settings := domain.DefaultSettings()

	raw, ok, err := s.medium.Get(ctx, domain.KeySettings)
	if err != nil || !ok {
		if err != nil {
			s.logger.Warn("settings read failed, using defaults", zap.Error(err))
		}
		return settings
	}
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		s.logger.Warn("settings partition unreadable, using defaults", zap.Error(err))
		return domain.DefaultSettings()
	}
	return settings
}

// SaveSettings persists defaults overlaid with the persisted settings
// overlaid with the patch, and returns the merged result.
func (s *Service) SaveSettings(ctx context.Context, patch domain.SettingsPatch) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.Settings(ctx)
	patch.Apply(&merged)

	payload, err := json.Marshal(merged)
	if err != nil {
		return merged, fmt.Errorf("save settings: %w", err)
	}
	if err := s.medium.Set(ctx, domain.KeySettings, string(payload)); err != nil {
		return merged, fmt.Errorf("save settings: %w", err)
	}
	return merged, nil
}

// Setting returns a single settings field by key.
func (s *Service) Setting(ctx context.Context, key domain.SettingKey) (any, bool) {
	return s.Settings(ctx).Value(key)
}

// ResetSettings deletes the settings partition, reverting reads to defaults.
func (s *Service) ResetSettings(ctx context.Context) error {
	if err := s.medium.Remove(ctx, domain.KeySettings); err != nil {
		return fmt.Errorf("reset settings: %w", err)
	}
	return nil
}

// SaveLastCalculation stores the most recent calculation for session restore.
func (s *Service) SaveLastCalculation(ctx context.Context, result domain.CalculationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("save last calculation: %w", err)
	}
	if err := s.medium.Set(ctx, domain.KeyLastCalculation, string(payload)); err != nil {
		return fmt.Errorf("save last calculation: %w", err)
	}
	return nil
}

// LastCalculation returns the stored last calculation, if any.
func (s *Service) LastCalculation(ctx context.Context) (*domain.CalculationResult, bool) {
	raw, ok, err := s.medium.Get(ctx, domain.KeyLastCalculation)
	if err != nil || !ok {
		return nil, false
	}
	var result domain.CalculationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		s.logger.Warn("last calculation partition unreadable", zap.Error(err))
		return nil, false
	}
	return &result, true
}

// Snapshot is the export/import file format.
type Snapshot struct {
	Version    string               `json:"version"`
	ExportedAt time.Time            `json:"exportedAt"`
	Scenarios  []domain.Scenario    `json:"scenarios"`
	History    []domain.HistoryItem `json:"history"`
	Settings   domain.Settings      `json:"settings"`
}

// ImportReport summarizes a successful import.
type ImportReport struct {
	ScenariosImported int    `json:"scenariosImported"`
	Message           string `json:"message"`
}

// ExportData serializes the full scenarios/history/settings state into a
// versioned snapshot.
func (s *Service) ExportData(ctx context.Context) (string, error) {
	snapshot := Snapshot{
		Version:    exportVersion,
		ExportedAt: time.Now().UTC(),
		Scenarios:  s.readScenarios(ctx),
		History:    s.readHistory(ctx),
		Settings:   s.Settings(ctx),
	}
	// Keep absent collections as [] so the snapshot round-trips through the
	// required-field check on import.
	if snapshot.Scenarios == nil {
		snapshot.Scenarios = []domain.Scenario{}
	}
	if snapshot.History == nil {
		snapshot.History = []domain.HistoryItem{}
	}

	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export data: %w", err)
	}
	return string(payload), nil
}

// ImportData parses a snapshot and applies it. The version, scenarios,
// history, and settings fields must all be present or the whole payload is
// rejected without touching the store. Scenarios are re-saved one by one
// (each re-triggering a history append), then the history partition is
// restored from the snapshot so entries keep their original IDs, truncated
// to the history cap just like a live append; imported settings are merged
// over the current ones. A structurally valid snapshot with individually
// invalid scenario records imports the rest and reports the count.
func (s *Service) ImportData(ctx context.Context, payload string) (*ImportReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw struct {
		Version   *string               `json:"version"`
		Scenarios *[]domain.Scenario    `json:"scenarios"`
		History   *[]domain.HistoryItem `json:"history"`
		Settings  json.RawMessage       `json:"settings"`
	}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("import payload is not valid JSON: %w", err)
	}

	switch {
	case raw.Version == nil:
		return nil, errors.New("import payload missing required field \"version\"")
	case raw.Scenarios == nil:
		return nil, errors.New("import payload missing required field \"scenarios\"")
	case raw.History == nil:
		return nil, errors.New("import payload missing required field \"history\"")
	case len(raw.Settings) == 0 || string(raw.Settings) == "null":
		return nil, errors.New("import payload missing required field \"settings\"")
	}

	imported := 0
	for i := range *raw.Scenarios {
		scenario := (*raw.Scenarios)[i]
		if err := s.saveScenarioLocked(ctx, &scenario); err != nil {
			s.logger.Warn("skipping scenario during import",
				zap.String("scenario_id", scenario.ID),
				zap.Error(err))
			continue
		}
		imported++
	}

	history := *raw.History
	if len(history) > historyLimit {
		history = history[:historyLimit]
	}
	if err := s.writeHistory(ctx, history); err != nil {
		return nil, fmt.Errorf("import history: %w", err)
	}

	merged := s.Settings(ctx)
	if err := json.Unmarshal(raw.Settings, &merged); err != nil {
		return nil, fmt.Errorf("import settings: %w", err)
	}
	settingsPayload, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("import settings: %w", err)
	}
	if err := s.medium.Set(ctx, domain.KeySettings, string(settingsPayload)); err != nil {
		return nil, fmt.Errorf("import settings: %w", err)
	}

	return &ImportReport{
		ScenariosImported: imported,
		Message:           fmt.Sprintf("imported %d scenarios", imported),
	}, nil
}

// ClearAllData erases all four partitions.
func (s *Service) ClearAllData(ctx context.Context) error {
	keys := []string{
		domain.KeyScenarios,
		domain.KeyHistory,
		domain.KeySettings,
		domain.KeyLastCalculation,
	}
	for _, key := range keys {
		if err := s.medium.Remove(ctx, key); err != nil {
			return fmt.Errorf("clear all data: %w", err)
		}
	}
	return nil
}

func (s *Service) readScenarios(ctx context.Context) []domain.Scenario {
	raw, ok, err := s.medium.Get(ctx, domain.KeyScenarios)
	if err != nil || !ok {
		if err != nil {
			s.logger.Warn("scenarios read failed, treating as empty", zap.Error(err))
		}
		return nil
	}
	var scenarios []domain.Scenario
	if err := json.Unmarshal([]byte(raw), &scenarios); err != nil {
		s.logger.Warn("scenarios partition unreadable, treating as empty", zap.Error(err))
		return nil
	}
	return scenarios
}

func (s *Service) writeScenarios(ctx context.Context, scenarios []domain.Scenario) error {
	payload, err := json.Marshal(scenarios)
	if err != nil {
		return err
	}
	return s.medium.Set(ctx, domain.KeyScenarios, string(payload))
}

func (s *Service) readHistory(ctx context.Context) []domain.HistoryItem {
	raw, ok, err := s.medium.Get(ctx, domain.KeyHistory)
	if err != nil || !ok {
		if err != nil {
			s.logger.Warn("history read failed, treating as empty", zap.Error(err))
		}
		return nil
	}
	var history []domain.HistoryItem
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		s.logger.Warn("history partition unreadable, treating as empty", zap.Error(err))
		return nil
	}
	return history
}

func (s *Service) writeHistory(ctx context.Context, history []domain.HistoryItem) error {
	payload, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return s.medium.Set(ctx, domain.KeyHistory, string(payload))
}
