package rest

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Evan-Linder/AgriProfit/internal/domain"
	"github.com/Evan-Linder/AgriProfit/internal/usecase/store"
)

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var input domain.CalculationInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := s.Calculator.Calculate(input)
	if !result.Success {
		s.writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}

	ctx := r.Context()
	if err := s.Store.SaveLastCalculation(ctx, result); err != nil {
		s.logger.Warn("failed to persist last calculation", zap.Error(err))
	}

	if s.Store.Settings(ctx).AutoSave {
		item := domain.HistoryItem{Name: result.CropType, Calculation: result}
		if err := s.Store.AddToHistory(ctx, item); err != nil {
			s.logger.Warn("failed to auto-save calculation to history", zap.Error(err))
		}
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleLastCalculation(w http.ResponseWriter, r *http.Request) {
	result, ok := s.Store.LastCalculation(r.Context())
	if !ok {
		s.writeError(w, http.StatusNotFound, "no calculation stored")
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

type whatIfRequest struct {
	PercentChange decimal.Decimal           `json:"percentChange"`
	Calculation   *domain.CalculationResult `json:"calculation,omitempty"`
}

func (s *Server) handleWhatIf(w http.ResponseWriter, r *http.Request) {
	var req whatIfRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	source := req.Calculation
	if source == nil {
		last, ok := s.Store.LastCalculation(r.Context())
		if !ok {
			s.writeError(w, http.StatusNotFound, "no calculation to adjust")
			return
		}
		source = last
	}

	result := s.Calculator.WhatIfPriceChange(*source, req.PercentChange)
	if result == nil {
		s.writeError(w, http.StatusUnprocessableEntity, "source calculation was not successful")
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

type compareRequest struct {
	ScenarioIDs []string `json:"scenarioIds"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	var scenarios []domain.Scenario
	if len(req.ScenarioIDs) == 0 {
		scenarios = s.Store.Scenarios(ctx)
	} else {
		for _, id := range req.ScenarioIDs {
			if sc, ok := s.Store.Scenario(ctx, id); ok {
				scenarios = append(scenarios, *sc)
			}
		}
	}

	summary := s.Calculator.CompareScenarios(scenarios)
	if summary == nil {
		s.writeError(w, http.StatusNotFound, "no successful calculations to compare")
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

type saveScenarioRequest struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	Calculation *domain.CalculationResult `json:"calculation,omitempty"`
}

func (s *Server) handleSaveScenario(w http.ResponseWriter, r *http.Request) {
	var req saveScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	calc := req.Calculation
	if calc == nil {
		last, ok := s.Store.LastCalculation(ctx)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "no calculation to save")
			return
		}
		calc = last
	}

	scenario := domain.Scenario{
		Name:        req.Name,
		Description: req.Description,
		Calculation: *calc,
	}
	if err := scenario.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.Store.SaveScenario(ctx, &scenario); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to save scenario")
		return
	}
	s.writeJSON(w, http.StatusCreated, scenario)
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios := s.Store.Scenarios(r.Context())
	if scenarios == nil {
		scenarios = []domain.Scenario{}
	}
	s.writeJSON(w, http.StatusOK, scenarios)
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	scenario, ok := s.Store.Scenario(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "scenario not found")
		return
	}
	s.writeJSON(w, http.StatusOK, scenario)
}

func (s *Server) handleUpdateScenario(w http.ResponseWriter, r *http.Request) {
	var patch domain.ScenarioPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.Store.UpdateScenario(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "scenario not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "failed to update scenario")
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.DeleteScenario(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "scenario not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "failed to delete scenario")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAllScenarios(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.DeleteAllScenarios(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to delete scenarios")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	ctx := r.Context()
	var history []domain.HistoryItem
	if query := r.URL.Query().Get("q"); query != "" {
		history = s.Store.SearchHistory(ctx, query)
		if limit > 0 && len(history) > limit {
			history = history[:limit]
		}
	} else {
		history = s.Store.History(ctx, limit)
	}

	if history == nil {
		history = []domain.HistoryItem{}
	}
	s.writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.ClearHistory(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteHistoryItem(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.DeleteHistoryItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "history item not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "failed to delete history item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Store.Settings(r.Context()))
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var patch domain.SettingsPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	merged, err := s.Store.SaveSettings(r.Context(), patch)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	if patch.RefreshIntervalMinutes != nil {
		s.Prices.SetCacheDuration(time.Duration(merged.RefreshIntervalMinutes) * time.Minute)
	}
	s.writeJSON(w, http.StatusOK, merged)
}

func (s *Server) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.ResetSettings(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to reset settings")
		return
	}
	s.writeJSON(w, http.StatusOK, domain.DefaultSettings())
}

type priceQuote struct {
	Price       decimal.Decimal `json:"price"`
	LastUpdated string          `json:"lastUpdated"`
}

func (s *Server) handleFetchPrices(w http.ResponseWriter, r *http.Request) {
	var crops []string
	if raw := r.URL.Query().Get("crops"); raw != "" {
		crops = strings.Split(raw, ",")
	}

	prices := s.Prices.FetchPrices(r.Context(), crops)
	quotes := make(map[string]priceQuote, len(prices))
	for crop, price := range prices {
		quotes[crop] = priceQuote{Price: price, LastUpdated: s.Prices.LastUpdateTime(crop)}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"prices": quotes})
}

func (s *Server) handleGetPrice(w http.ResponseWriter, r *http.Request) {
	crop := chi.URLParam(r, "crop")
	if !s.Prices.IsValidCrop(crop) {
		s.writeError(w, http.StatusNotFound, "unknown crop")
		return
	}

	price, _ := s.Prices.CachedPrice(crop)
	fallback, _ := s.Prices.FallbackPrice(crop)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"crop":          strings.ToLower(strings.TrimSpace(crop)),
		"price":         price,
		"fallbackPrice": fallback,
		"lastUpdated":   s.Prices.LastUpdateTime(crop),
	})
}

func (s *Server) handleAvailableCrops(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"crops": s.Prices.AvailableCrops()})
}

func (s *Server) handleClearPriceCache(w http.ResponseWriter, _ *http.Request) {
	s.Prices.ClearCache()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.Store.ExportData(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to export data")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="agriprofit-export.json"`)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, snapshot)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	report, err := s.Store.ImportData(r.Context(), string(payload))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleClearAllData(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.ClearAllData(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to clear data")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
