// Package rest exposes the calculator, store, and pricing services over a
// JSON HTTP API. It is the only transport surface; the services themselves
// emit plain data structures and never touch rendering concerns.
package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Evan-Linder/AgriProfit/internal/usecase/calculator"
	"github.com/Evan-Linder/AgriProfit/internal/usecase/pricing"
	"github.com/Evan-Linder/AgriProfit/internal/usecase/store"
)

// maxImportBytes bounds import payloads.
const maxImportBytes = 10 << 20

// Server wires the HTTP routes to the usecase services.
type Server struct {
	Calculator *calculator.Service
	Store      *store.Service
	Prices     *pricing.Service

	logger *zap.Logger
}

// NewServer creates a new HTTP server instance.
func NewServer(calc *calculator.Service, st *store.Service, prices *pricing.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		Calculator: calc,
		Store:      st,
		Prices:     prices,
		logger:     logger,
	}
}

// Router builds the chi router with all routes and middleware attached.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/calculate", s.handleCalculate)
		r.Get("/calculations/last", s.handleLastCalculation)
		r.Post("/whatif", s.handleWhatIf)
		r.Post("/compare", s.handleCompare)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", s.handleListScenarios)
			r.Post("/", s.handleSaveScenario)
			r.Delete("/", s.handleDeleteAllScenarios)
			r.Get("/{id}", s.handleGetScenario)
			r.Patch("/{id}", s.handleUpdateScenario)
			r.Delete("/{id}", s.handleDeleteScenario)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleHistory)
			r.Delete("/", s.handleClearHistory)
			r.Delete("/{id}", s.handleDeleteHistoryItem)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", s.handleGetSettings)
			r.Put("/", s.handleSaveSettings)
			r.Delete("/", s.handleResetSettings)
		})

		r.Route("/prices", func(r chi.Router) {
			r.Get("/", s.handleFetchPrices)
			r.Get("/crops", s.handleAvailableCrops)
			r.Delete("/cache", s.handleClearPriceCache)
			r.Get("/{crop}", s.handleGetPrice)
		})

		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
		r.Delete("/data", s.handleClearAllData)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_addr", r.RemoteAddr))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"storageAvailable": s.Store.IsAvailable(r.Context()),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
