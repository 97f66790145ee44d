package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/invsvc/inventory-service/internal/auth"
	"github.com/invsvc/inventory-service/internal/inventory"
	"github.com/invsvc/inventory-service/internal/platform/logger"
)

// Pinger is satisfied by *sqlx.DB; kept as a narrow interface so this
// package doesn't need a direct sqlx dependency just for /health/ready.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	engine inventory.Engine
	query  inventory.Query
	db     Pinger
	logger logger.Logger
	router chi.Router
}

func NewServer(engine inventory.Engine, query inventory.Query, db Pinger, log logger.Logger) *Server {
	s := &Server{engine: engine, query: query, db: db, logger: log}
	s.router = s.buildRouter()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(s.recoverer)
	r.Use(s.requestLogger)
	r.Use(s.corsHeaders)
	r.Use(s.actorContext)

	r.Get("/health", s.handleHealth)
	r.Get("/health/live", s.handleLive)
	r.Get("/health/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", s.handleListItems)
			r.Post("/", s.handleCreateItem)
			r.Post("/bulk_adjust", s.handleBulkAdjust)
			r.Get("/low_stock", s.handleLowStock)
			r.Get("/locations", s.handleLocations)

			// Supplemental: query-layer and transition operations the
			// literal §6.1 table does not route (aggregate_by_sku,
			// check_availability, receive, count_adjustment) but that must
			// stay externally reachable. See DESIGN.md.
			r.Get("/aggregate", s.handleAggregateBySKU)
			r.Post("/availability/bulk", s.handleBulkAvailability)

			r.Get("/{sku}", s.handleGetItem)
			r.Patch("/{sku}", s.handleUpdateItem)
			r.Delete("/{sku}", s.handleDeleteItem)
			r.Get("/{sku}/movements", s.handleItemMovements)
			r.Get("/{sku}/availability", s.handleCheckAvailability)

			r.Post("/{sku}/receive", s.handleReceive)
			r.Post("/{sku}/adjust", s.handleAdjust)
			r.Post("/{sku}/reserve", s.handleReserve)
			r.Post("/{sku}/release", s.handleRelease)
			r.Post("/{sku}/commit", s.handleCommit)
			r.Post("/{sku}/count", s.handleCountAdjustment)
		})

		// Supplemental: transfer has no literal §6.1 route either.
		r.Post("/transfers", s.handleTransfer)

		r.Get("/stock_movements", s.handleListMovements)
		r.Get("/stock_movements/{id}", s.handleGetMovement)
	})

	return r
}

// --- middleware ------------------------------------------------------------

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("panic", rec), zap.String("path", r.URL.Path))
				writeJSON(w, http.StatusInternalServerError, envelope{Error: &errorBody{Kind: "Internal", Message: "internal error"}})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("latency", time.Since(start)),
		)
	})
}

func (s *Server) corsHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,X-Actor-Id")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) actorContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actorID := auth.ActorIDFromHeader(r)
		if actorID != "" {
			r = r.WithContext(auth.WithActorID(r.Context(), actorID))
		}
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// --- health ------------------------------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeData(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, envelope{Error: &errorBody{Kind: "Internal", Message: "database unreachable"}})
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}
