package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"bermudabuy/shipworker/internal/product"
	"bermudabuy/shipworker/logger"
	pkgerrors "bermudabuy/shipworker/pkg/errors"
	"bermudabuy/shipworker/services/resolver"
)

// Server exposes the resolution pipeline over HTTP
type Server struct {
	resolver *resolver.Resolver
	srv      *http.Server
	log      *logger.Logger
}

type resolveRequest struct {
	URLs []string `json:"urls"`
}

type resolveResponse struct {
	Products []*product.Product `json:"products"`
	Count    int                `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates an HTTP server for the given resolver
func New(addr string, r *resolver.Resolver) *Server {
	s := &Server{
		resolver: r,
		log:      logger.ForServer(),
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler builds the route tree. Exposed separately so tests can drive the
// server through httptest.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/health", s.handleHealth)
	router.Post("/api/products/resolve", s.handleResolve)
	return router
}

// Start runs the server until Shutdown is called
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("HTTP server listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("HTTP server shutting down")
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body must be JSON with a urls array"})
		return
	}

	products, err := s.resolver.ResolveProducts(r.Context(), req.URLs)
	if err != nil {
		if pkgerrors.IsInvalidInput(err) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		s.log.Error().Err(err).Msg("Batch resolution failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	s.log.Info().Int("count", len(products)).Msg("Batch resolved")
	writeJSON(w, http.StatusOK, resolveResponse{Products: products, Count: len(products)})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
