// Package api exposes the exploration session over HTTP. Actions are
// posted to a single dispatch endpoint, the graph is read back as a
// snapshot, and snapshots can be persisted through the configured store.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/depscope/depscope/pkg/errors"
	"github.com/depscope/depscope/pkg/explorer"
	"github.com/depscope/depscope/pkg/model"
	"github.com/depscope/depscope/pkg/store"
)

// Server holds the chi router and the session it operates on.
type Server struct {
	router     chi.Router
	controller *explorer.Controller
	graph      *model.Graph
	snapshots  store.Store
	logger     *log.Logger
}

// NewServer creates a Server with all routes configured. The snapshot
// store may be nil, in which case the snapshot endpoints return 404.
func NewServer(controller *explorer.Controller, graph *model.Graph, snapshots store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		controller: controller,
		graph:      graph,
		snapshots:  snapshots,
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/graph", s.handleGraph)
	r.Post("/actions", s.handleAction)

	if snapshots != nil {
		r.Post("/snapshots", s.handleSaveSnapshot)
		r.Get("/snapshots", s.handleListSnapshots)
		r.Get("/snapshots/{id}", s.handleLoadSnapshot)
		r.Delete("/snapshots/{id}", s.handleDeleteSnapshot)
	}

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGraph returns the current graph as a snapshot. The export is taken
// from the live graph, so it reflects whatever resolution has completed so
// far.
func (s *Server) handleGraph(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, model.Export(s.graph))
}

// handleAction decodes one action and dispatches it. Resolution actions
// run to completion before the response is written, so the snapshot
// returned here already includes their results.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var a explorer.Action
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode action"))
		return
	}
	if err := s.controller.Dispatch(r.Context(), a); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, model.Export(s.graph))
}

type saveSnapshotRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	var req saveSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode snapshot request"))
		return
	}
	if req.Name == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "snapshot name is required"))
		return
	}

	rec, err := s.snapshots.Save(r.Context(), req.Name, model.Export(s.graph))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	recs, err := s.snapshots.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	s.writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleLoadSnapshot(w http.ResponseWriter, r *http.Request) {
	rec, err := s.snapshots.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.snapshots.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	s.writeJSON(w, statusForCode(code), errorResponse{
		Code:    string(code),
		Message: errors.UserMessage(err),
	})
}

func statusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPackage,
		errors.ErrCodeInvalidRegistry, errors.ErrCodeInvalidAction,
		errors.ErrCodeInvalidSnapshot:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodePackageNotFound,
		errors.ErrCodeSnapshotNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout:
		return http.StatusBadGateway
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}
