package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/domain"
	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/service"
	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/store"
)

type addRequest struct {
	Name     string `json:"name"`
	Strength string `json:"strength"`
	Form     string `json:"form"`
	Batch    string `json:"batch"`
	Expiry   string `json:"expiry"`
	Location string `json:"location"`
}

type removeResponse struct {
	Removed int `json:"removed"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	rec, err := s.tracker.Add(r.Context(), store.AddInput{
		Name:     req.Name,
		Strength: req.Strength,
		Form:     req.Form,
		Batch:    req.Batch,
		Expiry:   req.Expiry,
		Location: req.Location,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	col, err := s.tracker.List(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeCollection(w, col)
}

func (s *Server) handleExpiring(w http.ResponseWriter, r *http.Request) {
	days := service.DefaultExpiryWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "days must be a non-negative integer")
			return
		}
		days = parsed
	}

	col, err := s.tracker.Expiring(r.Context(), days)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeCollection(w, col)
}

func (s *Server) handleExpired(w http.ResponseWriter, r *http.Request) {
	col, err := s.tracker.Expired(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeCollection(w, col)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		s.writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	col, err := s.tracker.Find(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeCollection(w, col)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	removed, err := s.tracker.Remove(r.Context(), name)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if removed == 0 {
		s.writeError(w, http.StatusNotFound, "no medicine named "+name)
		return
	}
	s.writeJSON(w, http.StatusOK, removeResponse{Removed: removed})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="medicines.csv"`)
	if _, err := s.tracker.ExportCSV(r.Context(), w); err != nil {
		// Headers are gone already; log and give up on the body.
		s.logger.Error("csv export failed", "error", err)
	}
}

// writeCollection writes col as a JSON array, never null.
func (s *Server) writeCollection(w http.ResponseWriter, col []domain.Medicine) {
	if col == nil {
		col = []domain.Medicine{}
	}
	s.writeJSON(w, http.StatusOK, col)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps the error taxonomy onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDate), errors.Is(err, domain.ErrEmptyName):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicate):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("internal error", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}
