package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/etnz/carteira"
	"github.com/etnz/carteira/date"
	"github.com/go-chi/chi/v5"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "carteira",
	})
}

func (s *Server) handleInvestors(w http.ResponseWriter, r *http.Request) {
	investors, err := s.svc.Investors(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, investors)
}

// handleSubmit accepts one operation or an array of operations.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Upload(r.Context(), investor(r), http.MaxBytesReader(w, r.Body, maxUploadSize), "")
	s.writeBatch(w, res, err)
}

// handleUpload imports a JSON file, sent either as the request body or as the
// "file" field of a multipart form.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			var merr *http.MaxBytesError
			if errors.As(err, &merr) {
				s.writeServiceError(w, err)
				return
			}
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid form: %v", err))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("missing file: %v", err))
			return
		}
		defer file.Close()
		if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".json" && ext != ".jsonl" {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported file %q, want a .json file", header.Filename))
			return
		}
		body = file
	}
	res, err := s.svc.Upload(r.Context(), investor(r), body, r.URL.Query().Get("path"))
	s.writeBatch(w, res, err)
}

func (s *Server) handleOperations(w http.ResponseWriter, r *http.Request) {
	writeList(s, w, r, s.svc.Operations)
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	writeList(s, w, r, s.svc.Positions)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	writeList(s, w, r, s.svc.ClosedTrades)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	writeList(s, w, r, s.svc.MonthlyResults)
}

func (s *Server) handleDarfs(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("pending") == "true" {
		writeList(s, w, r, s.svc.PendingDarfs)
		return
	}
	writeList(s, w, r, s.svc.Darfs)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Summary(r.Context(), investor(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := carteira.OperationID(chi.URLParam(r, "opID"))
	if err := s.svc.DeleteOperation(r.Context(), investor(r), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePay marks a DARF as paid. The body may carry the payment date as
// {"date": "YYYY-MM-DD"}, today otherwise.
func (s *Server) handlePay(w http.ResponseWriter, r *http.Request) {
	competence, err := date.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	category, err := carteira.ParseDarfCategory(chi.URLParam(r, "category"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		Date date.Date `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := s.svc.MarkDarfPaid(r.Context(), investor(r), competence, category, req.Date); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Reset(r.Context(), investor(r)); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func investor(r *http.Request) string { return chi.URLParam(r, "investor") }

// writeList writes the list returned by a service read, [] when empty.
func writeList[T any](s *Server, w http.ResponseWriter, r *http.Request, read func(context.Context, string) ([]T, error)) {
	list, err := read(r.Context(), investor(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if list == nil {
		list = []T{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

// writeBatch writes a batch result. A batch where every record was rejected
// is unprocessable.
func (s *Server) writeBatch(w http.ResponseWriter, res carteira.BatchResult, err error) {
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	status := http.StatusOK
	if res.Accepted == 0 && len(res.Rejected) > 0 {
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, status, res)
}

// writeServiceError maps the errors of the service to HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var (
		merr *http.MaxBytesError
		verr *carteira.ValidationError
		perr *carteira.InsufficientPositionError
		nerr *carteira.NotFoundError
	)
	switch {
	case errors.As(err, &merr):
		s.writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body larger than %d bytes", merr.Limit))
	case errors.As(err, &verr):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &perr):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &nerr):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.log.Error().Err(err).Msg("request failed")
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
