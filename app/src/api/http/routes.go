package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dfd-gps-service/app/src/api/payload"
	"dfd-gps-service/app/src/domain"
	"dfd-gps-service/app/src/infra"
)

const maxBodyBytes = 1 << 20

// handler contains the HTTP handlers and shared dependencies for the REST API.
type handler struct {
	service domain.CorrectionService
	logger  *infra.Logger
}

func registerRoutes(router chi.Router, h *handler, static http.Handler) {
	router.Get("/health", h.handleHealth)
	router.Get("/healthz", h.handleHealth)
	router.Post("/dfd-correct", h.handleCorrect)
	if static != nil {
		router.Get("/*", static.ServeHTTP)
	}
}

type healthResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Code  int    `json:"code"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, healthResponse{OK: true})
}

func (h *handler) handleCorrect(w http.ResponseWriter, r *http.Request) {
	body, err := payload.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, http.StatusRequestEntityTooLarge, "request body exceeds 1 MiB", "")
			return
		}
		h.writeError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}

	req, err := body.ToDomain()
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	result, err := h.service.Correct(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, payload.FromDomain(result))
}

func (h *handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *domain.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		h.writeError(w, r, http.StatusBadRequest, err.Error(), invalid.Field)
	case errors.Is(err, domain.ErrInvalidInput):
		h.writeError(w, r, http.StatusBadRequest, err.Error(), "")
	default:
		if h.logger != nil {
			h.logger.Errorf(r.Context(), "dfd-correct failed: %v", err)
		}
		h.writeError(w, r, http.StatusInternalServerError, "internal server error", "")
	}
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, status int, message, field string) {
	h.writeJSON(w, r, status, errorResponse{Error: message, Field: field, Code: status})
}

// writeJSON encodes body before touching the response so an encoding failure
// can still be reported as a 500.
func (h *handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		if h.logger != nil {
			h.logger.Errorf(r.Context(), "encode response: %v", err)
		}
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(errorResponse{Error: "internal server error", Code: status})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
