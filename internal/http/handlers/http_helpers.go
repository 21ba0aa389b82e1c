package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	applog "github.com/rogerio-castellano/finance-tracker/internal/log"
	"github.com/rogerio-castellano/finance-tracker/internal/models"
)

const maxBodySize = 1 << 20

var errTrailingData = errors.New("body must contain a single JSON value")

// readJSON decodes exactly one JSON value from a body of at most maxBodySize.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	if err := writeJSON(w, status, data); err != nil {
		h.log(r).Error("Failed to write JSON response", applog.FieldError, err.Error())
	}
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, status int, message string, fieldErrs ...models.FieldError) {
	h.respond(w, r, status, ErrorResponse{Message: message, Errors: fieldErrs})
}

// serverError logs err and answers with the generic 500 body.
func (h *Handlers) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.log(r).Error("request failed", applog.FieldOperation, op, applog.FieldError, err.Error())
	h.fail(w, r, http.StatusInternalServerError, "Server error")
}

func (h *Handlers) log(r *http.Request) *applog.Logger {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return h.logger.With(applog.FieldRequestID, id)
	}
	return h.logger
}
