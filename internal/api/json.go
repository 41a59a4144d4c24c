package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/starford/newsledger/internal/apperr"
	"github.com/starford/newsledger/internal/dataset"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// writeText streams a plain-text rendering. Headers are already sent when
// render fails, so the error is only logged.
func writeText(w http.ResponseWriter, render func(io.Writer) error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := render(w); err != nil {
		slog.Error("render failed", slog.String("error", err.Error()))
	}
}

// writeError maps service errors to status codes.
func writeError(w http.ResponseWriter, op string, id dataset.ID, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidSelector):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrSourceUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("dataset", id.String()), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}
