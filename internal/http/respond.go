package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"genfin/internal/auth"
	"genfin/internal/billing"
	"genfin/internal/core"
	"genfin/internal/storage"
)

var errNoSession = errors.New("no session cookie")

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Response encoding failed", "error", err)
	}
}

// respondError maps domain errors to status codes. Anything unmapped is
// an internal error and gets logged without leaking its message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, storage.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, errNoSession),
		errors.Is(err, auth.ErrInvalidSession),
		errors.Is(err, auth.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, auth.ErrPhoneTaken),
		errors.Is(err, core.ErrBillRecordReadOnly):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, billing.ErrCardCycle):
		status, message = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrInvalidEntryType),
		errors.Is(err, core.ErrInvalidLast4),
		errors.Is(err, core.ErrInvalidDay),
		errors.Is(err, core.ErrEmptyPhone),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidPeriodicity),
		errors.Is(err, core.ErrInvalidExpenseType):
		status, message = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, errBadRequest):
		status, message = http.StatusBadRequest, err.Error()
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Handler failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
	respondJSON(w, status, map[string]string{"error": message})
}

var errBadRequest = errors.New("bad request")

// decodeJSON decodes the request body into dst, capping it at 1 MiB.
func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errBadRequest
	}
	return nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errBadRequest
	}
	return id, nil
}

// monthParams reads ?year= and ?month=, defaulting to the current month.
func monthParams(r *http.Request) (year, month int, err error) {
	now := time.Now()
	year, month = now.Year(), int(now.Month())
	if v := r.URL.Query().Get("year"); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil || year < 1 {
			return 0, 0, errBadRequest
		}
	}
	if v := r.URL.Query().Get("month"); v != "" {
		month, err = strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return 0, 0, errBadRequest
		}
	}
	return year, month, nil
}
