package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/lorawatch-core/internal/device"
	"github.com/nerrad567/lorawatch-core/internal/directory"
	"github.com/nerrad567/lorawatch-core/internal/journal"
	"github.com/nerrad567/lorawatch-core/internal/monitor"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the response to an operator action. OK is false on failure,
// with Message carrying the reason.
type Result struct {
	OK          bool           `json:"ok"`
	Message     string         `json:"message"`
	Device      *device.Device `json:"device,omitempty"`
	QueueItemID string         `json:"queue_item_id,omitempty"`
	Loaded      *int           `json:"loaded,omitempty"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeConflict     = "conflict"
	ErrCodeInternal     = "internal_error"
	ErrCodeValidation   = "validation_error"
	ErrCodeUnavailable  = "upstream_unavailable"
	ErrCodeUpstream     = "upstream_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{Status: status, Code: code, Message: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeServiceError maps a domain error to its HTTP status and writes a
// structured error.
func writeServiceError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err.Error())
}

// writeFailure writes a failed operator Result with the mapped status.
func writeFailure(w http.ResponseWriter, err error) {
	status, _ := classify(err)
	writeJSON(w, status, Result{OK: false, Message: err.Error()})
}

// classify maps domain errors to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, device.ErrDeviceNotFound), errors.Is(err, directory.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, device.ErrDeviceExists), errors.Is(err, directory.ErrAlreadyExists):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, device.ErrInvalidDevEUI),
		errors.Is(err, device.ErrInvalidNwkKey),
		errors.Is(err, device.ErrInvalidName),
		errors.Is(err, device.ErrInvalidDevice),
		errors.Is(err, monitor.ErrUnknownCommand),
		errors.Is(err, journal.ErrInvalidKind),
		errors.Is(err, directory.ErrInvalidRequest):
		return http.StatusBadRequest, ErrCodeValidation
	case errors.Is(err, directory.ErrUnavailable):
		return http.StatusServiceUnavailable, ErrCodeUnavailable
	case errors.Is(err, directory.ErrRequestFailed):
		return http.StatusBadGateway, ErrCodeUpstream
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}
