package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Sagun15/edfi-apis-sub000/internal/filter"
	"github.com/Sagun15/edfi-apis-sub000/internal/logger"
	"github.com/Sagun15/edfi-apis-sub000/internal/resolver"
)

var (
	errInvalidPaging = errors.New("invalid paging")
	errInvalidJSON   = errors.New("invalid json")
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError maps an operation error to its status and JSON body. Errors
// without a known cause are logged and reported as internal.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request_failed", map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err.Error(),
		})
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, filter.ErrInvalidFilterField):
		return http.StatusBadRequest, "invalid_filter_field"
	case errors.Is(err, errInvalidPaging):
		return http.StatusBadRequest, "invalid_paging"
	case errors.Is(err, errInvalidJSON):
		return http.StatusBadRequest, "invalid_json"
	case errors.Is(err, resolver.ErrInvalidPayload):
		return http.StatusBadRequest, "invalid_payload"
	case errors.Is(err, resolver.ErrUnknownResource):
		return http.StatusNotFound, "unknown_resource"
	case errors.Is(err, resolver.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, resolver.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, resolver.ErrETagMismatch):
		return http.StatusPreconditionFailed, "etag_mismatch"
	}
	return http.StatusInternalServerError, "internal"
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("write_response_failed", map[string]any{
			"error": err.Error(),
		})
	}
}
