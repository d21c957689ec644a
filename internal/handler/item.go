package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Sagun15/edfi-apis-sub000/internal/auth"
	"github.com/Sagun15/edfi-apis-sub000/internal/logger"
	"github.com/Sagun15/edfi-apis-sub000/internal/model"
	"github.com/Sagun15/edfi-apis-sub000/internal/resolver"

	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

// GetHandler serves GET /data/v3/{resource}/{id}.
func GetHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	item, err := resolver.Get(r.Context(), vars["resource"], vars["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	setETag(w, item)
	writeJSON(w, http.StatusOK, item)
}

// CreateHandler serves POST /data/v3/{resource}.
func CreateHandler(w http.ResponseWriter, r *http.Request) {
	resource := mux.Vars(r)["resource"]
	payload, err := decodeObject(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, err)
		return
	}

	item, err := resolver.Create(r.Context(), resource, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	key := resolver.KeyOf(resource, item)
	logger.Info("item_created", map[string]any{
		"resource": resource,
		"id":       key,
		"subject":  subject(r),
	})
	w.Header().Set("Location", strings.TrimSuffix(r.URL.Path, "/")+"/"+key)
	setETag(w, item)
	writeJSON(w, http.StatusCreated, item)
}

// DeleteHandler serves DELETE /data/v3/{resource}/{id}.
func DeleteHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := resolver.Delete(r.Context(), vars["resource"], vars["id"], r.Header.Get("If-Match")); err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info("item_deleted", map[string]any{
		"resource": vars["resource"],
		"id":       vars["id"],
		"subject":  subject(r),
	})
	w.WriteHeader(http.StatusNoContent)
}

// subject names the authenticated caller, empty when auth is disabled.
func subject(r *http.Request) string {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}

func setETag(w http.ResponseWriter, item map[string]any) {
	if tag, ok := item[model.ETagKey].(string); ok {
		w.Header().Set("ETag", `"`+tag+`"`)
	}
}

// decodeObject reads a single JSON object, keeping numbers as json.Number.
func decodeObject(body io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidJSON, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", errInvalidJSON)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after object", errInvalidJSON)
	}
	return payload, nil
}
