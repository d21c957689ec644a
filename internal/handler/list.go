package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Sagun15/edfi-apis-sub000/internal/resolver"

	"github.com/gorilla/mux"
)

// ListHandler serves GET /data/v3/{resource}.
func ListHandler(w http.ResponseWriter, r *http.Request) {
	req, err := listRequest(mux.Vars(r)["resource"], r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := resolver.List(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if res.Total != nil {
		w.Header().Set("Total-Count", strconv.FormatInt(*res.Total, 10))
	}
	writeJSON(w, http.StatusOK, res.Items)
}

func listRequest(resource string, r *http.Request) (resolver.ListRequest, error) {
	q := r.URL.Query()
	req := resolver.ListRequest{
		Resource: resource,
		Filter:   q.Get("filter"),
	}

	var err error
	if req.Offset, err = pagingParam(q.Get("offset")); err != nil {
		return req, fmt.Errorf("%w: offset %v", errInvalidPaging, err)
	}
	if req.Limit, err = pagingParam(q.Get("limit")); err != nil {
		return req, fmt.Errorf("%w: limit %v", errInvalidPaging, err)
	}
	if raw := strings.TrimSpace(q.Get("totalCount")); raw != "" {
		if req.TotalCount, err = strconv.ParseBool(raw); err != nil {
			return req, fmt.Errorf("%w: totalCount must be true or false", errInvalidPaging)
		}
	}
	return req, nil
}

// pagingParam parses a non-negative integer, 0 when absent.
func pagingParam(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("must be a non-negative integer, got %q", raw)
	}
	return n, nil
}
