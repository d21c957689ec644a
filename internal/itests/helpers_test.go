package itests

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"
)

var client = &http.Client{Timeout: 5 * time.Second}

type response struct {
	Status int
	Header http.Header
	Body   []byte
}

func do(t *testing.T, method, path string, query url.Values, body any, header map[string]string) response {
	t.Helper()
	target := testBaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, target, rd)
	if err != nil {
		t.Fatalf("build request failed: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return response{Status: resp.StatusCode, Header: resp.Header, Body: b}
}

func (r response) expect(t *testing.T, status int) {
	t.Helper()
	if r.Status != status {
		t.Fatalf("expected %d, got %d. body=%s", status, r.Status, string(r.Body))
	}
}

func (r response) items(t *testing.T) []map[string]any {
	t.Helper()
	var out []map[string]any
	if err := json.Unmarshal(r.Body, &out); err != nil {
		t.Fatalf("invalid JSON array: %v; body=%s", err, string(r.Body))
	}
	return out
}

func (r response) object(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(r.Body, &out); err != nil {
		t.Fatalf("invalid JSON object: %v; body=%s", err, string(r.Body))
	}
	return out
}

func (r response) errorCode(t *testing.T) string {
	t.Helper()
	code, _ := r.object(t)["error"].(string)
	return code
}

func column(items []map[string]any, key string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, _ := it[key].(string)
		out = append(out, s)
	}
	return out
}
