package router

import (
	"net/http"
	"time"

	"github.com/Sagun15/edfi-apis-sub000/internal/auth"
	"github.com/Sagun15/edfi-apis-sub000/internal/config"
	"github.com/Sagun15/edfi-apis-sub000/internal/handler"
	"github.com/Sagun15/edfi-apis-sub000/internal/logger"

	"github.com/gorilla/mux"
)

// BasePath prefixes every resource route.
const BasePath = "/data/v3"

// InitRoutes builds the API router. validator may be nil when
// authentication is disabled.
func InitRoutes(cfg *config.Config, validator *auth.JWTValidator) http.Handler {
	r := mux.NewRouter()

	wrap := func(h http.HandlerFunc, protected bool) http.HandlerFunc {
		if protected && validator != nil {
			h = withAuth(validator, h)
		}
		return withCORS(cfg.CORS.AllowOrigin, cfg.CORS.AllowCredentials, withLogging(h))
	}

	r.HandleFunc("/health", wrap(handler.HealthHandler, false)).Methods(http.MethodGet, http.MethodOptions)

	api := r.PathPrefix(BasePath).Subrouter()
	api.HandleFunc("/{resource}", wrap(handler.ListHandler, true)).Methods(http.MethodGet)
	api.HandleFunc("/{resource}", wrap(handler.CreateHandler, true)).Methods(http.MethodPost)
	api.HandleFunc("/{resource}", wrap(preflight, false)).Methods(http.MethodOptions)
	api.HandleFunc("/{resource}/{id}", wrap(handler.GetHandler, true)).Methods(http.MethodGet)
	api.HandleFunc("/{resource}/{id}", wrap(handler.DeleteHandler, true)).Methods(http.MethodDelete)
	api.HandleFunc("/{resource}/{id}", wrap(preflight, false)).Methods(http.MethodOptions)

	return r
}

// preflight is never reached past withCORS; it keeps OPTIONS routable.
func preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)
		level := "info"
		if sw.status >= 500 {
			level = "error"
		} else if sw.status >= 400 {
			level = "warn"
		}
		fields := map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"query":       r.URL.RawQuery,
			"status":      sw.status,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		switch level {
		case "error":
			logger.Error("response", fields)
		case "warn":
			logger.Warn("response", fields)
		default:
			logger.Info("response", fields)
		}
	}
}

// withAuth requires a valid bearer token and stores its claims on the
// request context.
func withAuth(v *auth.JWTValidator, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.BearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w, "missing bearer token")
			return
		}
		claims, err := v.ValidateToken(token)
		if err != nil {
			logger.Warn("auth_failed", map[string]any{
				"path":  r.URL.Path,
				"error": err.Error(),
			})
			unauthorized(w, "invalid token")
			return
		}
		next(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"` + msg + `"}`))
}
