package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Sagun15/edfi-apis-sub000/internal/db"
)

// HealthHandler reports whether Postgres (and Redis when configured) answer.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok", "postgres": "ok"}
	code := http.StatusOK

	if db.Pool == nil {
		status["postgres"] = "not initialized"
		status["status"] = "unavailable"
		code = http.StatusServiceUnavailable
	} else if err := db.Pool.Ping(ctx); err != nil {
		status["postgres"] = err.Error()
		status["status"] = "unavailable"
		code = http.StatusServiceUnavailable
	}

	if db.RDB != nil {
		status["redis"] = "ok"
		if err := db.PingRedis(ctx); err != nil {
			// redis failures never fail the check
			status["redis"] = err.Error()
		}
	}
	writeJSON(w, code, status)
}
