package itests

import (
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Sagun15/edfi-apis-sub000/internal"
	"github.com/Sagun15/edfi-apis-sub000/internal/config"
	"github.com/Sagun15/edfi-apis-sub000/internal/db"
	"github.com/Sagun15/edfi-apis-sub000/internal/model"
	"github.com/Sagun15/edfi-apis-sub000/internal/resolver"
	"github.com/Sagun15/edfi-apis-sub000/internal/router"
)

var testBaseURL string

// TestMain boots a migrated database and the HTTP router. The suite needs a
// local Postgres and only runs with ITESTS=1.
func TestMain(m *testing.M) {
	if os.Getenv("ITESTS") != "1" {
		os.Exit(m.Run())
	}

	cfg := config.LoadConfig()
	teardownDB, err := SetupAndTeardownTestDB(cfg.PostgresDSN, db.InitPostgres)
	if err != nil {
		fmt.Fprintln(os.Stderr, "setup test DB failed:", err)
		os.Exit(1)
	}

	root, err := internal.FindRepoRoot()
	if err != nil {
		fmt.Fprintln(os.Stderr, "FindRepoRoot failed:", err)
		os.Exit(1)
	}
	if err := model.InitRegistry(filepath.Join(root, "resources")); err != nil {
		fmt.Fprintln(os.Stderr, "InitRegistry failed:", err)
		os.Exit(1)
	}
	resolver.Configure(resolver.Options{DefaultLimit: 25, MaxLimit: 500})

	srv := httptest.NewServer(router.InitRoutes(cfg, nil))
	testBaseURL = srv.URL

	code := m.Run()

	srv.Close()
	db.ClosePostgres()
	if err := teardownDB(); err != nil {
		fmt.Fprintln(os.Stderr, "drop test DB failed:", err)
	}
	os.Exit(code)
}

func requireServer(t *testing.T) {
	t.Helper()
	if testBaseURL == "" {
		t.Skip("integration tests need ITESTS=1 and a local Postgres")
	}
}
