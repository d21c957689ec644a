package itests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sagun15/edfi-apis-sub000/internal"
	"github.com/Sagun15/edfi-apis-sub000/internal/db"
	"github.com/Sagun15/edfi-apis-sub000/internal/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DeriveTestDSN points baseDSN at a throwaway "edfi_test" database and
// returns an admin DSN for the "postgres" maintenance database.
func DeriveTestDSN(baseDSN string) (testDSN, adminDSN, testDBName string, err error) {
	u, e := url.Parse(baseDSN)
	if e != nil {
		return "", "", "", fmt.Errorf("parse DSN: %w", e)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", "", "", errors.New("only URL DSN supported: postgres://...")
	}
	if host := u.Hostname(); host != "localhost" && host != "127.0.0.1" {
		return "", "", "", fmt.Errorf("refuse non-local host for tests: %s", host)
	}

	testDBName = "edfi_test"
	u.Path = "/" + testDBName
	testDSN = u.String()

	u.Path = "/postgres"
	adminDSN = u.String()
	return testDSN, adminDSN, testDBName, nil
}

func CreateTestDatabase(adminDSN, dbName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := sql.Open("pgx", adminDSN)
	if err != nil {
		return err
	}
	defer conn.Close()

	var exists bool
	if err := conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname=$1)`, dbName,
	).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = conn.ExecContext(ctx, `CREATE DATABASE `+pqIdent(dbName))
	return err
}

func DropTestDatabase(adminDSN, dbName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, err := sql.Open("pgx", adminDSN)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, _ = conn.ExecContext(ctx, `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()
	`, dbName)

	_, err = conn.ExecContext(ctx, `DROP DATABASE IF EXISTS `+pqIdent(dbName))
	return err
}

func pqIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// SetupAndTeardownTestDB creates the test database, migrates and seeds it,
// then runs initFunc against it. The returned teardown drops the database.
func SetupAndTeardownTestDB(baseDSN string, initFunc func(string) error) (teardown func() error, err error) {
	testDSN, adminDSN, testDB, err := DeriveTestDSN(baseDSN)
	if err != nil {
		return nil, err
	}
	if os.Getenv("APP_ENV") == "production" {
		return nil, errors.New("APP_ENV=production, aborting tests")
	}

	root, err := internal.FindRepoRoot()
	if err != nil {
		return nil, fmt.Errorf("repo root not found: %w", err)
	}

	// start from a clean schema so seed rows are predictable
	_ = DropTestDatabase(adminDSN, testDB)
	if err := CreateTestDatabase(adminDSN, testDB); err != nil {
		return nil, fmt.Errorf("create DB %q: %w (POSTGRES_DSN -> %s)", testDB, err, redactDSN(baseDSN))
	}
	logger.Info("test_db_created", map[string]any{"db": testDB})

	if err := db.Migrate(testDSN, filepath.Join(root, "migrations")); err != nil {
		_ = DropTestDatabase(adminDSN, testDB)
		return nil, err
	}
	if initFunc != nil {
		if err := initFunc(testDSN); err != nil {
			_ = DropTestDatabase(adminDSN, testDB)
			return nil, fmt.Errorf("InitPostgres failed: %w (POSTGRES_DSN -> %s)", err, redactDSN(baseDSN))
		}
	}

	teardown = func() error {
		return DropTestDatabase(adminDSN, testDB)
	}
	return teardown, nil
}

func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	username := u.User.Username()
	if username == "" {
		return dsn
	}
	u.User = url.UserPassword(username, "******")
	return u.String()
}
