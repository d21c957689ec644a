package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sagun15/edfi-apis-sub000/internal/db"
	"github.com/Sagun15/edfi-apis-sub000/internal/logger"
	"github.com/Sagun15/edfi-apis-sub000/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	defaultLimit uint64 = 25
	maxLimit     uint64 = 500
	countTTL            = time.Minute
)

// Configure applies paging and cache settings. Call it before serving.
func Configure(opts Options) {
	if opts.DefaultLimit > 0 {
		defaultLimit = opts.DefaultLimit
	}
	if opts.MaxLimit > 0 {
		maxLimit = opts.MaxLimit
	}
	if opts.CountCacheTTLSec > 0 {
		countTTL = time.Duration(opts.CountCacheTTLSec) * time.Second
	}
	if opts.PredicateCacheMaxEntries > 0 {
		globalPredicateCache.setMaxEntries(int(opts.PredicateCacheMaxEntries))
	}
}

// EffectiveLimit returns the page size a request is served with.
func EffectiveLimit(limit uint64) uint64 {
	if limit == 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func lookup(resource string) (*model.Model, error) {
	m, ok := model.GetModel(resource)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
	return m, nil
}

// List reads one page of a resource collection.
func List(ctx context.Context, req ListRequest) (*ListResult, error) {
	m, err := lookup(req.Resource)
	if err != nil {
		return nil, err
	}
	expr := strings.TrimSpace(req.Filter)
	set, err := parseFilter(m, expr)
	if err != nil {
		return nil, err
	}

	// 1) page
	sb, err := m.BuildIndexQuery(set, req.Offset, EffectiveLimit(req.Limit))
	if err != nil {
		return nil, err
	}
	items, err := queryItems(ctx, m, db.Pool, sb, "list")
	if err != nil {
		return nil, err
	}

	res := &ListResult{Items: items}
	if !req.TotalCount {
		return res, nil
	}

	// 2) total, cached per resource and filter
	total, err := countItems(ctx, m, set, expr)
	if err != nil {
		return nil, err
	}
	res.Total = &total
	return res, nil
}

// Get reads a single item by id.
func Get(ctx context.Context, resource, id string) (map[string]any, error) {
	m, err := lookup(resource)
	if err != nil {
		return nil, err
	}
	key, err := m.ParseKey(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	sb, err := m.BuildGetQuery(key, false)
	if err != nil {
		return nil, err
	}
	items, err := queryItems(ctx, m, db.Pool, sb, "get")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, resource, id)
	}
	return items[0], nil
}

// Create inserts an item from a decoded JSON body and returns it as stored.
func Create(ctx context.Context, resource string, payload map[string]any) (map[string]any, error) {
	m, err := lookup(resource)
	if err != nil {
		return nil, err
	}
	ib, err := m.BuildInsert(payload, time.Now())
	if err != nil {
		return nil, err
	}
	sqlStr, args, err := ib.ToSql()
	if err != nil {
		return nil, err
	}
	logger.Debug("sql", map[string]any{
		"op":       "create",
		"resource": m.Name,
		"sql":      sqlStr,
	})

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, translatePgError(err)
	}
	items, err := m.ScanRows(rows)
	if err != nil {
		return nil, translatePgError(err)
	}
	if len(items) != 1 {
		return nil, fmt.Errorf("create %s: insert returned %d rows", m.Name, len(items))
	}
	if err := withETag(items[0]); err != nil {
		return nil, err
	}

	flushCounts(ctx, m.Name)
	return items[0], nil
}

// Delete removes an item. A non-empty ifMatch must equal the current tag.
// The row is locked between the tag check and the delete.
func Delete(ctx context.Context, resource, id, ifMatch string) error {
	m, err := lookup(resource)
	if err != nil {
		return err
	}
	key, err := m.ParseKey(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	sb, err := m.BuildGetQuery(key, true)
	if err != nil {
		return err
	}
	items, err := queryItems(ctx, m, tx, sb, "delete_lock")
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, resource, id)
	}
	if want := normalizeETag(ifMatch); want != "" && want != "*" && want != items[0][model.ETagKey] {
		return fmt.Errorf("%w: %s/%s", ErrETagMismatch, resource, id)
	}

	del, err := m.BuildDelete(key)
	if err != nil {
		return err
	}
	sqlStr, args, err := del.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
		return translatePgError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	flushCounts(ctx, m.Name)
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryItems(ctx context.Context, m *model.Model, q querier, sb squirrel.SelectBuilder, op string) ([]map[string]any, error) {
	sqlStr, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}
	logger.Debug("sql", map[string]any{
		"op":       op,
		"resource": m.Name,
		"sql":      sqlStr,
		"args":     args,
	})

	rows, err := q.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	items, err := m.ScanRows(rows)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := withETag(it); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func withETag(item map[string]any) error {
	tag, err := model.ETag(item)
	if err != nil {
		return fmt.Errorf("etag: %w", err)
	}
	item[model.ETagKey] = tag
	return nil
}

// normalizeETag strips the weak prefix and quotes of an If-Match value.
func normalizeETag(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "W/")
	return strings.Trim(v, `"`)
}

func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505", "23503":
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.Detail)
	case "23502", "22P02", "22003", "22007", "22008":
		return fmt.Errorf("%w: %s", ErrInvalidPayload, pgErr.Message)
	}
	return err
}

// KeyOf returns the key of an item as rendered in its URL.
func KeyOf(resource string, item map[string]any) string {
	m, ok := model.GetModel(resource)
	if !ok {
		return ""
	}
	for _, f := range m.Fields {
		if f.Source == m.GetKey() {
			return fmt.Sprint(item[f.JSONName()])
		}
	}
	return ""
}
