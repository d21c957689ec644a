package resolver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sagun15/edfi-apis-sub000/internal/db"
	"github.com/Sagun15/edfi-apis-sub000/internal/filter"
	"github.com/Sagun15/edfi-apis-sub000/internal/logger"
	"github.com/Sagun15/edfi-apis-sub000/internal/model"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
)

func countCacheKey(resource, expr string) string {
	return fmt.Sprintf("count:%s:%x", resource, xxhash.Sum64String(strings.TrimSpace(expr)))
}

// countItems returns the number of items a filter matches. Totals are
// cached in Redis when it is configured; cache failures fall back to the
// database.
func countItems(ctx context.Context, m *model.Model, set *filter.PredicateSet, expr string) (int64, error) {
	key := countCacheKey(m.Name, expr)
	if db.RDB != nil {
		cached, err := db.RDB.Get(ctx, key).Result()
		switch {
		case err == nil:
			if n, perr := strconv.ParseInt(cached, 10, 64); perr == nil {
				return n, nil
			}
			logger.Warn("count_cache_invalid", map[string]any{"key": key, "value": cached})
		case !errors.Is(err, redis.Nil):
			logger.Warn("count_cache_get_failed", map[string]any{"key": key, "error": err.Error()})
		}
	}

	sb, err := m.BuildCountQuery(set)
	if err != nil {
		return 0, err
	}
	sqlStr, args, err := sb.ToSql()
	if err != nil {
		return 0, err
	}
	logger.Debug("sql", map[string]any{
		"op":       "count",
		"resource": m.Name,
		"sql":      sqlStr,
		"args":     args,
	})

	var total int64
	if err := db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", m.Name, err)
	}

	if db.RDB != nil {
		if err := db.RDB.Set(ctx, key, total, countTTL).Err(); err != nil {
			logger.Warn("count_cache_set_failed", map[string]any{"key": key, "error": err.Error()})
		}
	}
	return total, nil
}

// FlushCounts removes every cached total of a resource.
func FlushCounts(ctx context.Context, resource string) error {
	if db.RDB == nil {
		return nil
	}
	iter := db.RDB.Scan(ctx, 0, "count:"+resource+":*", 1000).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := db.RDB.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", key, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan error: %w", err)
	}
	return nil
}

func flushCounts(ctx context.Context, resource string) {
	if err := FlushCounts(ctx, resource); err != nil {
		logger.Warn("count_cache_flush_failed", map[string]any{
			"resource": resource,
			"error":    err.Error(),
		})
	}
}
