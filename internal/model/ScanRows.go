package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// LastModifiedKey is the item property holding the row's last modification time.
const LastModifiedKey = "_lastModifiedDate"

// ScanRows reads rows selected with SelectColumns into items keyed by JSON
// property name.
func (m *Model) ScanRows(rows pgx.Rows) ([]map[string]any, error) {
	if rows == nil {
		return nil, fmt.Errorf("rows is nil")
	}
	defer rows.Close()

	out := make([]map[string]any, 0, 64)
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		item, err := m.itemFromValues(vals)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Model) itemFromValues(vals []any) (map[string]any, error) {
	if len(vals) != len(m.Fields)+1 {
		return nil, fmt.Errorf("%s: got %d columns, want %d", m.Name, len(vals), len(m.Fields)+1)
	}
	item := make(map[string]any, len(vals))
	for i, f := range m.Fields {
		item[f.JSONName()] = presentValue(f.Type, vals[i])
	}
	item[LastModifiedKey] = presentValue("datetime", vals[len(m.Fields)])
	return item, nil
}

// presentValue converts a driver value into its JSON representation for
// the declared field type.
func presentValue(typ string, v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		if typ == "date" {
			return val.Format(time.DateOnly)
		}
		return val.UTC().Format(time.RFC3339)
	case [16]byte:
		return uuid.UUID(val).String()
	case pgtype.Numeric:
		if !val.Valid {
			return nil
		}
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	}
	return v
}
