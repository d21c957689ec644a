package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var (
	// ErrInvalidPayload wraps every rejection of a create body.
	ErrInvalidPayload = errors.New("invalid payload")
	// ErrInvalidKey is returned when an id cannot be a key of the resource.
	ErrInvalidKey = errors.New("invalid key")
)

// ParseKey converts an id taken from a URL into the key column's type.
func (m *Model) ParseKey(id string) (any, error) {
	if m.columnType(m.GetKey()) == "uuid" {
		u, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKey, id)
		}
		return u, nil
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidKey)
	}
	return id, nil
}

// BuildGetQuery selects a single item by key. With lock the row is held
// FOR UPDATE until the surrounding transaction ends.
func (m *Model) BuildGetQuery(key any, lock bool) (squirrel.SelectBuilder, error) {
	sb := squirrel.SelectBuilder{}.PlaceholderFormat(squirrel.Dollar).
		Columns(m.SelectColumns()...).
		From(fmt.Sprintf("%s AS %s", m.Table, mainAlias)).
		Where(fmt.Sprintf("%s.%s = ?", mainAlias, m.GetKey()), key)
	if lock {
		sb = sb.Suffix("FOR UPDATE")
	}
	return sb, nil
}

// BuildDelete removes a single item by key.
func (m *Model) BuildDelete(key any) (squirrel.DeleteBuilder, error) {
	return squirrel.Delete(m.Table).
		PlaceholderFormat(squirrel.Dollar).
		Where(m.GetKey()+" = ?", key), nil
}

// BuildInsert validates a create body and builds the INSERT returning the
// stored item. Properties starting with "_" are server managed and ignored.
// A uuid key missing from the body is generated.
func (m *Model) BuildInsert(payload map[string]any, now time.Time) (squirrel.InsertBuilder, error) {
	ib := squirrel.Insert(m.Table).PlaceholderFormat(squirrel.Dollar)

	values := make(map[string]any, len(m.Fields)+1)
	for name, raw := range payload {
		if strings.HasPrefix(name, "_") {
			continue
		}
		f, ok := m.FieldByAlias(name)
		if !ok {
			return ib, fmt.Errorf("%w: unknown property %q", ErrInvalidPayload, name)
		}
		if f.ReadOnly {
			return ib, fmt.Errorf("%w: property %q is read-only", ErrInvalidPayload, name)
		}
		if raw == nil {
			continue
		}
		v, err := coerceValue(f.Type, raw)
		if err != nil {
			return ib, fmt.Errorf("%w: property %q: %v", ErrInvalidPayload, name, err)
		}
		values[f.Source] = v
	}

	key := m.GetKey()
	if _, ok := values[key]; !ok && m.columnType(key) == "uuid" {
		values[key] = uuid.New()
	}

	var missing []string
	for _, f := range m.Fields {
		if _, ok := values[f.Source]; f.Required && !ok {
			missing = append(missing, f.JSONName())
		}
	}
	if len(missing) > 0 {
		return ib, fmt.Errorf("%w: missing required %s", ErrInvalidPayload, strings.Join(missing, ", "))
	}
	values[LastModifiedColumn] = now.UTC()

	ib = ib.SetMap(values)

	returning := make([]string, 0, len(m.Fields)+1)
	for _, f := range m.Fields {
		returning = append(returning, f.Source)
	}
	returning = append(returning, LastModifiedColumn)
	return ib.Suffix("RETURNING " + strings.Join(returning, ", ")), nil
}

// coerceValue checks a decoded JSON value against a field type and converts
// it to the value bound for the column.
func coerceValue(typ string, raw any) (any, error) {
	switch typ {
	case "string":
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string")
		}
		return s, nil
	case "int":
		return integer(raw)
	case "decimal":
		f, ok := number(raw)
		if !ok {
			return nil, fmt.Errorf("expected number")
		}
		return f, nil
	case "bool":
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("expected boolean")
		}
		return b, nil
	case "date", "datetime", "uuid":
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string")
		}
		return typedValue(typ, s)
	}
	return nil, fmt.Errorf("unsupported type %q", typ)
}

// integer accepts whole numbers that fit a 32-bit integer column. Decoded
// json.Number values are parsed exactly, never through float64.
func integer(raw any) (int64, error) {
	var n int64
	switch v := raw.(type) {
	case json.Number:
		parsed, err := strconv.ParseInt(v.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %s", v)
		}
		n = parsed
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32+1 {
			return 0, fmt.Errorf("expected integer, got %v", v)
		}
		n = int64(v)
	default:
		return 0, fmt.Errorf("expected integer")
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, fmt.Errorf("integer %d out of range", n)
	}
	return n, nil
}

func number(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}
