package model

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// canonicalJSON encodes value with sorted object keys so equal items always
// produce identical bytes.
func canonicalJSON(value any) ([]byte, error) {
	var b strings.Builder
	if err := encodeCanonical(&b, value); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func encodeCanonical(b *strings.Builder, value any) error {
	switch v := value.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		if v {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case string:
		enc, _ := json.Marshal(v)
		b.Write(enc)
	case float64, float32, int, int64, int32, int16, int8, uint, uint64, uint32, uint16, uint8:
		enc, _ := json.Marshal(v)
		b.Write(enc)
	case json.Number:
		b.WriteString(v.String())
	case time.Time:
		enc, _ := json.Marshal(v.UTC().Format(time.RFC3339Nano))
		b.Write(enc)
	case uuid.UUID:
		enc, _ := json.Marshal(v.String())
		b.Write(enc)
	case []any:
		b.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := encodeCanonical(b, item); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			encKey, _ := json.Marshal(k)
			b.Write(encKey)
			b.WriteByte(':')
			if err := encodeCanonical(b, v[k]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	default:
		enc, err := json.Marshal(v)
		if err != nil {
			return err
		}
		b.Write(enc)
	}
	return nil
}
