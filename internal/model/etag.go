package model

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// ETagKey is the property carrying the version tag in item bodies.
const ETagKey = "_etag"

// ETag derives the version tag of an item from its canonical encoding. The
// tag changes whenever any exposed value or the modification timestamp does.
func ETag(item map[string]any) (string, error) {
	body := make(map[string]any, len(item))
	for k, v := range item {
		if k == ETagKey {
			continue
		}
		body[k] = v
	}
	data, err := canonicalJSON(body)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(xxhash.Sum64(data), 16), nil
}
