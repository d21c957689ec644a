package model

import (
	"fmt"
	"unicode"
)

// LinkModelRelations fills relation defaults and checks relation types.
func LinkModelRelations() error {
	for modelName, model := range Registry {
		for relName, rel := range model.Relations {
			if rel == nil {
				return fmt.Errorf("relation '%s.%s' is empty", modelName, relName)
			}
			if rel.Type == "" {
				rel.Type = "belongs_to"
			}
			// Filters cross at most one hop from the resource table, so only
			// belongs_to (FK on this table) is meaningful.
			if rel.Type != "belongs_to" {
				return fmt.Errorf("relation '%s.%s' must be belongs_to, got '%s'", modelName, relName, rel.Type)
			}
			if rel.Table == "" {
				return fmt.Errorf("relation '%s.%s' has no table", modelName, relName)
			}
			if rel.FK == "" {
				rel.FK = toSnakeCase(relName) + "_id"
			}
			if rel.PK == "" {
				rel.PK = "id"
			}
		}
	}
	return nil
}

func toSnakeCase(s string) string {
	var result []rune
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result = append(result, '_')
		}
		result = append(result, unicode.ToLower(r))
	}
	return string(result)
}
