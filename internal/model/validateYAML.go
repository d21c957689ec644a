package model

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

var allowedModelKeys = map[string]bool{
	"table":               true,
	"key":                 true,
	"order":               true,
	"relations":           true,
	"fields":              true,
	"filters":             true,
	"unsupported_filters": true,
}

var allowedRelationKeys = map[string]bool{
	"type":  true,
	"table": true,
	"fk":    true,
	"pk":    true,
	"where": true,
}

var allowedFieldKeys = map[string]bool{
	"source":   true,
	"alias":    true,
	"type":     true,
	"required": true,
	"readonly": true,
}

var allowedFilterKeys = map[string]bool{
	"path":      true,
	"validator": true,
}

var allowedFieldTypeValues = map[string]bool{
	"string":   true,
	"int":      true,
	"decimal":  true,
	"bool":     true,
	"date":     true,
	"datetime": true,
	"uuid":     true,
}

// validateYAMLNode walks a resource document and rejects unknown keys. The
// context names the kind of mapping being visited.
func validateYAMLNode(node *yaml.Node, context string) error {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			if err := validateYAMLNode(child, "model"); err != nil {
				return err
			}
		}

	case yaml.MappingNode:
		var allowedKeys map[string]bool
		switch context {
		case "model":
			allowedKeys = allowedModelKeys
		case "relation":
			allowedKeys = allowedRelationKeys
		case "field":
			allowedKeys = allowedFieldKeys
		case "filter":
			allowedKeys = allowedFilterKeys
		default:
			allowedKeys = nil // free form
		}

		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valNode := node.Content[i+1]
			key := keyNode.Value

			if allowedKeys != nil && !allowedKeys[key] {
				return fmt.Errorf("unknown key '%s' in %s", key, context)
			}

			if context == "field" && key == "type" && !allowedFieldTypeValues[valNode.Value] {
				return fmt.Errorf("unknown type value '%s' in field", valNode.Value)
			}

			nextContext := context
			switch {
			case context == "model" && key == "relations":
				nextContext = "relations-map"
			case context == "relations-map":
				nextContext = "relation"
			case context == "model" && key == "fields":
				nextContext = "fields-seq"
			case context == "model" && key == "filters":
				nextContext = "filters-map"
			case context == "filters-map":
				nextContext = "filter"
			case context == "model" && key == "unsupported_filters":
				nextContext = "names-seq"
			case context == "field" || context == "filter" || context == "relation":
				nextContext = "value"
			}

			if err := validateYAMLNode(valNode, nextContext); err != nil {
				return err
			}
		}

	case yaml.SequenceNode:
		itemContext := context
		if context == "fields-seq" {
			itemContext = "field"
		}
		for _, item := range node.Content {
			if context == "names-seq" && item.Kind != yaml.ScalarNode {
				return fmt.Errorf("unsupported_filters must list field names")
			}
			if err := validateYAMLNode(item, itemContext); err != nil {
				return err
			}
		}

	case yaml.ScalarNode:
		// scalars are checked while visiting their parent mapping
	}

	return nil
}
