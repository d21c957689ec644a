package model

import (
	"fmt"
	"strings"

	"github.com/Sagun15/edfi-apis-sub000/internal/filter"
)

// ValidateAllModels checks each resource definition for consistency:
// fields are unique and typed, filter paths stay on the resource table or
// cross one declared relation, unsupported filters name declared filters.
func ValidateAllModels() error {
	for name, m := range Registry {
		if err := validateModel(name, m); err != nil {
			return err
		}
	}
	return nil
}

func validateModel(name string, m *Model) error {
	if strings.TrimSpace(m.Table) == "" {
		return fmt.Errorf("resource %s: table is required", name)
	}
	if len(m.Fields) == 0 {
		return fmt.Errorf("resource %s: at least one field is required", name)
	}

	seenAlias := map[string]bool{}
	seenSource := map[string]bool{}
	for _, f := range m.Fields {
		if f.Source == "" {
			return fmt.Errorf("resource %s: field without source", name)
		}
		if !allowedFieldTypeValues[f.Type] {
			return fmt.Errorf("resource %s: field %q has unknown type %q", name, f.Source, f.Type)
		}
		if seenAlias[f.JSONName()] {
			return fmt.Errorf("resource %s: duplicate field %q", name, f.JSONName())
		}
		if seenSource[f.Source] {
			return fmt.Errorf("resource %s: column %q mapped twice", name, f.Source)
		}
		if f.Required && f.ReadOnly {
			return fmt.Errorf("resource %s: field %q cannot be required and readonly", name, f.JSONName())
		}
		if strings.HasPrefix(f.JSONName(), "_") {
			return fmt.Errorf("resource %s: field %q uses the reserved '_' prefix", name, f.JSONName())
		}
		seenAlias[f.JSONName()] = true
		seenSource[f.Source] = true
	}
	if !seenSource[m.GetKey()] {
		return fmt.Errorf("resource %s: key column %q is not a declared field", name, m.GetKey())
	}

	for fname, ff := range m.Filters {
		path := filter.ParseFieldPath(ff.Path)
		if path.Root() != name {
			return fmt.Errorf("resource %s: filter %q path %q must start with %q", name, fname, ff.Path, name)
		}
		if rest := path.Rest(); len(rest) == 2 {
			if m.GetRelation(rest[0]) == nil {
				return fmt.Errorf("resource %s: filter %q uses unknown relation %q", name, fname, rest[0])
			}
		}
	}
	for _, u := range m.UnsupportedFilters {
		if _, ok := m.Filters[u]; !ok {
			return fmt.Errorf("resource %s: unsupported filter %q is not declared", name, u)
		}
	}
	return nil
}
