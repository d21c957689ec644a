package filter

import (
	"fmt"
	"strings"
)

// FieldPath locates a value relative to a queried resource. The first
// segment is the root entity, the rest descends into at most one related
// entity, e.g. ["students", "birthCountry", "code_value"].
type FieldPath []string

// ParseFieldPath splits a dotted path.
func ParseFieldPath(s string) FieldPath {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return FieldPath(strings.Split(s, "."))
}

// Root is the entity name the path starts from.
func (p FieldPath) Root() string {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

// Rest is the descent below the root entity.
func (p FieldPath) Rest() []string {
	if len(p) < 2 {
		return nil
	}
	return p[1:]
}

func (p FieldPath) String() string {
	return strings.Join(p, ".")
}

// FieldSpec declares one externally visible filter field.
type FieldSpec struct {
	Path      string
	Validator string
}

// Registry maps external filter names to storage paths and value
// validators. It is immutable once built and safe for concurrent use.
type Registry struct {
	fields     map[string]map[string]FieldPath
	validators map[string]Validator
}

// NewRegistry builds a Registry from root entity -> external name -> spec.
func NewRegistry(defs map[string]map[string]FieldSpec) (*Registry, error) {
	r := &Registry{
		fields:     make(map[string]map[string]FieldPath, len(defs)),
		validators: make(map[string]Validator),
	}
	// path -> validator name, "" for free-form
	seen := make(map[string]string)
	for root, specs := range defs {
		table := make(map[string]FieldPath, len(specs))
		for name, spec := range specs {
			path := ParseFieldPath(spec.Path)
			if err := checkPath(root, path); err != nil {
				return nil, fmt.Errorf("filter %s.%s: %w", root, name, err)
			}
			table[name] = path

			key := path.String()
			if prev, ok := seen[key]; ok && prev != spec.Validator {
				return nil, fmt.Errorf("filter %s.%s: path %s has conflicting validators %q and %q", root, name, key, prev, spec.Validator)
			}
			seen[key] = spec.Validator
			if spec.Validator == "" {
				continue
			}
			v, ok := Validators[spec.Validator]
			if !ok {
				return nil, fmt.Errorf("filter %s.%s: unknown validator %q", root, name, spec.Validator)
			}
			r.validators[key] = v
		}
		r.fields[root] = table
	}
	return r, nil
}

func checkPath(root string, path FieldPath) error {
	if len(path) < 2 {
		return fmt.Errorf("path %q must name the entity and a column", path.String())
	}
	if len(path) > 3 {
		return fmt.Errorf("path %q crosses more than one relation", path.String())
	}
	if path.Root() != root {
		return fmt.Errorf("path %q must start with %q", path.String(), root)
	}
	for _, seg := range path {
		if seg == "" {
			return fmt.Errorf("path %q has an empty segment", path.String())
		}
	}
	return nil
}

// Resolve maps an external field name of root to its storage path.
// Names missing from the mapping or present in unsupported are rejected.
func (r *Registry) Resolve(root, field string, unsupported ...string) (FieldPath, error) {
	for _, u := range unsupported {
		if u == field {
			return nil, invalidf("field %q is not supported for %s", field, root)
		}
	}
	table, ok := r.fields[root]
	if !ok {
		return nil, invalidf("resource %q has no filterable fields", root)
	}
	path, ok := table[field]
	if !ok {
		return nil, invalidf("unknown field %q for %s", field, root)
	}
	return path, nil
}

// ValidatorFor returns the validator registered for path, if any.
func (r *Registry) ValidatorFor(path FieldPath) (Validator, bool) {
	v, ok := r.validators[path.String()]
	return v, ok
}

// Fields lists the external names registered for root.
func (r *Registry) Fields(root string) []string {
	table := r.fields[root]
	out := make([]string, 0, len(table))
	for name := range table {
		out = append(out, name)
	}
	return out
}
