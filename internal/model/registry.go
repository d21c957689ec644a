package model

import (
	"fmt"

	"github.com/Sagun15/edfi-apis-sub000/internal/filter"
)

var Registry = map[string]*Model{}

var (
	filterRegistry *filter.Registry
	filterParser   *filter.Parser
)

// InitRegistry loads every resource definition from dir, links relations
// and builds the filter field registry. It runs once at startup; the
// result is read-only afterwards.
func InitRegistry(dir string) error {
	before := readAllocBytes()
	Registry = map[string]*Model{}
	if err := LoadModelsFromDir(dir); err != nil {
		return fmt.Errorf("load error: %w", err)
	}
	if err := finishRegistry(); err != nil {
		return err
	}
	logRegistryStats(dir, before)
	return nil
}

func finishRegistry() error {
	if err := LinkModelRelations(); err != nil {
		return fmt.Errorf("link error: %w", err)
	}
	if err := ValidateAllModels(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	reg, err := buildFilterRegistry()
	if err != nil {
		return fmt.Errorf("filter registry error: %w", err)
	}
	filterRegistry = reg
	filterParser = filter.NewParser(reg)
	return nil
}

// RegisterModels replaces the registry with the given models. Used by tests
// and tools that build definitions in code.
func RegisterModels(models map[string]*Model) error {
	Registry = make(map[string]*Model, len(models))
	for name, m := range models {
		m.Name = name
		Registry[name] = m
	}
	return finishRegistry()
}

func buildFilterRegistry() (*filter.Registry, error) {
	defs := make(map[string]map[string]filter.FieldSpec, len(Registry))
	for name, m := range Registry {
		specs := make(map[string]filter.FieldSpec, len(m.Filters))
		for field, ff := range m.Filters {
			specs[field] = filter.FieldSpec{Path: ff.Path, Validator: ff.Validator}
		}
		defs[name] = specs
	}
	return filter.NewRegistry(defs)
}

// GetModel returns the resource definition by name.
func GetModel(name string) (*Model, bool) {
	m, ok := Registry[name]
	return m, ok
}

// ParseFilter parses a client filter expression against the resource's
// filter fields, rejecting fields listed as unsupported.
func (m *Model) ParseFilter(expr string) (*filter.PredicateSet, error) {
	if filterParser == nil {
		return nil, fmt.Errorf("filter registry is not initialized")
	}
	return filterParser.Parse(m.Name, expr, m.UnsupportedFilters...)
}
