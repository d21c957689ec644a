package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Sagun15/edfi-apis-sub000/internal/filter"
)

// DetectJoins returns the joins a predicate set needs: one LEFT JOIN per
// relation referenced by any branch, in a stable order.
func (m *Model) DetectJoins(set *filter.PredicateSet) ([]*JoinSpec, error) {
	if set == nil {
		return nil, nil
	}
	used := map[string]bool{}
	for _, node := range set.Nodes {
		for key, pred := range node {
			if _, ok := pred.(filter.Node); ok {
				used[key] = true
			}
		}
	}

	names := make([]string, 0, len(used))
	for name := range used {
		names = append(names, name)
	}
	sort.Strings(names)

	joins := make([]*JoinSpec, 0, len(names))
	for _, name := range names {
		rel := m.GetRelation(name)
		if rel == nil {
			return nil, fmt.Errorf("unknown relation %q in %s filter", name, m.Name)
		}
		alias := relationAlias(name)
		on := fmt.Sprintf("%s.%s = %s.%s", alias, rel.PK, mainAlias, rel.FK)
		if rel.Where != "" {
			on = fmt.Sprintf("(%s) AND (%s)", on, strings.ReplaceAll(rel.Where, "{alias}", alias))
		}
		joins = append(joins, &JoinSpec{
			Table:    rel.Table,
			Alias:    alias,
			On:       on,
			JoinType: "LEFT JOIN",
		})
	}
	return joins, nil
}

func relationAlias(name string) string {
	return "r_" + toSnakeCase(name)
}
