package model

import (
	"fmt"
	"strings"

	"github.com/Sagun15/edfi-apis-sub000/internal/filter"

	"github.com/Masterminds/squirrel"
)

// BuildIndexQuery builds the SELECT for a paged collection read.
func (m *Model) BuildIndexQuery(
	set *filter.PredicateSet, // parsed filter, nil for none
	offset, limit uint64, // paging
) (squirrel.SelectBuilder, error) {

	sb := squirrel.SelectBuilder{}.PlaceholderFormat(squirrel.Dollar)

	// 1. FROM
	sb = sb.From(fmt.Sprintf("%s AS %s", m.Table, mainAlias))

	// 2. columns
	sb = sb.Columns(m.SelectColumns()...)

	// 3. JOINs needed by the filter
	sb, err := m.applyJoins(sb, set)
	if err != nil {
		return sb, err
	}

	// 4. WHERE
	where, err := m.BuildWhereClause(set)
	if err != nil {
		return sb, err
	}
	if where != nil {
		sb = sb.Where(where)
	}

	// 5. ORDER BY, always ending on the key so pages are stable
	if m.Order != "" {
		order := m.Order
		if !strings.Contains(order, ".") {
			order = mainAlias + "." + order
		}
		sb = sb.OrderBy(order)
	}
	sb = sb.OrderBy(fmt.Sprintf("%s.%s", mainAlias, m.GetKey()))

	// 6. LIMIT / OFFSET
	if limit > 0 {
		sb = sb.Limit(limit)
	}
	if offset > 0 {
		sb = sb.Offset(offset)
	}

	return sb, nil
}

// SelectColumns lists the columns read for every item: the declared fields
// followed by the last modification timestamp.
func (m *Model) SelectColumns() []string {
	cols := make([]string, 0, len(m.Fields)+1)
	for _, f := range m.Fields {
		cols = append(cols, fmt.Sprintf("%s.%s", mainAlias, f.Source))
	}
	return append(cols, fmt.Sprintf("%s.%s", mainAlias, LastModifiedColumn))
}

func (m *Model) applyJoins(sb squirrel.SelectBuilder, set *filter.PredicateSet) (squirrel.SelectBuilder, error) {
	joins, err := m.DetectJoins(set)
	if err != nil {
		return sb, err
	}
	for _, join := range joins {
		sb = sb.JoinClause(fmt.Sprintf("%s %s AS %s ON %s", join.JoinType, join.Table, join.Alias, join.On))
	}
	return sb, nil
}
