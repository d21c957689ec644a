package model

import (
	"fmt"

	"github.com/Sagun15/edfi-apis-sub000/internal/filter"

	"github.com/Masterminds/squirrel"
)

// BuildCountQuery counts the rows a filter matches, ignoring paging.
func (m *Model) BuildCountQuery(set *filter.PredicateSet) (squirrel.SelectBuilder, error) {
	sb := squirrel.SelectBuilder{}.PlaceholderFormat(squirrel.Dollar)
	sb = sb.From(fmt.Sprintf("%s AS %s", m.Table, mainAlias))

	// belongs_to joins never multiply rows, so COUNT(*) is exact
	sb, err := m.applyJoins(sb, set)
	if err != nil {
		return sb, err
	}
	sb = sb.Column("COUNT(*)")

	wherePart, err := m.BuildWhereClause(set)
	if err != nil {
		return sb, err
	}
	if wherePart != nil {
		sb = sb.Where(wherePart)
	}
	return sb, nil
}
