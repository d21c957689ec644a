package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Sagun15/edfi-apis-sub000/internal/filter"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// BuildWhereClause translates a predicate set into a WHERE expression.
// Branches of the set are OR-ed, entries of a branch are AND-ed.
func (m *Model) BuildWhereClause(set *filter.PredicateSet) (squirrel.Sqlizer, error) {
	if set == nil || len(set.Nodes) == 0 {
		return nil, nil
	}
	if set.Root != m.Name {
		return nil, fmt.Errorf("filter for %q applied to %q", set.Root, m.Name)
	}

	branches := make([]squirrel.Sqlizer, 0, len(set.Nodes))
	for _, node := range set.Nodes {
		parts, err := m.nodeConditions(node, mainAlias)
		if err != nil {
			return nil, err
		}
		if len(parts) == 1 {
			branches = append(branches, parts[0])
		} else {
			branches = append(branches, squirrel.And(parts))
		}
	}
	if len(branches) == 1 {
		return branches[0], nil
	}
	return squirrel.Or(branches), nil
}

func (m *Model) nodeConditions(node filter.Node, alias string) ([]squirrel.Sqlizer, error) {
	var parts []squirrel.Sqlizer
	for _, key := range node.Keys() {
		switch pred := node[key].(type) {
		case filter.Leaf:
			col := alias + "." + key
			// related column types are not declared, so textual comparisons
			// on them always go through text
			castText := alias != mainAlias || m.columnType(key) != "string"
			for _, c := range pred {
				cond, err := comparisonCondition(col, castText, c)
				if err != nil {
					return nil, fmt.Errorf("filter on %s: %w", col, err)
				}
				parts = append(parts, cond)
			}
		case filter.Node:
			if alias != mainAlias {
				return nil, fmt.Errorf("filter crosses more than one relation at %q", key)
			}
			if m.GetRelation(key) == nil {
				return nil, fmt.Errorf("unknown relation %q in %s filter", key, m.Name)
			}
			nested, err := m.nodeConditions(pred, relationAlias(key))
			if err != nil {
				return nil, err
			}
			parts = append(parts, nested...)
		}
	}
	return parts, nil
}

// columnType returns the declared type of a resource column, "string"
// for columns that are filterable but not exposed as fields.
func (m *Model) columnType(column string) string {
	for _, f := range m.Fields {
		if f.Source == column {
			return f.Type
		}
	}
	return "string"
}

// comparisonCondition renders one comparison. Textual comparisons fold
// case on both sides; "!=" also matches NULL columns.
func comparisonCondition(col string, castText bool, c filter.Comparison) (squirrel.Sqlizer, error) {
	if c.Null {
		if c.Operator == filter.Equal {
			return squirrel.Eq{col: nil}, nil
		}
		return squirrel.NotEq{col: nil}, nil
	}

	if c.Operator == filter.Contains {
		target := col
		if castText || !c.Textual {
			target = fmt.Sprintf("CAST(%s AS TEXT)", col)
		}
		return squirrel.ILike{target: "%" + escapeLike(c.Value) + "%"}, nil
	}

	if c.Textual {
		lhs := col
		if castText {
			lhs = fmt.Sprintf("CAST(%s AS TEXT)", col)
		}
		sqlOp := sqlOperator(c.Operator)
		if c.Operator == filter.NotEqual {
			return squirrel.Expr(fmt.Sprintf("(LOWER(%s) %s LOWER(?) OR %s IS NULL)", lhs, sqlOp, col), c.Value), nil
		}
		return squirrel.Expr(fmt.Sprintf("LOWER(%s) %s LOWER(?)", lhs, sqlOp), c.Value), nil
	}

	// Expr rather than squirrel.Eq: Eq expands array values such as
	// uuid.UUID into IN lists.
	val, err := typedValue(c.Kind, c.Value)
	if err != nil {
		return nil, err
	}
	if c.Operator == filter.NotEqual {
		return squirrel.Expr(fmt.Sprintf("(%s <> ? OR %s IS NULL)", col, col), val), nil
	}
	return squirrel.Expr(fmt.Sprintf("%s %s ?", col, sqlOperator(c.Operator)), val), nil
}

func sqlOperator(op filter.Operator) string {
	switch op {
	case filter.NotEqual:
		return "<>"
	case filter.GreaterThan:
		return ">"
	case filter.GreaterOrEqual:
		return ">="
	case filter.LessThan:
		return "<"
	case filter.LessOrEqual:
		return "<="
	}
	return "="
}

// typedValue converts a validated filter value to the Go type the column
// is bound with.
func typedValue(kind, s string) (any, error) {
	switch kind {
	case "int", "year":
		return strconv.ParseInt(s, 10, 64)
	case "decimal":
		return strconv.ParseFloat(s, 64)
	case "bool":
		return strconv.ParseBool(strings.ToLower(s))
	case "date":
		return time.Parse(time.DateOnly, s)
	case "datetime":
		return time.Parse(time.RFC3339, s)
	case "uuid":
		return uuid.Parse(s)
	}
	return s, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
