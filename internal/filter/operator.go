// Package filter parses client filter expressions into predicate sets that
// the storage layer turns into WHERE clauses.
package filter

import "strings"

// Operator is a comparison kind accepted inside a single condition.
type Operator int

const (
	NotEqual Operator = iota
	GreaterOrEqual
	LessOrEqual
	Equal
	GreaterThan
	LessThan
	Contains
)

// Operators is the matching order. A token that contains another token
// must come before it, otherwise "age!=5" would split as "age!" = "5".
var Operators = []Operator{
	NotEqual,
	GreaterOrEqual,
	LessOrEqual,
	Equal,
	GreaterThan,
	LessThan,
	Contains,
}

var operatorTokens = map[Operator]string{
	NotEqual:       "!=",
	GreaterOrEqual: ">=",
	LessOrEqual:    "<=",
	Equal:          "=",
	GreaterThan:    ">",
	LessThan:       "<",
	Contains:       "~",
}

var operatorNames = map[Operator]string{
	NotEqual:       "not_equal",
	GreaterOrEqual: "greater_or_equal",
	LessOrEqual:    "less_or_equal",
	Equal:          "equal",
	GreaterThan:    "greater_than",
	LessThan:       "less_than",
	Contains:       "contains",
}

// Token returns the textual form of the operator inside a filter expression.
func (o Operator) Token() string {
	return operatorTokens[o]
}

func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return "unknown"
}

// AllowsNull reports whether the null sentinel may be used with o.
func (o Operator) AllowsNull() bool {
	return o == Equal || o == NotEqual
}

// Match finds the first operator of Operators present in condition and
// splits condition around its first occurrence. Tokens inside a
// single-quoted span are not considered.
func Match(condition string) (op Operator, left, right string, ok bool) {
	for _, candidate := range Operators {
		tok := candidate.Token()
		idx := indexOutsideQuotes(condition, tok)
		if idx < 0 {
			continue
		}
		return candidate, condition[:idx], condition[idx+len(tok):], true
	}
	return 0, "", "", false
}

// indexOutsideQuotes is strings.Index that skips matches starting inside
// a single-quoted literal.
func indexOutsideQuotes(s, sub string) int {
	inQuote := false
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			inQuote = !inQuote
			continue
		}
		if inQuote {
			continue
		}
		if strings.HasPrefix(s[i:], sub) {
			return i
		}
	}
	return -1
}
