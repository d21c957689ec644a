package filter

import "strings"

// Logical joins the two conditions of an expression.
type Logical int

const (
	None Logical = iota
	And
	Or
)

func (l Logical) String() string {
	switch l {
	case And:
		return "AND"
	case Or:
		return "OR"
	}
	return ""
}

type keywordMatch struct {
	start, end int
	op         Logical
}

// Split breaks expr into one or two conditions around a whitespace
// surrounded AND/OR keyword. Keywords inside single quotes are part of a
// value. More than one keyword is rejected: chained expressions are not
// supported.
func Split(expr string) (first string, op Logical, second string, err error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "", None, "", invalidf("empty filter expression")
	}
	if !balancedQuotes(expr) {
		return "", None, "", invalidf("unterminated quoted value in %q", expr)
	}

	matches := findKeywords(expr)
	switch len(matches) {
	case 0:
		return expr, None, "", nil
	case 1:
		m := matches[0]
		first = strings.TrimSpace(expr[:m.start])
		second = strings.TrimSpace(expr[m.end:])
		if first == "" || second == "" {
			return "", None, "", invalidf("%s must join two conditions", m.op)
		}
		return first, m.op, second, nil
	default:
		return "", None, "", invalidf("only one AND/OR is supported per filter, found %d", len(matches))
	}
}

// findKeywords reports every AND/OR outside quotes that is bounded by
// whitespace or by the ends of s. A keyword at either end is kept so
// that Split can reject the dangling operator.
func findKeywords(s string) []keywordMatch {
	var out []keywordMatch
	inQuote := false
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			inQuote = !inQuote
			continue
		}
		if inQuote || (i > 0 && !isSpace(s[i-1])) {
			continue
		}
		var op Logical
		var kw string
		switch {
		case strings.HasPrefix(s[i:], "AND"):
			op, kw = And, "AND"
		case strings.HasPrefix(s[i:], "OR"):
			op, kw = Or, "OR"
		default:
			continue
		}
		k := i + len(kw)
		if k < len(s) && !isSpace(s[k]) {
			continue
		}
		start := i
		for start > 0 && isSpace(s[start-1]) {
			start--
		}
		end := k
		for end < len(s) && isSpace(s[end]) {
			end++
		}
		out = append(out, keywordMatch{start: start, end: end, op: op})
		i = end - 1
	}
	return out
}

// balancedQuotes reports whether every single-quoted span is closed. A
// doubled quote inside a value counts twice and keeps the balance.
func balancedQuotes(s string) bool {
	return strings.Count(s, "'")%2 == 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
