package filter

import "strings"

// Fragment is one parsed condition: the storage path it constrains and a
// typed comparison against it.
type Fragment struct {
	Path     FieldPath
	Operator Operator
	Value    string
	// Null marks the null sentinel; only legal with Equal and NotEqual.
	Null bool
	// Textual is set when the field has no validator. Such fields compare
	// case-insensitively as strings.
	Textual bool
	// Kind names the validator of a typed field, empty when Textual.
	Kind string
}

// Parser turns filter expressions into predicate sets using a Registry.
type Parser struct {
	reg *Registry
}

func NewParser(reg *Registry) *Parser {
	return &Parser{reg: reg}
}

// ParseCondition parses one "field operator value" clause for root.
func (p *Parser) ParseCondition(root, text string, unsupported ...string) (Fragment, error) {
	if !balancedQuotes(text) {
		return Fragment{}, invalidf("unterminated quoted value in %q", text)
	}
	op, left, right, ok := Match(text)
	if !ok {
		return Fragment{}, invalidf("no operator in condition %q", text)
	}

	field := strings.TrimSpace(left)
	path, err := p.reg.Resolve(root, field, unsupported...)
	if err != nil {
		return Fragment{}, err
	}

	value := unquote(right)
	validator, typed := p.reg.ValidatorFor(path)
	frag := Fragment{
		Path:     path,
		Operator: op,
		Textual:  !typed,
		Kind:     validator.Name,
	}

	if strings.EqualFold(value, "null") {
		if !op.AllowsNull() {
			return Fragment{}, invalidf("null can only be used with = or != (field %q)", field)
		}
		frag.Null = true
		return frag, nil
	}

	if typed && op != Contains {
		if err := validator.Check(value); err != nil {
			return Fragment{}, invalidf("field %q: %v", field, err)
		}
	}
	frag.Value = value
	return frag, nil
}

// unquote trims whitespace and drops one layer of surrounding single
// quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "'")
	s = strings.TrimSuffix(s, "'")
	return s
}

// Parse parses a complete filter expression for root.
func (p *Parser) Parse(root, expr string, unsupported ...string) (*PredicateSet, error) {
	first, op, second, err := Split(expr)
	if err != nil {
		return nil, err
	}

	b := NewBuilder(root)
	frag, err := p.ParseCondition(root, first, unsupported...)
	if err != nil {
		return nil, err
	}
	if err := b.Apply(frag, None); err != nil {
		return nil, err
	}
	if op == None {
		return b.Result(), nil
	}

	frag, err = p.ParseCondition(root, second, unsupported...)
	if err != nil {
		return nil, err
	}
	if err := b.Apply(frag, op); err != nil {
		return nil, err
	}
	return b.Result(), nil
}
