package filter

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func peopleRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(map[string]map[string]FieldSpec{
		"people": {
			"id":          {Path: "people.id", Validator: "uuid"},
			"status":      {Path: "people.status"},
			"lastName":    {Path: "people.last_name"},
			"email":       {Path: "people.email"},
			"age":         {Path: "people.age", Validator: "int"},
			"birthDate":   {Path: "people.birth_date", Validator: "date"},
			"countryCode": {Path: "people.country.code_value"},
			"secret":      {Path: "people.secret"},
		},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestParseConditionAllOperators(t *testing.T) {
	p := NewParser(peopleRegistry(t))
	for _, op := range Operators {
		text := "lastName" + op.Token() + "'Smythe'"
		frag, err := p.ParseCondition("people", text)
		if err != nil {
			t.Fatalf("ParseCondition(%q): %v", text, err)
		}
		want := Fragment{
			Path:     FieldPath{"people", "last_name"},
			Operator: op,
			Value:    "Smythe",
			Textual:  true,
		}
		if diff := cmp.Diff(want, frag); diff != "" {
			t.Fatalf("ParseCondition(%q) mismatch (-want +got):\n%s", text, diff)
		}
	}
}

func TestParseConditionTrimsAndUnquotes(t *testing.T) {
	p := NewParser(peopleRegistry(t))
	cases := map[string]string{
		"lastName = 'Smith'":   "Smith",
		"lastName=Smith":       "Smith",
		"lastName=' Smith '":   " Smith ",
		"lastName= 'O''Neil' ": "O''Neil",
		"lastName=''":          "",
	}
	for in, want := range cases {
		frag, err := p.ParseCondition("people", in)
		if err != nil {
			t.Fatalf("ParseCondition(%q): %v", in, err)
		}
		if frag.Value != want {
			t.Fatalf("ParseCondition(%q).Value = %q, want %q", in, frag.Value, want)
		}
	}
}

func TestParseConditionTypedField(t *testing.T) {
	p := NewParser(peopleRegistry(t))
	frag, err := p.ParseCondition("people", "age>='18'")
	if err != nil {
		t.Fatalf("ParseCondition: %v", err)
	}
	if frag.Textual || frag.Kind != "int" {
		t.Fatalf("validated field must not be textual, got %+v", frag)
	}
	if frag.Operator != GreaterOrEqual || frag.Value != "18" {
		t.Fatalf("unexpected fragment: %+v", frag)
	}
}

func TestParseConditionNull(t *testing.T) {
	p := NewParser(peopleRegistry(t))
	for _, in := range []string{"age=null", "age!=NULL", "lastName='Null'", "birthDate = 'null' "} {
		frag, err := p.ParseCondition("people", in)
		if err != nil {
			t.Fatalf("ParseCondition(%q): %v", in, err)
		}
		if !frag.Null || frag.Value != "" {
			t.Fatalf("ParseCondition(%q): expected null sentinel, got %+v", in, frag)
		}
	}
	for _, in := range []string{"age>null", "age<='null'", "email~null", "lastName>=NULL"} {
		if _, err := p.ParseCondition("people", in); !errors.Is(err, ErrInvalidFilterField) {
			t.Fatalf("ParseCondition(%q): expected ErrInvalidFilterField, got %v", in, err)
		}
	}
}

func TestParseConditionValidatorRejects(t *testing.T) {
	p := NewParser(peopleRegistry(t))
	for _, in := range []string{"age='eighteen'", "id='42'", "birthDate='2020-13-01'", "age=''"} {
		if _, err := p.ParseCondition("people", in); !errors.Is(err, ErrInvalidFilterField) {
			t.Fatalf("ParseCondition(%q): expected ErrInvalidFilterField, got %v", in, err)
		}
	}
}

func TestParseConditionContainsSkipsValidator(t *testing.T) {
	p := NewParser(peopleRegistry(t))
	frag, err := p.ParseCondition("people", "birthDate~'-05-'")
	if err != nil {
		t.Fatalf("ParseCondition: %v", err)
	}
	if frag.Operator != Contains || frag.Value != "-05-" || frag.Textual || frag.Kind != "date" {
		t.Fatalf("unexpected fragment: %+v", frag)
	}
}

func TestParseConditionUnknownField(t *testing.T) {
	p := NewParser(peopleRegistry(t))
	for _, op := range Operators {
		for _, value := range []string{"1", "'x'", "null"} {
			in := "unknownField" + op.Token() + value
			if _, err := p.ParseCondition("people", in); !errors.Is(err, ErrInvalidFilterField) {
				t.Fatalf("ParseCondition(%q): expected ErrInvalidFilterField, got %v", in, err)
			}
		}
	}
	if _, err := p.ParseCondition("courses", "status='x'"); !errors.Is(err, ErrInvalidFilterField) {
		t.Fatalf("unknown root: expected ErrInvalidFilterField, got %v", err)
	}
}

func TestParseConditionUnsupportedField(t *testing.T) {
	p := NewParser(peopleRegistry(t))
	if _, err := p.ParseCondition("people", "secret='x'", "secret"); !errors.Is(err, ErrInvalidFilterField) {
		t.Fatalf("expected ErrInvalidFilterField, got %v", err)
	}
	if _, err := p.ParseCondition("people", "secret='x'", "other"); err != nil {
		t.Fatalf("field not listed as unsupported must parse: %v", err)
	}
}

func TestParseConditionUnterminatedQuote(t *testing.T) {
	p := NewParser(peopleRegistry(t))
	for _, in := range []string{"lastName='Smith", "lastName='O'Brien'", "lastName=Smith'"} {
		if _, err := p.ParseCondition("people", in); !errors.Is(err, ErrInvalidFilterField) {
			t.Fatalf("ParseCondition(%q): expected ErrInvalidFilterField, got %v", in, err)
		}
	}
	frag, err := p.ParseCondition("people", "lastName='O''Brien'")
	if err != nil || frag.Value != "O''Brien" {
		t.Fatalf("doubled quote must stay inside the value, got %+v, %v", frag, err)
	}
}

func TestParseConditionNoOperator(t *testing.T) {
	p := NewParser(peopleRegistry(t))
	if _, err := p.ParseCondition("people", "lastName Smith"); !errors.Is(err, ErrInvalidFilterField) {
		t.Fatalf("expected ErrInvalidFilterField, got %v", err)
	}
}
