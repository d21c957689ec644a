package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validator checks that a filter value has the shape of its field's
// storage type. A field without a Validator is free-form text.
type Validator struct {
	Name  string
	check func(string) error
}

// Check runs the validator against value.
func (v Validator) Check(value string) error {
	if v.check == nil {
		return nil
	}
	return v.check(value)
}

var (
	integerRe = regexp.MustCompile(`^[+-]?\d+$`)
	decimalRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
	yearRe    = regexp.MustCompile(`^\d{4}$`)
)

// Validators lists the built-in validators by the name used in resource
// definitions.
var Validators = map[string]Validator{
	"uuid": {Name: "uuid", check: func(s string) error {
		if _, err := uuid.Parse(s); err != nil {
			return fmt.Errorf("%q is not a valid identifier", s)
		}
		return nil
	}},
	"int": {Name: "int", check: func(s string) error {
		if !integerRe.MatchString(s) {
			return fmt.Errorf("%q is not an integer", s)
		}
		if _, err := strconv.ParseInt(s, 10, 32); err != nil {
			return fmt.Errorf("%q is out of range", s)
		}
		return nil
	}},
	"decimal": {Name: "decimal", check: func(s string) error {
		if !decimalRe.MatchString(s) {
			return fmt.Errorf("%q is not a number", s)
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return fmt.Errorf("%q is not a number", s)
		}
		return nil
	}},
	"bool": {Name: "bool", check: func(s string) error {
		switch strings.ToLower(s) {
		case "true", "false":
			return nil
		}
		return fmt.Errorf("%q is not a boolean", s)
	}},
	"date": {Name: "date", check: func(s string) error {
		if _, err := time.Parse(time.DateOnly, s); err != nil {
			return fmt.Errorf("%q is not a date (YYYY-MM-DD)", s)
		}
		return nil
	}},
	"datetime": {Name: "datetime", check: func(s string) error {
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return fmt.Errorf("%q is not an RFC 3339 timestamp", s)
		}
		return nil
	}},
	"year": {Name: "year", check: func(s string) error {
		if !yearRe.MatchString(s) {
			return fmt.Errorf("%q is not a school year", s)
		}
		return nil
	}},
}
