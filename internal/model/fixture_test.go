package model

import (
	"testing"

	"github.com/Sagun15/edfi-apis-sub000/internal/filter"
)

// registerFixtures installs a students resource with one lookup relation.
func registerFixtures(t *testing.T) *Model {
	t.Helper()
	err := RegisterModels(map[string]*Model{
		"students": {
			Table: "students",
			Order: "last_surname",
			Relations: map[string]*ModelRelation{
				"birthCountry": {Type: "belongs_to", Table: "descriptors", FK: "birth_country_descriptor_id"},
				"school":       {Table: "education_organizations", Where: "{alias}.kind = 'School'"},
			},
			Fields: []Field{
				{Source: "id", Type: "uuid", ReadOnly: true},
				{Source: "student_unique_id", Alias: "studentUniqueId", Type: "string", Required: true},
				{Source: "last_surname", Alias: "lastSurname", Type: "string", Required: true},
				{Source: "birth_date", Alias: "birthDate", Type: "date"},
				{Source: "grade_level", Alias: "gradeLevel", Type: "int"},
				{Source: "gpa", Type: "decimal"},
				{Source: "active", Type: "bool"},
			},
			Filters: map[string]FilterField{
				"id":                     {Path: "students.id", Validator: "uuid"},
				"studentUniqueId":        {Path: "students.student_unique_id"},
				"lastSurname":            {Path: "students.last_surname"},
				"birthDate":              {Path: "students.birth_date", Validator: "date"},
				"gradeLevel":             {Path: "students.grade_level", Validator: "int"},
				"gpa":                    {Path: "students.gpa"},
				"birthCountryDescriptor": {Path: "students.birthCountry.code_value"},
				"schoolName":             {Path: "students.school.name_of_institution"},
				"schoolNumber":           {Path: "students.school.education_organization_id"},
			},
		},
	})
	if err != nil {
		t.Fatalf("RegisterModels: %v", err)
	}
	m, _ := GetModel("students")
	return m
}

func mustParse(t *testing.T, m *Model, expr string) *filter.PredicateSet {
	t.Helper()
	set, err := m.ParseFilter(expr)
	if err != nil {
		t.Fatalf("ParseFilter(%q): %v", expr, err)
	}
	return set
}
