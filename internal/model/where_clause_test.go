package model

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func indexSQL(t *testing.T, m *Model, expr string) (string, []any) {
	t.Helper()
	sb, err := m.BuildIndexQuery(mustParse(t, m, expr), 0, 25)
	if err != nil {
		t.Fatalf("BuildIndexQuery(%q): %v", expr, err)
	}
	sql, args, err := sb.ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	return sql, args
}

func TestTextualEqualIsCaseInsensitive(t *testing.T) {
	m := registerFixtures(t)
	sql, args := indexSQL(t, m, "lastSurname='Smith'")
	if !strings.Contains(sql, "WHERE LOWER(main.last_surname) = LOWER($1)") {
		t.Fatalf("expected case-insensitive eq filter, got SQL: %s", sql)
	}
	if diff := cmp.Diff([]any{"Smith"}, args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestTextualOrderingOperators(t *testing.T) {
	m := registerFixtures(t)
	cases := map[string]string{
		"lastSurname>'M'":  "LOWER(main.last_surname) > LOWER($1)",
		"lastSurname>='M'": "LOWER(main.last_surname) >= LOWER($1)",
		"lastSurname<'M'":  "LOWER(main.last_surname) < LOWER($1)",
		"lastSurname<='M'": "LOWER(main.last_surname) <= LOWER($1)",
	}
	for expr, want := range cases {
		sql, _ := indexSQL(t, m, expr)
		if !strings.Contains(sql, want) {
			t.Fatalf("%s: expected %q in SQL: %s", expr, want, sql)
		}
	}
}

func TestNotEqualAlsoMatchesNull(t *testing.T) {
	m := registerFixtures(t)
	sql, _ := indexSQL(t, m, "lastSurname!='Smith'")
	if !strings.Contains(sql, "(LOWER(main.last_surname) <> LOWER($1) OR main.last_surname IS NULL)") {
		t.Fatalf("expected not-equal-or-null, got SQL: %s", sql)
	}

	sql, _ = indexSQL(t, m, "gradeLevel!='9'")
	if !strings.Contains(sql, "(main.grade_level <> $1 OR main.grade_level IS NULL)") {
		t.Fatalf("expected typed not-equal-or-null, got SQL: %s", sql)
	}
}

func TestContainsEscapesWildcards(t *testing.T) {
	m := registerFixtures(t)
	sql, args := indexSQL(t, m, "lastSurname~'50%_off'")
	if !strings.Contains(sql, "main.last_surname ILIKE $1") {
		t.Fatalf("expected ILIKE, got SQL: %s", sql)
	}
	if diff := cmp.Diff([]any{`%50\%\_off%`}, args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestContainsOnTypedColumnCastsToText(t *testing.T) {
	m := registerFixtures(t)
	sql, args := indexSQL(t, m, "birthDate~'-05-'")
	if !strings.Contains(sql, "CAST(main.birth_date AS TEXT) ILIKE $1") {
		t.Fatalf("expected cast for contains on date, got SQL: %s", sql)
	}
	if args[0] != "%-05-%" {
		t.Fatalf("unexpected arg %v", args[0])
	}
}

func TestTextualFilterOnNonStringColumnCasts(t *testing.T) {
	m := registerFixtures(t)
	sql, _ := indexSQL(t, m, "gpa='3.5'")
	if !strings.Contains(sql, "LOWER(CAST(main.gpa AS TEXT)) = LOWER($1)") {
		t.Fatalf("expected textual compare through cast, got SQL: %s", sql)
	}
}

func TestTypedComparisonsBindNativeValues(t *testing.T) {
	m := registerFixtures(t)

	sql, args := indexSQL(t, m, "gradeLevel>='9'")
	if !strings.Contains(sql, "WHERE main.grade_level >= $1") {
		t.Fatalf("unexpected SQL: %s", sql)
	}
	if args[0] != int64(9) {
		t.Fatalf("expected int64 arg, got %T %v", args[0], args[0])
	}

	sql, args = indexSQL(t, m, "birthDate<'2010-06-01'")
	if !strings.Contains(sql, "WHERE main.birth_date < $1") {
		t.Fatalf("unexpected SQL: %s", sql)
	}
	if want := time.Date(2010, 6, 1, 0, 0, 0, 0, time.UTC); !args[0].(time.Time).Equal(want) {
		t.Fatalf("expected %v, got %v", want, args[0])
	}

	id := uuid.New()
	sql, args = indexSQL(t, m, "id='"+id.String()+"'")
	if !strings.Contains(sql, "WHERE main.id = $1") || args[0] != id {
		t.Fatalf("unexpected uuid filter: %s %v", sql, args)
	}
}

func TestNullSentinel(t *testing.T) {
	m := registerFixtures(t)
	sql, args := indexSQL(t, m, "birthDate=null")
	if !strings.Contains(sql, "WHERE main.birth_date IS NULL") || len(args) != 0 {
		t.Fatalf("unexpected SQL: %s %v", sql, args)
	}
	sql, _ = indexSQL(t, m, "lastSurname!='NULL'")
	if !strings.Contains(sql, "WHERE main.last_surname IS NOT NULL") {
		t.Fatalf("unexpected SQL: %s", sql)
	}
}

func TestAndOrCombination(t *testing.T) {
	m := registerFixtures(t)
	sql, args := indexSQL(t, m, "lastSurname='Smith' AND gradeLevel>'8'")
	if !strings.Contains(sql, "WHERE (main.grade_level > $1 AND LOWER(main.last_surname) = LOWER($2))") {
		t.Fatalf("unexpected AND SQL: %s", sql)
	}
	if diff := cmp.Diff([]any{int64(8), "Smith"}, args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}

	sql, _ = indexSQL(t, m, "lastSurname='Smith' OR lastSurname='Jones'")
	if !strings.Contains(sql, "WHERE (LOWER(main.last_surname) = LOWER($1) OR LOWER(main.last_surname) = LOWER($2))") {
		t.Fatalf("unexpected OR SQL: %s", sql)
	}
}

func TestRelationFilterJoinsLookup(t *testing.T) {
	m := registerFixtures(t)
	sql, _ := indexSQL(t, m, "birthCountryDescriptor='US'")
	if !strings.Contains(sql, "LEFT JOIN descriptors AS r_birth_country ON r_birth_country.id = main.birth_country_descriptor_id") {
		t.Fatalf("expected join on lookup, got SQL: %s", sql)
	}
	if !strings.Contains(sql, "LOWER(CAST(r_birth_country.code_value AS TEXT)) = LOWER($1)") {
		t.Fatalf("expected condition on joined alias, got SQL: %s", sql)
	}
}

func TestTextualFilterOnRelationColumnCasts(t *testing.T) {
	m := registerFixtures(t)
	sql, args := indexSQL(t, m, "schoolNumber!='255901001'")
	want := "(LOWER(CAST(r_school.education_organization_id AS TEXT)) <> LOWER($1) OR r_school.education_organization_id IS NULL)"
	if !strings.Contains(sql, want) {
		t.Fatalf("expected %q in SQL: %s", want, sql)
	}
	if args[0] != "255901001" {
		t.Fatalf("unexpected arg %v", args[0])
	}

	sql, _ = indexSQL(t, m, "schoolNumber~'9010'")
	if !strings.Contains(sql, "CAST(r_school.education_organization_id AS TEXT) ILIKE $1") {
		t.Fatalf("expected contains through cast, got SQL: %s", sql)
	}
}

func TestRelationWhereUsesAlias(t *testing.T) {
	m := registerFixtures(t)
	sql, _ := indexSQL(t, m, "schoolName~'High'")
	want := "LEFT JOIN education_organizations AS r_school ON (r_school.id = main.school_id) AND (r_school.kind = 'School')"
	if !strings.Contains(sql, want) {
		t.Fatalf("expected %q in SQL: %s", want, sql)
	}
}

func TestNoFilterHasNoWhere(t *testing.T) {
	m := registerFixtures(t)
	sb, err := m.BuildIndexQuery(nil, 50, 25)
	if err != nil {
		t.Fatalf("BuildIndexQuery: %v", err)
	}
	sql, _, err := sb.ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	if strings.Contains(sql, "WHERE") || strings.Contains(sql, "JOIN") {
		t.Fatalf("unexpected clauses: %s", sql)
	}
	for _, want := range []string{
		"FROM students AS main",
		"main.student_unique_id",
		"main.last_modified_date",
		"ORDER BY main.last_surname, main.id",
		"LIMIT 25",
		"OFFSET 50",
	} {
		if !strings.Contains(sql, want) {
			t.Fatalf("expected %q in SQL: %s", want, sql)
		}
	}
}

func TestBuildWhereClauseRejectsForeignSet(t *testing.T) {
	m := registerFixtures(t)
	set := mustParse(t, m, "lastSurname='x'")
	set.Root = "staff"
	if _, err := m.BuildWhereClause(set); err == nil {
		t.Fatalf("expected error for mismatched root")
	}
}

func TestCountQuery(t *testing.T) {
	m := registerFixtures(t)
	sb, err := m.BuildCountQuery(mustParse(t, m, "birthCountryDescriptor='US'"))
	if err != nil {
		t.Fatalf("BuildCountQuery: %v", err)
	}
	sql, args, err := sb.ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	if !strings.HasPrefix(sql, "SELECT COUNT(*) FROM students AS main LEFT JOIN descriptors") {
		t.Fatalf("unexpected count SQL: %s", sql)
	}
	if strings.Contains(sql, "LIMIT") || strings.Contains(sql, "ORDER BY") {
		t.Fatalf("count must ignore paging: %s", sql)
	}
	if len(args) != 1 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestEscapeLike(t *testing.T) {
	cases := map[string]string{
		"plain":  "plain",
		"a%b":    `a\%b`,
		"a_b":    `a\_b`,
		`back\`:  `back\\`,
		`%_\`:    `\%\_\\`,
	}
	for in, want := range cases {
		if got := escapeLike(in); got != want {
			t.Fatalf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}
