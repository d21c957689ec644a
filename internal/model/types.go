package model

// Model describes one API resource as declared in resources/<name>.yml.
type Model struct {
	Name               string                    `yaml:"-"` // resource name, taken from the file name
	Table              string                    `yaml:"table"`
	Key                string                    `yaml:"key"` // primary key column, "id" if empty
	Order              string                    `yaml:"order"` // column ordering pages before the key
	Relations          map[string]*ModelRelation `yaml:"relations"`
	Fields             []Field                   `yaml:"fields"`
	Filters            map[string]FilterField    `yaml:"filters"`
	UnsupportedFilters []string                  `yaml:"unsupported_filters"`
}

// ModelRelation is a belongs_to hop from the resource table to a lookup
// table. Filters may cross one such hop.
type ModelRelation struct {
	Type  string `yaml:"type"`  // belongs_to
	Table string `yaml:"table"` // related table
	FK    string `yaml:"fk"`    // column on the resource table, <relation>_id by default
	PK    string `yaml:"pk"`    // column on the related table, "id" by default
	Where string `yaml:"where"` // extra join condition, {alias} names the related table
}

// Field maps a table column to the JSON property exposed by the API.
type Field struct {
	Source   string `yaml:"source"`   // column
	Alias    string `yaml:"alias"`    // JSON name, defaults to Source
	Type     string `yaml:"type"`     // string, int (32-bit), decimal, bool, date, datetime, uuid
	Required bool   `yaml:"required"` // must be present on create
	ReadOnly bool   `yaml:"readonly"` // never accepted on create
}

// FilterField declares a filter name and the storage path it resolves to.
type FilterField struct {
	Path      string `yaml:"path"`
	Validator string `yaml:"validator"`
}

type JoinSpec struct {
	Table    string
	Alias    string
	On       string
	JoinType string // "LEFT JOIN", "INNER JOIN", etc.
}

// Columns every resource table carries besides its declared fields.
const (
	LastModifiedColumn = "last_modified_date"
	mainAlias          = "main"
)

// GetKey returns the primary key column.
func (m *Model) GetKey() string {
	if m.Key != "" {
		return m.Key
	}
	return "id"
}

// GetRelation returns the relation by name or nil.
func (m *Model) GetRelation(name string) *ModelRelation {
	if m == nil || m.Relations == nil {
		return nil
	}
	return m.Relations[name]
}

// JSONName is the property name the field is exposed under.
func (f Field) JSONName() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Source
}

// FieldByAlias finds a declared field by its JSON name.
func (m *Model) FieldByAlias(alias string) (Field, bool) {
	for _, f := range m.Fields {
		if f.JSONName() == alias {
			return f, true
		}
	}
	return Field{}, false
}
