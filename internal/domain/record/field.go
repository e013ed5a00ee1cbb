package record

import "fmt"

// FieldKind is the input kind of a field, mirroring the form input types
// the admin panel renders.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindEmail    FieldKind = "email"
	KindNumber   FieldKind = "number"
	KindDate     FieldKind = "date"
	KindDateTime FieldKind = "datetime"
	KindCheckbox FieldKind = "checkbox"
	KindPassword FieldKind = "password"
)

// FieldSpec describes one field of a resource.
//
//   - Required applies to form validation; passwords are only required on create.
//   - Hidden fields never appear in tables (passwords).
//   - ReadOnly fields are rendered disabled and skipped by required checks.
//   - Derived fields are server-computed: shown in tables, absent from forms.
//   - Percent renders a 0..1 number as a two-decimal percentage.
type FieldSpec struct {
	Name     string
	Kind     FieldKind
	Required bool
	Hidden   bool
	ReadOnly bool
	Derived  bool
	Percent  bool
}

// Schema binds a resource path to its ordered field descriptors.
type Schema struct {
	Resource string
	Title    string
	Fields   []FieldSpec

	// CreateFields, when set, restricts create payloads to the named
	// fields (an invitation is created from its email alone).
	CreateFields []string
}

// Field looks up a descriptor by name.
func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// TableFields returns the fields rendered as table columns, in order.
func (s Schema) TableFields() []FieldSpec {
	fields := make([]FieldSpec, 0, len(s.Fields))
	for _, f := range s.Fields {
		if !f.Hidden {
			fields = append(fields, f)
		}
	}
	return fields
}

// FormFields returns the fields a create/edit form prompts for, in order.
func (s Schema) FormFields() []FieldSpec {
	fields := make([]FieldSpec, 0, len(s.Fields))
	for _, f := range s.Fields {
		if !f.Derived {
			fields = append(fields, f)
		}
	}
	return fields
}

// CollectionPath returns the list/create endpoint (trailing slash, as the
// API expects).
func (s Schema) CollectionPath() string {
	return "/" + s.Resource + "/"
}

// ElementPath returns the endpoint of one record.
func (s Schema) ElementPath(id int64) string {
	return fmt.Sprintf("/%s/%d", s.Resource, id)
}
