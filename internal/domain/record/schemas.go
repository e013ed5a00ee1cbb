package record

// The schema table for every resource the console manages. Field order is
// presentation order for both tables and forms.

var Patients = Schema{
	Resource: "patients",
	Title:    "Patients",
	Fields: []FieldSpec{
		{Name: "first_name", Kind: KindText, Required: true},
		{Name: "last_name", Kind: KindText, Required: true},
		{Name: "personal_number", Kind: KindText, Required: true},
		{Name: "birth_date", Kind: KindDate},
		{Name: "phone_number", Kind: KindText},
		{Name: "confidence_score", Kind: KindNumber, Derived: true, Percent: true},
	},
}

var Users = Schema{
	Resource: "admin/users",
	Title:    "Users",
	Fields: []FieldSpec{
		{Name: "first_name", Kind: KindText, Required: true},
		{Name: "last_name", Kind: KindText, Required: true},
		{Name: "email", Kind: KindEmail, Required: true},
		{Name: "phone_number", Kind: KindText, Required: true},
		{Name: "user_name", Kind: KindText, Required: true},
		{Name: "password", Kind: KindPassword, Required: true, Hidden: true},
		{Name: "role", Kind: KindText, Required: true},
	},
}

var Finances = Schema{
	Resource: "finances",
	Title:    "Funding sources",
	Fields: []FieldSpec{
		{Name: "name", Kind: KindText, Required: true},
		{Name: "code", Kind: KindText},
	},
}

var Services = Schema{
	Resource: "services",
	Title:    "Services",
	Fields: []FieldSpec{
		{Name: "name", Kind: KindText, Required: true},
		{Name: "price", Kind: KindNumber},
	},
}

var Invitations = Schema{
	Resource: "admin/invitations",
	Title:    "Invitations",
	Fields: []FieldSpec{
		{Name: "email", Kind: KindEmail, Required: true},
		{Name: "token", Kind: KindText, ReadOnly: true},
		{Name: "expires_at", Kind: KindDateTime},
		{Name: "is_used", Kind: KindCheckbox},
	},
	CreateFields: []string{"email"},
}

// Schemas lists every managed resource, in dashboard order.
func Schemas() []Schema {
	return []Schema{Patients, Users, Finances, Services, Invitations}
}

// SchemaByResource resolves a schema from its resource path.
func SchemaByResource(resource string) (Schema, bool) {
	for _, s := range Schemas() {
		if s.Resource == resource {
			return s, true
		}
	}
	return Schema{}, false
}
