package authorization

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Objects the gate knows about. Resource objects match the API resource
// paths so callers can pass a schema's resource name directly.
const (
	ObjectPatients    = "patients"
	ObjectUsers       = "admin/users"
	ObjectFinances    = "finances"
	ObjectServices    = "services"
	ObjectInvitations = "admin/invitations"
	ObjectHistory     = "history"
	ObjectExport      = "export"
)

const (
	ActionView          = "view"
	ActionCreate        = "create"
	ActionEdit          = "edit"
	ActionDelete        = "delete"
	ActionApprove       = "approve"
	ActionBlock         = "block"
	ActionInvite        = "invite"
	ActionRun           = "run"
	ActionAnexEdit      = "anex_edit"
	ActionAnexDeleteRow = "anex_delete_row"
	ActionPurge         = "purge"
)

const gateModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// "clinical" groups every signed-in role; admin-only rows name admin directly.
var gatePolicies = [][]string{
	{"clinical", ObjectPatients, ActionView},
	{"clinical", ObjectPatients, ActionAnexEdit},
	{"clinical", ObjectExport, ActionRun},
	{"admin", ObjectPatients, ActionCreate},
	{"admin", ObjectPatients, ActionEdit},
	{"admin", ObjectPatients, ActionDelete},
	{"admin", ObjectPatients, ActionAnexDeleteRow},
	{"admin", ObjectPatients, ActionPurge},
	{"admin", ObjectUsers, ActionView},
	{"admin", ObjectUsers, ActionCreate},
	{"admin", ObjectUsers, ActionEdit},
	{"admin", ObjectUsers, ActionDelete},
	{"admin", ObjectUsers, ActionApprove},
	{"admin", ObjectUsers, ActionBlock},
	{"admin", ObjectFinances, ActionView},
	{"admin", ObjectFinances, ActionCreate},
	{"admin", ObjectFinances, ActionEdit},
	{"admin", ObjectFinances, ActionDelete},
	{"admin", ObjectServices, ActionView},
	{"admin", ObjectServices, ActionCreate},
	{"admin", ObjectServices, ActionEdit},
	{"admin", ObjectServices, ActionDelete},
	{"admin", ObjectInvitations, ActionView},
	{"admin", ObjectInvitations, ActionCreate},
	{"admin", ObjectInvitations, ActionEdit},
	{"admin", ObjectInvitations, ActionDelete},
	{"admin", ObjectInvitations, ActionInvite},
	{"admin", ObjectHistory, ActionView},
}

var gateGroups = [][]string{
	{"admin", "clinical"},
	{"doctor", "clinical"},
	{"staff", "clinical"},
}

// Gate decides which actions the UI offers for a given role. It is a
// rendering concern only: the server remains the authorization boundary,
// and a stale client is still rejected there.
type Gate struct {
	enforcer *casbin.Enforcer
}

func NewGate() (*Gate, error) {
	m, err := model.NewModelFromString(gateModel)
	if err != nil {
		return nil, fmt.Errorf("parse gate model: %w", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	if _, err := e.AddPolicies(gatePolicies); err != nil {
		return nil, fmt.Errorf("load gate policies: %w", err)
	}
	if _, err := e.AddGroupingPolicies(gateGroups); err != nil {
		return nil, fmt.Errorf("load gate groups: %w", err)
	}

	return &Gate{enforcer: e}, nil
}

// Allowed reports whether the role may see the given action for the object.
func (g *Gate) Allowed(role UserRole, object, action string) bool {
	ok, err := g.enforcer.Enforce(role.String(), object, action)
	if err != nil {
		return false
	}
	return ok
}
