// Package account covers the identity lifecycle: logging in and out,
// the signed-in user's own profile, and invitation-based registration.
package account

import (
	"context"
	"net/http"
	"net/url"

	"clinadm/internal/domain/record"
	"clinadm/internal/infrastructure/api"
	"clinadm/internal/infrastructure/session"
	"clinadm/internal/shared/authorization"
	"clinadm/internal/shared/errors"
	"clinadm/internal/shared/logger"
)

// Service wires the token endpoint, the session store, and the profile
// endpoints together.
type Service struct {
	client *api.Client
	store  *session.Store
}

func NewService(client *api.Client, store *session.Store) *Service {
	return &Service{client: client, store: store}
}

// Login exchanges credentials for a token and opens a session. Tokens
// without a role claim get the role resolved from the profile endpoint,
// so UI gating works against any server revision.
func (s *Service) Login(ctx context.Context, username, password string) (*session.Principal, error) {
	token, err := s.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetToken(token); err != nil {
		return nil, err
	}

	principal := s.store.Current()
	if principal == nil {
		return nil, errors.NewUnauthorizedError("session could not be established")
	}

	if principal.Role == "" {
		me, err := s.Me(ctx)
		if err != nil {
			_ = s.store.Clear()
			return nil, err
		}
		role := authorization.ParseUserRole(me.StringValue("role"))
		s.store.SetRole(role)
		principal = s.store.Current()
	}

	logger.Info("signed in", "username", principal.Username, "role", principal.Role)
	return principal, nil
}

// Logout discards the session. Safe to call with no session open.
func (s *Service) Logout() error {
	return s.store.Clear()
}

// Me fetches the signed-in user's own profile.
func (s *Service) Me(ctx context.Context) (record.Record, error) {
	var me record.Record
	if err := s.client.Request(ctx, http.MethodGet, "/users/me", nil, &me); err != nil {
		return nil, err
	}
	return me, nil
}

// UpdateMe submits edits to the signed-in user's own profile. A blank
// password keeps the current one; the payload rules are the same as for
// the admin user form.
func (s *Service) UpdateMe(ctx context.Context, me record.Record) error {
	if err := record.Validate(record.Users, me); err != nil {
		return err
	}
	payload, err := record.BuildPayload(record.Users, me)
	if err != nil {
		return err
	}
	return s.client.Request(ctx, http.MethodPut, "/users/me", &api.RequestOptions{Body: payload}, nil)
}

// ResolveInvitation looks an invitation up by its token. Used before
// registration to pre-fill the invited email and reject spent or
// expired invitations early.
func (s *Service) ResolveInvitation(ctx context.Context, token string) (record.Record, error) {
	if token == "" {
		return nil, errors.NewValidationError("an invitation token is required")
	}
	var invitation record.Record
	if err := s.client.Request(ctx, http.MethodGet, "/invitations/"+token, nil, &invitation); err != nil {
		return nil, err
	}
	return invitation, nil
}

// Register creates an account against an invitation token. The new
// account starts unapproved; an administrator assigns the role.
func (s *Service) Register(ctx context.Context, token string, user record.Record) error {
	if token == "" {
		return errors.NewValidationError("an invitation token is required")
	}
	if err := record.Validate(Registration, user); err != nil {
		return err
	}
	payload, err := record.BuildPayload(Registration, user)
	if err != nil {
		return err
	}

	opts := &api.RequestOptions{
		Params: url.Values{"token": []string{token}},
		Body:   payload,
	}
	return s.client.Request(ctx, http.MethodPost, "/users/", opts, nil)
}

// Registration is the user form as the invitation flow renders it: no
// role field (roles are assigned by an administrator on approval, never
// self-selected) and the invited email locked read-only so the account
// can only be created for the address the invitation was issued to.
var Registration = record.Schema{
	Resource: "users",
	Title:    "Registration",
	Fields:   registrationFields(),
}

func registrationFields() []record.FieldSpec {
	var fields []record.FieldSpec
	for _, f := range record.Users.Fields {
		if f.Name == "role" {
			continue
		}
		if f.Name == "email" {
			f.ReadOnly = true
		}
		fields = append(fields, f)
	}
	return fields
}
