// Package admin covers the administrator-only user lifecycle actions
// that sit outside the generic CRUD cycle: approving new registrations,
// blocking accounts, and issuing invitations.
package admin

import (
	"context"
	"fmt"
	"net/http"

	"clinadm/internal/domain/record"
	"clinadm/internal/infrastructure/api"
	"clinadm/internal/shared/authorization"
	"clinadm/internal/shared/errors"
	"clinadm/internal/shared/logger"
)

type Service struct {
	client *api.Client
	gate   *authorization.Gate
	role   authorization.UserRole
}

func NewService(client *api.Client, gate *authorization.Gate, role authorization.UserRole) *Service {
	return &Service{client: client, gate: gate, role: role}
}

// Approve activates a pending registration and assigns its role.
func (s *Service) Approve(ctx context.Context, userID int64, role authorization.UserRole) error {
	if !s.gate.Allowed(s.role, authorization.ObjectUsers, authorization.ActionApprove) {
		return errors.NewForbiddenError("only an administrator can approve users")
	}
	if !role.IsValid() {
		return errors.NewValidationError(fmt.Sprintf("unknown role: %s", role))
	}

	body := map[string]string{"role": role.String()}
	path := fmt.Sprintf("/admin/users/%d/approve", userID)
	if err := s.client.Request(ctx, http.MethodPost, path, &api.RequestOptions{Body: body}, nil); err != nil {
		return err
	}
	logger.Info("user approved", "user_id", userID, "role", role)
	return nil
}

// SetBlocked toggles an account's blocked flag.
func (s *Service) SetBlocked(ctx context.Context, userID int64, blocked bool) error {
	if !s.gate.Allowed(s.role, authorization.ObjectUsers, authorization.ActionBlock) {
		return errors.NewForbiddenError("only an administrator can block users")
	}

	body := map[string]bool{"is_blocked": blocked}
	path := fmt.Sprintf("/admin/users/%d/block", userID)
	if err := s.client.Request(ctx, http.MethodPost, path, &api.RequestOptions{Body: body}, nil); err != nil {
		return err
	}
	logger.Info("user block flag changed", "user_id", userID, "blocked", blocked)
	return nil
}

// Invite issues a registration invitation for an email address and
// returns the created invitation, token included.
func (s *Service) Invite(ctx context.Context, email string) (record.Record, error) {
	if !s.gate.Allowed(s.role, authorization.ObjectInvitations, authorization.ActionInvite) {
		return nil, errors.NewForbiddenError("only an administrator can issue invitations")
	}
	if err := record.Validate(record.Invitations, record.Record{"email": email}); err != nil {
		return nil, err
	}

	var invitation record.Record
	body := map[string]string{"email": email}
	opts := &api.RequestOptions{Body: body}
	if err := s.client.Request(ctx, http.MethodPost, record.Invitations.CollectionPath(), opts, &invitation); err != nil {
		return nil, err
	}
	logger.Info("invitation issued", "email", email)
	return invitation, nil
}
