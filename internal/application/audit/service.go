// Package audit exposes the read-only audit log view.
package audit

import (
	"context"
	"net/http"

	"clinadm/internal/domain/history"
	"clinadm/internal/infrastructure/api"
	"clinadm/internal/shared/authorization"
	"clinadm/internal/shared/errors"
)

type Service struct {
	client *api.Client
	gate   *authorization.Gate
	role   authorization.UserRole
}

func NewService(client *api.Client, gate *authorization.Gate, role authorization.UserRole) *Service {
	return &Service{client: client, gate: gate, role: role}
}

// List fetches the audit log, newest first as the server returns it.
// Blank filter values never reach the query.
func (s *Service) List(ctx context.Context, filter history.Filter) ([]history.Entry, error) {
	if !s.gate.Allowed(s.role, authorization.ObjectHistory, authorization.ActionView) {
		return nil, errors.NewForbiddenError("only an administrator can view the audit log")
	}

	var entries []history.Entry
	opts := &api.RequestOptions{Params: filter.Values()}
	if err := s.client.Request(ctx, http.MethodGet, "/history/", opts, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
