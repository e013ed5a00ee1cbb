package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinadm/internal/domain/history"
	"clinadm/internal/infrastructure/api"
	"clinadm/internal/shared/authorization"
	"clinadm/internal/shared/errors"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

const logBody = `[
  {"timestamp": "2026-08-01T10:00:00Z", "actor": "admin", "action": "UPDATE",
   "entity_type": "patient", "entity_id": 9, "patient": "12345",
   "changes": {"phone_number": {"old": "111", "new": "222"}}},
  {"timestamp": "2026-08-01T09:00:00Z", "actor": null, "action": "DELETE",
   "entity_type": "user", "entity_id": 4, "patient": null,
   "changes": {"user_name": "olduser"}}
]`

func newAuditService(t *testing.T, role authorization.UserRole) (*Service, *[]string) {
	t.Helper()

	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(logBody))
	}))
	t.Cleanup(server.Close)

	gate, err := authorization.NewGate()
	require.NoError(t, err)

	return NewService(api.NewClient(server.URL, staticToken("tok")), gate, role), &queries
}

func TestListDecodesEntries(t *testing.T) {
	svc, queries := newAuditService(t, authorization.RoleAdmin)

	entries, err := svc.List(context.Background(), history.Filter{Author: "admin"})
	require.NoError(t, err)
	assert.Equal(t, []string{"author=admin"}, *queries)
	require.Len(t, entries, 2)

	assert.Equal(t, "admin", entries[0].ActorLabel())
	set, err := entries[0].ChangeSet()
	require.NoError(t, err)
	assert.Equal(t, "222", set["phone_number"].New)

	assert.Equal(t, "(deleted user)", entries[1].ActorLabel())
	set, err = entries[1].ChangeSet()
	require.NoError(t, err)
	assert.Equal(t, "olduser", set["user_name"].Old)
}

func TestListIsAdminOnly(t *testing.T) {
	svc, queries := newAuditService(t, authorization.RoleDoctor)

	_, err := svc.List(context.Background(), history.Filter{})
	assert.True(t, errors.IsForbiddenError(err))
	assert.Empty(t, *queries)
}
