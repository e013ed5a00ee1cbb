package wizard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinadm/internal/infrastructure/api"
	"clinadm/internal/shared/authorization"
	"clinadm/internal/shared/errors"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

// purgeServer fakes the three admin endpoints the wizard touches.
type purgeServer struct {
	knownPatient  string
	adminPassword string
	failDelete    bool

	deleteBodies []map[string]string
}

func (s *purgeServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/admin/find-patient/"+s.knownPatient:
			_, _ = w.Write([]byte(`{"id": 9, "first_name": "Ana", "personal_number": "` + s.knownPatient + `"}`))
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail": "patient not found"}`))
		case r.URL.Path == "/admin/verify-password":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["password"] != s.adminPassword {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail": "wrong password"}`))
				return
			}
			_, _ = w.Write([]byte(`{}`))
		case r.URL.Path == "/admin/delete-patient":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			s.deleteBodies = append(s.deleteBodies, body)
			if s.failDelete {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"detail": "deletion rejected"}`))
				return
			}
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newPurge(t *testing.T, srv *purgeServer, role authorization.UserRole) (*PatientPurge, error) {
	t.Helper()
	server := httptest.NewServer(srv.handler())
	t.Cleanup(server.Close)

	gate, err := authorization.NewGate()
	require.NoError(t, err)

	return NewPatientPurge(api.NewClient(server.URL, staticToken("tok")), gate, role)
}

func TestPurgeIsAdminOnly(t *testing.T) {
	_, err := newPurge(t, &purgeServer{}, authorization.RoleDoctor)
	assert.True(t, errors.IsForbiddenError(err))
}

func TestLookupFailureStaysAtStepOne(t *testing.T) {
	p, err := newPurge(t, &purgeServer{knownPatient: "12345"}, authorization.RoleAdmin)
	require.NoError(t, err)

	err = p.Lookup(context.Background(), "99999")
	assert.True(t, errors.IsNotFoundError(err))
	assert.Equal(t, StepLookup, p.Step())
	assert.Nil(t, p.Target())
}

func TestLookupSuccessAdvances(t *testing.T) {
	p, err := newPurge(t, &purgeServer{knownPatient: "12345"}, authorization.RoleAdmin)
	require.NoError(t, err)

	require.NoError(t, p.Lookup(context.Background(), "12345"))
	assert.Equal(t, StepConfirmIdentity, p.Step())
	assert.Equal(t, "Ana", p.Target().StringValue("first_name"))
}

func TestWrongPasswordStaysAtStepTwo(t *testing.T) {
	p, err := newPurge(t, &purgeServer{knownPatient: "12345", adminPassword: "hunter2"}, authorization.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, p.Lookup(context.Background(), "12345"))

	err = p.ConfirmIdentity(context.Background(), "nope")
	assert.True(t, errors.IsUnauthorizedError(err))
	assert.Equal(t, StepConfirmIdentity, p.Step(), "a wrong password never falls back to lookup")

	require.NoError(t, p.ConfirmIdentity(context.Background(), "hunter2"))
	assert.Equal(t, StepFinalWarning, p.Step())
}

func TestExecuteRequiresAcknowledgement(t *testing.T) {
	srv := &purgeServer{knownPatient: "12345", adminPassword: "hunter2"}
	p, err := newPurge(t, srv, authorization.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, p.Lookup(context.Background(), "12345"))
	require.NoError(t, p.ConfirmIdentity(context.Background(), "hunter2"))

	err = p.Execute(context.Background(), false)
	assert.True(t, errors.IsValidationError(err))
	assert.Empty(t, srv.deleteBodies, "no call without acknowledgement")
	assert.Equal(t, StepFinalWarning, p.Step())
}

func TestExecuteSendsTargetAndPassword(t *testing.T) {
	srv := &purgeServer{knownPatient: "12345", adminPassword: "hunter2"}
	p, err := newPurge(t, srv, authorization.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, p.Lookup(context.Background(), "12345"))
	require.NoError(t, p.ConfirmIdentity(context.Background(), "hunter2"))

	require.NoError(t, p.Execute(context.Background(), true))
	assert.Equal(t, StepDone, p.Step())
	require.Len(t, srv.deleteBodies, 1)
	assert.Equal(t, map[string]string{
		"personal_number": "12345",
		"password":        "hunter2",
	}, srv.deleteBodies[0])
}

func TestExecuteFailureReturnsToIdentityCheck(t *testing.T) {
	srv := &purgeServer{knownPatient: "12345", adminPassword: "hunter2", failDelete: true}
	p, err := newPurge(t, srv, authorization.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, p.Lookup(context.Background(), "12345"))
	require.NoError(t, p.ConfirmIdentity(context.Background(), "hunter2"))

	err = p.Execute(context.Background(), true)
	assert.Error(t, err)
	assert.Equal(t, StepConfirmIdentity, p.Step())
	assert.NotNil(t, p.Target(), "the looked-up target survives the failure")
}
