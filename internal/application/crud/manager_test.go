package crud

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinadm/internal/domain/record"
	"clinadm/internal/infrastructure/api"
	"clinadm/internal/shared/authorization"
	"clinadm/internal/shared/errors"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type capturedCall struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

// newTestManager spins up a capture server: writes are recorded, reads
// return an empty collection so re-fetches succeed.
func newTestManager(t *testing.T, schema record.Schema, role authorization.UserRole, filters ...FilterSpec) (*Manager, *[]capturedCall) {
	t.Helper()

	var calls []capturedCall
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := capturedCall{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &call.Body)
		}
		calls = append(calls, call)

		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`[{"id": 1, "first_name": "Ana"}]`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	gate, err := authorization.NewGate()
	require.NoError(t, err)

	client := api.NewClient(server.URL, staticToken("tok"))
	return NewManager(client, schema, gate, role, filters...), &calls
}

func TestSaveNewRecordPostsExactFields(t *testing.T) {
	m, calls := newTestManager(t, record.Patients, authorization.RoleAdmin)

	err := m.Save(context.Background(), record.Record{
		"first_name":      "Ana",
		"last_name":       "Doe",
		"personal_number": "12345",
	})
	require.NoError(t, err)

	require.Len(t, *calls, 2, "save then re-fetch")
	post := (*calls)[0]
	assert.Equal(t, http.MethodPost, post.Method)
	assert.Equal(t, "/patients/", post.Path)
	assert.Equal(t, map[string]any{
		"first_name":      "Ana",
		"last_name":       "Doe",
		"personal_number": "12345",
	}, post.Body)

	assert.Equal(t, http.MethodGet, (*calls)[1].Method)
	assert.Len(t, m.Records(), 1, "list refreshed after save")
}

func TestSaveExistingRecordPutsWithoutBlankPassword(t *testing.T) {
	m, calls := newTestManager(t, record.Users, authorization.RoleAdmin)

	err := m.Save(context.Background(), record.Record{
		"id":           float64(7),
		"first_name":   "A",
		"last_name":    "B",
		"email":        "a@b.co",
		"phone_number": "1",
		"user_name":    "ab",
		"password":     "",
		"role":         "staff",
	})
	require.NoError(t, err)

	put := (*calls)[0]
	assert.Equal(t, http.MethodPut, put.Method)
	assert.Equal(t, "/admin/users/7", put.Path)
	_, present := put.Body["password"]
	assert.False(t, present, "blank password must not travel on update")
	_, present = put.Body["id"]
	assert.False(t, present, "id travels in the path, not the body")
}

func TestSaveValidationFailureMakesNoCall(t *testing.T) {
	m, calls := newTestManager(t, record.Patients, authorization.RoleAdmin)

	err := m.Save(context.Background(), record.Record{"first_name": "Ana"})
	assert.True(t, errors.IsValidationError(err))
	assert.Empty(t, *calls)
}

func TestDependentFilterReset(t *testing.T) {
	m, _ := newTestManager(t, record.Patients, authorization.RoleAdmin,
		FilterSpec{Name: "finance", Resets: []string{"service"}},
		FilterSpec{Name: "service"},
	)

	require.NoError(t, m.SetFilter("finance", "fund-a"))
	require.NoError(t, m.SetFilter("service", "xray"))
	require.NoError(t, m.SetFilter("finance", "fund-b"))

	assert.Equal(t, "", m.Filter("service"), "narrowing the scope clears the dependent filter")
	query := m.Query()
	assert.Equal(t, "fund-b", query.Get("finance"))
	_, present := query["service"]
	assert.False(t, present)

	assert.Error(t, m.SetFilter("nope", "x"))
}

func TestFetchSendsActiveFilters(t *testing.T) {
	m, calls := newTestManager(t, record.Patients, authorization.RoleStaff,
		FilterSpec{Name: "finance"},
	)
	require.NoError(t, m.SetFilter("finance", "fund-a"))

	require.NoError(t, m.Fetch(context.Background()))
	assert.Equal(t, "finance=fund-a", (*calls)[0].Query)
	assert.Len(t, m.Records(), 1)
}

func TestDeleteIsAdminOnly(t *testing.T) {
	rec := record.Record{"id": float64(5)}

	staff, staffCalls := newTestManager(t, record.Patients, authorization.RoleStaff)
	err := staff.Delete(context.Background(), rec, func() bool { return true })
	assert.True(t, errors.IsForbiddenError(err))
	assert.Empty(t, *staffCalls)

	admin, adminCalls := newTestManager(t, record.Patients, authorization.RoleAdmin)

	require.NoError(t, admin.Delete(context.Background(), rec, func() bool { return false }))
	assert.Empty(t, *adminCalls, "declined confirmation makes no call")

	require.NoError(t, admin.Delete(context.Background(), rec, func() bool { return true }))
	require.Len(t, *adminCalls, 2)
	assert.Equal(t, http.MethodDelete, (*adminCalls)[0].Method)
	assert.Equal(t, "/patients/5", (*adminCalls)[0].Path)
	assert.Equal(t, http.MethodGet, (*adminCalls)[1].Method)
}

func TestDeleteUnsavedRecordRejected(t *testing.T) {
	m, calls := newTestManager(t, record.Patients, authorization.RoleAdmin)
	err := m.Delete(context.Background(), record.Record{}, nil)
	assert.True(t, errors.IsValidationError(err))
	assert.Empty(t, *calls)
}
