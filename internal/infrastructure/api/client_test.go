package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinadm/internal/shared/errors"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestRequestAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, staticToken("tok123"))
	require.NoError(t, client.Request(context.Background(), http.MethodGet, "/patients/", nil, nil))
	assert.Equal(t, "Bearer tok123", gotAuth)
}

func TestRequestSkipsAuthWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, staticToken(""))
	require.NoError(t, client.Request(context.Background(), http.MethodGet, "/invitations/abc", nil, nil))
	assert.Empty(t, gotAuth)
}

func TestRequestExtractsDetailMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Patient with this personal number already exists."}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	err := client.Request(context.Background(), http.MethodPost, "/patients/", nil, nil)

	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.True(t, errors.IsValidationError(err))
	assert.Equal(t, "Patient with this personal number already exists.", appErr.Message)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestRequestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"401 maps to unauthorized", http.StatusUnauthorized, errors.IsUnauthorizedError},
		{"403 maps to forbidden", http.StatusForbidden, errors.IsForbiddenError},
		{"404 maps to not found", http.StatusNotFound, errors.IsNotFoundError},
		{"429 maps to rate limited", http.StatusTooManyRequests, errors.IsRateLimitedError},
		{"422 maps to validation", http.StatusUnprocessableEntity, errors.IsValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := NewClient(srv.URL, nil)
			err := client.Request(context.Background(), http.MethodGet, "/x", nil, nil)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

func TestRequestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	client := NewClient(srv.URL, nil)
	err := client.Request(context.Background(), http.MethodGet, "/patients/", nil, nil)
	assert.True(t, errors.IsNetworkError(err))
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		if r.FormValue("username") == "ana" && r.FormValue("password") == "pw" {
			w.Write([]byte(`{"access_token":"tok","token_type":"bearer"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Incorrect username or password"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)

	token, err := client.Login(context.Background(), "ana", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	_, err = client.Login(context.Background(), "ana", "wrong")
	assert.True(t, errors.IsUnauthorizedError(err))
}

func TestLoginRateLimitedIsDistinct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"detail":"Too Many Requests"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	_, err := client.Login(context.Background(), "ana", "pw")

	assert.True(t, errors.IsRateLimitedError(err))
	assert.False(t, errors.IsUnauthorizedError(err))
}

func TestDownloadRecoversFilename(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="patients_2026-08-28.csv"`)
		w.Write([]byte("first_name,last_name\nAna,Doe\n"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, staticToken("tok"))
	data, filename, err := client.Download(context.Background(), "/export/data", url.Values{"destination": {"paris"}})
	require.NoError(t, err)
	assert.Equal(t, "patients_2026-08-28.csv", filename)
	assert.Contains(t, string(data), "Ana")
}

func TestDownloadWithoutDisposition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("a,b\n"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	_, filename, err := client.Download(context.Background(), "/export/data", nil)
	require.NoError(t, err)
	assert.Empty(t, filename)
}
