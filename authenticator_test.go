package sso_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sso "github.com/flowersso/go-sso"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBearerToken(t *testing.T) *sso.Token {
	t.Helper()
	token, err := sso.NewToken(strings.Repeat("x", 300))
	require.NoError(t, err)
	return token
}

func TestNewRemoteAuthenticator(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		wantErr  bool
	}{
		{
			name:     "Valid http endpoint",
			endpoint: "http://auth.internal:8080/api/auth/verify",
		},
		{
			name:     "Valid https endpoint",
			endpoint: "https://auth.internal/api/auth/verify",
		},
		{
			name:     "Relative url is rejected",
			endpoint: "auth/verify",
			wantErr:  true,
		},
		{
			name:     "Unsupported scheme is rejected",
			endpoint: "ftp://auth.internal/verify",
			wantErr:  true,
		},
		{
			name:     "Garbage is rejected",
			endpoint: "://not-a-url",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authenticator, err := sso.NewRemoteAuthenticator(tt.endpoint)

			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, sso.IsAuthenticationError(err))
				assert.Nil(t, authenticator)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, authenticator)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	t.Run("201 response resolves credentials", func(t *testing.T) {
		var received map[string]string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{
				"id": 7,
				"fName": "Jane",
				"lName": "Doe",
				"title": "Engineer",
				"dept": "Platform",
				"loc": "Boise"
			}`))
		}))
		defer server.Close()

		authenticator, err := sso.NewRemoteAuthenticator(server.URL)
		require.NoError(t, err)

		token := validBearerToken(t)
		credentials, err := authenticator.Authenticate(context.Background(), token)
		require.NoError(t, err)

		assert.Equal(t, token.Value(), received["token"])
		assert.Equal(t, int64(7), credentials.ID)
		assert.Equal(t, "Jane", credentials.FirstName)
		assert.Equal(t, "Doe", credentials.LastName)
		assert.Equal(t, "Engineer", credentials.Title)
		assert.Equal(t, "Platform", credentials.Department)
		assert.Equal(t, "Boise", credentials.Location)
	})

	t.Run("Nil token is rejected", func(t *testing.T) {
		authenticator, err := sso.NewRemoteAuthenticator("http://auth.internal/verify")
		require.NoError(t, err)

		_, err = authenticator.Authenticate(context.Background(), nil)
		assert.Error(t, err)
		assert.True(t, sso.IsAuthenticationError(err))
	})

	t.Run("Non-201 status is an authentication error", func(t *testing.T) {
		for _, status := range []int{http.StatusOK, http.StatusUnauthorized, http.StatusInternalServerError} {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))

			authenticator, err := sso.NewRemoteAuthenticator(server.URL)
			require.NoError(t, err)

			_, err = authenticator.Authenticate(context.Background(), validBearerToken(t))
			assert.Error(t, err)
			assert.True(t, sso.IsAuthenticationError(err))

			server.Close()
		}
	})

	t.Run("Transport failure is an authentication error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		authenticator, err := sso.NewRemoteAuthenticator(server.URL)
		require.NoError(t, err)

		server.Close()

		_, err = authenticator.Authenticate(context.Background(), validBearerToken(t))
		assert.Error(t, err)
		assert.True(t, sso.IsAuthenticationError(err))
	})

	t.Run("Empty credentials payload is rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		authenticator, err := sso.NewRemoteAuthenticator(server.URL)
		require.NoError(t, err)

		_, err = authenticator.Authenticate(context.Background(), validBearerToken(t))
		assert.ErrorIs(t, err, sso.ErrEmptyIdentity)
	})

	t.Run("Unparseable payload is rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		authenticator, err := sso.NewRemoteAuthenticator(server.URL)
		require.NoError(t, err)

		_, err = authenticator.Authenticate(context.Background(), validBearerToken(t))
		assert.Error(t, err)
		assert.True(t, sso.IsAuthenticationError(err))
	})

	t.Run("Profile fields are sanitized on the way in", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{
				"id": 7,
				"fName": "<script>alert(1)</script>Jane",
				"lName": "Doe",
				"title": "Engineer",
				"dept": "Platform",
				"loc": "Boise"
			}`))
		}))
		defer server.Close()

		authenticator, err := sso.NewRemoteAuthenticator(server.URL)
		require.NoError(t, err)

		credentials, err := authenticator.Authenticate(context.Background(), validBearerToken(t))
		require.NoError(t, err)
		assert.Equal(t, "Jane", credentials.FirstName)
	})
}
