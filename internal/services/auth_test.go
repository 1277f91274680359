package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/tracketl/internal/shared"
)

func newTokenServer(t *testing.T, status int, body any) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestSpotifyAuthenticator(t *testing.T) {
	creds := Credentials{ClientID: "test_client_id", ClientSecret: "test_client_secret"}
	logger := shared.NewLogger(io.Discard)

	t.Run("NewSpotifyAuthenticator defaults", func(t *testing.T) {
		a := NewSpotifyAuthenticator("", nil, nil)
		if a.tokenURL != DefaultTokenURL {
			t.Errorf("expected default token URL, got %s", a.tokenURL)
		}
		if a.httpClient != http.DefaultClient {
			t.Error("expected http.DefaultClient to be used")
		}
	})

	t.Run("Sends client credentials grant", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST method, got %s", r.Method)
			}
			user, pass, ok := r.BasicAuth()
			if !ok {
				t.Error("expected basic authorization header")
			}
			if user != creds.ClientID || pass != creds.ClientSecret {
				t.Errorf("unexpected basic credentials %q:%q", user, pass)
			}
			if err := r.ParseForm(); err != nil {
				t.Fatalf("failed to parse form: %v", err)
			}
			if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
				t.Errorf("expected grant_type client_credentials, got %q", got)
			}
			if r.PostForm.Get("client_secret") != "" {
				t.Error("client secret must not be sent in the body")
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "abc123",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		}))
		defer server.Close()

		a := NewSpotifyAuthenticator(server.URL, server.Client(), logger)
		token, err := a.AcquireToken(context.Background(), creds)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token.AccessToken != "abc123" {
			t.Errorf("expected access token abc123, got %s", token.AccessToken)
		}
		if token.Type() != "Bearer" {
			t.Errorf("expected Bearer token type, got %s", token.Type())
		}
	})

	t.Run("Rejected credentials", func(t *testing.T) {
		server, calls := newTokenServer(t, http.StatusBadRequest, map[string]string{
			"error":             "invalid_client",
			"error_description": "Invalid client secret",
		})

		a := NewSpotifyAuthenticator(server.URL, server.Client(), logger)
		token, err := a.AcquireToken(context.Background(), creds)
		if token != nil {
			t.Error("expected no token")
		}
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Fatalf("expected ErrAuthFailed, got %v", err)
		}

		var authErr *shared.AuthenticationError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected *shared.AuthenticationError, got %T", err)
		}
		if authErr.StatusCode != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", authErr.StatusCode)
		}
		if !strings.Contains(authErr.Body, "invalid_client") {
			t.Errorf("expected response body to be kept, got %q", authErr.Body)
		}
		if *calls != 1 {
			t.Errorf("expected exactly one request, got %d", *calls)
		}
	})

	t.Run("Missing access token", func(t *testing.T) {
		server, _ := newTokenServer(t, http.StatusOK, map[string]any{"token_type": "Bearer", "expires_in": 3600})

		a := NewSpotifyAuthenticator(server.URL, server.Client(), logger)
		_, err := a.AcquireToken(context.Background(), creds)
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("Transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		a := NewSpotifyAuthenticator(url, nil, logger)
		_, err := a.AcquireToken(context.Background(), creds)
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
		if shared.StatusCode(err) != 0 {
			t.Errorf("expected no status for transport failure, got %d", shared.StatusCode(err))
		}
	})

	t.Run("Missing credentials", func(t *testing.T) {
		server, calls := newTokenServer(t, http.StatusOK, map[string]any{"access_token": "abc"})
		a := NewSpotifyAuthenticator(server.URL, server.Client(), logger)

		tt := []Credentials{
			{},
			{ClientID: "id"},
			{ClientSecret: "secret"},
		}
		for _, c := range tt {
			_, err := a.AcquireToken(context.Background(), c)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials for %+v, got %v", c, err)
			}
		}
		if *calls != 0 {
			t.Errorf("expected no requests, got %d", *calls)
		}
	})
}
