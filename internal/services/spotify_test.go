package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/tracketl/internal/shared"
	"golang.org/x/oauth2"
)

const playlistPage = `{
  "items": [
    {"added_at": "2024-01-01T00:00:00Z", "track": {
      "id": "1", "name": "Track A",
      "artists": [{"id": "x", "name": "Artist X"}],
      "album": {"name": "Album P", "release_date": "2020-05-01", "release_date_precision": "day"},
      "popularity": 50
    }},
    {"added_at": "2024-01-01T00:00:00Z", "track": {
      "id": "2", "name": "Collab",
      "artists": [{"id": "x", "name": "Artist X"}, {"id": "y", "name": "Artist Y"}],
      "album": {"name": "Album Q", "release_date": "2019", "release_date_precision": "year"},
      "popularity": 0
    }},
    {"added_at": "2024-01-01T00:00:00Z", "track": {
      "id": "3", "name": "No Score",
      "artists": [],
      "album": {"name": "Album R"}
    }}
  ],
  "total": 3,
  "limit": 100,
  "offset": 0,
  "next": null,
  "previous": null
}`

func newCatalogServer(t *testing.T, status int, body string) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestSpotifyExtractor(t *testing.T) {
	token := &oauth2.Token{AccessToken: "abc123", TokenType: "Bearer"}
	logger := shared.NewLogger(io.Discard)

	t.Run("NewSpotifyExtractor defaults", func(t *testing.T) {
		e := NewSpotifyExtractor("", nil, nil)
		if e.apiURL != DefaultAPIURL {
			t.Errorf("expected default API URL, got %s", e.apiURL)
		}
		if e.httpClient != http.DefaultClient {
			t.Error("expected http.DefaultClient to be used")
		}
	})

	t.Run("Requests playlist tracks with bearer token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("expected GET method, got %s", r.Method)
			}
			if r.URL.Path != "/playlists/37i9dQZF1DXcBWIGoYBM5M/tracks" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer abc123" {
				t.Errorf("expected bearer authorization, got %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, playlistPage)
		}))
		defer server.Close()

		e := NewSpotifyExtractor(server.URL+"/", server.Client(), logger)
		records, err := e.Extract(context.Background(), "37i9dQZF1DXcBWIGoYBM5M", token)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected 3 records, got %d", len(records))
		}

		first := records[0]
		if first.TrackName != "Track A" || first.Artist != "Artist X" || first.Album != "Album P" {
			t.Errorf("unexpected first record %+v", first)
		}
		if first.ReleaseDate != "2020-05-01" || first.Popularity != "50" {
			t.Errorf("unexpected first record date/popularity %+v", first)
		}
	})

	t.Run("Mapping", func(t *testing.T) {
		server, _ := newCatalogServer(t, http.StatusOK, playlistPage)
		e := NewSpotifyExtractor(server.URL, server.Client(), logger)
		records, err := e.Extract(context.Background(), "p", token)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		t.Run("Multiple artists are joined", func(t *testing.T) {
			if records[1].Artist != "Artist X, Artist Y" {
				t.Errorf("expected joined artists, got %q", records[1].Artist)
			}
		})

		t.Run("Zero popularity is kept", func(t *testing.T) {
			if records[1].Popularity != "0" {
				t.Errorf("expected popularity 0, got %q", records[1].Popularity)
			}
		})

		t.Run("Absent values are empty", func(t *testing.T) {
			r := records[2]
			if r.Artist != "" || r.ReleaseDate != "" || r.Popularity != "" {
				t.Errorf("expected empty artist, date and popularity, got %+v", r)
			}
		})
	})

	t.Run("Empty playlist", func(t *testing.T) {
		server, _ := newCatalogServer(t, http.StatusOK, `{"items": [], "total": 0, "next": null}`)
		e := NewSpotifyExtractor(server.URL, server.Client(), logger)
		records, err := e.Extract(context.Background(), "p", token)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected no records, got %d", len(records))
		}
	})

	t.Run("Next page is logged", func(t *testing.T) {
		var buf bytes.Buffer
		server, calls := newCatalogServer(t, http.StatusOK,
			`{"items": [], "total": 250, "next": "https://api.spotify.com/v1/playlists/p/tracks?offset=100"}`)

		e := NewSpotifyExtractor(server.URL, server.Client(), shared.NewLogger(&buf))
		if _, err := e.Extract(context.Background(), "p", token); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if *calls != 1 {
			t.Errorf("expected a single request, got %d", *calls)
		}
		if !strings.Contains(buf.String(), "first page") {
			t.Errorf("expected a warning about the first page, got %q", buf.String())
		}
	})

	t.Run("Errors", func(t *testing.T) {
		tt := []struct {
			name   string
			status int
			body   string
			code   int
		}{
			{name: "Not found", status: http.StatusNotFound, body: `{"error":{"status":404}}`, code: http.StatusNotFound},
			{name: "Unauthorized", status: http.StatusUnauthorized, body: `{}`, code: http.StatusUnauthorized},
			{name: "Missing items", status: http.StatusOK, body: `{"total": 0}`, code: http.StatusOK},
			{name: "Null track", status: http.StatusOK, body: `{"items": [{"track": null}]}`, code: http.StatusOK},
			{name: "Malformed body", status: http.StatusOK, body: `{"items": [`, code: http.StatusOK},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				server, _ := newCatalogServer(t, tc.status, tc.body)
				e := NewSpotifyExtractor(server.URL, server.Client(), logger)

				records, err := e.Extract(context.Background(), "p", token)
				if records != nil {
					t.Error("expected no records")
				}
				if !errors.Is(err, shared.ErrExtractionFailed) {
					t.Fatalf("expected ErrExtractionFailed, got %v", err)
				}
				if shared.StatusCode(err) != tc.code {
					t.Errorf("expected status %d, got %d", tc.code, shared.StatusCode(err))
				}
			})
		}
	})

	t.Run("Invalid arguments make no request", func(t *testing.T) {
		server, calls := newCatalogServer(t, http.StatusOK, playlistPage)
		e := NewSpotifyExtractor(server.URL, server.Client(), logger)

		if _, err := e.Extract(context.Background(), "", token); !errors.Is(err, shared.ErrExtractionFailed) {
			t.Errorf("expected ErrExtractionFailed for empty playlist id, got %v", err)
		}
		if _, err := e.Extract(context.Background(), "p", nil); !errors.Is(err, shared.ErrExtractionFailed) {
			t.Errorf("expected ErrExtractionFailed for nil token, got %v", err)
		}
		if _, err := e.Extract(context.Background(), "p", &oauth2.Token{}); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument for empty token, got %v", err)
		}
		if *calls != 0 {
			t.Errorf("expected no requests, got %d", *calls)
		}
	})
}
