// Spotify Web API response types based on https://developer.spotify.com/documentation/web-api/reference/get-playlists-tracks
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tracketl/internal/models"
	"github.com/desertthunder/tracketl/internal/shared"
	"golang.org/x/oauth2"
)

// SpotifyArtist represents a simplified artist object.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a simplified album object.
type SpotifyAlbum struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	ReleaseDate          string `json:"release_date"`
	ReleaseDatePrecision string `json:"release_date_precision"` // year, month or day
}

// SpotifyTrack represents a full track object.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	Popularity *int            `json:"popularity"`
	URI        string          `json:"uri"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
//
// Track is nil for items the API could not resolve.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPlaylistTracks represents one page of a playlist's items.
type SpotifyPlaylistTracks struct {
	Items    []SpotifyPlaylistTrack `json:"items"`
	Total    int                    `json:"total"`
	Limit    int                    `json:"limit"`
	Offset   int                    `json:"offset"`
	Next     *string                `json:"next"`
	Previous *string                `json:"previous"`
}

// Record converts t to a raw record. Absent values are left empty.
func (t SpotifyTrack) Record() models.Track {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}

	var popularity string
	if t.Popularity != nil {
		popularity = strconv.Itoa(*t.Popularity)
	}

	return models.Track{
		TrackName:   t.Name,
		Artist:      strings.Join(names, ", "),
		Album:       t.Album.Name,
		ReleaseDate: t.Album.ReleaseDate,
		Popularity:  popularity,
	}
}

// SpotifyExtractor implements [Extractor] against the playlist tracks endpoint.
type SpotifyExtractor struct {
	apiURL     string
	httpClient *http.Client
	logger     *log.Logger
}

// NewSpotifyExtractor creates an extractor rooted at apiURL.
//
// An empty apiURL falls back to [DefaultAPIURL] and a nil client to [http.DefaultClient].
func NewSpotifyExtractor(apiURL string, client *http.Client, logger *log.Logger) *SpotifyExtractor {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SpotifyExtractor{apiURL: strings.TrimRight(apiURL, "/"), httpClient: client, logger: logger}
}

// Extract fetches the first page of playlistID's tracks, one record per item in API order.
func (e *SpotifyExtractor) Extract(ctx context.Context, playlistID string, token *oauth2.Token) (models.RecordSet, error) {
	if playlistID == "" {
		return nil, &shared.ExtractionError{Err: fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)}
	}
	if token == nil || token.AccessToken == "" {
		return nil, &shared.ExtractionError{Err: fmt.Errorf("%w: access token", shared.ErrMissingArgument)}
	}

	page, err := e.playlistTracks(ctx, playlistID, token)
	if err != nil {
		return nil, err
	}

	if page.Items == nil {
		return nil, &shared.ExtractionError{StatusCode: http.StatusOK, Err: errors.New("response has no items")}
	}

	if page.Next != nil && *page.Next != "" {
		e.logger.Warn("playlist has more tracks than one page; only the first page was captured",
			"playlist", playlistID, "captured", len(page.Items), "total", page.Total)
	}

	records := make(models.RecordSet, 0, len(page.Items))
	for i, item := range page.Items {
		if item.Track == nil {
			return nil, &shared.ExtractionError{StatusCode: http.StatusOK, Err: fmt.Errorf("item %d has no track", i)}
		}
		records = append(records, item.Track.Record())
	}

	return records, nil
}

// playlistTracks performs the authenticated GET and decodes the page.
func (e *SpotifyExtractor) playlistTracks(ctx context.Context, playlistID string, token *oauth2.Token) (*SpotifyPlaylistTracks, error) {
	endpoint := fmt.Sprintf("%s/playlists/%s/tracks", e.apiURL, url.PathEscape(playlistID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &shared.ExtractionError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	token.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	e.logger.Debug("fetching playlist tracks", "url", endpoint)
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &shared.ExtractionError{Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		e.logger.Debug("catalog request rejected", "status", resp.StatusCode, "body", strings.TrimSpace(string(body)))
		return nil, &shared.ExtractionError{StatusCode: resp.StatusCode}
	}

	var page SpotifyPlaylistTracks
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, &shared.ExtractionError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return &page, nil
}
