// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/tracketl/internal/models"
	"github.com/desertthunder/tracketl/internal/services"
	"github.com/desertthunder/tracketl/internal/shared"
	"golang.org/x/oauth2"
)

// MockAuthenticator is a test double for [services.Authenticator]
type MockAuthenticator struct {
	Token *oauth2.Token
	Err   error
	Calls int
	Creds services.Credentials
}

func (m *MockAuthenticator) AcquireToken(ctx context.Context, creds services.Credentials) (*oauth2.Token, error) {
	m.Calls++
	m.Creds = creds
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Token == nil {
		return &oauth2.Token{AccessToken: "test-token", TokenType: "Bearer"}, nil
	}
	return m.Token, nil
}

// MockExtractor is a test double for [services.Extractor]
type MockExtractor struct {
	Records    models.RecordSet
	Err        error
	Calls      int
	PlaylistID string
	Token      *oauth2.Token
}

func (m *MockExtractor) Extract(ctx context.Context, playlistID string, token *oauth2.Token) (models.RecordSet, error) {
	m.Calls++
	m.PlaylistID = playlistID
	m.Token = token
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Records, nil
}

// MockLoader is a test double for repositories.Loader
type MockLoader struct {
	Err   error
	Calls int
	Rows  models.CleanRecordSet
	Dest  shared.DestinationConfig
}

func (m *MockLoader) Load(ctx context.Context, rows models.CleanRecordSet, dest shared.DestinationConfig) (int, error) {
	m.Calls++
	m.Rows = rows
	m.Dest = dest
	if m.Err != nil {
		return 0, m.Err
	}
	return len(rows), nil
}

// MockRecorder is an in-memory run history
type MockRecorder struct {
	mu        sync.Mutex
	CreateErr error
	UpdateErr error
	Created   int
	Updated   int
	Last      models.Run
}

func (m *MockRecorder) Create(run *models.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Created++
	run.SetID(shared.GenerateID())
	run.Sequence = m.Created
	m.Last = *run
	return nil
}

func (m *MockRecorder) Update(run *models.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.Updated++
	m.Last = *run
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
