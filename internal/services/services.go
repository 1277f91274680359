package services

import (
	"context"

	"github.com/desertthunder/tracketl/internal/models"
	"golang.org/x/oauth2"
)

const (
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
	DefaultAPIURL   = "https://api.spotify.com/v1"
)

// Credentials identify the application to the accounts service.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Empty reports whether either half of the pair is missing.
func (c Credentials) Empty() bool {
	return c.ClientID == "" || c.ClientSecret == ""
}

// Authenticator exchanges application credentials for a bearer token.
type Authenticator interface {
	AcquireToken(ctx context.Context, creds Credentials) (*oauth2.Token, error)
}

// Extractor reads the raw track listing of a playlist.
type Extractor interface {
	Extract(ctx context.Context, playlistID string, token *oauth2.Token) (models.RecordSet, error)
}
