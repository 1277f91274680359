package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tracketl/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// SpotifyAuthenticator implements [Authenticator] with the client credentials grant.
type SpotifyAuthenticator struct {
	tokenURL   string
	httpClient *http.Client
	logger     *log.Logger
}

// NewSpotifyAuthenticator creates an authenticator that posts to tokenURL.
//
// An empty tokenURL falls back to [DefaultTokenURL] and a nil client to [http.DefaultClient].
func NewSpotifyAuthenticator(tokenURL string, client *http.Client, logger *log.Logger) *SpotifyAuthenticator {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SpotifyAuthenticator{tokenURL: tokenURL, httpClient: client, logger: logger}
}

// AcquireToken requests a bearer token for creds.
//
// The returned token always has a non-empty access token.
func (a *SpotifyAuthenticator) AcquireToken(ctx context.Context, creds Credentials) (*oauth2.Token, error) {
	if creds.Empty() {
		return nil, fmt.Errorf("%w: client id and secret are required", shared.ErrMissingCredentials)
	}

	config := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     a.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)

	a.logger.Debug("requesting access token", "url", a.tokenURL)
	token, err := config.Token(ctx)
	if err != nil {
		return nil, authError(err)
	}

	if token == nil || token.AccessToken == "" {
		return nil, &shared.AuthenticationError{Err: errors.New("response missing access_token")}
	}

	a.logger.Debug("access token acquired", "type", token.Type(), "expiry", token.Expiry)
	return token, nil
}

func authError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		authErr := &shared.AuthenticationError{Err: err, Body: strings.TrimSpace(string(retrieveErr.Body))}
		if retrieveErr.Response != nil {
			authErr.StatusCode = retrieveErr.Response.StatusCode
		}
		return authErr
	}
	return &shared.AuthenticationError{Err: err}
}
