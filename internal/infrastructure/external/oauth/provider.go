package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// NewTrackerConfig builds the OAuth2 configuration for the issue tracker.
// The same config serves the connect flow and the token vault's refreshes.
func NewTrackerConfig(clientID, clientSecret, authURL, tokenURL, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
	}
}

// Provider runs the authorization-code flow against an external service
type Provider struct {
	config *oauth2.Config
}

// NewProvider wraps an OAuth2 config for the connect flow
func NewProvider(config *oauth2.Config) *Provider {
	return &Provider{config: config}
}

// AuthURL returns the authorization URL the operator is redirected to.
// Offline access is requested so the vault receives a refresh token.
func (p *Provider) AuthURL(state string) string {
	return p.config.AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades the authorization code for a token bundle
func (p *Provider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}
