// Package auth runs the Google OAuth2 web flow and keeps session tokens fresh.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"tasklr/internal/backend/googletasks"
	"tasklr/internal/service"
	"tasklr/internal/session"
)

// RefreshWindow is how close to expiry a token gets refreshed.
const RefreshWindow = 5 * time.Minute

// ErrRefreshFailed means the session token could not be renewed.
var ErrRefreshFailed = errors.New("token refresh failed")

// Scopes requested by the web flow.
var Scopes = []string{tasks.TasksScope, oauth2api.UserinfoProfileScope}

// ServiceFactory builds the per-request task service from a session token.
type ServiceFactory func(ctx context.Context, token *oauth2.Token) (service.Service, error)

// GoogleTasksFactory is the ServiceFactory backed by the Google Tasks API.
func GoogleTasksFactory(ctx context.Context, token *oauth2.Token) (service.Service, error) {
	return googletasks.New(ctx, oauth2.StaticTokenSource(token))
}

// Provider wraps the OAuth2 client configuration of the web flow.
type Provider struct {
	oauth         *oauth2.Config
	apiEndpoint   string
	refreshWindow time.Duration
	now           func() time.Time
}

// Option configures a Provider.
type Option func(*Provider)

// WithEndpoint replaces Google's authorization and token endpoints.
func WithEndpoint(ep oauth2.Endpoint) Option {
	return func(p *Provider) {
		p.oauth.Endpoint = ep
	}
}

// WithAPIEndpoint replaces the base URL of the user info API.
func WithAPIEndpoint(url string) Option {
	return func(p *Provider) {
		p.apiEndpoint = url
	}
}

// WithClock sets the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		p.now = now
	}
}

// NewProvider creates a Provider for the given client and redirect URL.
func NewProvider(clientID, clientSecret, redirectURL string, opts ...Option) *Provider {
	p := &Provider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       Scopes,
		},
		refreshWindow: RefreshWindow,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProviderFromClientJSON creates a Provider from a downloaded OAuth client
// file ("installed" or "web"), keeping the endpoints it names.
func ProviderFromClientJSON(data []byte, redirectURL string, opts ...Option) (*Provider, error) {
	cfg, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client: %w", err)
	}
	opts = append([]Option{WithEndpoint(cfg.Endpoint)}, opts...)
	return NewProvider(cfg.ClientID, cfg.ClientSecret, redirectURL, opts...), nil
}

// NewState returns a random OAuth state value.
func NewState() string {
	return uuid.NewString()
}

// NewVerifier returns a PKCE code verifier.
func NewVerifier() string {
	return oauth2.GenerateVerifier()
}

// AuthCodeURL returns the consent page URL. Offline access with forced
// consent makes Google return a refresh token on every sign-in.
func (p *Provider) AuthCodeURL(state, verifier string) string {
	return p.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)
}

// Exchange trades an authorization code for a token.
func (p *Provider) Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	token, err := p.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return token, nil
}

// NeedsRefresh reports whether token expires within the refresh window.
// Tokens without an expiry never need a refresh.
func (p *Provider) NeedsRefresh(token *oauth2.Token) bool {
	if token.Expiry.IsZero() {
		return false
	}
	return token.Expiry.Sub(p.now()) < p.refreshWindow
}

// Fresh returns token unchanged if it is not about to expire, otherwise a
// refreshed token. The refresh token is kept when Google omits it.
func (p *Provider) Fresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, bool, error) {
	if !p.NeedsRefresh(token) {
		return token, false, nil
	}
	if token.RefreshToken == "" {
		return nil, false, fmt.Errorf("%w: no refresh token", ErrRefreshFailed)
	}

	renewed, err := p.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: token.RefreshToken}).Token()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	return renewed, true, nil
}

// UserInfo loads the profile shown in the UI.
func (p *Provider) UserInfo(ctx context.Context, token *oauth2.Token) (session.User, error) {
	opts := []option.ClientOption{option.WithTokenSource(oauth2.StaticTokenSource(token))}
	if p.apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(p.apiEndpoint))
	}

	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return session.User{}, fmt.Errorf("create oauth2 service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return session.User{}, fmt.Errorf("get user info: %w", err)
	}
	return session.User{Name: info.Name, Picture: info.Picture}, nil
}
