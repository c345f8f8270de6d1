package auth_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"tasklr/internal/auth"
)

// fakeGoogle serves the token and userinfo endpoints.
type fakeGoogle struct {
	mu        sync.Mutex
	forms     []url.Values
	tokenBody string
	tokenCode int
}

func (f *fakeGoogle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/token":
		r.ParseForm()
		f.mu.Lock()
		f.forms = append(f.forms, r.PostForm)
		f.mu.Unlock()
		if f.tokenCode != 0 {
			w.WriteHeader(f.tokenCode)
		}
		io.WriteString(w, f.tokenBody)
	case strings.HasSuffix(r.URL.Path, "/userinfo"):
		if r.Header.Get("Authorization") != "Bearer at-1" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"error":{"code":401,"message":"bad token"}}`)
			return
		}
		io.WriteString(w, `{"id":"1","name":"Ada Lovelace","picture":"https://example.com/ada.png"}`)
	default:
		http.NotFound(w, r)
	}
}

func newProvider(t *testing.T, fg *fakeGoogle, now time.Time) *auth.Provider {
	t.Helper()
	server := httptest.NewServer(fg)
	t.Cleanup(server.Close)

	return auth.NewProvider("cid", "csecret", "http://localhost:3000/auth/callback",
		auth.WithEndpoint(oauth2.Endpoint{
			AuthURL:   server.URL + "/auth",
			TokenURL:  server.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		}),
		auth.WithAPIEndpoint(server.URL+"/"),
		auth.WithClock(func() time.Time { return now }),
	)
}

func TestAuthCodeURL(t *testing.T) {
	p := newProvider(t, &fakeGoogle{}, time.Now())

	raw := p.AuthCodeURL("st-1", auth.NewVerifier())
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()

	want := map[string]string{
		"state":                 "st-1",
		"access_type":           "offline",
		"prompt":                "consent",
		"code_challenge_method": "S256",
		"redirect_uri":          "http://localhost:3000/auth/callback",
		"client_id":             "cid",
	}
	for k, v := range want {
		if q.Get(k) != v {
			t.Errorf("expected %s=%q, got %q", k, v, q.Get(k))
		}
	}
	if q.Get("code_challenge") == "" {
		t.Error("expected PKCE challenge")
	}
	scope := q.Get("scope")
	if !strings.Contains(scope, "auth/tasks") || !strings.Contains(scope, "userinfo.profile") {
		t.Errorf("unexpected scope %q", scope)
	}
}

func TestExchange_SendsVerifier(t *testing.T) {
	fg := &fakeGoogle{tokenBody: `{"access_token":"at-1","refresh_token":"rt-1","expires_in":3600,"token_type":"Bearer"}`}
	p := newProvider(t, fg, time.Now())

	token, err := p.Exchange(context.Background(), "code-1", "verifier-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.AccessToken != "at-1" || token.RefreshToken != "rt-1" {
		t.Errorf("unexpected token %+v", token)
	}

	form := fg.forms[0]
	if form.Get("code") != "code-1" || form.Get("code_verifier") != "verifier-1" {
		t.Errorf("unexpected exchange form %v", form)
	}
	if form.Get("grant_type") != "authorization_code" {
		t.Errorf("expected authorization_code grant, got %q", form.Get("grant_type"))
	}
}

func TestExchange_Error(t *testing.T) {
	fg := &fakeGoogle{tokenCode: http.StatusBadRequest, tokenBody: `{"error":"invalid_grant"}`}
	p := newProvider(t, fg, time.Now())

	if _, err := p.Exchange(context.Background(), "bad", "v"); err == nil {
		t.Error("expected error")
	}
}

func TestFresh(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	t.Run("valid token is kept", func(t *testing.T) {
		fg := &fakeGoogle{}
		p := newProvider(t, fg, now)
		tok := &oauth2.Token{AccessToken: "at", RefreshToken: "rt", Expiry: now.Add(time.Hour)}

		got, refreshed, err := p.Fresh(context.Background(), tok)
		if err != nil || refreshed || got != tok {
			t.Errorf("expected unchanged token, got %+v %v %v", got, refreshed, err)
		}
		if len(fg.forms) != 0 {
			t.Error("expected no token request")
		}
	})

	t.Run("no expiry is kept", func(t *testing.T) {
		p := newProvider(t, &fakeGoogle{}, now)
		tok := &oauth2.Token{AccessToken: "at"}
		if _, refreshed, err := p.Fresh(context.Background(), tok); err != nil || refreshed {
			t.Errorf("expected no refresh, got %v %v", refreshed, err)
		}
	})

	t.Run("expiring token is refreshed", func(t *testing.T) {
		fg := &fakeGoogle{tokenBody: `{"access_token":"at-2","expires_in":3600,"token_type":"Bearer"}`}
		p := newProvider(t, fg, now)
		tok := &oauth2.Token{AccessToken: "at", RefreshToken: "rt", Expiry: now.Add(4 * time.Minute)}

		got, refreshed, err := p.Fresh(context.Background(), tok)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !refreshed || got.AccessToken != "at-2" {
			t.Errorf("expected refreshed token, got %+v", got)
		}
		if got.RefreshToken != "rt" {
			t.Errorf("expected refresh token to be kept, got %q", got.RefreshToken)
		}
		if fg.forms[0].Get("grant_type") != "refresh_token" || fg.forms[0].Get("refresh_token") != "rt" {
			t.Errorf("unexpected refresh form %v", fg.forms[0])
		}
	})

	t.Run("refresh rejected", func(t *testing.T) {
		fg := &fakeGoogle{tokenCode: http.StatusBadRequest, tokenBody: `{"error":"invalid_grant"}`}
		p := newProvider(t, fg, now)
		tok := &oauth2.Token{AccessToken: "at", RefreshToken: "rt", Expiry: now.Add(-time.Minute)}

		if _, _, err := p.Fresh(context.Background(), tok); !errors.Is(err, auth.ErrRefreshFailed) {
			t.Errorf("expected ErrRefreshFailed, got %v", err)
		}
	})

	t.Run("missing refresh token", func(t *testing.T) {
		p := newProvider(t, &fakeGoogle{}, now)
		tok := &oauth2.Token{AccessToken: "at", Expiry: now.Add(time.Minute)}

		if _, _, err := p.Fresh(context.Background(), tok); !errors.Is(err, auth.ErrRefreshFailed) {
			t.Errorf("expected ErrRefreshFailed, got %v", err)
		}
	})
}

func TestUserInfo(t *testing.T) {
	p := newProvider(t, &fakeGoogle{}, time.Now())

	user, err := p.UserInfo(context.Background(), &oauth2.Token{AccessToken: "at-1", TokenType: "Bearer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Name != "Ada Lovelace" || user.Picture != "https://example.com/ada.png" {
		t.Errorf("unexpected user %+v", user)
	}

	if _, err := p.UserInfo(context.Background(), &oauth2.Token{AccessToken: "wrong", TokenType: "Bearer"}); err == nil {
		t.Error("expected error for rejected token")
	}
}

func TestNewState_Unique(t *testing.T) {
	if auth.NewState() == auth.NewState() {
		t.Error("expected distinct states")
	}
}

func TestProviderFromClientJSON(t *testing.T) {
	clientJSON := `{"installed":{"client_id":"desk","client_secret":"s","auth_uri":"https://auth.example/o","token_uri":"https://auth.example/t","redirect_uris":["http://localhost"]}}`

	p, err := auth.ProviderFromClientJSON([]byte(clientJSON), "http://localhost:8085/callback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u, err := url.Parse(p.AuthCodeURL("st", auth.NewVerifier()))
	if err != nil {
		t.Fatal(err)
	}
	if u.Host != "auth.example" || u.Path != "/o" {
		t.Errorf("expected the client file's auth endpoint, got %s", u)
	}
	if u.Query().Get("client_id") != "desk" || u.Query().Get("redirect_uri") != "http://localhost:8085/callback" {
		t.Errorf("unexpected query %v", u.Query())
	}

	if _, err := auth.ProviderFromClientJSON([]byte(`{}`), ""); err == nil {
		t.Error("expected error for a file without client")
	}
}
