package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/oauth2"

	"tasklr/internal/auth"
	"tasklr/internal/config"
	"tasklr/internal/exitcode"
	"tasklr/internal/service"
)

const (
	// tokenExchangeTimeout bounds the code exchange and the validity check.
	tokenExchangeTimeout = 30 * time.Second

	// loopbackStartPort is the first port tried for the OAuth callback server.
	loopbackStartPort = 8085

	loopbackMaxPortAttempts = 5

	callbackPath = "/callback"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd authorizes the CLI with a desktop OAuth client and stores the
// resulting token in token.json.
type LoginCmd struct {
	timeout time.Duration
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Authorize the CLI with Google" }
func (c *LoginCmd) Usage() string     { return "tasklr login [--timeout 5m]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.DurationVar(&c.timeout, "timeout", 5*time.Minute, "how long to wait for the browser")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !cfg.HasOAuthClient() {
		printClientSetup(errOut, cfg)
		return exitcode.AuthError
	}

	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to read %s: %v\n", config.OAuthClientFile, err)
		return exitcode.AuthError
	}

	if token, ok := storedToken(ctx, cfg, clientJSON); ok {
		if err := saveToken(cfg.TokenPath(), token); err != nil {
			fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
			return exitcode.AuthError
		}
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	port, listener, err := listenLoopback()
	if err != nil {
		fmt.Fprintln(errOut, "error: could not bind to local port for OAuth callback")
		return exitcode.AuthError
	}
	defer listener.Close()

	redirectURL := fmt.Sprintf("http://localhost:%d%s", port, callbackPath)
	provider, err := auth.ProviderFromClientJSON(clientJSON, redirectURL)
	if err != nil {
		fmt.Fprintf(errOut, "error: invalid %s: %v\n", config.OAuthClientFile, err)
		return exitcode.AuthError
	}

	state, verifier := auth.NewState(), auth.NewVerifier()
	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, provider.AuthCodeURL(state, verifier))

	timeout := c.timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	code, err := awaitCode(ctx, listener, state, timeout)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancel()
	token, err := provider.Exchange(exchangeCtx, code, verifier)
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to exchange code for token: %v\n", err)
		return exitcode.AuthError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if err := saveToken(cfg.TokenPath(), token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

func printClientSetup(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "error: %s not found in %s\n\n", config.OAuthClientFile, cfg.Dir)
	fmt.Fprintln(w, "The CLI needs a desktop OAuth client:")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "1. Open https://console.cloud.google.com/apis/credentials")
	fmt.Fprintln(w, "2. Enable the Google Tasks API for the project:")
	fmt.Fprintln(w, "   https://console.cloud.google.com/apis/library/tasks.googleapis.com")
	fmt.Fprintln(w, "3. Create an OAuth client ID of type 'Desktop app' and download its JSON")
	fmt.Fprintf(w, "4. Save it as %s\n", cfg.OAuthClientPath())
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Then run 'tasklr login' again.")
}

// storedToken returns the token from token.json if it has a refresh token and
// is either still valid or can be refreshed.
func storedToken(ctx context.Context, cfg *config.Config, clientJSON []byte) (*oauth2.Token, bool) {
	data, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, false
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil || token.RefreshToken == "" {
		return nil, false
	}

	provider, err := auth.ProviderFromClientJSON(clientJSON, "")
	if err != nil {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancel()
	fresh, _, err := provider.Fresh(ctx, &token)
	if err != nil {
		return nil, false
	}
	return fresh, true
}

// listenLoopback binds the first free port starting at loopbackStartPort.
func listenLoopback() (int, net.Listener, error) {
	for i := 0; i < loopbackMaxPortAttempts; i++ {
		port := loopbackStartPort + i
		listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return port, listener, nil
		}
	}
	return 0, nil, errors.New("no available port found")
}

// awaitCode serves the OAuth redirect on listener and returns the
// authorization code once a callback with the expected state arrives.
func awaitCode(ctx context.Context, listener net.Listener, state string, timeout time.Duration) (string, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("error") != "":
			http.Error(w, "Authorization was denied", http.StatusBadRequest)
			sendErr(errCh, fmt.Errorf("authorization denied: %s", q.Get("error")))
		case q.Get("state") != state:
			http.Error(w, "State mismatch", http.StatusBadRequest)
			sendErr(errCh, errors.New("oauth state mismatch"))
		case q.Get("code") == "":
			http.Error(w, "No code in callback", http.StatusBadRequest)
			sendErr(errCh, errors.New("no code in callback"))
		default:
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "<html><body><h1>Tasklr is authorized</h1><p>You may close this window.</p></body></html>")
			select {
			case codeCh <- q.Get("code"):
			default:
			}
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sendErr(errCh, err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case code := <-codeCh:
		return code, nil
	case err := <-errCh:
		return "", err
	case <-timer.C:
		return "", errors.New("oauth callback timed out")
	case <-ctx.Done():
		return "", errors.New("cancelled")
	}
}

func sendErr(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}

// saveToken writes token to path with mode 0600.
func saveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
