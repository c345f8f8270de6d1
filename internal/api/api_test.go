package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"tasklr/internal/aggregate"
	"tasklr/internal/api"
	"tasklr/internal/disposition"
	"tasklr/internal/middleware"
	"tasklr/internal/service"
	"tasklr/internal/session"
	"tasklr/internal/testutil"
	"tasklr/pkg/log"
)

const cookieName = "sid"

var fixedNow = time.Date(2026, 10, 15, 17, 37, 5, 123000000, time.UTC)

type stubProvider struct {
	exchangeErr error
	gotCode     string
	gotVerifier string
}

func (p *stubProvider) AuthCodeURL(state, verifier string) string {
	return "https://accounts.example/auth?state=" + url.QueryEscape(state)
}

func (p *stubProvider) Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	p.gotCode, p.gotVerifier = code, verifier
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return &oauth2.Token{AccessToken: "at", RefreshToken: "rt", Expiry: time.Now().Add(time.Hour)}, nil
}

func (p *stubProvider) UserInfo(ctx context.Context, token *oauth2.Token) (session.User, error) {
	return session.User{Name: "Ada", Picture: "https://example.com/a.png"}, nil
}

type noRefresh struct{}

func (noRefresh) Fresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, bool, error) {
	return tok, false, nil
}

type env struct {
	engine   *gin.Engine
	store    *session.Store
	codec    *session.Codec
	fake     *testutil.FakeService
	provider *stubProvider
}

func newEnv(t *testing.T, opts ...aggregate.Option) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	views := t.TempDir()
	os.WriteFile(filepath.Join(views, "login.html"), []byte("<h1>login</h1>"), 0600)
	os.WriteFile(filepath.Join(views, "index.html"), []byte("<h1>app</h1>"), 0600)

	e := &env{
		store:    session.NewStore(0, 0),
		fake:     testutil.NewFakeService(),
		provider: &stubProvider{},
	}
	e.codec, _ = session.NewCodec("test-secret", time.Hour)

	factory := func(ctx context.Context, tok *oauth2.Token) (service.Service, error) {
		return e.fake, nil
	}
	mw := middleware.New(log.NewNop(), e.store, e.codec, middleware.CookieConfig{Name: cookieName}, noRefresh{}, factory)

	h := api.New(api.Config{
		Logger:     log.NewNop(),
		Middleware: mw,
		Provider:   e.provider,
		Aggregator: aggregate.New(log.NewNop(), opts...),
		ViewsDir:   views,
		Info: api.Info{
			Name:      "tasklr",
			Version:   "1.2.3",
			BaseURL:   "http://localhost:3000",
			EnvChecks: map[string]bool{"google_client_id": true},
			StartedAt: fixedNow.Add(-time.Minute),
		},
		Now: func() time.Time { return fixedNow },
	})

	e.engine = gin.New()
	e.engine.Use(mw.Session())
	api.RegisterPageRoutes(e.engine, h, mw)
	api.RegisterAPIRoutes(e.engine.Group("/api"), h, mw)
	api.RegisterTestRoutes(e.engine, h)
	return e
}

func (e *env) signIn(t *testing.T) *http.Cookie {
	t.Helper()
	sess := e.store.New()
	sess.Token = &oauth2.Token{AccessToken: "at"}
	sess.User = session.User{Name: "Ada"}
	e.store.Save(sess)
	value, err := e.codec.Encode(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Cookie{Name: cookieName, Value: value}
}

func (e *env) do(method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
	return v
}

func TestTaskLists(t *testing.T) {
	e := newEnv(t)
	cookie := e.signIn(t)

	w := e.do(http.MethodPost, "/api/tasklists", `{"title":"  Groceries  "}`, cookie)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decode[service.TaskList](t, w)
	if created.Title != "Groceries" {
		t.Errorf("expected trimmed title, got %q", created.Title)
	}

	w = e.do(http.MethodGet, "/api/tasklists", "", cookie)
	lists := decode[[]service.TaskList](t, w)
	if len(lists) != 2 || lists[1].ID != created.ID {
		t.Errorf("unexpected lists %+v", lists)
	}

	w = e.do(http.MethodPatch, "/api/tasklists/"+created.ID, `{"title":"Food"}`, cookie)
	if w.Code != http.StatusOK || decode[service.TaskList](t, w).Title != "Food" {
		t.Errorf("unexpected rename response %d %s", w.Code, w.Body.String())
	}

	w = e.do(http.MethodDelete, "/api/tasklists/"+created.ID, "", cookie)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if len(e.fake.Lists()) != 1 {
		t.Errorf("expected list to be deleted")
	}
}

func TestTitleValidation(t *testing.T) {
	e := newEnv(t)
	cookie := e.signIn(t)

	tests := []struct {
		method, path, body, want string
	}{
		{http.MethodPost, "/api/tasklists", `{"title":"   "}`, `{"error":"Title is required"}`},
		{http.MethodPost, "/api/tasklists", ``, `{"error":"Title is required"}`},
		{http.MethodPost, "/api/tasklists", `{"title":`, `{"error":"Invalid request body"}`},
		{http.MethodPatch, "/api/tasklists/default", `{}`, `{"error":"Title is required"}`},
		{http.MethodPost, "/api/tasklists/default/tasks", `{"notes":"x"}`, `{"error":"Title is required"}`},
		{http.MethodPost, "/api/tasklists/default/tasks", `{"title":"a","due":"tomorrow"}`, `{"error":"Invalid due date"}`},
		{http.MethodPatch, "/api/tasklists/default/tasks/t1", `{"title":null}`, `{"error":"Title is required"}`},
		{http.MethodPatch, "/api/tasklists/default/tasks/t1", `{"status":"done"}`, `{"error":"Invalid status"}`},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path+" "+tt.body, func(t *testing.T) {
			w := e.do(tt.method, tt.path, tt.body, cookie)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
			if w.Body.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, w.Body.String())
			}
		})
	}
	if len(e.fake.Calls) != 0 {
		t.Errorf("invalid requests must not reach the backend, got %v", e.fake.Calls)
	}
}

func TestTasks(t *testing.T) {
	e := newEnv(t, aggregate.WithPageSize(2))
	cookie := e.signIn(t)
	list := testutil.DefaultListID
	for _, id := range []string{"t1", "t2", "t3"} {
		e.fake.AddTask(list, id, "Task "+id)
	}
	e.fake.CompleteTaskNow(list, "t2")
	e.fake.AddTask(list, "t4", "Hidden")
	e.fake.CompleteTaskNow(list, "t4")
	e.fake.HideTask(list, "t4")

	w := e.do(http.MethodGet, "/api/tasklists/"+list+"/tasks", "", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	tasks := decode[[]service.Task](t, w)
	if len(tasks) != 3 || tasks[1].Status != service.StatusCompleted {
		t.Errorf("expected completed tasks across pages without hidden ones, got %+v", tasks)
	}

	w = e.do(http.MethodPost, "/api/tasklists/"+list+"/tasks", `{"title":" Buy milk ","notes":"2L","due":"2026-03-01"}`, cookie)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decode[service.Task](t, w)
	if created.Title != "Buy milk" || created.Due != "2026-03-01T00:00:00.000Z" {
		t.Errorf("unexpected created task %+v", created)
	}

	w = e.do(http.MethodPatch, "/api/tasklists/"+list+"/tasks/"+created.ID, `{"due":null,"status":"completed"}`, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	updated := decode[service.Task](t, w)
	if updated.Due != "" || updated.Status != service.StatusCompleted || updated.Notes != "2L" {
		t.Errorf("unexpected updated task %+v", updated)
	}

	w = e.do(http.MethodPost, "/api/tasklists/"+list+"/tasks/t3/move", ``, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if first := e.fake.Tasks(list)[0]; first.ID != "t3" {
		t.Errorf("expected t3 at the top, got %s", first.ID)
	}

	w = e.do(http.MethodPost, "/api/tasklists/"+list+"/tasks/t3/move", `{"previous":"t1"}`, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	stored := e.fake.Tasks(list)
	for i, task := range stored {
		if task.ID == "t1" && stored[i+1].ID != "t3" {
			t.Errorf("expected t3 after t1, got %+v", stored)
		}
	}

	w = e.do(http.MethodDelete, "/api/tasklists/"+list+"/tasks/t1", "", cookie)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}

	w = e.do(http.MethodPost, "/api/tasklists/"+list+"/clear", "", cookie)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
}

func TestCounts(t *testing.T) {
	e := newEnv(t)
	cookie := e.signIn(t)
	e.fake.AddTask(testutil.DefaultListID, "t1", "open")
	e.fake.AddTask(testutil.DefaultListID, "t2", "done")
	e.fake.CompleteTaskNow(testutil.DefaultListID, "t2")
	e.fake.AddList("broken", "Broken")
	e.fake.ListTasksPageErr["broken"] = errors.New("boom")

	w := e.do(http.MethodGet, "/api/tasklists/counts", "", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	counts := decode[map[string]int](t, w)
	if counts[testutil.DefaultListID] != 1 {
		t.Errorf("expected 1 incomplete task, got %d", counts[testutil.DefaultListID])
	}
	if n, ok := counts["broken"]; !ok || n != 0 {
		t.Errorf("expected failing list to count 0, got %v", counts)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantBody string
	}{
		{service.ErrUnauthorized, http.StatusUnauthorized, `{"error":"Authentication failed. Please sign in again."}`},
		{service.ErrForbidden, http.StatusForbidden, `{"error":"Permission denied"}`},
		{service.ErrNotFound, http.StatusNotFound, `{"error":"Not found"}`},
		{errors.New("boom"), http.StatusInternalServerError, `{"error":"Failed to fetch task lists"}`},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			e := newEnv(t)
			cookie := e.signIn(t)
			e.fake.ListListsErr = tt.err

			w := e.do(http.MethodGet, "/api/tasklists", "", cookie)
			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, w.Code)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("expected %s, got %s", tt.wantBody, w.Body.String())
			}

			signedOut := e.do(http.MethodGet, "/api/me", "", cookie).Code == http.StatusUnauthorized
			if signedOut != errors.Is(tt.err, service.ErrUnauthorized) {
				t.Errorf("session destroyed = %v for %v", signedOut, tt.err)
			}
		})
	}
}

func TestCountsListFailure(t *testing.T) {
	e := newEnv(t)
	cookie := e.signIn(t)
	e.fake.ListListsErr = errors.New("boom")

	w := e.do(http.MethodGet, "/api/tasklists/counts", "", cookie)
	if w.Code != http.StatusInternalServerError || w.Body.String() != `{"error":"Failed to fetch task list counts"}` {
		t.Errorf("unexpected response %d %s", w.Code, w.Body.String())
	}
}

func TestExport(t *testing.T) {
	e := newEnv(t)
	cookie := e.signIn(t)
	e.fake.AddTask(testutil.DefaultListID, "t1", "open")
	e.fake.AddTask(testutil.DefaultListID, "t2", "done")
	e.fake.CompleteTaskNow(testutil.DefaultListID, "t2")

	w := e.do(http.MethodGet, "/api/export", "", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Disposition") != "" {
		t.Error("plain export must not be an attachment")
	}
	export := decode[aggregate.Export](t, w)
	if len(export.Lists) != 1 || len(export.Lists[0].Tasks) != 2 {
		t.Errorf("unexpected export %+v", export)
	}

	w = e.do(http.MethodGet, "/api/export?download=1", "", cookie)
	name, ok := disposition.ParseFilename(w.Header().Get("Content-Disposition"))
	if !ok {
		t.Fatalf("expected filename in %q", w.Header().Get("Content-Disposition"))
	}
	if name != "tasklr-export-2026-10-15T17-37-05-123Z.json" {
		t.Errorf("unexpected filename %q", name)
	}
	if decode[aggregate.Export](t, w).Lists[0].ID != testutil.DefaultListID {
		t.Error("expected downloadable body to hold the export")
	}
}

func TestExport_Failure(t *testing.T) {
	e := newEnv(t)
	cookie := e.signIn(t)
	e.fake.ListTasksPageErr[testutil.DefaultListID] = errors.New("boom")

	w := e.do(http.MethodGet, "/api/export?download=1", "", cookie)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if w.Body.String() != `{"error":"Failed to export tasks"}` {
		t.Errorf("unexpected body %s", w.Body.String())
	}
	if w.Header().Get("Content-Disposition") != "" {
		t.Error("failed export must not be offered as a download")
	}
}

func TestTestExport(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/__test/export?download=1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Disposition"), `attachment; filename="tasklr-export-`) {
		t.Errorf("unexpected header %q", w.Header().Get("Content-Disposition"))
	}
	export := decode[aggregate.Export](t, w)
	if export.Lists[0].ID != "test-list" || export.Lists[0].Tasks[0].Title != "Sample Task" {
		t.Errorf("unexpected sample export %+v", export)
	}
}

func TestStatusAndMe(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/api/status", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	status := decode[map[string]any](t, w)
	if status["version"] != "1.2.3" || status["uptime"] != float64(60) {
		t.Errorf("unexpected status %v", status)
	}
	if status["timestamp"] != "2026-10-15T17:37:05.123Z" {
		t.Errorf("unexpected timestamp %v", status["timestamp"])
	}

	if w := e.do(http.MethodGet, "/api/me", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %d", w.Code)
	}
	w = e.do(http.MethodGet, "/api/me", "", e.signIn(t))
	if w.Body.String() != `{"name":"Ada"}` {
		t.Errorf("unexpected profile %s", w.Body.String())
	}
}

func TestOAuthFlow(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/auth/google", "", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	loc, _ := url.Parse(w.Header().Get("Location"))
	state := loc.Query().Get("state")
	if state == "" {
		t.Fatal("expected state in consent URL")
	}
	preAuth := sessionCookie(w)
	if preAuth == nil {
		t.Fatal("expected pre-auth session cookie")
	}

	w = e.do(http.MethodGet, "/auth/callback?code=abc&state="+url.QueryEscape(state), "", preAuth)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect home, got %d %q", w.Code, w.Header().Get("Location"))
	}
	if e.provider.gotCode != "abc" || e.provider.gotVerifier == "" {
		t.Errorf("expected code and verifier to be exchanged, got %q %q", e.provider.gotCode, e.provider.gotVerifier)
	}
	signedIn := sessionCookie(w)
	if signedIn == nil || signedIn.Value == preAuth.Value {
		t.Fatal("expected a rotated session cookie")
	}
	if !signedIn.HttpOnly || signedIn.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected HttpOnly SameSite=Lax cookie, got %+v", signedIn)
	}

	if w := e.do(http.MethodGet, "/api/me", "", preAuth); w.Code != http.StatusUnauthorized {
		t.Errorf("pre-auth cookie must not be valid after sign-in, got %d", w.Code)
	}
	w = e.do(http.MethodGet, "/api/me", "", signedIn)
	if !strings.Contains(w.Body.String(), `"name":"Ada"`) {
		t.Errorf("unexpected profile %s", w.Body.String())
	}

	w = e.do(http.MethodGet, "/login", "", signedIn)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Errorf("expected signed-in login page to redirect home, got %d", w.Code)
	}

	w = e.do(http.MethodPost, "/auth/logout", "", signedIn)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Errorf("expected redirect to login, got %d %q", w.Code, w.Header().Get("Location"))
	}
	if w := e.do(http.MethodGet, "/api/me", "", signedIn); w.Code != http.StatusUnauthorized {
		t.Errorf("expected session to end on logout, got %d", w.Code)
	}
}

func TestOAuthCallbackFailures(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/auth/callback?error=access_denied", "", nil)
	if w.Header().Get("Location") != "/login?error=access_denied" {
		t.Errorf("unexpected redirect %q", w.Header().Get("Location"))
	}

	start := e.do(http.MethodGet, "/auth/google", "", nil)
	cookie := sessionCookie(start)

	w = e.do(http.MethodGet, "/auth/callback?code=abc&state=forged", "", cookie)
	if w.Header().Get("Location") != "/login?error=auth_failed" {
		t.Errorf("expected state mismatch to fail, got %q", w.Header().Get("Location"))
	}

	w = e.do(http.MethodGet, "/auth/callback?code=abc&state=x", "", nil)
	if w.Header().Get("Location") != "/login?error=auth_failed" {
		t.Errorf("expected missing session to fail, got %q", w.Header().Get("Location"))
	}

	loc, _ := url.Parse(start.Header().Get("Location"))
	e.provider.exchangeErr = errors.New("invalid_grant")
	w = e.do(http.MethodGet, "/auth/callback?code=abc&state="+url.QueryEscape(loc.Query().Get("state")), "", cookie)
	if w.Header().Get("Location") != "/login?error=auth_failed" {
		t.Errorf("expected exchange failure to fail, got %q", w.Header().Get("Location"))
	}
}

func TestPages(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/login", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "login") {
		t.Errorf("unexpected login page %d %s", w.Code, w.Body.String())
	}

	w = e.do(http.MethodGet, "/", "", nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Errorf("expected redirect to login, got %d", w.Code)
	}

	w = e.do(http.MethodGet, "/", "", e.signIn(t))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "app") {
		t.Errorf("unexpected index page %d %s", w.Code, w.Body.String())
	}
}
