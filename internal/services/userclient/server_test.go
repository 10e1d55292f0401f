package userclient

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/louisbranch/userclient/internal/services/userclient/userservice"
	"golang.org/x/net/html"
)

// fakeUserService stands in for the remote user service.
type fakeUserService struct {
	mu           sync.Mutex
	requests     []string
	created      []userservice.CreateUserRequest
	users        []userservice.User
	listStatus   int
	createStatus int
	createReply  string
	pingStatus   int
}

func (f *fakeUserService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/users":
		if f.listStatus != 0 {
			w.WriteHeader(f.listStatus)
			return
		}
		users := f.users
		if users == nil {
			users = []userservice.User{}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data":   map[string]any{"users": users},
		})
	case r.Method == http.MethodPost && r.URL.Path == "/users":
		var req userservice.CreateUserRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if f.createStatus != 0 {
			w.WriteHeader(f.createStatus)
			_, _ = io.WriteString(w, f.createReply)
			return
		}
		f.created = append(f.created, req)
		f.users = append(f.users, userservice.User{ID: len(f.users) + 1, Username: req.Username, Email: req.Email, Active: true})
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"status":"success","message":"`+req.Email+` ha sido agregado!"}`)
	case r.Method == http.MethodGet && r.URL.Path == "/users/ping":
		if f.pingStatus != 0 {
			w.WriteHeader(f.pingStatus)
			return
		}
		_, _ = io.WriteString(w, `{"status":"success","message":"pong!"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeUserService) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeUserService) Created() []userservice.CreateUserRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]userservice.CreateUserRequest(nil), f.created...)
}

func (f *fakeUserService) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = nil
}

type testApp struct {
	server   *httptest.Server
	client   *http.Client
	upstream *fakeUserService
	handler  *Handler
}

func newTestApp(t *testing.T, upstream *fakeUserService) *testApp {
	t.Helper()
	upstreamServer := httptest.NewServer(upstream)
	t.Cleanup(upstreamServer.Close)

	client, err := userservice.NewClient(userservice.Config{BaseURL: upstreamServer.URL, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	handler, err := NewHandler(Config{
		UserService: client,
		Pinger:      client,
		Logger:      log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(func() {
		server.Close()
		handler.Close()
	})

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New() error = %v", err)
	}
	return &testApp{
		server:   server,
		upstream: upstream,
		handler:  handler,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (a *testApp) do(t *testing.T, method, path string, form url.Values, headers map[string]string) (*http.Response, string) {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, a.server.URL+path, body)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(data)
}

func countElements(t *testing.T, markup, tag string) int {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("html.Parse() error = %v", err)
	}
	count := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			count++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return count
}

func TestNewHandlerRequiresUserService(t *testing.T) {
	t.Parallel()

	if _, err := NewHandler(Config{}); err == nil {
		t.Fatal("expected error for missing user service")
	}
}

func TestNewServerRequiresHTTPAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewServer(context.Background(), Config{UserService: &noopUserService{}}); err == nil {
		t.Fatal("expected error for missing http address")
	}
}

type noopUserService struct{}

func (*noopUserService) ListUsers(context.Context) ([]userservice.User, error) {
	return []userservice.User{}, nil
}

func (*noopUserService) CreateUser(context.Context, userservice.CreateUserRequest) error {
	return nil
}

func TestHomeRendersUsersFromService(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeUserService{users: []userservice.User{
		{ID: 1, Username: "raquel", Email: "raquel@gmail.com", Active: true},
		{ID: 2, Username: "sindy", Email: "sindyepiquien@upeu.edu.pe", Active: true},
	}})

	resp, body := app.do(t, http.MethodGet, "/", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got := countElements(t, body, "h4"); got != 2 {
		t.Fatalf("h4 count = %d, want 2", got)
	}
	if strings.Index(body, ">raquel<") > strings.Index(body, ">sindy<") {
		t.Fatal("users rendered out of service order")
	}
	if !strings.Contains(body, `<main id="main">`) {
		t.Fatalf("expected full page, got %s", body)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID response header")
	}
}

func TestHomeFetchesOncePerSession(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeUserService{})
	app.do(t, http.MethodGet, "/", nil, nil)
	app.do(t, http.MethodGet, "/", nil, nil)

	if got := app.upstream.Requests(); !reflect.DeepEqual(got, []string{"GET /users"}) {
		t.Fatalf("upstream requests = %v, want a single list", got)
	}
}

func TestHomeKeepsPageWhenFetchFails(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeUserService{listStatus: http.StatusInternalServerError})
	resp, body := app.do(t, http.MethodGet, "/", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(body, `data-stale="true"`) {
		t.Fatalf("expected stale marker, got %s", body)
	}
	if got := countElements(t, body, "h4"); got != 0 {
		t.Fatalf("h4 count = %d, want 0", got)
	}
	if strings.Contains(body, "notice-error") {
		t.Fatal("fetch failure must not render an error notice")
	}
}

func TestSubmitCreatesUserThenRefetches(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeUserService{})
	form := url.Values{"username": {"ana"}, "email": {"ana@x.com"}}
	resp, _ := app.do(t, http.MethodPost, "/users", form, nil)

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if got := resp.Header.Get("Location"); got != "/" {
		t.Fatalf("Location = %q, want %q", got, "/")
	}
	if got := app.upstream.Requests(); !reflect.DeepEqual(got, []string{"POST /users", "GET /users"}) {
		t.Fatalf("upstream requests = %v, want POST then GET", got)
	}
	if want := []userservice.CreateUserRequest{{Username: "ana", Email: "ana@x.com"}}; !reflect.DeepEqual(app.upstream.Created(), want) {
		t.Fatalf("created = %#v, want %#v", app.upstream.Created(), want)
	}

	app.upstream.Reset()
	_, body := app.do(t, http.MethodGet, "/", nil, nil)
	if len(app.upstream.Requests()) != 0 {
		t.Fatalf("expected page to reuse the refetched list, got %v", app.upstream.Requests())
	}
	if !strings.Contains(body, `id="user-1"`) || !strings.Contains(body, ">ana<") {
		t.Fatalf("expected ana in list, got %s", body)
	}
	if !strings.Contains(body, "ana has been added!") {
		t.Fatalf("expected created notice, got %s", body)
	}
	if strings.Contains(body, `value="ana"`) {
		t.Fatal("expected form to be cleared after success")
	}
}

func TestSubmitFailureKeepsValuesAndSkipsFetch(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeUserService{
		createStatus: http.StatusBadRequest,
		createReply:  `{"status":"falló","message":"Disculpa. El email ya existe."}`,
	})
	form := url.Values{"username": {"ana"}, "email": {"ana@x.com"}}
	resp, body := app.do(t, http.MethodPost, "/users", form, nil)

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
	}
	if got := app.upstream.Requests(); !reflect.DeepEqual(got, []string{"POST /users"}) {
		t.Fatalf("upstream requests = %v, want only POST", got)
	}
	for _, marker := range []string{`value="ana"`, `value="ana@x.com"`, "notice-error", "Disculpa. El email ya existe."} {
		if !strings.Contains(body, marker) {
			t.Fatalf("response missing %q: %s", marker, body)
		}
	}
}

func TestSubmitHTMXUsesHXRedirect(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeUserService{})
	form := url.Values{"username": {"ana"}, "email": {"ana@x.com"}}
	resp, _ := app.do(t, http.MethodPost, "/users", form, map[string]string{"HX-Request": "true"})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got := resp.Header.Get("HX-Redirect"); got != "/" {
		t.Fatalf("HX-Redirect = %q, want %q", got, "/")
	}
}

func TestFieldChangeUpdatesPendingForm(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeUserService{})
	for _, value := range []string{"a", "an", "ana"} {
		resp, _ := app.do(t, http.MethodPost, "/users/form", url.Values{"field": {"username"}, "username": {value}}, map[string]string{"HX-Request": "true"})
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
		}
	}
	resp, _ := app.do(t, http.MethodPost, "/users/form", url.Values{"field": {"email"}, "value": {"ana@x.com"}}, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}

	_, body := app.do(t, http.MethodGet, "/", nil, nil)
	if !strings.Contains(body, `value="ana"`) || !strings.Contains(body, `value="ana@x.com"`) {
		t.Fatalf("expected pending values in form, got %s", body)
	}
	if got := app.upstream.Requests(); !reflect.DeepEqual(got, []string{"GET /users"}) {
		t.Fatalf("field changes must not call the service, got %v", got)
	}
}

func TestFieldChangeRequiresFieldName(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeUserService{})
	resp, _ := app.do(t, http.MethodPost, "/users/form", url.Values{"value": {"ana"}}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestHTMXHomeRendersMainContentOnly(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeUserService{})
	_, body := app.do(t, http.MethodGet, "/", nil, map[string]string{"HX-Request": "true"})
	if strings.Contains(body, "<html") || strings.Contains(body, "<main") {
		t.Fatalf("expected main content only, got %s", body)
	}
	if !strings.Contains(body, "<title>User Management</title>") {
		t.Fatalf("expected injected title, got %s", body)
	}
	if !strings.Contains(body, `id="add-user-form"`) {
		t.Fatalf("expected form in fragment, got %s", body)
	}
}

func TestUserListRouteRefetches(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeUserService{users: []userservice.User{{ID: 1, Username: "raquel", Active: true}}})
	app.do(t, http.MethodGet, "/", nil, nil)
	_, body := app.do(t, http.MethodGet, "/users", nil, map[string]string{"HX-Request": "true"})

	if got := app.upstream.Requests(); !reflect.DeepEqual(got, []string{"GET /users", "GET /users"}) {
		t.Fatalf("upstream requests = %v, want two lists", got)
	}
	if !strings.HasPrefix(body, `<section id="user-list"`) {
		t.Fatalf("expected list panel fragment, got %s", body)
	}
	if got := countElements(t, body, "h4"); got != 1 {
		t.Fatalf("h4 count = %d, want 1", got)
	}
}

func TestSpanishCopyFromLangQuery(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeUserService{})
	resp, body := app.do(t, http.MethodGet, "/?lang=es", nil, nil)
	for _, marker := range []string{`<html lang="es">`, "Todos los Usuarios", "Enviar", "¡No hay usuarios!"} {
		if !strings.Contains(body, marker) {
			t.Fatalf("response missing %q: %s", marker, body)
		}
	}
	found := false
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "userclient_lang" && cookie.Value == "es" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected language cookie")
	}

	_, body = app.do(t, http.MethodGet, "/", nil, nil)
	if !strings.Contains(body, "Enviar") {
		t.Fatal("expected language cookie to persist Spanish copy")
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		pingStatus int
		wantStatus int
		want       healthResponse
	}{
		{name: "reachable", wantStatus: http.StatusOK, want: healthResponse{Status: "ok", UserService: "ok"}},
		{name: "unreachable", pingStatus: http.StatusBadGateway, wantStatus: http.StatusServiceUnavailable, want: healthResponse{Status: "degraded", UserService: "unreachable"}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			app := newTestApp(t, &fakeUserService{pingStatus: tc.pingStatus})
			resp, body := app.do(t, http.MethodGet, "/up", nil, nil)
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
			var got healthResponse
			if err := json.Unmarshal([]byte(body), &got); err != nil {
				t.Fatalf("decode health: %v", err)
			}
			if got != tc.want {
				t.Fatalf("health = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestStaticAssets(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeUserService{})
	resp, _ := app.do(t, http.MethodGet, "/static/app.css", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got := resp.Header.Get("Content-Type"); !strings.HasPrefix(got, "text/css") {
		t.Fatalf("Content-Type = %q", got)
	}
}

func TestUnknownRouteNotFound(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeUserService{})
	resp, _ := app.do(t, http.MethodGet, "/nope", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestClosedHandlerRendersUnavailable(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeUserService{})
	app.handler.Close()
	resp, _ := app.do(t, http.MethodGet, "/", nil, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
}

func TestListenAndServeStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	server, err := NewServer(context.Background(), Config{
		HTTPAddr:    "127.0.0.1:0",
		UserService: &noopUserService{},
		Logger:      log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	t.Cleanup(server.Close)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.ListenAndServe(ctx)
	}()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("ListenAndServe() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not return after cancel")
	}
}

func TestTrailingSlashRedirects(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeUserService{})
	resp, _ := app.do(t, http.MethodGet, "/users/?lang=es", nil, nil)
	if resp.StatusCode != http.StatusMovedPermanently {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusMovedPermanently)
	}
	if got := resp.Header.Get("Location"); got != "/users?lang=es" {
		t.Fatalf("Location = %q, want %q", got, "/users?lang=es")
	}
	if len(app.upstream.Requests()) != 0 {
		t.Fatalf("redirect must not reach the user service, got %v", app.upstream.Requests())
	}
}
