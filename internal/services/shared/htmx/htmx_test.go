package htmx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type testComponent struct {
	body string
}

func (c testComponent) Render(_ context.Context, w io.Writer) error {
	_, err := w.Write([]byte(c.body))
	return err
}

func TestIsHTMXRequest(t *testing.T) {
	t.Run("missing_request_is_not_htmx", func(t *testing.T) {
		t.Parallel()
		if got := IsHTMXRequest(nil); got {
			t.Fatalf("IsHTMXRequest(nil) = true, want false")
		}
	})

	t.Run("true_request_is_htmx", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/test", nil)
		r.Header.Set(RequestHeaderKey, "true")
		if got := IsHTMXRequest(r); !got {
			t.Fatalf("IsHTMXRequest(request) = false, want true")
		}
	})
}

func TestTitleTag(t *testing.T) {
	t.Parallel()
	got := TitleTag(`Users <Admin>`)
	want := "<title>Users &lt;Admin&gt;</title>"
	if got != want {
		t.Fatalf("TitleTag(...) = %q, want %q", got, want)
	}
	if got := TitleTag("  "); got != "" {
		t.Fatalf("TitleTag(blank) = %q, want empty", got)
	}
}

func TestRenderPageForNonHTMXUsesFullRender(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	fragment := testComponent{body: "<div>fragment</div>"}
	full := testComponent{body: "<html><body>full</body></html>"}

	RenderPage(w, r, fragment, full, TitleTag("Provided"))
	if got := w.Body.String(); got != "<html><body>full</body></html>" {
		t.Fatalf("rendered body = %q, want full page body", got)
	}
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRenderPageForHTMXExtractsMainContent(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	r.Header.Set(RequestHeaderKey, "true")
	w := httptest.NewRecorder()

	full := testComponent{body: `<html><head><title>Users</title></head><body><main id="main"><h1>All Users</h1></main></body></html>`}
	RenderPage(w, r, nil, full, TitleTag("Users"))

	if got := w.Body.String(); got != "<title>Users</title><h1>All Users</h1>" {
		t.Fatalf("rendered body = %q", got)
	}
}

func TestRenderPageForHTMXInjectsMissingTitle(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	r.Header.Set(RequestHeaderKey, "true")
	w := httptest.NewRecorder()

	fragment := testComponent{body: "<ul>fragment</ul>"}
	RenderPage(w, r, fragment, nil, TitleTag("Fragment Page"))

	got := w.Body.String()
	if !strings.HasPrefix(got, "<title>Fragment Page</title>") {
		t.Fatalf("expected injected title prefix in HTMX response, got %q", got)
	}
	if !strings.HasSuffix(got, "<ul>fragment</ul>") {
		t.Fatalf("expected original fragment to remain, got %q", got)
	}
}

func TestRenderPageForHTMXNoInjectedTitleWhenMissing(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	r.Header.Set(RequestHeaderKey, "true")
	w := httptest.NewRecorder()

	RenderPage(w, r, testComponent{body: "<ul>fragment</ul>"}, nil, "")

	if got := w.Body.String(); got != "<ul>fragment</ul>" {
		t.Fatalf("rendered body = %q, want %q", got, "<ul>fragment</ul>")
	}
}

func TestRenderPageStatusPropagatesStatus(t *testing.T) {
	t.Parallel()

	for _, hx := range []bool{false, true} {
		r := httptest.NewRequest(http.MethodPost, "/users", nil)
		if hx {
			r.Header.Set(RequestHeaderKey, "true")
		}
		w := httptest.NewRecorder()
		RenderPageStatus(w, r, http.StatusUnprocessableEntity, nil, testComponent{body: "<main>form</main>"}, "")
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("htmx=%t status = %d, want %d", hx, w.Code, http.StatusUnprocessableEntity)
		}
	}
}

func TestRedirect(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/users", nil)
	w := httptest.NewRecorder()
	Redirect(w, r, "/")
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if got := w.Header().Get("Location"); got != "/" {
		t.Fatalf("Location = %q, want %q", got, "/")
	}

	r = httptest.NewRequest(http.MethodPost, "/users", nil)
	r.Header.Set(RequestHeaderKey, "true")
	w = httptest.NewRecorder()
	Redirect(w, r, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("htmx status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get(RedirectHeaderKey); got != "/" {
		t.Fatalf("%s = %q, want %q", RedirectHeaderKey, got, "/")
	}
}

func TestCopyHeadersUsesSingleValueSemanticsForNonSetCookie(t *testing.T) {
	t.Parallel()
	dst := http.Header{}
	src := http.Header{}
	src.Add("Content-Type", "text/plain")
	src.Add("Content-Type", "text/html; charset=utf-8")
	src.Add("Set-Cookie", "id=1")
	src.Add("Set-Cookie", "token=abc")

	copyHeaders(dst, src)

	contentType := dst.Values("Content-Type")
	if len(contentType) != 1 {
		t.Fatalf("expected one Content-Type value, got %v", contentType)
	}
	if got := contentType[0]; got != "text/html; charset=utf-8" {
		t.Fatalf("content-type = %q, want %q", got, "text/html; charset=utf-8")
	}
	if cookies := dst.Values("Set-Cookie"); len(cookies) != 2 {
		t.Fatalf("expected two Set-Cookie values, got %v", cookies)
	}
}
