package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/louisbranch/userclient/internal/services/shared/i18nhttp"
	"github.com/louisbranch/userclient/internal/services/userclient/routepath"
	"github.com/louisbranch/userclient/internal/services/userclient/shell"
)

// MainID is the DOM id of the swappable main region.
const MainID = "main"

// DefaultAssetBaseURL serves the htmx script when no asset origin is set.
const DefaultAssetBaseURL = "https://unpkg.com/htmx.org@2.0.4/dist"

// PageView carries the document chrome around a page body.
type PageView struct {
	Title        string
	Lang         string
	AssetBaseURL string
	Languages    []i18nhttp.LanguageOption
	Loc          Localizer
}

// Page renders a full HTML document with body inside <main>.
func Page(view PageView, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		assetBase := strings.TrimRight(strings.TrimSpace(view.AssetBaseURL), "/")
		if assetBase == "" {
			assetBase = DefaultAssetBaseURL
		}
		lang := view.Lang
		if lang == "" {
			lang = "en-US"
		}

		h := &htmlWriter{w: w}
		h.raw("<!doctype html><html")
		h.attr("lang", lang)
		h.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		h.text(view.Title)
		h.raw("</title><link")
		h.attr("rel", "stylesheet")
		h.attr("href", routepath.StaticPrefix+"app.css")
		h.raw("><script")
		h.attr("src", assetBase+"/htmx.min.js")
		h.raw(` defer></script></head><body><header class="app-header"><h1>`)
		h.text(T(view.Loc, "app.title"))
		h.raw(`</h1><nav class="languages">`)
		for _, option := range view.Languages {
			h.raw("<a")
			h.attr("href", option.URL)
			h.attr("hreflang", option.Tag)
			if option.Active {
				h.attr("aria-current", "true")
			}
			h.raw(">")
			h.text(option.Label)
			h.raw("</a>")
		}
		h.raw(`</nav></header><main`)
		h.attr("id", MainID)
		h.raw(">")
		if h.err != nil {
			return h.err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		h.raw("</main></body></html>")
		return h.err
	})
}

// UsersPage is the main content of the home page: the last notice, the
// user panel and the create form.
func UsersPage(state shell.State, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, c := range []templ.Component{
			Notice(state.Notice, loc),
			UsersPanel(state.Users, state.Stale, loc),
			AddUserForm(state.Form, loc),
		} {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

// ErrorState renders a page-level failure message.
func ErrorState(message string, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section class="error-state" role="alert"><h2>`)
		h.text(T(loc, "error.page_title"))
		h.raw("</h2><p>")
		h.text(message)
		h.raw("</p></section>")
		return h.err
	})
}
