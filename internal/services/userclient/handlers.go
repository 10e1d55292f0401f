package userclient

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	apperrors "github.com/louisbranch/userclient/internal/platform/errors"
	"github.com/louisbranch/userclient/internal/platform/timeouts"
	"github.com/louisbranch/userclient/internal/services/shared/htmx"
	"github.com/louisbranch/userclient/internal/services/shared/i18nhttp"
	"github.com/louisbranch/userclient/internal/services/userclient/platform/httpx"
	"github.com/louisbranch/userclient/internal/services/userclient/routepath"
	"github.com/louisbranch/userclient/internal/services/userclient/shell"
	"github.com/louisbranch/userclient/internal/services/userclient/templates"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Form values posted to the field-change route.
const (
	fieldParam = "field"
	valueParam = "value"
)

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	s, ok := h.resolveShell(w, r)
	if !ok {
		return
	}
	// Mount failures are logged by the shell; the page renders what it has.
	_ = s.Mount(httpx.RequestContext(r))
	h.renderHome(w, r, http.StatusOK, s.Snapshot())
}

func (h *Handler) handleUserList(w http.ResponseWriter, r *http.Request) {
	s, ok := h.resolveShell(w, r)
	if !ok {
		return
	}
	_ = s.FetchUsers(httpx.RequestContext(r))
	state := s.Snapshot()
	loc, lang := i18nhttp.ResolvePrinter(w, r)
	if htmx.IsHTMXRequest(r) {
		htmx.RenderPage(w, r, templates.UsersPanel(state.Users, state.Stale, loc), nil, "")
		return
	}
	h.renderPage(w, r, http.StatusOK, templates.UsersPage(state, loc), loc, lang)
}

func (h *Handler) handleFieldChange(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.Wrap(apperrors.CodeInvalidInput, "parse field change", err))
		return
	}
	field := strings.TrimSpace(r.PostForm.Get(fieldParam))
	if field == "" {
		h.writeError(w, r, apperrors.New(apperrors.CodeInvalidInput, "field change has no field name"))
		return
	}
	// htmx posts the input under its own name; plain clients may send value.
	value := r.PostForm.Get(field)
	if values, ok := r.PostForm[valueParam]; ok && field != valueParam && len(values) > 0 {
		value = values[0]
	}

	s, ok := h.resolveShell(w, r)
	if !ok {
		return
	}
	s.HandleFieldChange(field, value)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.Wrap(apperrors.CodeInvalidInput, "parse submit form", err))
		return
	}
	s, ok := h.resolveShell(w, r)
	if !ok {
		return
	}
	for _, field := range []string{shell.FieldUsername, shell.FieldEmail} {
		if values, posted := r.PostForm[field]; posted && len(values) > 0 {
			s.HandleFieldChange(field, values[0])
		}
	}

	if err := s.SubmitNewUser(httpx.RequestContext(r)); err != nil {
		if errors.Is(err, shell.ErrClosed) {
			h.writeError(w, r, apperrors.Wrap(apperrors.CodeUnavailable, "submit new user", err))
			return
		}
		h.renderHome(w, r, http.StatusUnprocessableEntity, s.Snapshot())
		return
	}
	htmx.Redirect(w, r, routepath.Root)
}

type healthResponse struct {
	Status      string `json:"status"`
	UserService string `json:"user_service"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.pinger == nil {
		_ = httpx.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", UserService: "unchecked"})
		return
	}
	ctx, cancel := context.WithTimeout(httpx.RequestContext(r), timeouts.HealthProbe)
	defer cancel()
	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.Printf("health: ping user service: %v", err)
		_ = httpx.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", UserService: "unreachable"})
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", UserService: "ok"})
}

// resolveShell returns the session's shell or writes an unavailable page.
func (h *Handler) resolveShell(w http.ResponseWriter, r *http.Request) (*shell.Shell, bool) {
	s, err := h.sessions.Resolve(w, r)
	if err != nil {
		h.writeError(w, r, apperrors.Wrap(apperrors.CodeUnavailable, "resolve session", err))
		return nil, false
	}
	return s, true
}

func (h *Handler) renderHome(w http.ResponseWriter, r *http.Request, status int, state shell.State) {
	loc, lang := i18nhttp.ResolvePrinter(w, r)
	h.renderPage(w, r, status, templates.UsersPage(state, loc), loc, lang)
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, body templ.Component, loc *message.Printer, lang string) {
	title := templates.T(loc, "app.title")
	full := templates.Page(templates.PageView{
		Title:        title,
		Lang:         lang,
		AssetBaseURL: h.assetBaseURL,
		Languages:    i18nhttp.BuildLanguageOptions(r, lang, languageLabel(loc)),
		Loc:          loc,
	}, body)
	htmx.RenderPageStatus(w, r, status, body, full, htmx.TitleTag(title))
}

// writeError logs err and renders a localized error page with its status.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	h.logger.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	loc, lang := i18nhttp.ResolvePrinter(w, r)
	text := http.StatusText(status)
	if key := apperrors.LocalizationKey(err); key != "" {
		text = templates.T(loc, key)
	}
	h.renderPage(w, r, status, templates.ErrorState(text, loc), loc, lang)
}

func languageLabel(loc *message.Printer) func(language.Tag) string {
	return func(tag language.Tag) string {
		return templates.T(loc, i18nhttp.LanguageKeyLabel(tag))
	}
}
