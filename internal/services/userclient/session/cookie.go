package session

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/louisbranch/userclient/internal/services/userclient/platform/requestmeta"
)

// CookieName is the browser session cookie.
const CookieName = "userclient_session"

// ReadCookie returns the session id from the request when it is a valid uuid.
func ReadCookie(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie == nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if _, err := uuid.Parse(value); err != nil {
		return "", false
	}
	return value, true
}

// WriteCookie sets the session cookie for the current request.
func WriteCookie(w http.ResponseWriter, r *http.Request, policy requestmeta.SchemePolicy, sessionID string) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    strings.TrimSpace(sessionID),
		Path:     "/",
		HttpOnly: true,
		Secure:   requestmeta.IsHTTPS(r, policy),
		SameSite: http.SameSiteLaxMode,
	})
}
