// Package templates renders the userclient HTML components.
package templates

import (
	"io"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/message"
)

// Localizer resolves catalog keys to display copy.
type Localizer interface {
	Sprintf(key message.Reference, a ...any) string
}

// T returns the localized copy for key, or key itself without a localizer.
func T(loc Localizer, key string, args ...any) string {
	if loc == nil {
		return key
	}
	return loc.Sprintf(key, args...)
}

// htmlWriter writes markup and keeps the first write error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(parts ...string) {
	for _, part := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, part)
	}
}

func (h *htmlWriter) text(value string) {
	h.raw(templ.EscapeString(value))
}

// attr writes ` name="value"` with value escaped.
func (h *htmlWriter) attr(name, value string) {
	h.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

func joinClasses(classes ...string) string {
	out := make([]string, 0, len(classes))
	for _, class := range classes {
		if class = strings.TrimSpace(class); class != "" {
			out = append(out, class)
		}
	}
	return strings.Join(out, " ")
}
