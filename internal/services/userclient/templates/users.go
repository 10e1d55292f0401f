package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
	"github.com/louisbranch/userclient/internal/services/userclient/routepath"
	"github.com/louisbranch/userclient/internal/services/userclient/userservice"
)

// UserListID is the DOM id of the swappable user panel.
const UserListID = "user-list"

// UserList renders one heading per user in the given order, keyed by id.
// An empty slice renders an empty list and an empty-state line.
func UserList(users []userservice.User, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="users">`)
		for _, user := range users {
			id := strconv.Itoa(user.ID)
			h.raw("<h4")
			h.attr("id", "user-"+id)
			h.attr("data-user-id", id)
			h.attr("class", joinClasses("user", inactiveClass(user.Active)))
			h.raw(">")
			h.text(user.Username)
			h.raw("</h4>")
		}
		h.raw(`</div>`)
		if len(users) == 0 {
			h.raw(`<p class="empty">`)
			h.text(T(loc, "users.empty"))
			h.raw(`</p>`)
		}
		return h.err
	})
}

func inactiveClass(active bool) string {
	if active {
		return ""
	}
	return "inactive"
}

// UsersPanel wraps UserList with its heading and a refresh control that
// re-fetches the list in place. stale marks a list whose last refresh failed.
func UsersPanel(users []userservice.User, stale bool, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw("<section")
		h.attr("id", UserListID)
		h.attr("class", "user-panel")
		if stale {
			h.attr("data-stale", "true")
		}
		h.raw(`><header><h2>`)
		h.text(T(loc, "users.heading"))
		h.raw(`</h2><a`)
		h.attr("href", routepath.Users)
		h.attr("hx-get", routepath.Users)
		h.attr("hx-target", "#"+UserListID)
		h.attr("hx-swap", "outerHTML")
		h.raw(">")
		h.text(T(loc, "users.refresh"))
		h.raw(`</a></header>`)
		if h.err != nil {
			return h.err
		}
		if err := UserList(users, loc).Render(ctx, w); err != nil {
			return err
		}
		h.raw(`</section>`)
		return h.err
	})
}
