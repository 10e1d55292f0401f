package shell

import (
	"maps"

	apperrors "github.com/louisbranch/userclient/internal/platform/errors"
	"github.com/louisbranch/userclient/internal/services/userclient/userservice"
)

// Form field names posted by the create form.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
)

// PendingForm holds the in-progress values of the create form.
type PendingForm struct {
	Username string
	Email    string
	// extra keeps values for field names the form does not render.
	extra map[string]string
}

// Value returns the current value of field, or "" when it was never set.
func (f PendingForm) Value(field string) string {
	switch field {
	case FieldUsername:
		return f.Username
	case FieldEmail:
		return f.Email
	default:
		return f.extra[field]
	}
}

func (f PendingForm) with(field, value string) PendingForm {
	switch field {
	case FieldUsername:
		f.Username = value
	case FieldEmail:
		f.Email = value
	default:
		extra := make(map[string]string, len(f.extra)+1)
		maps.Copy(extra, f.extra)
		extra[field] = value
		f.extra = extra
	}
	return f
}

func (f PendingForm) clone() PendingForm {
	if f.extra != nil {
		f.extra = maps.Clone(f.extra)
	}
	return f
}

// NoticeKind classifies the message shown above the form.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeCreated
	NoticeError
)

// Notice is the one-line feedback left by the last submission.
type Notice struct {
	Kind NoticeKind
	// Username is set for NoticeCreated.
	Username string
	// Code and Detail are set for NoticeError. Detail is the user service's
	// own message when it sent one.
	Code   apperrors.Code
	Detail string
}

// State is everything the page renders for one browser session.
type State struct {
	Users  []userservice.User
	Form   PendingForm
	Notice Notice
	// Loaded reports whether any fetch has succeeded yet.
	Loaded bool
	// Stale is set when the most recent fetch failed and Users is older
	// than what the service holds.
	Stale bool

	loadedSeq uint64
}

func (s State) clone() State {
	if s.Users != nil {
		users := make([]userservice.User, len(s.Users))
		copy(users, s.Users)
		s.Users = users
	}
	s.Form = s.Form.clone()
	return s
}
