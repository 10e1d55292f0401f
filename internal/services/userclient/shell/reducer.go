package shell

import (
	apperrors "github.com/louisbranch/userclient/internal/platform/errors"
	"github.com/louisbranch/userclient/internal/services/userclient/userservice"
)

// Action is a state transition applied by Reduce.
type Action interface {
	isAction()
}

// FieldChanged records one keystroke-level update of a form field.
type FieldChanged struct {
	Field string
	Value string
}

// UsersLoaded replaces the collection with a fetched snapshot. Seq orders
// fetches; a snapshot older than the one already applied is ignored.
type UsersLoaded struct {
	Seq   uint64
	Users []userservice.User
}

// FetchFailed marks the collection stale without touching it.
type FetchFailed struct {
	Seq uint64
	Err error
}

// SubmitSucceeded clears the form after the service accepted a new user.
type SubmitSucceeded struct {
	Username string
}

// SubmitFailed keeps the form and records the failure notice.
type SubmitFailed struct {
	Err error
}

func (FieldChanged) isAction()    {}
func (UsersLoaded) isAction()     {}
func (FetchFailed) isAction()     {}
func (SubmitSucceeded) isAction() {}
func (SubmitFailed) isAction()    {}

// Reduce returns the state that follows applying action to state.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case FieldChanged:
		state.Form = state.Form.with(a.Field, a.Value)
		state.Notice = Notice{}
	case UsersLoaded:
		if a.Seq != 0 && a.Seq <= state.loadedSeq {
			return state
		}
		users := make([]userservice.User, len(a.Users))
		copy(users, a.Users)
		state.Users = users
		state.Loaded = true
		state.Stale = false
		if a.Seq != 0 {
			state.loadedSeq = a.Seq
		}
	case FetchFailed:
		if a.Seq != 0 && a.Seq <= state.loadedSeq {
			return state
		}
		state.Stale = true
	case SubmitSucceeded:
		state.Form = PendingForm{}
		state.Notice = Notice{Kind: NoticeCreated, Username: a.Username}
	case SubmitFailed:
		state.Notice = Notice{
			Kind:   NoticeError,
			Code:   apperrors.CodeOf(a.Err),
			Detail: apperrors.MetadataValue(a.Err, apperrors.MetaMessage),
		}
	}
	return state
}
