// Package shell owns the per-session client state of the user page: the
// fetched user collection, the pending create form and the last notice.
// All mutation goes through Reduce under the shell's lock.
package shell

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/louisbranch/userclient/internal/services/userclient/userservice"
)

// ErrClosed is returned by operations on a shell after Close.
var ErrClosed = errors.New("shell is closed")

// UserService is the remote user service as seen by a shell.
type UserService interface {
	ListUsers(ctx context.Context) ([]userservice.User, error)
	CreateUser(ctx context.Context, req userservice.CreateUserRequest) error
}

// Option configures a Shell.
type Option func(*Shell)

// WithLogger sets the logger used for failed service calls.
func WithLogger(logger *log.Logger) Option {
	return func(s *Shell) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Shell is the state owner for one browser session.
type Shell struct {
	service UserService
	logger  *log.Logger

	// ctx lives as long as the shell; every service call is bound to it.
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	seq     uint64
	mounted bool
	closed  bool
}

// New builds a shell with an empty collection and an empty form.
func New(service UserService, opts ...Option) *Shell {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Shell{
		service: service,
		logger:  log.Default(),
		ctx:     ctx,
		cancel:  cancel,
		state:   State{Users: []userservice.User{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mount fetches the collection the first time the session's page is shown.
// It is a no-op once any fetch has been issued.
func (s *Shell) Mount(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.mounted {
		s.mu.Unlock()
		return nil
	}
	s.mounted = true
	s.mu.Unlock()
	return s.FetchUsers(ctx)
}

// FetchUsers replaces the collection with the service's current list. On
// failure the error is logged and the previous collection is kept.
func (s *Shell) FetchUsers(ctx context.Context) error {
	ctx, release, err := s.bind(ctx)
	if err != nil {
		return err
	}
	defer release()

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mounted = true
	s.mu.Unlock()

	users, err := s.service.ListUsers(ctx)
	if err != nil {
		s.logger.Printf("fetch users: %v", err)
		if !s.dispatch(FetchFailed{Seq: seq, Err: err}) {
			return ErrClosed
		}
		return err
	}
	if !s.dispatch(UsersLoaded{Seq: seq, Users: users}) {
		return ErrClosed
	}
	return nil
}

// HandleFieldChange records the latest value typed into field.
func (s *Shell) HandleFieldChange(field, value string) {
	s.dispatch(FieldChanged{Field: field, Value: value})
}

// SubmitNewUser posts the pending form. On success the form is cleared and
// the collection re-fetched; on failure the form is left as typed and no
// fetch is issued. A failed re-fetch after a successful create is logged
// but not returned.
func (s *Shell) SubmitNewUser(ctx context.Context) error {
	ctx, release, err := s.bind(ctx)
	if err != nil {
		return err
	}
	defer release()

	form := s.Snapshot().Form
	req := userservice.CreateUserRequest{Username: form.Username, Email: form.Email}
	if err := s.service.CreateUser(ctx, req); err != nil {
		s.logger.Printf("create user %q: %v", req.Username, err)
		if !s.dispatch(SubmitFailed{Err: err}) {
			return ErrClosed
		}
		return err
	}
	if !s.dispatch(SubmitSucceeded{Username: req.Username}) {
		return ErrClosed
	}
	if err := s.FetchUsers(ctx); errors.Is(err, ErrClosed) {
		return err
	}
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Shell) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Closed reports whether Close has been called.
func (s *Shell) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close cancels in-flight service calls. Results arriving afterwards are
// dropped.
func (s *Shell) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

// dispatch applies action unless the shell is closed.
func (s *Shell) dispatch(action Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.state = Reduce(s.state, action)
	return true
}

// bind derives a context cancelled by either ctx or the shell's Close.
func (s *Shell) bind(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.Closed() {
		return nil, nil, ErrClosed
	}
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}, nil
}
