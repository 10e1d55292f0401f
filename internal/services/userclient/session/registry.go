// Package session keeps one application shell per browser session.
package session

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/louisbranch/userclient/internal/platform/timeouts"
	"github.com/louisbranch/userclient/internal/services/userclient/platform/requestmeta"
	"github.com/louisbranch/userclient/internal/services/userclient/shell"
)

// ErrClosed is returned by Resolve after the registry is closed.
var ErrClosed = errors.New("session registry is closed")

// DefaultTTL is the idle lifetime of a session when none is configured.
const DefaultTTL = 30 * time.Minute

// Config defines registry inputs.
type Config struct {
	// NewShell builds the shell for a new session.
	NewShell func() *shell.Shell
	// TTL is how long an idle session is kept.
	TTL          time.Duration
	SchemePolicy requestmeta.SchemePolicy
	Logger       *log.Logger
	// Now overrides the clock in tests.
	Now func() time.Time
}

type entry struct {
	shell    *shell.Shell
	lastSeen time.Time
}

// Registry maps session ids to shells and expires idle ones.
type Registry struct {
	newShell func() *shell.Shell
	ttl      time.Duration
	policy   requestmeta.SchemePolicy
	logger   *log.Logger
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool
}

// NewRegistry validates cfg and builds an empty registry.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.NewShell == nil {
		return nil, errors.New("session shell factory is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Registry{
		newShell: cfg.NewShell,
		ttl:      ttl,
		policy:   cfg.SchemePolicy,
		logger:   logger,
		now:      now,
		entries:  make(map[string]*entry),
	}, nil
}

// Resolve returns the shell for the request's session, starting a new
// session and setting its cookie when the request has none or it expired.
func (r *Registry) Resolve(w http.ResponseWriter, req *http.Request) (*shell.Shell, error) {
	now := r.now()
	id, hasCookie := ReadCookie(req)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	if hasCookie {
		if e, ok := r.entries[id]; ok && !r.expired(e, now) {
			e.lastSeen = now
			r.mu.Unlock()
			return e.shell, nil
		}
	}
	var stale *entry
	if hasCookie {
		stale = r.entries[id]
		delete(r.entries, id)
	}
	id = uuid.NewString()
	e := &entry{shell: r.newShell(), lastSeen: now}
	r.entries[id] = e
	r.mu.Unlock()

	if stale != nil {
		stale.shell.Close()
	}
	WriteCookie(w, req, r.policy, id)
	return e.shell, nil
}

// Lookup returns the live shell for id without refreshing it.
func (r *Registry) Lookup(id string) (*shell.Shell, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || r.expired(e, r.now()) {
		return nil, false
	}
	return e.shell, true
}

// Len returns the number of tracked sessions, expired ones included.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep closes and forgets sessions idle longer than the TTL. It returns
// how many were removed.
func (r *Registry) Sweep() int {
	now := r.now()
	var expired []*shell.Shell

	r.mu.Lock()
	for id, e := range r.entries {
		if r.expired(e, now) {
			expired = append(expired, e.shell)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	return len(expired)
}

// Run sweeps on every interval tick until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = timeouts.SessionSweep
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := r.Sweep(); removed > 0 {
				r.logger.Printf("expired %d idle sessions", removed)
			}
		}
	}
}

// Close closes every shell and rejects further sessions.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range entries {
		e.shell.Close()
	}
}

func (r *Registry) expired(e *entry, now time.Time) bool {
	return now.Sub(e.lastSeen) > r.ttl
}
