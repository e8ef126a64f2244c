package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lifemap/internal/views"
)

// ErrNotFound is returned for an unknown or expired session id.
var ErrNotFound = eris.New("session not found")

// Registry owns every live session. Sessions are never persisted.
type Registry struct {
	data     *views.Data
	defaults Defaults
	ttl      time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*State
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// NewRegistry creates a registry whose sessions read data. A zero ttl
// disables expiry.
func NewRegistry(data *views.Data, defaults Defaults, ttl time.Duration, opts ...Option) *Registry {
	r := &Registry{
		data:     data,
		defaults: defaults,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*State),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Create starts a session with the default field and year.
func (r *Registry) Create() *State {
	s := newState(uuid.NewString(), r.data, r.defaults, r.now)

	r.mu.Lock()
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()

	zap.L().Debug("session: created", zap.String("id", s.ID), zap.Int("active", n))
	return s
}

// Get returns the session with id.
func (r *Registry) Get(id string) (*State, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "session %q", id)
	}
	return s, nil
}

// Delete drops a session. Deleting an unknown id fails with ErrNotFound.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return eris.Wrapf(ErrNotFound, "session %q", id)
	}
	delete(r.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IDs returns the live session ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sweep removes sessions idle for longer than the ttl and returns how many
// were removed.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		zap.L().Info("session: swept idle sessions",
			zap.Int("removed", removed),
			zap.Int("active", len(r.sessions)),
		)
	}
	return removed
}
