package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/ai-quiz/internal/metrics"
	"github.com/gokatarajesh/ai-quiz/internal/quiz"
	ws "github.com/gokatarajesh/ai-quiz/pkg/http/ws"
)

const defaultIdleTTL = 30 * time.Minute

// ErrSessionNotFound is returned for unknown sessions and for sessions owned by someone else.
var ErrSessionNotFound = errors.New("session not found")

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// Machine is the template for every session's machine. Observer and Trial are set per session.
	Machine     quiz.MachineOptions
	IdleTTL     time.Duration
	Hub         *ws.Hub
	Completions CompletionHandler
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

// Registry holds the live quiz sessions of this process.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	machine     quiz.MachineOptions
	idleTTL     time.Duration
	hub         *ws.Hub
	completions CompletionHandler
	metrics     *metrics.Metrics
	now         func() time.Time
	logger      zerolog.Logger
}

func NewRegistry(opts RegistryOptions, logger zerolog.Logger) *Registry {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = defaultIdleTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		sessions:    make(map[uuid.UUID]*Session),
		machine:     opts.Machine,
		idleTTL:     opts.IdleTTL,
		hub:         opts.Hub,
		completions: opts.Completions,
		metrics:     opts.Metrics,
		now:         opts.Now,
		logger:      logger.With().Str("component", "session_registry").Logger(),
	}
}

// Create registers an idle session for owner. trial persists the anonymous trial flag.
func (r *Registry) Create(owner Owner, trial quiz.TrialRecorder) *Session {
	id := uuid.New()
	now := r.now()
	logger := r.logger.With().Str("session_id", id.String()).Logger()
	sess := &Session{
		ID:          id,
		Owner:       owner,
		CreatedAt:   now,
		hub:         r.hub,
		completions: r.completions,
		now:         r.now,
		logger:      logger,
		lastSeen:    now,
	}

	opts := r.machine
	opts.Observer = sess
	opts.Trial = trial
	sess.machine = quiz.NewMachine(opts, logger)

	r.mu.Lock()
	r.sessions[id] = sess
	n := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetActiveSessions(n)
	logger.Debug().Bool("anonymous", owner.Anonymous()).Msg("session created")
	return sess
}

// Get returns the session if caller owns it.
func (r *Registry) Get(id uuid.UUID, caller Owner) (*Session, error) {
	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok || !sess.Owner.Owns(caller) {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Remove closes and forgets a session.
func (r *Registry) Remove(id uuid.UUID, reason string) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()
	if !ok {
		return
	}
	sess.close(reason)
	r.metrics.SetActiveSessions(n)
}

// Sweep removes sessions idle for longer than the TTL. Sessions waiting on
// generation are left alone. It returns the number removed.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.RLock()
	var expired []uuid.UUID
	for id, sess := range r.sessions {
		if now.Sub(sess.LastSeen()) < r.idleTTL {
			continue
		}
		if sess.Phase() == quiz.PhaseLoading {
			continue
		}
		expired = append(expired, id)
	}
	r.mu.RUnlock()

	for _, id := range expired {
		r.Remove(id, "expired")
	}
	return len(expired)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close removes every session.
func (r *Registry) Close() {
	r.mu.RLock()
	ids := make([]uuid.UUID, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	for _, id := range ids {
		r.Remove(id, "shutdown")
	}
}
