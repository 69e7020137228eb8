package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/ai-quiz/internal/auth"
	"github.com/gokatarajesh/ai-quiz/internal/quiz"
	"github.com/gokatarajesh/ai-quiz/internal/quiz/scoring"
	"github.com/gokatarajesh/ai-quiz/internal/trial"
	ws "github.com/gokatarajesh/ai-quiz/pkg/http/ws"
)

// Owner identifies who may drive a session: a signed-in user or an anonymous client key.
type Owner struct {
	UserID    string
	ClientKey string
}

// OwnerFromContext resolves the caller from the auth and client-key middleware.
func OwnerFromContext(ctx context.Context) Owner {
	if id, ok := auth.IdentityFromContext(ctx).ID(); ok {
		return Owner{UserID: id}
	}
	key, _ := trial.ClientKeyFromContext(ctx)
	return Owner{ClientKey: key}
}

// Anonymous reports whether the owner has no signed-in user.
func (o Owner) Anonymous() bool { return o.UserID == "" }

// Empty reports whether the owner carries no identity at all.
func (o Owner) Empty() bool { return o.UserID == "" && o.ClientKey == "" }

// Owns reports whether caller may act on a session owned by o.
func (o Owner) Owns(caller Owner) bool {
	if o.UserID != "" {
		return o.UserID == caller.UserID
	}
	return o.ClientKey != "" && o.ClientKey == caller.ClientKey
}

// Completion describes one finished quiz run.
type Completion struct {
	RunID     uuid.UUID
	SessionID uuid.UUID
	Owner     Owner
	Topic     string
	Level     quiz.Level
	Result    scoring.Result
}

// CompletionHandler receives every finished run exactly once.
type CompletionHandler interface {
	QuizCompleted(c Completion)
}

// Session binds a quiz machine to its owner and its live watchers.
type Session struct {
	ID        uuid.UUID
	Owner     Owner
	CreatedAt time.Time

	machine     *quiz.Machine
	hub         *ws.Hub
	completions CompletionHandler
	now         func() time.Time
	logger      zerolog.Logger

	mu       sync.Mutex
	lastSeen time.Time
	runID    uuid.UUID
	runToken uint64
	closed   bool
}

// Start begins a new quiz run on the session.
func (s *Session) Start(ctx context.Context, id quiz.Identity, trialUsed bool, topic string, level int) error {
	s.touch()
	return s.machine.StartQuiz(ctx, id, trialUsed, topic, level)
}

// SelectAnswer locks a choice for the current question.
func (s *Session) SelectAnswer(choice string) error {
	s.touch()
	return s.machine.SelectAnswer(choice)
}

// Restart returns the session to idle.
func (s *Session) Restart() {
	s.touch()
	s.machine.Restart()
}

// View returns the current state as seen by clients.
func (s *Session) View() View {
	return NewView(s.ID, s.machine.Snapshot())
}

// Phase returns the machine phase.
func (s *Session) Phase() quiz.Phase {
	return s.machine.Phase()
}

// LastSeen is the time of the last caller interaction or transition.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = s.now()
	s.mu.Unlock()
}

// SessionChanged fans each transition out to watchers and records completed runs.
func (s *Session) SessionChanged(snap quiz.Snapshot) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.lastSeen = s.now()
	if snap.Phase == quiz.PhaseLoading {
		s.runID = uuid.New()
		s.runToken = snap.Run
	}
	runID, sameRun := s.runID, s.runToken == snap.Run
	s.mu.Unlock()

	if s.hub != nil {
		msg, err := ws.NewMessage(ws.TypeSnapshot, NewView(s.ID, snap))
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to encode snapshot")
		} else {
			_ = s.hub.BroadcastToSession(s.ID, msg)
		}
	}

	if snap.Phase == quiz.PhaseComplete && snap.Result != nil && s.completions != nil {
		if !sameRun {
			s.logger.Warn().Uint64("run", snap.Run).Msg("completion does not belong to the current run; not recorded")
			return
		}
		s.completions.QuizCompleted(Completion{
			RunID:     runID,
			SessionID: s.ID,
			Owner:     s.Owner,
			Topic:     snap.Topic,
			Level:     snap.Level,
			Result:    *snap.Result,
		})
	}
}

// close stops pending timers and disconnects watchers. Later transitions are not broadcast.
func (s *Session) close(reason string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.machine.Restart()
	if s.hub != nil {
		msg, err := ws.NewMessage(ws.TypeClosed, ws.ClosedPayload{SessionID: s.ID.String(), Reason: reason})
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to encode close message")
			return
		}
		s.hub.CloseSession(s.ID, msg)
	}
}
