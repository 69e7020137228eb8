package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/ai-quiz/internal/auth"
	"github.com/gokatarajesh/ai-quiz/internal/auth/jwt"
	"github.com/gokatarajesh/ai-quiz/internal/quiz"
	"github.com/gokatarajesh/ai-quiz/internal/trial"
)

var testLogger = zerolog.New(io.Discard)

type manualTimer struct {
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// manualScheduler holds reveal callbacks until the test advances it.
type manualScheduler struct {
	mu      sync.Mutex
	pending []*manualTimer
}

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) quiz.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{f: f}
	s.pending = append(s.pending, t)
	return t
}

func (s *manualScheduler) advance() {
	s.mu.Lock()
	timers := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, t := range timers {
		if !t.stopped {
			t.f()
		}
	}
}

type questionSource struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *questionSource) Generate(_ context.Context, req quiz.Request) ([]quiz.Question, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]quiz.Question, req.ExpectedCount)
	for i := range out {
		out[i] = quiz.Question{
			Question: fmt.Sprintf("Question %d?", i+1),
			Choices:  []string{"A", "B", "C", "D"},
			Answer:   "A",
		}
	}
	return out, nil
}

func (s *questionSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type completionLog struct {
	mu   sync.Mutex
	runs []Completion
}

func (c *completionLog) QuizCompleted(done Completion) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs = append(c.runs, done)
}

func (c *completionLog) all() []Completion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Completion(nil), c.runs...)
}

type fixture struct {
	source      *questionSource
	scheduler   *manualScheduler
	completions *completionLog
	registry    *Registry
	ledger      *trial.MemoryLedger
	trials      *trial.Resolver
}

func newFixture(source trial.Source) *fixture {
	f := &fixture{
		source:      &questionSource{},
		scheduler:   &manualScheduler{},
		completions: &completionLog{},
		ledger:      trial.NewMemoryLedger(),
	}
	f.registry = NewRegistry(RegistryOptions{
		Machine:     quiz.MachineOptions{Source: f.source, Scheduler: f.scheduler},
		Completions: f.completions,
	}, testLogger)
	f.trials = trial.NewResolver(source, f.ledger, testLogger)
	return f
}

func asClient(r *http.Request, key string) *http.Request {
	return r.WithContext(trial.WithClientKey(r.Context(), key))
}

func asUser(r *http.Request, userID uuid.UUID) *http.Request {
	return r.WithContext(auth.WithClaims(r.Context(), &jwt.Claims{UserID: userID, Email: "ada@example.com"}))
}
