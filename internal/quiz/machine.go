package quiz

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/ai-quiz/internal/quiz/scoring"
)

// Phase is the session lifecycle state.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseLoading   Phase = "loading"
	PhaseActive    Phase = "active"
	PhaseRevealing Phase = "revealing"
	PhaseComplete  Phase = "complete"
)

// DefaultRevealDelay is how long a locked answer stays on screen before advancing.
const DefaultRevealDelay = time.Second

// QuestionSource produces the question batch for a request. The machine
// re-checks every batch with ValidateQuestions before the quiz becomes active.
type QuestionSource interface {
	Generate(ctx context.Context, req Request) ([]Question, error)
}

// TrialRecorder persists the anonymous trial flag once a quiz is generated.
type TrialRecorder interface {
	MarkTrialUsed(ctx context.Context) error
}

// Observer is notified after every transition with a copy of the new state.
// Snapshots arrive one at a time in version order. SessionChanged must not
// call back into the Machine.
type Observer interface {
	SessionChanged(snap Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) SessionChanged(snap Snapshot) { f(snap) }

// session is the single authoritative record for the quiz being played.
type session struct {
	topic        string
	level        Level
	questions    []Question
	currentIndex int
	selected     *string
	score        int
}

// Snapshot is an immutable view of the machine at one version. Run identifies
// the quiz run it belongs to and changes on every start and restart.
type Snapshot struct {
	Phase        Phase
	Topic        string
	Level        Level
	CurrentIndex int
	Total        int
	Current      *Question
	Selected     *string
	Score        int
	Result       *scoring.Result
	LastError    string
	Version      uint64
	Run          uint64
}

// MachineOptions configures a Machine.
type MachineOptions struct {
	Source      QuestionSource
	Trial       TrialRecorder
	Scheduler   Scheduler
	RevealDelay time.Duration
	Scoring     *scoring.Engine
	Observer    Observer
}

// Machine drives one quiz session: Idle -> Loading -> Active <-> Revealing -> Complete.
//
// All transitions happen under mu. The reveal timer and the generation call
// capture the token current when they were issued and become no-ops if a
// restart or a new session bumped it in the meantime.
type Machine struct {
	mu      sync.Mutex
	phase   Phase
	sess    *session
	token   uint64
	version uint64
	timer   Timer
	lastErr string

	notifyMu   sync.Mutex
	notifyCond *sync.Cond
	delivered  uint64

	source      QuestionSource
	trial       TrialRecorder
	scheduler   Scheduler
	revealDelay time.Duration
	scoring     *scoring.Engine
	observer    Observer
	logger      zerolog.Logger
}

// NewMachine returns a machine in PhaseIdle.
func NewMachine(opts MachineOptions, logger zerolog.Logger) *Machine {
	sched := opts.Scheduler
	if sched == nil {
		sched = WallClock{}
	}
	delay := opts.RevealDelay
	if delay <= 0 {
		delay = DefaultRevealDelay
	}
	engine := opts.Scoring
	if engine == nil {
		engine = scoring.NewEngine(scoring.DefaultBandConfig())
	}
	m := &Machine{
		phase:       PhaseIdle,
		source:      opts.Source,
		trial:       opts.Trial,
		scheduler:   sched,
		revealDelay: delay,
		scoring:     engine,
		observer:    opts.Observer,
		logger:      logger.With().Str("component", "quiz_machine").Logger(),
	}
	m.notifyCond = sync.NewCond(&m.notifyMu)
	return m
}

// StartQuiz validates input, consults the access gate and generates a quiz.
// It blocks for the duration of the generation call. On any failure the
// machine is back in PhaseIdle with no session retained.
func (m *Machine) StartQuiz(ctx context.Context, id Identity, trialUsed bool, topic string, level int) error {
	req, err := Build(topic, level)
	if err != nil {
		return err
	}

	m.mu.Lock()
	switch m.phase {
	case PhaseLoading:
		m.mu.Unlock()
		return ErrGenerationInFlight
	case PhaseActive, PhaseRevealing:
		m.mu.Unlock()
		return ErrQuizInProgress
	case PhaseComplete:
		m.resetLocked()
	}

	if err := CheckAccess(id, trialUsed).Err(); err != nil {
		m.lastErr = err.Error()
		snap := m.commitLocked()
		m.mu.Unlock()
		m.notify(snap)
		return err
	}

	m.phase = PhaseLoading
	m.lastErr = ""
	m.token++
	token := m.token
	snap := m.commitLocked()
	m.mu.Unlock()
	m.notify(snap)

	questions, genErr := m.generate(ctx, req)

	m.mu.Lock()
	if m.token != token || m.phase != PhaseLoading {
		m.mu.Unlock()
		m.logger.Debug().Str("topic", req.Topic).Msg("discarding generation result for superseded session")
		return ErrSuperseded
	}
	if genErr != nil {
		m.phase = PhaseIdle
		m.sess = nil
		m.lastErr = genErr.Error()
		snap = m.commitLocked()
		m.mu.Unlock()
		m.notify(snap)
		return genErr
	}

	m.sess = &session{
		topic:     req.Topic,
		level:     req.Level,
		questions: questions,
	}
	m.phase = PhaseActive
	snap = m.commitLocked()
	m.mu.Unlock()
	m.notify(snap)

	if id == nil || !id.Authenticated() {
		if m.trial != nil {
			if err := m.trial.MarkTrialUsed(ctx); err != nil {
				m.logger.Warn().Err(err).Msg("failed to persist trial flag")
			}
		}
	}
	return nil
}

func (m *Machine) generate(ctx context.Context, req Request) ([]Question, error) {
	if m.source == nil {
		return nil, fmt.Errorf("%w: no question source configured", ErrNetworkFailure)
	}
	questions, err := m.source.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ValidateQuestions(req, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// SelectAnswer locks choice for the current question and schedules the advance.
// A second selection while the answer is being revealed is a no-op.
func (m *Machine) SelectAnswer(choice string) error {
	m.mu.Lock()
	switch m.phase {
	case PhaseRevealing:
		m.mu.Unlock()
		return nil
	case PhaseActive:
	default:
		m.mu.Unlock()
		return ErrNoActiveQuestion
	}

	q := m.sess.questions[m.sess.currentIndex]
	if !q.HasChoice(choice) {
		m.mu.Unlock()
		return ErrUnknownChoice
	}

	selected := choice
	m.sess.selected = &selected
	m.sess.score += m.scoring.Award(q.IsCorrect(choice))
	m.phase = PhaseRevealing

	token, index := m.token, m.sess.currentIndex
	m.timer = m.scheduler.AfterFunc(m.revealDelay, func() {
		m.advance(token, index)
	})

	snap := m.commitLocked()
	m.mu.Unlock()
	m.notify(snap)
	return nil
}

func (m *Machine) advance(token uint64, index int) {
	m.mu.Lock()
	if m.token != token || m.phase != PhaseRevealing || m.sess == nil || m.sess.currentIndex != index {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	if index+1 < len(m.sess.questions) {
		m.sess.currentIndex++
		m.sess.selected = nil
		m.phase = PhaseActive
	} else {
		m.phase = PhaseComplete
	}
	snap := m.commitLocked()
	m.mu.Unlock()
	m.notify(snap)
}

// Restart cancels any pending reveal, discards the session and returns to PhaseIdle.
func (m *Machine) Restart() {
	m.mu.Lock()
	m.resetLocked()
	m.lastErr = ""
	snap := m.commitLocked()
	m.mu.Unlock()
	m.notify(snap)
}

func (m *Machine) resetLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.token++
	m.sess = nil
	m.phase = PhaseIdle
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Snapshot returns the current state without bumping the version.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Result is the banded outcome, available only once the quiz is complete.
func (m *Machine) Result() (scoring.Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseComplete {
		return scoring.Result{}, false
	}
	return m.scoring.Final(m.sess.score, len(m.sess.questions)), true
}

func (m *Machine) commitLocked() Snapshot {
	m.version++
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() Snapshot {
	snap := Snapshot{
		Phase:     m.phase,
		LastError: m.lastErr,
		Version:   m.version,
		Run:       m.token,
	}
	if m.sess == nil {
		return snap
	}
	snap.Topic = m.sess.topic
	snap.Level = m.sess.level
	snap.CurrentIndex = m.sess.currentIndex
	snap.Total = len(m.sess.questions)
	snap.Score = m.sess.score

	q := m.sess.questions[m.sess.currentIndex]
	q.Choices = append([]string(nil), q.Choices...)
	snap.Current = &q
	if m.sess.selected != nil {
		sel := *m.sess.selected
		snap.Selected = &sel
	}
	if m.phase == PhaseComplete {
		res := m.scoring.Final(m.sess.score, len(m.sess.questions))
		snap.Result = &res
	}
	return snap
}

// notify delivers snap once every earlier version has been delivered. Each
// committed version is notified exactly once, so a transition racing a timer
// cannot overtake it on the way to the observer.
func (m *Machine) notify(snap Snapshot) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	for m.delivered+1 != snap.Version {
		m.notifyCond.Wait()
	}
	defer func() {
		m.delivered = snap.Version
		m.notifyCond.Broadcast()
	}()
	if m.observer != nil {
		m.observer.SessionChanged(snap)
	}
}
