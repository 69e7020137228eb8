package trial

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/ai-quiz/internal/quiz"
)

// HeaderFreeUsed carries the client's own claim about its trial.
const HeaderFreeUsed = "x-free-used"

// Source selects where the trial flag is read from.
type Source string

const (
	// SourceHeader trusts the client header as given.
	SourceHeader Source = "header"
	// SourceLedger ignores the header and consults the server-side ledger.
	SourceLedger Source = "ledger"
)

// ParseSource validates a configured source name.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case "", SourceHeader:
		return SourceHeader, nil
	case SourceLedger:
		return SourceLedger, nil
	default:
		return "", fmt.Errorf("trial: unknown flag source %q", s)
	}
}

// Resolver answers "has this anonymous caller used their trial?" and hands out
// recorders that persist the answer after a successful generation.
type Resolver struct {
	source Source
	ledger Ledger
	logger zerolog.Logger
}

func NewResolver(source Source, ledger Ledger, logger zerolog.Logger) *Resolver {
	return &Resolver{
		source: source,
		ledger: ledger,
		logger: logger.With().Str("component", "trial_resolver").Str("source", string(source)).Logger(),
	}
}

// Source reports the configured flag source.
func (r *Resolver) Source() Source { return r.source }

// TrialUsed reads the flag for req. In header mode the value is untrusted client input.
func (r *Resolver) TrialUsed(req *http.Request) (bool, error) {
	if r.source == SourceHeader {
		return strings.EqualFold(strings.TrimSpace(req.Header.Get(HeaderFreeUsed)), "true"), nil
	}
	key, ok := ClientKeyFromContext(req.Context())
	if !ok {
		return false, ErrNoClientKey
	}
	if r.ledger == nil {
		return false, fmt.Errorf("trial: ledger source configured without a ledger")
	}
	return r.ledger.Used(req.Context(), key)
}

// Recorder binds a quiz.TrialRecorder to the caller's client key. With no key
// or no ledger the recorder only logs; the response header still carries the flag.
func (r *Resolver) Recorder(ctx context.Context) quiz.TrialRecorder {
	key, _ := ClientKeyFromContext(ctx)
	return &recorder{ledger: r.ledger, key: key, logger: r.logger}
}

type recorder struct {
	ledger Ledger
	key    string
	logger zerolog.Logger
}

func (rec *recorder) MarkTrialUsed(ctx context.Context) error {
	if rec.ledger == nil || rec.key == "" {
		rec.logger.Debug().Msg("trial consumed without a ledger entry")
		return nil
	}
	return rec.ledger.MarkUsed(ctx, rec.key)
}
