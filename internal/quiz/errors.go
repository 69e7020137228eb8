package quiz

import (
	"errors"
	"fmt"
	"strings"
)

// DenyTrialExhausted is the only deny reason the gate produces today.
const DenyTrialExhausted = "trial_exhausted"

var (
	// ErrInvalidInput rejects an empty topic or an out-of-range level before any provider call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNetworkFailure marks transport-level failures talking to the generation provider.
	ErrNetworkFailure = errors.New("network failure")
	// ErrContractViolation is matched by every *ContractViolationError.
	ErrContractViolation = errors.New("generation contract violation")

	ErrGenerationInFlight = errors.New("generation already in flight")
	ErrQuizInProgress     = errors.New("quiz already in progress")
	ErrNoActiveQuestion   = errors.New("no active question")
	ErrUnknownChoice      = errors.New("choice is not one of the current question's choices")
	ErrSuperseded         = errors.New("quiz was restarted before generation finished")
)

// AccessDeniedError is returned when the gate denies a generation request.
type AccessDeniedError struct {
	Reason string
}

func (e *AccessDeniedError) Error() string {
	return "access denied: " + e.Reason
}

// ContractViolationError lists every problem found in a rejected generation result.
type ContractViolationError struct {
	Problems []string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrContractViolation, strings.Join(e.Problems, "; "))
}

func (e *ContractViolationError) Is(target error) bool {
	return target == ErrContractViolation
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// IsRetryable reports whether re-issuing startQuiz may succeed without the caller changing anything.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNetworkFailure) || errors.Is(err, ErrContractViolation)
}
