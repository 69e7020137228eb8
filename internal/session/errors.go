package session

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gokatarajesh/ai-quiz/internal/logging"
	"github.com/gokatarajesh/ai-quiz/internal/quiz"
	httperrors "github.com/gokatarajesh/ai-quiz/pkg/http/errors"
)

// classifyError maps machine and registry errors onto the API error taxonomy.
// The same classification is served over HTTP and sent over the stream.
func classifyError(err error) *httperrors.Error {
	var (
		apiErr    *httperrors.Error
		denied    *quiz.AccessDeniedError
		violation *quiz.ContractViolationError
	)

	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, ErrSessionNotFound):
		return httperrors.New(http.StatusNotFound, httperrors.ErrCodeSessionNotFound, "Session not found")
	case errors.Is(err, quiz.ErrInvalidInput):
		return httperrors.New(http.StatusBadRequest, httperrors.ErrCodeInvalidInput, err.Error()).
			WithField(invalidField(err))
	case errors.Is(err, quiz.ErrUnknownChoice):
		return httperrors.New(http.StatusBadRequest, httperrors.ErrCodeUnknownChoice, err.Error()).
			WithField("choice")
	case errors.As(err, &denied):
		return httperrors.New(http.StatusForbidden, httperrors.ErrCodeTrialExhausted, TrialExhaustedMessage)
	case errors.Is(err, quiz.ErrGenerationInFlight):
		return httperrors.New(http.StatusConflict, httperrors.ErrCodeGenerationInFlight, err.Error())
	case errors.Is(err, quiz.ErrQuizInProgress):
		return httperrors.New(http.StatusConflict, httperrors.ErrCodeQuizInProgress, err.Error())
	case errors.Is(err, quiz.ErrNoActiveQuestion):
		return httperrors.New(http.StatusConflict, httperrors.ErrCodeNoActiveQuestion, err.Error())
	case errors.Is(err, quiz.ErrSuperseded):
		return httperrors.New(http.StatusConflict, httperrors.ErrCodeSuperseded, err.Error())
	case errors.As(err, &violation):
		problems := make([]interface{}, len(violation.Problems))
		for i, p := range violation.Problems {
			problems[i] = p
		}
		return httperrors.New(http.StatusBadGateway, httperrors.ErrCodeContractViolation,
			"The quiz generator returned an unusable quiz. Please try again.").
			WithDetails(map[string]interface{}{"problems": problems, "retryable": quiz.IsRetryable(err)})
	case errors.Is(err, quiz.ErrNetworkFailure):
		return httperrors.New(http.StatusBadGateway, httperrors.ErrCodeNetworkFailure,
			"The quiz generator is unreachable. Please try again.")
	default:
		return httperrors.New(http.StatusInternalServerError, httperrors.ErrCodeInternalError, "Internal server error")
	}
}

// respondQuizError serves the classified error. Upstream and unexpected
// failures are logged on the request logger.
func respondQuizError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := classifyError(err)
	logger := logging.FromContext(r.Context())
	switch apiErr.Status {
	case http.StatusBadGateway:
		logger.Warn().Err(err).Str("code", apiErr.Code).Msg("quiz generation failed")
	case http.StatusInternalServerError:
		logger.Error().Err(err).Msg("unexpected session error")
	}
	httperrors.Write(w, apiErr)
}

func invalidField(err error) string {
	msg := err.Error()
	for _, field := range []string{"topic", "level"} {
		if strings.Contains(msg, field) {
			return field
		}
	}
	return ""
}
