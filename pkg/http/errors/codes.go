package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeInvalidInput   = "invalid_input"
	ErrCodeUnknownChoice  = "unknown_choice"

	// Resource errors
	ErrCodeNotFound        = "not_found"
	ErrCodeSessionNotFound = "session_not_found"
	ErrCodeConflict        = "conflict"

	// Quiz errors
	ErrCodeTrialExhausted     = "trial_exhausted"
	ErrCodeGenerationInFlight = "generation_in_flight"
	ErrCodeQuizInProgress     = "quiz_in_progress"
	ErrCodeNoActiveQuestion   = "no_active_question"
	ErrCodeSuperseded         = "superseded"
	ErrCodeContractViolation  = "generation_contract_violation"
	ErrCodeNetworkFailure     = "generation_network_failure"

	// WebSocket errors
	ErrCodeUnknownMessageType = "unknown_message_type"
	ErrCodeConnectionError    = "connection_error"

	// Server errors
	ErrCodeInternalError         = "internal_error"
	ErrCodeServiceUnavailable    = "service_unavailable"
	ErrCodeDependencyUnavailable = "dependency_unavailable"

	// OAuth errors
	ErrCodeOAuthNotConfigured  = "oauth_not_configured"
	ErrCodeOAuthStartFailed    = "oauth_start_failed"
	ErrCodeOAuthCallbackFailed = "oauth_callback_failed"
	ErrCodeOAuthMissingCode    = "missing_code"
	ErrCodeOAuthInvalidState   = "invalid_state"
	ErrCodeUserCreationFailed  = "user_creation_failed"
)
