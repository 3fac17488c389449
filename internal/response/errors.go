package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation      ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload  ErrCode = "INVALID_PAYLOAD"
	ErrInvalidQuestion ErrCode = "INVALID_QUESTION"

	// ─── Session state machine ─────────────────────────────────────────
	ErrSessionNotStarted ErrCode = "SESSION_NOT_STARTED"
	ErrAnswerNotSet      ErrCode = "ANSWER_NOT_SET"
	ErrNoData            ErrCode = "NO_DATA"

	// ─── Uploads ───────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server / collaborators ────────────────────────────────────────
	ErrDownstream ErrCode = "DOWNSTREAM_SERVICE_ERROR"
	ErrSaveFailed ErrCode = "SAVE_FAILED"
	ErrInternal   ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "The request payload is invalid."
	case ErrInvalidQuestion:
		return "The question number must be between 1 and 5."
	case ErrSessionNotStarted:
		return "No screening session is in progress for this key. Start a session first."
	case ErrAnswerNotSet:
		return "This question has not been issued in the current session."
	case ErrNoData:
		return "The session has no graded answers to score."
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "The uploaded file type is not supported."
	case ErrFileTooLarge:
		return "The uploaded file exceeds the size limit."
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrDownstream:
		return "An upstream grading service failed. The question was not graded; please retry."
	case ErrSaveFailed:
		return "The test was scored but could not be saved."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
