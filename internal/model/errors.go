package model

import "fmt"

// Reason codes for rejected requests. Handlers surface the code alongside
// the human-readable detail so clients can branch without string matching.
const (
	CodeInvalidDate               = "INVALID_DATE"
	CodeInvalidRegistrationWindow = "INVALID_REGISTRATION_WINDOW"
	CodeMissingCompulsoryRole     = "MISSING_COMPULSORY_ROLE"
	CodeRegistrationClosed        = "REGISTRATION_CLOSED"
	CodeMissingField              = "MISSING_FIELD"
	CodeInvalidEmail              = "INVALID_EMAIL"
	CodeInvalidPhone              = "INVALID_PHONE"
	CodeRoleNotFound              = "ROLE_NOT_FOUND"
	CodeDuplicateParticipantRole  = "DUPLICATE_PARTICIPANT_ROLE"
	CodeCompulsoryRoleUnfilled    = "COMPULSORY_ROLE_UNFILLED"
)

// ValidationError is a synchronous rejection of a request, with a machine
// reason code and a human-readable detail. It is returned before anything
// is persisted.
type ValidationError struct {
	Code   string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// Invalid builds a ValidationError with a formatted detail message.
func Invalid(code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Detail: fmt.Sprintf(format, args...)}
}
