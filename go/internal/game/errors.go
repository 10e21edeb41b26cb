package game

import "errors"

// Error classes returned by App. Match them with errors.Is.
var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrPhaseClosed = errors.New("phase closed")
)

// Client-facing error messages.
const (
	msgRoomRequired        = "room_id is required"
	msgInvalidRoom         = "Invalid room_id"
	msgAnswerFieldsMissing = "room_id, user_id, and answer are required"
	msgAnswerTooShort      = "Response must contain at least five words"
	msgPhaseEnded          = "The answer submission phase has ended"
	msgTimeElapsed         = "The answer submission time has elapsed"
	msgNoPrompt            = "No prompt set"
	msgGuessFieldsMissing  = "Missing fields"
)

// Error is a recoverable, client-facing failure. Message is safe to return to
// the caller verbatim; Kind is one of the sentinel errors above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func validationError(msg string) error  { return &Error{Kind: ErrValidation, Message: msg} }
func notFoundError(msg string) error    { return &Error{Kind: ErrNotFound, Message: msg} }
func phaseClosedError(msg string) error { return &Error{Kind: ErrPhaseClosed, Message: msg} }
