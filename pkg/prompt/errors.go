package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g. Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrTooManyAttempts is returned when an answer keeps failing validation.
	ErrTooManyAttempts = errors.New("prompt: too many invalid answers")
	// ErrInvalidSchema is returned when the schema to fill is not an object.
	ErrInvalidSchema = errors.New("prompt: schema must describe an object")
)
