package qa

import (
	"errors"
	"strings"
)

var (
	// ErrNotReady is returned when the service was not constructed or has no
	// engine.
	ErrNotReady = errors.New("question answering service not ready")

	// ErrEmptyQuestion is returned by ValidateQuestion for blank input.
	ErrEmptyQuestion = errors.New("empty question")
)

// InternalError is an unexpected failure while answering. Message is safe to
// show to users.
type InternalError struct {
	Message string
	Err     error
}

func (e *InternalError) Error() string {
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// ValidateQuestion trims q and rejects it when nothing is left.
func ValidateQuestion(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", ErrEmptyQuestion
	}
	return q, nil
}
