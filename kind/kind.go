// Package kind holds the error taxonomy shared by every service. Domain
// packages declare their own sentinels on top of these with New, and the
// HTTP layer only ever inspects the kinds.
package kind

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already in use")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
)

type kindError struct {
	msg   string
	kinds []error
}

// New returns a sentinel error with the given message that matches each of
// kinds under errors.Is.
func New(msg string, kinds ...error) error {
	return &kindError{msg: msg, kinds: kinds}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() []error { return e.kinds }
