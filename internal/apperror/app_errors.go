package apperror

import "errors"

var (
	ErrNotFound      = errors.New("session not found")
	ErrFull          = errors.New("session is full")
	ErrForbidden     = errors.New("spectators cannot play")
	ErrInvalidCell   = errors.New("invalid cell index")
	ErrInvalidChoice = errors.New("invalid choice")
	ErrUnknownKind   = errors.New("unknown session kind")
	ErrBadRequest    = errors.New("bad request")
)
