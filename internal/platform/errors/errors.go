package apperrors

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNoCurrentPath      = errors.New("no generated path to act on")
	ErrGenerationInFlight = errors.New("a generation task is already in flight")
)
