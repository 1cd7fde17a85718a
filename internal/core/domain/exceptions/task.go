package exceptions

import "errors"

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTaskIDRequired    = errors.New("task id is required")
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionIDRequired = errors.New("session id is required")
	ErrDeltaInvalid      = errors.New("delta_x must be a finite number")
	ErrLoopStopped       = errors.New("event loop stopped")
)
