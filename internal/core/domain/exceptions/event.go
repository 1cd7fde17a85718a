package exceptions

import "errors"

var (
	ErrEventNil            = errors.New("event is nil")
	ErrEventTaskIDRequired = errors.New("event task id is required")
	ErrOutcomeInvalid      = errors.New("outcome must be complete or skip")
)
