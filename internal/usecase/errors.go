package usecase

import "errors"

// ValidationError reports malformed or missing request data. Handlers
// map it to a client error; the message is safe to show to the caller.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// EnrollmentError reports an unusable reference image: none supplied,
// undecodable bytes, or no detectable face.
type EnrollmentError struct {
	Message string
}

// Error implements the error interface.
func (e *EnrollmentError) Error() string {
	return e.Message
}

// ErrInvalidCredentials signals a failed admin login attempt.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrNoEvidence signals that an audit event has no evidence image attached.
var ErrNoEvidence = errors.New("no evidence image for event")
