package store

import "errors"

var (
	// ErrEmptyQueue is the expected outcome of CallNext and PeekNext on an
	// empty queue. It is a terminal condition, not a failure.
	ErrEmptyQueue = errors.New("waiting queue is empty")

	ErrNameRequired     = errors.New("client name is required")
	ErrClientNotFound   = errors.New("client not found")
	ErrClientReferenced = errors.New("client is referenced by service events")
	ErrServiceNotFound  = errors.New("service type not found")
	ErrEventNotFound    = errors.New("service event not found")
	ErrAlreadyFinished  = errors.New("service event is already finished")
)
