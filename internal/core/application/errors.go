package application

import "errors"

var (
	// ErrInvalidRequest is returned when the arguments of a request fail
	// validation.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrPubSubNotConfigured is returned when managing webhooks without a
	// pubsub service.
	ErrPubSubNotConfigured = errors.New("webhooks are not enabled")
)
