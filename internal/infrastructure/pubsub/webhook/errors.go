package webhookpubsub

import "errors"

var (
	// ErrNullRepository specifies that a WebhookRepository is required.
	ErrNullRepository = errors.New("webhook repository must not be null")
	// ErrInvalidTopic is returned whenever attempting to subscribe to an unknown
	// topic.
	ErrInvalidTopic = errors.New("topic is invalid")
	// ErrInvalidEndpoint is returned if the webhook endpoint is not a valid
	// http(s) URL.
	ErrInvalidEndpoint = errors.New("invalid webhook endpoint, must be a valid URL")
)
