package mqtt

import "errors"

// Domain-specific errors for the subscribe client.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInvalidTopic is returned when an empty topic is provided.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")

	// ErrAlreadySubscribed is returned by the second and subsequent
	// Subscribe calls on the same instance. One instance carries at most
	// one subscription and one worker; create a new Subscriber to
	// subscribe again.
	ErrAlreadySubscribed = errors.New("mqtt: subscriber already subscribed")

	// ErrStopped is returned when Subscribe is called after Stop.
	ErrStopped = errors.New("mqtt: subscriber stopped")
)
