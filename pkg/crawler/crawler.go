package crawler

import "context"

// Observable represents something to be periodically checked by the crawler.
type Observable interface {
	// Key identifies the observable. The crawler watches at most one
	// observable per key.
	Key() string
	// Observe performs a single observation and returns the resulting event.
	Observe(ctx context.Context) (Event, error)
}

// Service is the interface for Crawler
type Service interface {
	Start()
	Stop()
	AddObservable(observable Observable)
	RemoveObservable(key string)
	IsObserving(key string) bool
	GetEventChannel() chan Event
}
