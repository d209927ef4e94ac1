package crawler

import (
	"sync"
	"time"

	"go.uber.org/ratelimit"
)

const (
	eventQueueMaxSize = 100
	errorQueueMaxSize = 10

	defaultInterval  = 5 * time.Second
	defaultRateLimit = 10
)

type crawler struct {
	interval     time.Duration
	errChan      chan error
	eventChan    chan Event
	observables  map[string]*observableHandler
	errorHandler func(err error)
	rateLimiter  ratelimit.Limiter
	mutex        *sync.RWMutex
	wg           *sync.WaitGroup
	stopped      bool
}

// Opts defines the parameters needed for creating a crawler service with
// NewService method
type Opts struct {
	IntervalInMilliseconds int
	// RateLimit is the max number of observations per second shared by all
	// observables.
	RateLimit    int
	ErrorHandler func(err error)
}

// NewService returns a crawler that is ready to periodically observe
// Observables. Use Start and Stop methods to manage it.
func NewService(opts Opts) Service {
	interval := time.Duration(opts.IntervalInMilliseconds) * time.Millisecond
	if interval <= 0 {
		interval = defaultInterval
	}
	rateLimit := opts.RateLimit
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}
	errorHandler := opts.ErrorHandler
	if errorHandler == nil {
		errorHandler = func(error) {}
	}

	return &crawler{
		interval:     interval,
		errChan:      make(chan error, errorQueueMaxSize),
		eventChan:    make(chan Event, eventQueueMaxSize),
		observables:  map[string]*observableHandler{},
		errorHandler: errorHandler,
		rateLimiter:  ratelimit.New(rateLimit),
		mutex:        &sync.RWMutex{},
		wg:           &sync.WaitGroup{},
	}
}

// Start forwards observation errors to the error handler until the crawler
// is stopped. It's blocking.
func (c *crawler) Start() {
	for err := range c.errChan {
		go c.errorHandler(err)
	}
}

// Stop stops all the observables and sends a QuitEvent through the event
// channel.
func (c *crawler) Stop() {
	c.mutex.Lock()
	if c.stopped {
		c.mutex.Unlock()
		return
	}
	c.stopped = true
	for key, obsHandler := range c.observables {
		obsHandler.stop()
		delete(c.observables, key)
	}
	c.mutex.Unlock()

	c.wg.Wait()
	close(c.errChan)
	c.eventChan <- QuitEvent{}
}

// GetEventChannel returns Event channel which can be used to "listen" to
// observation results
func (c *crawler) GetEventChannel() chan Event {
	return c.eventChan
}

// AddObservable adds new Observable to the list of Observables to be "watched
// over" only if the same Observable is not already in the list
func (c *crawler) AddObservable(observable Observable) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.stopped {
		return
	}
	if _, ok := c.observables[observable.Key()]; ok {
		return
	}

	obsHandler := newObservableHandler(
		observable,
		c.wg,
		c.interval,
		c.eventChan,
		c.errChan,
		c.rateLimiter,
	)
	c.observables[observable.Key()] = obsHandler
	c.wg.Add(1)
	go obsHandler.start()
}

// RemoveObservable stops "watching" the Observable with the given key
func (c *crawler) RemoveObservable(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if obsHandler, ok := c.observables[key]; ok {
		obsHandler.stop()
		delete(c.observables, key)
	}
}

// IsObserving returns whether an Observable with the given key is watched.
func (c *crawler) IsObserving(key string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	_, ok := c.observables[key]
	return ok
}
