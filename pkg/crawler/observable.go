package crawler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
)

type observableHandler struct {
	observable  Observable
	wg          *sync.WaitGroup
	ticker      *time.Ticker
	eventChan   chan Event
	errChan     chan error
	ctx         context.Context
	cancel      context.CancelFunc
	rateLimiter ratelimit.Limiter

	// set while an observation is in flight, ticks landing meanwhile are dropped
	busy atomic.Bool
}

func newObservableHandler(
	observable Observable,
	wg *sync.WaitGroup,
	interval time.Duration,
	eventChan chan Event,
	errChan chan error,
	rateLimiter ratelimit.Limiter,
) *observableHandler {
	ctx, cancel := context.WithCancel(context.Background())

	return &observableHandler{
		observable:  observable,
		wg:          wg,
		ticker:      time.NewTicker(interval),
		eventChan:   eventChan,
		errChan:     errChan,
		ctx:         ctx,
		cancel:      cancel,
		rateLimiter: rateLimiter,
	}
}

func (oh *observableHandler) start() {
	defer oh.wg.Done()
	log.Debugf("start observing %v", oh.observable.Key())

	oh.observe()
	for {
		select {
		case <-oh.ticker.C:
			oh.observe()
		case <-oh.ctx.Done():
			oh.ticker.Stop()
			return
		}
	}
}

func (oh *observableHandler) observe() {
	if !oh.busy.CompareAndSwap(false, true) {
		return
	}
	defer oh.busy.Store(false)

	oh.rateLimiter.Take()
	if oh.ctx.Err() != nil {
		return
	}

	event, err := oh.observable.Observe(oh.ctx)
	if err != nil {
		select {
		case oh.errChan <- err:
		case <-oh.ctx.Done():
		}
		return
	}
	if event == nil {
		return
	}

	select {
	case oh.eventChan <- event:
	case <-oh.ctx.Done():
	}
}

func (oh *observableHandler) stop() {
	log.Debugf("stop observing %v", oh.observable.Key())
	oh.cancel()
}
