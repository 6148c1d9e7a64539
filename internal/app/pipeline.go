package app

import (
	"context"
	"errors"
	"sync"

	"github.com/bft-labs/walletscope/internal/domain"
	"github.com/bft-labs/walletscope/internal/ports"
)

// DefaultQueueSize is how many envelopes may wait for delivery before new
// ones are dropped.
const DefaultQueueSize = 1024

// Pipeline turns observations into envelopes and hands each one to the
// channel exactly once. Envelopes are stamped on the caller's goroutine
// and written by a single delivery goroutine, in emit order, so a slow
// channel never holds up the code that observed the event.
type Pipeline struct {
	channel     ports.Channel
	window      ports.Window
	libraryType string
	logger      ports.Logger
	metrics     *Metrics

	queue chan domain.Envelope
	done  chan struct{}

	mu      sync.Mutex
	drained *sync.Cond
	pending int
	closed  bool
}

// NewPipeline creates a pipeline writing to channel and starts its
// delivery goroutine. Close stops it.
func NewPipeline(channel ports.Channel, window ports.Window, libraryType string, logger ports.Logger, metrics *Metrics) *Pipeline {
	return newPipeline(channel, window, libraryType, logger, metrics, DefaultQueueSize)
}

func newPipeline(channel ports.Channel, window ports.Window, libraryType string, logger ports.Logger, metrics *Metrics, size int) *Pipeline {
	p := &Pipeline{
		channel:     channel,
		window:      window,
		libraryType: libraryType,
		logger:      logger,
		metrics:     metrics,
		queue:       make(chan domain.Envelope, size),
		done:        make(chan struct{}),
	}
	p.drained = sync.NewCond(&p.mu)
	go p.run()
	return p
}

// Emit stamps the current page and, unless firstPartyOnly, the library
// provenance, then queues the envelope for delivery. It never waits on the
// channel. A full queue drops the envelope; only a closed pipeline is
// returned as an error.
func (p *Pipeline) Emit(event domain.Event, attrs domain.Attributes, firstPartyOnly bool) error {
	if attrs == nil {
		attrs = domain.Attributes{}
	}

	env := domain.Envelope{
		Event:      event,
		Attributes: attrs,
		URL:        p.window.Href(),
	}
	if !firstPartyOnly {
		env.LibraryType = p.libraryType
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.metrics.EventDropped(event, DropClosed)
		return domain.ErrClosed
	}

	select {
	case p.queue <- env:
		p.pending++
	default:
		p.metrics.EventDropped(event, DropQueueFull)
		p.logger.Warn("event dropped, delivery queue full", ports.String("event", event.String()))
	}
	return nil
}

// Flush blocks until every queued envelope has been handed to the channel.
func (p *Pipeline) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.pending > 0 {
		p.drained.Wait()
	}
}

// Close stops accepting envelopes and waits for the queue to drain or ctx
// to end. Calling Close more than once is safe.
func (p *Pipeline) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipeline) run() {
	defer close(p.done)

	for env := range p.queue {
		p.deliver(env)

		p.mu.Lock()
		p.pending--
		if p.pending == 0 {
			p.drained.Broadcast()
		}
		p.mu.Unlock()
	}
}

func (p *Pipeline) deliver(env domain.Envelope) {
	err := p.channel.Emit(env)
	switch {
	case err == nil:
		p.metrics.EventEmitted(env.Event)
		p.logger.Debug("event emitted", ports.String("event", env.Event.String()), ports.String("url", env.URL))
	case errors.Is(err, domain.ErrClosed):
		p.metrics.EventDropped(env.Event, DropClosed)
		p.logger.Debug("event dropped, channel closed", ports.String("event", env.Event.String()))
	case errors.Is(err, domain.ErrDisconnected):
		p.metrics.EventDropped(env.Event, DropDisconnected)
		p.logger.Debug("event dropped, channel disconnected", ports.String("event", env.Event.String()))
	default:
		p.metrics.EventDropped(env.Event, DropWriteFailed)
		p.logger.Warn("event dropped", ports.String("event", env.Event.String()), ports.Err(err))
	}
}
