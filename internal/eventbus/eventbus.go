// Package eventbus resolves event cascades between the runtime and panels.
//
// Resolve drains a FIFO queue: each event is delivered to every panel in
// registration order and then to the runtime, and whatever they return is
// appended to the back of the queue. Handlers never call each other.
package eventbus

import (
	"errors"
	"fmt"

	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/event"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/panel"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/state"
	"go.uber.org/zap"
)

// DefaultMaxEvents bounds the events dispatched by one Resolve call.
const DefaultMaxEvents = 65536

// ErrCascadeLimit is returned when a cascade does not settle within the limit.
var ErrCascadeLimit = errors.New("event cascade exceeded limit")

// Runtime is the terminal handler of every event.
type Runtime interface {
	HandleEvent(e event.Event) []event.Event
	View() state.View
}

type Option func(*Bus)

// WithMaxEvents overrides DefaultMaxEvents; n <= 0 keeps the default.
func WithMaxEvents(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.max = n
		}
	}
}

// WithTap registers fn to observe every event just before it is dispatched.
func WithTap(fn func(event.Event)) Option {
	return func(b *Bus) { b.taps = append(b.taps, fn) }
}

func WithLogger(l *zap.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.log = l
		}
	}
}

// Bus is single-threaded: callers serialize Resolve.
type Bus struct {
	runtime Runtime
	panels  []panel.Panel
	max     int
	taps    []func(event.Event)
	log     *zap.Logger

	resolving bool
	queue     []event.Event
}

// New builds a bus over rt and the panels in reg (nil for none). The panel set
// is fixed at construction.
func New(rt Runtime, reg *panel.Registry, opts ...Option) *Bus {
	b := &Bus{runtime: rt, max: DefaultMaxEvents, log: zap.NewNop()}
	if reg != nil {
		b.panels = reg.Panels()
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.Named("eventbus")
	return b
}

// Resolve runs the cascade started by events until the queue is empty.
// It returns an error wrapping ErrCascadeLimit, with the rest of the queue
// dropped, if more than the configured number of events would be dispatched.
// Calling Resolve from inside a handler panics.
func (b *Bus) Resolve(events ...event.Event) error {
	if b.resolving {
		panic("eventbus: Resolve called while a cascade is already being resolved")
	}
	b.resolving = true
	queue := append(b.queue[:0], events...)
	defer func() {
		clear(queue)
		b.queue = queue[:0]
		b.resolving = false
	}()

	view := b.runtime.View()
	dispatched := 0
	for head := 0; head < len(queue); head++ {
		e := queue[head]
		if e == nil {
			b.log.Warn("dropping nil event", zap.Int("position", head))
			continue
		}
		if dispatched == b.max {
			dropped := len(queue) - head
			b.log.Error("event cascade did not settle",
				zap.Int("dispatched", dispatched),
				zap.Int("dropped", dropped),
				zap.String("next", event.Describe(e)))
			return fmt.Errorf("%w: %d events dispatched, %d dropped", ErrCascadeLimit, dispatched, dropped)
		}
		dispatched++

		if ce := b.log.Check(zap.DebugLevel, "dispatch"); ce != nil {
			ce.Write(zap.String("event", event.Describe(e)), zap.Int("queued", len(queue)-head-1))
		}
		for _, tap := range b.taps {
			tap(e)
		}
		for _, p := range b.panels {
			queue = append(queue, p.HandleEvent(view, e)...)
		}
		queue = append(queue, b.runtime.HandleEvent(e)...)
	}
	return nil
}

// Resolving reports whether a Resolve call is in progress.
func (b *Bus) Resolving() bool { return b.resolving }
