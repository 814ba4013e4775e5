// Package eventbus implements the engine's pub/sub hub (spec.md §4.7):
// named events with priority-ordered handlers, a fire-and-forget default
// emit mode, an opt-in await-all-handlers mode with a deadline, and a
// one-shot waitFor. The bus owns neither side of the subscription: it
// holds callables, not references to subscriber state, so Off is always
// safe and idempotent.
package eventbus

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"
)

// Handler receives an emitted payload. A handler that panics is
// recovered and logged; it never takes down the emitter.
type Handler func(ctx context.Context, payload any)

// Unsubscribe removes the handler it was returned for. Calling it more
// than once is a no-op.
type Unsubscribe func()

// EmitOptions configures a single Emit call.
type EmitOptions struct {
	// WaitForHandlers makes Emit block until every handler registered at
	// emit time has returned, or Timeout elapses.
	WaitForHandlers bool
	// Timeout bounds a WaitForHandlers emit. Defaults to 30s.
	Timeout time.Duration
}

type subscription struct {
	id       uint64
	handler  Handler
	priority int
	once     bool
}

// Bus dispatches named events to their subscribers. A WaitForHandlers
// emit runs its handlers one after another in descending priority order.
// A fire-and-forget emit starts each handler on its own goroutine, so a
// handler may observe successive fire-and-forget events out of emit order.
type Bus struct {
	mu       sync.Mutex
	subs     map[string][]*subscription
	waiters  map[string][]chan any
	nextID   uint64
	logger   *log.Logger
}

// New builds an empty Bus. A nil logger defaults to stderr.
func New(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.New(os.Stderr, "eventbus: ", log.LstdFlags)
	}
	return &Bus{
		subs:    make(map[string][]*subscription),
		waiters: make(map[string][]chan any),
		logger:  logger,
	}
}

// On subscribes handler to name. Handlers run one after another in
// descending priority order for WaitForHandlers emissions; fire-and-forget
// emissions start all handlers at once, in no guaranteed order.
func (b *Bus) On(name string, handler Handler, priority int) Unsubscribe {
	return b.subscribe(name, handler, priority, false)
}

// Once subscribes handler to name for a single invocation, then
// auto-unsubscribes.
func (b *Bus) Once(name string, handler Handler) Unsubscribe {
	return b.subscribe(name, handler, 0, true)
}

func (b *Bus) subscribe(name string, handler Handler, priority int, once bool) Unsubscribe {
	b.mu.Lock()
	b.nextID++
	sub := &subscription{id: b.nextID, handler: handler, priority: priority, once: once}
	b.subs[name] = append(b.subs[name], sub)
	b.mu.Unlock()

	var unsubscribed bool
	var unsubMu sync.Mutex
	return func() {
		unsubMu.Lock()
		defer unsubMu.Unlock()
		if unsubscribed {
			return
		}
		unsubscribed = true
		b.Off(name, sub.id)
	}
}

// Off removes a subscription by its internal id. Exported for symmetry
// with spec's off(name, handler); callers should prefer the Unsubscribe
// returned by On/Once.
func (b *Bus) Off(name string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[name]
	for i, s := range subs {
		if s.id == id {
			b.subs[name] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// RemoveAllListeners drops every subscription for name, or every
// subscription on the bus when name is empty.
func (b *Bus) RemoveAllListeners(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if name == "" {
		b.subs = make(map[string][]*subscription)
		return
	}
	delete(b.subs, name)
}

// Emit publishes payload to every current subscriber of name. The
// default mode is fire-and-forget: Emit returns once handlers have been
// scheduled, not once they've run; handler panics and the handlers
// themselves never propagate to the caller. With WaitForHandlers, Emit
// blocks until every handler returns or opts.Timeout elapses (default
// 30s); handlers already running continue past a deadline miss.
func (b *Bus) Emit(ctx context.Context, name string, payload any, opts EmitOptions) error {
	b.mu.Lock()
	subs := append([]*subscription(nil), b.subs[name]...)
	waiters := b.waiters[name]
	delete(b.waiters, name)
	b.mu.Unlock()

	sort.SliceStable(subs, func(i, j int) bool { return subs[i].priority > subs[j].priority })

	for _, w := range waiters {
		w := w
		go func() { w <- payload; close(w) }()
	}

	var onceIDs []uint64
	for _, s := range subs {
		if s.once {
			onceIDs = append(onceIDs, s.id)
		}
	}
	if len(onceIDs) > 0 {
		b.mu.Lock()
		for _, id := range onceIDs {
			remaining := b.subs[name]
			for i, s := range remaining {
				if s.id == id {
					b.subs[name] = append(remaining[:i:i], remaining[i+1:]...)
					break
				}
			}
		}
		b.mu.Unlock()
	}

	if !opts.WaitForHandlers {
		for _, s := range subs {
			s := s
			go b.runHandler(ctx, name, s, payload)
		}
		return nil
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	done := make(chan struct{})
	go func() {
		for _, s := range subs {
			b.runHandler(ctx, name, s, payload)
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("eventbus: emit %q: handlers did not complete within %s", name, timeout)
	}
}

func (b *Bus) runHandler(ctx context.Context, name string, s *subscription, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Printf("handler for %q panicked: %v", name, r)
		}
	}()
	s.handler(ctx, payload)
}

// WaitFor blocks until name is next emitted, or timeout elapses.
func (b *Bus) WaitFor(ctx context.Context, name string, timeout time.Duration) (any, error) {
	ch := make(chan any, 1)
	b.mu.Lock()
	b.waiters[name] = append(b.waiters[name], ch)
	b.mu.Unlock()

	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	select {
	case payload := <-ch:
		return payload, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(timeout):
		return nil, fmt.Errorf("eventbus: waitFor %q: timed out after %s", name, timeout)
	}
}
