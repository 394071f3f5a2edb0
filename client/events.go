package client

import (
	"reflect"
	"sync"

	"miners-go/packets"
)

// SpawnEvent is emitted once, when the player spawns for the first time
// (immediately after login completes).
type SpawnEvent struct{}

// DeathEvent is emitted when the player dies.
type DeathEvent struct{}

// DisconnectEvent is emitted when the main loop stops reading from the
// server, whether from a clean Disconnect() call or a connection error.
type DisconnectEvent struct {
	Err error
}

// KeepAlivePacketEvent is emitted whenever a keep-alive round-trip with the
// server completes.
type KeepAlivePacketEvent struct {
	ID int64
}

// ChatMessageEvent is emitted for every chat message received from the
// server, player or system.
type ChatMessageEvent struct {
	Message packets.ChatMessage
}

type eventHandler func(*Client, any)

// eventDispatcher fans event values out to subscribers registered by exact
// type. Persistent (on) and one-shot (once) handlers are tracked in
// separate buckets so a dispatch can take and clear the once bucket in the
// same locked step, without touching the persistent one; two events of one
// type dispatched concurrently therefore never both run a once handler.
//
// Handler slices are cloned under the lock and then invoked unlocked, so a
// handler that calls back into On/Once/Emit never deadlocks against the
// dispatch it's running under.
type eventDispatcher struct {
	mu       sync.RWMutex
	handlers map[reflect.Type][]eventHandler
	once     map[reflect.Type][]eventHandler

	queueMu sync.Mutex
	queue   []any
}

func newEventDispatcher() *eventDispatcher {
	return &eventDispatcher{
		handlers: make(map[reflect.Type][]eventHandler),
		once:     make(map[reflect.Type][]eventHandler),
	}
}

func (d *eventDispatcher) registerHandler(t reflect.Type, h eventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[t] = append(d.handlers[t], h)
}

func (d *eventDispatcher) registerHandlerOnce(t reflect.Type, h eventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.once[t] = append(d.once[t], h)
}

func (d *eventDispatcher) enqueue(event any) {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()
	d.queue = append(d.queue, event)
}

// dispatchAll drains the queue and dispatches each queued event in its own
// goroutine, mirroring the one-thread-per-event-dispatch shape this is
// grounded on.
func (d *eventDispatcher) dispatchAll(c *Client) {
	d.queueMu.Lock()
	drained := d.queue
	d.queue = nil
	d.queueMu.Unlock()

	for _, event := range drained {
		event := event
		go d.dispatch(c, event)
	}
}

func (d *eventDispatcher) dispatch(c *Client, event any) {
	t := reflect.TypeOf(event)

	d.mu.Lock()
	handlers := append([]eventHandler(nil), d.handlers[t]...)
	once := d.once[t]
	delete(d.once, t)
	d.mu.Unlock()

	for _, h := range handlers {
		h(c, event)
	}
	for _, h := range once {
		h(c, event)
	}
}

// On registers a persistent handler for events of type E.
func On[E any](c *Client, fn func(*Client, E)) {
	t := reflect.TypeOf(*new(E))
	c.events.registerHandler(t, func(c *Client, event any) {
		fn(c, event.(E))
	})
}

// Once registers a handler for events of type E that runs exactly once,
// then is evicted.
func Once[E any](c *Client, fn func(*Client, E)) {
	t := reflect.TypeOf(*new(E))
	c.events.registerHandlerOnce(t, func(c *Client, event any) {
		fn(c, event.(E))
	})
}

// Emit queues event for dispatch on the next main loop tick.
func Emit[E any](c *Client, event E) {
	c.events.enqueue(event)
}

// EmitNow queues and immediately dispatches event, without waiting for the
// main loop — used by Start for DisconnectEvent, which must fire as the main
// loop returns rather than on a next tick that never comes.
func EmitNow[E any](c *Client, event E) {
	c.events.enqueue(event)
	c.events.dispatchAll(c)
}
