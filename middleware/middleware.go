// Package middleware implements the onion model middleware chain around
// outbound packet sends.
//
// Middleware wraps the send path to add cross-cutting concerns (logging,
// timeout, rate limiting) without modifying the sender itself.
//
// Onion model execution order:
//
//	Chain(A, B, C)(send)  →  A(B(C(send)))
//
//	Request:   A.before → B.before → C.before → send
//	Response:  send → C.after → B.after → A.after
//
// Each middleware can:
//   - Do pre-processing (before calling next)
//   - Call next(ctx, pkt) to pass to the next layer
//   - Do post-processing (after next returns)
//   - Short-circuit by returning early without calling next (e.g., rate limiting)
package middleware

import "context"

// OutboundPacket describes one packet about to be written to the wire. Name
// is a human-readable label (e.g. "ClientChat") for logging; ID and Body are
// what actually gets sent.
type OutboundPacket struct {
	Name string
	ID   int32
	Body []byte
}

// SendFunc is the function signature for the send path. Both the real
// socket send and middleware-wrapped sends share this signature.
type SendFunc func(ctx context.Context, pkt *OutboundPacket) error

// Middleware takes a send function and returns a new one that wraps it.
// This is the decorator pattern — each middleware adds behavior around the
// next send in the chain.
type Middleware func(next SendFunc) SendFunc

// Chain composes multiple middlewares into a single middleware. It builds
// the chain from right to left so that the first middleware in the list is
// the outermost layer (executed first on send, last on return).
//
// Example:
//
//	chain := Chain(Logging, Timeout, RateLimit)
//	send := chain(socketSend)
//	// Execution: Logging → Timeout → RateLimit → socketSend → RateLimit → Timeout → Logging
func Chain(middlewares ...Middleware) Middleware {
	return func(next SendFunc) SendFunc {
		// Build from right to left: wrap innermost first
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
