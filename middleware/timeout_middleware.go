package middleware

import (
	"context"
	"fmt"
	"time"
)

// TimeOutMiddleware enforces a maximum duration for each outbound send. If
// the next send doesn't complete within the timeout, it returns an error
// immediately.
//
// Implementation:
//  1. Create a context with timeout (ctx.Done() fires when timeout expires)
//  2. Run the next send in a goroutine, sending its result to a channel
//  3. Select between the result channel and ctx.Done()
//
// Note: the send goroutine is NOT cancelled — it continues running in the
// background. The timeout only controls when the caller gives up waiting.
// For true cancellation, next must check ctx.Done() internally.
func TimeOutMiddleware(timeout time.Duration) Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, pkt *OutboundPacket) error {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			// Run the send in a goroutine so we can race it against the timeout
			done := make(chan error, 1) // Buffered: prevent goroutine leak if timeout fires
			go func() {
				done <- next(ctx, pkt)
			}()

			select {
			case err := <-done:
				return err // Send completed before timeout
			case <-ctx.Done():
				return fmt.Errorf("send of packet %s timed out", pkt.Name)
			}
		}
	}
}
