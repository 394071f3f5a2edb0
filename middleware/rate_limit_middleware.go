package middleware

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware creates a rate limiter using the token bucket
// algorithm, meant to sit around the client chat send path — a player
// mashing the chat key shouldn't be able to flood the server faster than
// vanilla's own chat cooldown allows.
//
// Token bucket: tokens are added at rate r per second, up to a burst size.
// Each send consumes one token. If the bucket is empty, the send is
// rejected.
//
// CRITICAL: the limiter is created in the OUTER closure (once per
// middleware creation), NOT in the inner send function. If created
// per-send, every send would get a fresh full bucket, defeating the entire
// purpose of rate limiting.
//
// Parameters:
//   - r: token refill rate (tokens per second)
//   - burst: maximum bucket size (allows this many sends in a burst)
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst) // Shared across all sends
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, pkt *OutboundPacket) error {
			if !limiter.Allow() {
				// No tokens available — reject immediately (short-circuit, don't call next)
				return fmt.Errorf("rate limit exceeded for packet %s", pkt.Name)
			}
			return next(ctx, pkt)
		}
	}
}
