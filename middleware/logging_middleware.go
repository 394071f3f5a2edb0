package middleware

import (
	"context"
	"log"
	"time"
)

// LoggingMiddleware records the packet name, duration, and any error for
// each outbound send. It captures the start time before calling next, and
// logs the elapsed time after next returns.
//
// Example output:
//
//	Packet: ClientChat, Duration: 42μs
//	Error: connection reset by peer
func LoggingMiddleware() Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, pkt *OutboundPacket) error {
			start := time.Now()

			err := next(ctx, pkt)

			duration := time.Since(start)
			log.Printf("Packet: %s, Duration: %s", pkt.Name, duration)
			if err != nil {
				log.Printf("Error: %s", err)
			}
			return err
		}
	}
}
