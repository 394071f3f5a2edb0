package middleware

import (
	"log"
	"strings"
	"time"
)

// RetryDial retries a connection attempt with exponential backoff. Unlike
// LoggingMiddleware/RateLimitMiddleware/TimeOutMiddleware, this does not
// wrap the outbound-send chain: retrying an already-in-flight game packet
// (e.g. a chat message) risks duplicating a player-visible action if the
// first attempt actually reached the server and only the response was
// lost. Dialing the socket, by contrast, has no server-visible side effect
// until login completes, so retrying it is always safe.
//
// dial should perform one full connection attempt (e.g. session.Connect)
// and return its error, if any. name is used only for the retry log line.
func RetryDial(maxRetries int, baseDelay time.Duration, name string, dial func() error) error {
	err := dial()
	for i := 0; i < maxRetries; i++ {
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		log.Printf("Retry attempt %d for %s due to error: %s", i+1, name, err)
		time.Sleep(baseDelay * time.Duration(1<<i)) // Exponential backoff
		err = dial()
	}
	return err
}

func isRetryable(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "connection refused") || strings.Contains(msg, "connection reset")
}
