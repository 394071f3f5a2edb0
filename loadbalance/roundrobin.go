package loadbalance

import (
	"fmt"
	"sync/atomic"

	"miners-go/registry"
)

// RoundRobinBalancer distributes connections evenly across all bookmarks
// sharing a nickname, in order. Uses an atomic counter for lock-free,
// goroutine-safe operation.
//
// Best for: equal-capacity backends behind a shared nickname.
type RoundRobinBalancer struct {
	counter int64
}

// Pick selects the next bookmark in round-robin order.
func (b *RoundRobinBalancer) Pick(bookmarks []registry.ServerBookmark) (*registry.ServerBookmark, error) {
	if len(bookmarks) == 0 {
		return nil, fmt.Errorf("no bookmarks available")
	}
	index := atomic.AddInt64(&b.counter, 1) % int64(len(bookmarks))
	return &bookmarks[index], nil
}

func (b *RoundRobinBalancer) Name() string {
	return "RoundRobin"
}
