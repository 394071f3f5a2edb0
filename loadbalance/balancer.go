// Package loadbalance provides strategies for picking one server address
// out of several bookmarks that share a nickname — e.g. a proxied cluster
// entered under one name in the server directory.
//
// Three strategies are implemented:
//   - RoundRobin:      equal-capacity backends behind one nickname
//   - WeightedRandom:  heterogeneous backends (different player capacity)
//   - ConsistentHash:  session affinity, keyed by the connecting username
package loadbalance

import "miners-go/registry"

// Balancer is the interface for address-selection strategies. The client
// calls Pick() before dialing a bookmarked nickname.
type Balancer interface {
	// Pick selects one bookmark from the available list. Must be
	// goroutine-safe — called from any connecting goroutine.
	Pick(bookmarks []registry.ServerBookmark) (*registry.ServerBookmark, error)

	// Name returns the strategy name (for logging/debugging).
	Name() string
}
