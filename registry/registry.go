// Package registry defines the server-directory interface and data types.
//
// A server directory solves "how does the user's client remember servers
// it has connected to before?" — bookmarks are written by the client
// itself (there is no server process registering anything), and looked up
// by nickname when the user reconnects.
package registry

import "strconv"

// ServerBookmark is one entry a user has saved: a nickname for a server
// plus the address and a weight used to break ties when several bookmarks
// share a name (e.g. a DNS round-robin cluster entered under one nickname).
type ServerBookmark struct {
	Name   string // Nickname the user refers to it by, e.g. "survival"
	Host   string // Network host, e.g. "mc.example.com"
	Port   uint16 // Network port, e.g. 25565
	Weight int    // Weight for load balancing when multiple bookmarks share Name
}

// Addr renders the bookmark's host:port for dialing.
func (b ServerBookmark) Addr() string {
	return b.Host + ":" + strconv.FormatUint(uint64(b.Port), 10)
}

// Registry is the interface for bookmark storage and lookup. Unlike a
// service registry there is no TTL lease: bookmarks are durable until the
// user deregisters them, not tied to a process's liveness.
type Registry interface {
	// Register saves a bookmark under its Name.
	Register(bookmark ServerBookmark) error

	// Deregister removes a bookmark by name and address.
	Deregister(name string, addr string) error

	// Discover returns all currently saved bookmarks under a name.
	Discover(name string) ([]ServerBookmark, error)

	// Watch returns a channel that emits the updated bookmark list under
	// name whenever it changes.
	Watch(name string) <-chan []ServerBookmark
}
