package loadbalance

import (
	"fmt"
	"hash/crc32"
	"sort"

	"miners-go/registry"
)

// ConsistentHashBalancer maps keys to bookmarks using a hash ring. The
// same key (the connecting username) always maps to the same backend
// until the ring changes, giving session affinity — useful behind a
// BungeeCord/Velocity-style proxied cluster where a player should
// consistently land on the same backend.
//
// Virtual nodes: each real bookmark is mapped to N virtual nodes on the
// ring so a handful of bookmarks don't cluster together and skew load.
type ConsistentHashBalancer struct {
	replicas int
	ring     []uint32
	nodes    map[uint32]*registry.ServerBookmark
}

// NewConsistentHashBalancer creates a hash ring with 100 virtual nodes per
// bookmark.
func NewConsistentHashBalancer() *ConsistentHashBalancer {
	return &ConsistentHashBalancer{
		replicas: 100,
		ring:     []uint32{},
		nodes:    make(map[uint32]*registry.ServerBookmark),
	}
}

// Add places a bookmark onto the hash ring with its virtual nodes.
func (b *ConsistentHashBalancer) Add(bookmark *registry.ServerBookmark) {
	for i := 0; i < b.replicas; i++ {
		key := fmt.Sprintf("%s#%d", bookmark.Addr(), i)
		hash := crc32.ChecksumIEEE([]byte(key))
		b.ring = append(b.ring, hash)
		b.nodes[hash] = bookmark
	}
	sort.Slice(b.ring, func(i, j int) bool {
		return b.ring[i] < b.ring[j]
	})
}

// PickForUsername finds the bookmark responsible for the given connecting
// username. Consistent hashing is key-based, so this does not implement
// the Balancer interface directly — bookmarks must be Add()ed to the ring
// first via Add, not passed in on every call.
func (b *ConsistentHashBalancer) PickForUsername(username string) (*registry.ServerBookmark, error) {
	if len(b.ring) == 0 {
		return nil, fmt.Errorf("no bookmarks on the hash ring")
	}
	hash := crc32.ChecksumIEEE([]byte(username))

	idx := sort.Search(len(b.ring), func(i int) bool {
		return b.ring[i] >= hash
	})
	if idx == len(b.ring) {
		idx = 0
	}

	return b.nodes[b.ring[idx]], nil
}

func (b *ConsistentHashBalancer) Name() string {
	return "ConsistentHash"
}
