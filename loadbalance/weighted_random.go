package loadbalance

import (
	"fmt"
	"math/rand"

	"miners-go/registry"
)

// WeightedRandomBalancer selects a bookmark probabilistically based on its
// weight. A bookmark with weight 10 gets roughly 2x the traffic of one
// with weight 5.
//
// Best for: heterogeneous backends (different player-capacity limits).
type WeightedRandomBalancer struct{}

func (b *WeightedRandomBalancer) Pick(bookmarks []registry.ServerBookmark) (*registry.ServerBookmark, error) {
	if len(bookmarks) == 0 {
		return nil, fmt.Errorf("no bookmarks available")
	}

	totalWeight := 0
	for _, v := range bookmarks {
		totalWeight += v.Weight
	}
	if totalWeight <= 0 {
		return &bookmarks[rand.Intn(len(bookmarks))], nil
	}

	r := rand.Intn(totalWeight)
	for i := range bookmarks {
		r -= bookmarks[i].Weight
		if r < 0 {
			return &bookmarks[i], nil
		}
	}

	return nil, fmt.Errorf("unexpected error in weighted random selection")
}

func (b *WeightedRandomBalancer) Name() string {
	return "WeightedRandom"
}
