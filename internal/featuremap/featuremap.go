// Package featuremap implements the external FeatureMap collaborator: a
// thread-safe mapping from (groupKey, operatorID) to an opaque TopK feature
// record. An in-memory implementation backs unit tests and callers with no
// durable store; a Redis-backed implementation persists across process
// restarts, mirroring the teacher's query-api result cache.
package featuremap

import (
	"context"
	"sync"
)

// TopKFeature carries the keys/frequencies a SlidingWindow reported at the
// moment of publication.
type TopKFeature struct {
	Keys        []string  `json:"keys"`
	Frequencies []float64 `json:"frequencies"`
}

// FeatureMap is the core's contract against the feature store.
type FeatureMap interface {
	Upsert(ctx context.Context, groupKey, operatorID string, feature TopKFeature) error
	Get(ctx context.Context, groupKey, operatorID string) (TopKFeature, bool, error)
}

// InMemory is a zero-dependency, sync.Map-backed FeatureMap. Ordering across
// concurrent upserts on the same key is last-writer-wins.
type InMemory struct {
	m sync.Map // map[string]TopKFeature
}

// NewInMemory constructs an empty in-memory FeatureMap.
func NewInMemory() *InMemory {
	return &InMemory{}
}

func featureKey(groupKey, operatorID string) string {
	return groupKey + "\x1f" + operatorID
}

// Upsert stores feature under (groupKey, operatorID), replacing any prior
// value.
func (fm *InMemory) Upsert(_ context.Context, groupKey, operatorID string, feature TopKFeature) error {
	fm.m.Store(featureKey(groupKey, operatorID), feature)
	return nil
}

// Get retrieves the feature stored under (groupKey, operatorID), if any.
func (fm *InMemory) Get(_ context.Context, groupKey, operatorID string) (TopKFeature, bool, error) {
	v, ok := fm.m.Load(featureKey(groupKey, operatorID))
	if !ok {
		return TopKFeature{}, false, nil
	}
	return v.(TopKFeature), true, nil
}

var _ FeatureMap = (*InMemory)(nil)
