// Package graph implements a concurrent, time-windowed, compressed-sparse
// directed multigraph: edges are chained by a hash of their source vertex
// into a fixed table of buckets, each guarded by its own mutex, with
// expired edges evicted lazily on insertion rather than by a background
// sweeper.
package graph

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/flowmesh/streamcore/internal/tuple"
)

// ErrBadConfig reports a configuration fault at construction time: a zero
// capacity or non-positive window.
var ErrBadConfig = errors.New("graph: bad configuration")

// Edge is a (source, target, time) triple derived from a tuple, plus the
// tuple's id and an optional duration. Edges are equal iff all components
// are equal.
type Edge[S comparable] struct {
	Source   S
	Target   any
	Time     float64
	Duration float64
	TupleID  int64
}

type bucket[S comparable] struct {
	mu    sync.Mutex
	edges []Edge[S]
	now   float64 // max time observed in this bucket so far
}

// CompressedSparse is a fixed-capacity, chained hash table of edges keyed by
// source vertex, with per-bucket locking and window-based eviction.
type CompressedSparse[S comparable] struct {
	capacity uint64
	window   float64
	hash     func(S) uint64
	buckets  []*bucket[S]

	source   tuple.Accessor[S]
	target   tuple.Accessor[any]
	time     tuple.Accessor[float64]
	duration tuple.Accessor[float64] // nil if no duration field configured
}

// Config parameterises a CompressedSparse graph.
type Config[S comparable] struct {
	Capacity uint64
	Window   time.Duration

	Source   tuple.Accessor[S]
	Target   tuple.Accessor[any]
	Time     tuple.Accessor[float64]
	Duration tuple.Accessor[float64] // optional; nil treats duration as zero
	Hash     func(S) uint64
}

// New constructs a CompressedSparse graph. Capacity must be positive and
// Window must be positive; otherwise New returns ErrBadConfig.
func New[S comparable](cfg Config[S]) (*CompressedSparse[S], error) {
	if cfg.Capacity == 0 {
		return nil, fmt.Errorf("%w: capacity must be positive", ErrBadConfig)
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("%w: window must be positive", ErrBadConfig)
	}
	if cfg.Source == nil || cfg.Target == nil || cfg.Time == nil {
		return nil, fmt.Errorf("%w: source, target, and time accessors are required", ErrBadConfig)
	}
	if cfg.Hash == nil {
		return nil, fmt.Errorf("%w: a hash function for the source-vertex type is required", ErrBadConfig)
	}

	buckets := make([]*bucket[S], cfg.Capacity)
	for i := range buckets {
		buckets[i] = &bucket[S]{}
	}

	return &CompressedSparse[S]{
		capacity: cfg.Capacity,
		window:   cfg.Window.Seconds(),
		hash:     cfg.Hash,
		buckets:  buckets,
		source:   cfg.Source,
		target:   cfg.Target,
		time:     cfg.Time,
		duration: cfg.Duration,
	}, nil
}

// AddEdge projects an edge out of tuple t, places it in its source-hashed
// bucket (evicting expired edges from that bucket first), and returns the
// total number of edges touched during the operation (cleanup + insertion).
func (g *CompressedSparse[S]) AddEdge(t tuple.Tuple) int {
	work, _ := g.addEdge(t)
	return work
}

// AddEdgeCounting is AddEdge but also reports how many edges the cleanup
// pass evicted, for callers instrumenting eviction separately from total
// work (see cmd/streamcore's GraphEdgesEvicted counter).
func (g *CompressedSparse[S]) AddEdgeCounting(t tuple.Tuple) (work, evicted int) {
	return g.addEdge(t)
}

func (g *CompressedSparse[S]) addEdge(t tuple.Tuple) (work, evicted int) {
	src := g.source(t)
	dst := g.target(t)
	tm := g.time(t)
	var dur float64
	if g.duration != nil {
		dur = g.duration(t)
	}

	slot := g.hash(src) % g.capacity
	b := g.buckets[slot]

	b.mu.Lock()
	defer b.mu.Unlock()

	if tm > b.now {
		b.now = tm
	}

	kept := b.edges[:0]
	for _, e := range b.edges {
		work++
		if b.now-e.Time <= g.window {
			kept = append(kept, e)
		} else {
			evicted++
		}
	}
	b.edges = kept

	b.edges = append(b.edges, Edge[S]{
		Source:   src,
		Target:   dst,
		Time:     tm,
		Duration: dur,
		TupleID:  t.ID(),
	})
	work++

	return work, evicted
}

// CountEdges returns the exact number of edges currently retained, summed
// across all buckets.
func (g *CompressedSparse[S]) CountEdges() uint64 {
	var total uint64
	for _, b := range g.buckets {
		b.mu.Lock()
		total += uint64(len(b.edges))
		b.mu.Unlock()
	}
	return total
}

// Capacity returns the fixed number of buckets in the source-side chaining
// table.
func (g *CompressedSparse[S]) Capacity() uint64 {
	return g.capacity
}
