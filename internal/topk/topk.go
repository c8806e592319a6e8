// Package topk implements the TopK operator: one SlidingWindow per group
// key, updated on each tuple, publishing the resulting top-k feature to a
// FeatureMap and the leading frequency to a Subscriber bus.
package topk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/flowmesh/streamcore/internal/bus"
	"github.com/flowmesh/streamcore/internal/featuremap"
	"github.com/flowmesh/streamcore/internal/metrics"
	"github.com/flowmesh/streamcore/internal/tuple"
	"github.com/flowmesh/streamcore/internal/window"
	log "github.com/sirupsen/logrus"
)

// ErrBadConfig reports a configuration fault at construction time.
var ErrBadConfig = errors.New("topk: bad configuration")

// Config parameterises an Operator for value type V.
type Config[V comparable] struct {
	// N, B, K are the SlidingWindow parameters applied to every group's
	// window.
	N, B, K int

	// Value projects the target field each SlidingWindow observes.
	Value tuple.Accessor[V]
	// KeyFields project the tuple-field subset that forms a group key.
	KeyFields []tuple.Accessor[string]
	// Less breaks ties between equally-frequent keys; required since V is
	// only constrained to comparable, not cmp.Ordered.
	Less func(a, b V) bool

	FeatureMap   featuremap.FeatureMap
	Bus          bus.Bus
	OperatorID   string
	// MetricInterval is how many tuples Consume processes between
	// diagnostic log lines. Zero disables the periodic log.
	MetricInterval uint64

	// Metrics, if set, receives Prometheus instrumentation for tuples
	// consumed, windows created, and collaborator errors. Nil disables
	// instrumentation.
	Metrics *metrics.Registry
}

// featureValue renders V as the string form a TopKFeature carries.
func featureValue[V comparable](v V) string {
	return fmt.Sprint(v)
}

// Operator maintains one SlidingWindow per group key and publishes derived
// features as tuples are consumed.
type Operator[V comparable] struct {
	cfg Config[V]

	windows sync.Map // map[string]*window.SlidingWindow[V]

	feedCount atomic.Uint64
}

// New validates cfg and constructs an Operator. A missing Value accessor,
// OperatorID, FeatureMap, or Bus, or a SlidingWindow configuration that
// New's first probe window rejects, is a configuration fault.
func New[V comparable](cfg Config[V]) (*Operator[V], error) {
	if cfg.Value == nil {
		return nil, fmt.Errorf("%w: a value-field accessor is required", ErrBadConfig)
	}
	if cfg.Less == nil {
		return nil, fmt.Errorf("%w: a tie-break function is required", ErrBadConfig)
	}
	if cfg.FeatureMap == nil {
		return nil, fmt.Errorf("%w: a FeatureMap is required", ErrBadConfig)
	}
	if cfg.Bus == nil {
		return nil, fmt.Errorf("%w: a Bus is required", ErrBadConfig)
	}
	if cfg.OperatorID == "" {
		return nil, fmt.Errorf("%w: an OperatorID is required", ErrBadConfig)
	}

	// Probe the SlidingWindow configuration now so a bad (N, B, K) is a
	// construction-time fault, not a surprise on the first new group key.
	if _, err := window.New[V](cfg.N, cfg.B, cfg.K); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadConfig, err)
	}

	return &Operator[V]{cfg: cfg}, nil
}

// windowFor returns the SlidingWindow for group, creating it lazily on
// first observation.
func (op *Operator[V]) windowFor(group string) *window.SlidingWindow[V] {
	if w, ok := op.windows.Load(group); ok {
		return w.(*window.SlidingWindow[V])
	}

	w, err := window.New[V](op.cfg.N, op.cfg.B, op.cfg.K)
	if err != nil {
		// cfg was already validated in New, so this is unreachable outside
		// of a programming error in this package.
		panic(fmt.Errorf("topk: unexpected SlidingWindow construction failure: %w", err))
	}
	actual, loaded := op.windows.LoadOrStore(group, w)
	if !loaded && op.cfg.Metrics != nil {
		op.cfg.Metrics.WindowsCreated.Inc()
	}
	return actual.(*window.SlidingWindow[V])
}

// groupKey projects the configured key fields into a stable group-key
// string.
func (op *Operator[V]) groupKey(t tuple.Tuple) string {
	if len(op.cfg.KeyFields) == 0 {
		return ""
	}
	return tuple.GroupKeyFunc(op.cfg.KeyFields...)(t)
}

// Consume updates the SlidingWindow for t's group, publishes the resulting
// feature to the FeatureMap, and notifies the Bus of the leading frequency.
// It returns (true, nil) on success; the boolean return is reserved for a
// future backpressure signal and always reports success today.
func (op *Operator[V]) Consume(ctx context.Context, t tuple.Tuple) (bool, error) {
	n := op.feedCount.Add(1)
	if op.cfg.MetricInterval > 0 && n%op.cfg.MetricInterval == 0 {
		log.Debugf("topk[%s]: consumed %d tuples, %d active groups", op.cfg.OperatorID, n, op.windowCount())
	}
	if op.cfg.Metrics != nil {
		op.cfg.Metrics.TuplesConsumed.Inc()
	}

	group := op.groupKey(t)
	w := op.windowFor(group)

	value := op.cfg.Value(t)
	w.Add(value)

	keys, freqs := w.Snapshot(op.cfg.Less)
	if len(keys) == 0 {
		return true, nil
	}

	feature := featuremap.TopKFeature{
		Keys:        make([]string, len(keys)),
		Frequencies: freqs,
	}
	for i, k := range keys {
		feature.Keys[i] = featureValue(k)
	}

	if err := op.cfg.FeatureMap.Upsert(ctx, group, op.cfg.OperatorID, feature); err != nil {
		if op.cfg.Metrics != nil {
			op.cfg.Metrics.FeatureMapErrors.Inc()
		}
		return false, fmt.Errorf("topk: feature map upsert: %w", err)
	}

	if err := op.cfg.Bus.Publish(ctx, t.ID(), freqs[0]); err != nil {
		if op.cfg.Metrics != nil {
			op.cfg.Metrics.BusPublishErrors.Inc()
		}
		return false, fmt.Errorf("topk: bus publish: %w", err)
	}

	return true, nil
}

// windowCount reports how many group windows currently exist, for
// diagnostics only.
func (op *Operator[V]) windowCount() int {
	n := 0
	op.windows.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
