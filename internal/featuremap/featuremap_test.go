package featuremap

import (
	"context"
	"testing"
)

func TestInMemoryUpsertGet(t *testing.T) {
	ctx := context.Background()
	fm := NewInMemory()

	if _, ok, err := fm.Get(ctx, "g1", "topk"); err != nil || ok {
		t.Fatalf("Get on empty map = (_, %v, %v), want (_, false, nil)", ok, err)
	}

	feature := TopKFeature{Keys: []string{"A", "B"}, Frequencies: []float64{0.6, 0.4}}
	if err := fm.Upsert(ctx, "g1", "topk", feature); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, ok, err := fm.Get(ctx, "g1", "topk")
	if err != nil || !ok {
		t.Fatalf("Get after Upsert = (_, %v, %v), want (_, true, nil)", ok, err)
	}
	if len(got.Keys) != 2 || got.Keys[0] != "A" || got.Frequencies[0] != 0.6 {
		t.Fatalf("Get returned %+v, want %+v", got, feature)
	}

	// A distinct operatorID under the same group key is a distinct entry.
	if _, ok, _ := fm.Get(ctx, "g1", "other-op"); ok {
		t.Fatal("Get for different operatorID unexpectedly found a value")
	}

	// Last-writer-wins on repeated upserts for the same key.
	second := TopKFeature{Keys: []string{"C"}, Frequencies: []float64{1}}
	if err := fm.Upsert(ctx, "g1", "topk", second); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, _, _ = fm.Get(ctx, "g1", "topk")
	if len(got.Keys) != 1 || got.Keys[0] != "C" {
		t.Fatalf("Get after second Upsert = %+v, want %+v", got, second)
	}
}

func TestRedisKeyGeneration(t *testing.T) {
	cases := []struct {
		groupKey, operatorID, want string
	}{
		{"src=1.2.3.4", "topk-dest", "feature:src=1.2.3.4:topk-dest"},
		{"", "op", "feature::op"},
	}
	for _, tc := range cases {
		if got := redisKey(tc.groupKey, tc.operatorID); got != tc.want {
			t.Errorf("redisKey(%q, %q) = %q, want %q", tc.groupKey, tc.operatorID, got, tc.want)
		}
	}
}

func TestDisabledRedisIsNoop(t *testing.T) {
	ctx := context.Background()
	r := &Redis{enabled: false}

	if err := r.Upsert(ctx, "g", "op", TopKFeature{}); err != nil {
		t.Fatalf("Upsert on disabled Redis: %v", err)
	}
	if _, ok, err := r.Get(ctx, "g", "op"); err != nil || ok {
		t.Fatalf("Get on disabled Redis = (_, %v, %v), want (_, false, nil)", ok, err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close on disabled Redis: %v", err)
	}
}
