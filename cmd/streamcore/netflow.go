package main

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/flowmesh/streamcore/internal/tuple"
)

// netflowSchema describes the demonstration tuple: an id, a source IP, a
// destination IP, a Unix-seconds timestamp, and a flow duration in seconds.
var netflowSchema = tuple.Schema{"id", "source_ip", "dest_ip", "time_seconds", "duration_seconds"}

// netflow is a minimal Tuple implementation standing in for a parsed
// network-flow record; tuple parsing from wire/CSV formats is out of the
// core's scope (see SPEC_FULL.md §1), so this type exists only to drive the
// demonstration binary and is not part of the public API.
type netflow struct {
	id       int64
	sourceIP string
	destIP   string
	time     float64
	duration float64
}

func (n netflow) ID() int64  { return n.id }
func (n netflow) Len() int   { return len(netflowSchema) }
func (n netflow) Field(i int) any {
	switch i {
	case 0:
		return n.id
	case 1:
		return n.sourceIP
	case 2:
		return n.destIP
	case 3:
		return n.time
	case 4:
		return n.duration
	}
	return nil
}

func fnvHash(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// netflowGenerator produces synthetic netflow tuples from a small pool of
// source/destination IPs, the way the original test harness's
// UniformDestPort generator drove load against the graph.
type netflowGenerator struct {
	rng       *rand.Rand
	sourceIPs []string
	destIPs   []string
	nextID    int64
	clock     float64
}

func newNetflowGenerator(seed int64, numSources, numDests int) *netflowGenerator {
	g := &netflowGenerator{rng: rand.New(rand.NewSource(seed))}
	for i := 0; i < numSources; i++ {
		g.sourceIPs = append(g.sourceIPs, randomIP(g.rng, "10.0"))
	}
	for i := 0; i < numDests; i++ {
		g.destIPs = append(g.destIPs, randomIP(g.rng, "192.168"))
	}
	return g
}

func (g *netflowGenerator) next() netflow {
	g.nextID++
	g.clock++
	return netflow{
		id:       g.nextID,
		sourceIP: g.sourceIPs[g.rng.Intn(len(g.sourceIPs))],
		destIP:   g.destIPs[g.rng.Intn(len(g.destIPs))],
		time:     g.clock,
		duration: g.rng.Float64() * 5,
	}
}

func randomIP(rng *rand.Rand, prefix string) string {
	return fmt.Sprintf("%s.%d.%d", prefix, rng.Intn(256), rng.Intn(256))
}
