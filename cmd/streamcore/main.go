// Command streamcore wires the TopK operator and CompressedSparse graph
// together and drives a synthetic netflow feed, the way hot-tier/cmd/main.go
// wires the aggregator and gRPC server together. It does not ingest from a
// real message bus (out of scope; see SPEC_FULL.md §1) but is fully runnable
// end to end against the built-in generator.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flowmesh/streamcore/internal/bus"
	"github.com/flowmesh/streamcore/internal/config"
	"github.com/flowmesh/streamcore/internal/featuremap"
	"github.com/flowmesh/streamcore/internal/graph"
	"github.com/flowmesh/streamcore/internal/metrics"
	"github.com/flowmesh/streamcore/internal/topk"
	"github.com/flowmesh/streamcore/internal/tuple"
	"github.com/flowmesh/streamcore/internal/window"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(log.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	reg := prometheus.NewRegistry()
	metricsRegistry := metrics.NewRegistry(reg)

	fm := buildFeatureMap(cfg.FeatureMap)
	notifyBus := buildBus(cfg.Bus)

	sourceAcc := tuple.MustIndexAccessor[string](netflowSchema, 1)
	sourceKeyAcc, err := tuple.NewIndexStringAccessor(netflowSchema, 1)
	if err != nil {
		log.Fatalf("Failed to build key-field accessor: %v", err)
	}
	valueAcc := tuple.MustIndexAccessor[string](netflowSchema, 2)

	operator, err := topk.New(topk.Config[string]{
		N: cfg.Window.N, B: cfg.Window.B, K: cfg.Window.K,
		Value:          valueAcc,
		KeyFields:      []tuple.Accessor[string]{sourceKeyAcc},
		Less:           window.Ascending[string](),
		FeatureMap:     fm,
		Bus:            notifyBus,
		OperatorID:     "dest-ip-topk",
		MetricInterval: uint64(cfg.MetricInterval),
		Metrics:        metricsRegistry,
	})
	if err != nil {
		log.Fatalf("Failed to construct TopK operator: %v", err)
	}

	targetAcc := tuple.MustIndexAccessor[any](netflowSchema, 2)
	timeAcc := tuple.MustIndexAccessor[float64](netflowSchema, 3)
	durationAcc := tuple.MustIndexAccessor[float64](netflowSchema, 4)

	g, err := graph.New(graph.Config[string]{
		Capacity: cfg.Graph.Capacity,
		Window:   time.Duration(cfg.Graph.WindowSecs) * time.Second,
		Source:   sourceAcc,
		Target:   targetAcc,
		Time:     timeAcc,
		Duration: durationAcc,
		Hash:     fnvHash,
	})
	if err != nil {
		log.Fatalf("Failed to construct graph: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	go runFeed(ctx, operator, g, metricsRegistry)
	go sampleGraphSize(ctx, g, metricsRegistry)
	go startAdminServer(cfg.AdminAddr, reg)

	log.Infof("streamcore started: window=(N=%d,B=%d,K=%d) graph=(capacity=%d,window=%ds) admin=%s",
		cfg.Window.N, cfg.Window.B, cfg.Window.K, cfg.Graph.Capacity, cfg.Graph.WindowSecs, cfg.AdminAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down streamcore...")
	cancel()

	if closer, ok := fm.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Errorf("Failed to close feature map: %v", err)
		}
	}
	if closer, ok := notifyBus.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Errorf("Failed to close bus: %v", err)
		}
	}

	log.Info("streamcore exited")
}

func buildFeatureMap(cfg config.FeatureMapConfig) featuremap.FeatureMap {
	switch cfg.Backend {
	case "redis":
		return featuremap.NewRedis(featuremap.RedisConfig{
			Addr: cfg.RedisURL,
			TTL:  time.Duration(cfg.TTLSecs) * time.Second,
		})
	default:
		return featuremap.NewInMemory()
	}
}

func buildBus(cfg config.BusConfig) bus.Bus {
	switch cfg.Backend {
	case "kafka":
		return bus.NewKafka(bus.KafkaConfig{Brokers: cfg.Brokers, Topic: cfg.Topic})
	default:
		return bus.NewInProcess()
	}
}

// runFeed drives the synthetic netflow generator into both the TopK
// operator and the graph: on this one goroutine, each tuple goes to the
// operator and then to the graph, so C2 and C3 consume the same incoming
// tuple stream (SPEC_FULL.md §2).
func runFeed(ctx context.Context, operator *topk.Operator[string], g *graph.CompressedSparse[string], m *metrics.Registry) {
	gen := newNetflowGenerator(1, 20, 50)
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t := gen.next()

			if _, err := operator.Consume(ctx, t); err != nil {
				log.Warnf("topk consume failed: %v", err)
			}

			work, evicted := g.AddEdgeCounting(t)
			m.GraphWorkUnits.Add(float64(work))
			m.GraphEdgesInserted.Inc()
			if evicted > 0 {
				m.GraphEdgesEvicted.Add(float64(evicted))
			}
		}
	}
}

func sampleGraphSize(ctx context.Context, g *graph.CompressedSparse[string], m *metrics.Registry) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.GraphEdgesCurrent.Set(float64(g.CountEdges()))
		}
	}
}

func startAdminServer(addr string, reg *prometheus.Registry) {
	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"healthy","service":"streamcore"}`)
	})
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.Infof("Admin server listening on %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Errorf("Admin server failed: %v", err)
	}
}
