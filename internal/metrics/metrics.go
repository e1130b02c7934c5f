// Package metrics holds the Prometheus collectors for the chunk store, the mesh pipeline and
// frame stages.
package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "voxcore"

var (
	ChunkLoads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "chunk_loads_total",
		Help:      "Chunk reads by outcome (hit, miss, corrupt, error).",
	}, []string{"outcome"})

	ChunkSaves = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "chunk_saves_total",
		Help:      "Chunk writes by outcome (ok, error).",
	}, []string{"outcome"})

	MeshJobs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mesh",
		Name:      "jobs_total",
		Help:      "Mesh jobs by state (submitted, dropped, completed, stale, failed).",
	}, []string{"state"})

	FacesEmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mesh",
		Name:      "faces_emitted_total",
		Help:      "Visible quads produced by the encoder.",
	})

	MeshDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "mesh",
		Name:      "encode_duration_seconds",
		Help:      "Time to encode one chunk.",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	})

	StageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "frame",
		Name:      "stage_duration_seconds",
		Help:      "Per-frame time spent in each tracked stage.",
		Buckets:   []float64{0.00005, 0.0001, 0.0005, 0.001, 0.002, 0.004, 0.008, 0.016, 0.033},
	}, []string{"stage"})

	LoadedChunks = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "world",
		Name:      "loaded_chunks",
		Help:      "Chunks currently held in memory.",
	})
)

func init() {
	prometheus.MustRegister(ChunkLoads, ChunkSaves, MeshJobs, FacesEmitted, MeshDuration, StageDuration, LoadedChunks)
}

// Serve exposes /metrics on addr in the background. An empty addr does nothing.
func Serve(addr string) {
	if addr == "" {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Printf("[metrics] serving on %s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("[metrics] server stopped: %v", err)
		}
	}()
}
