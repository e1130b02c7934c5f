package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"voxcore/internal/metrics"
)

// Per-frame stage timer. Totals accumulate until EndFrame publishes and clears them.

var (
	mu          sync.Mutex
	frameTotals = make(map[string]time.Duration)
)

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("subsystem.Operation")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		frameTotals[name] += d
		mu.Unlock()
	}
}

// EndFrame observes the current totals into the stage histogram, clears them and returns
// what was recorded.
func EndFrame() map[string]time.Duration {
	mu.Lock()
	out := frameTotals
	frameTotals = make(map[string]time.Duration, len(out))
	mu.Unlock()

	for name, d := range out {
		metrics.StageDuration.WithLabelValues(name).Observe(d.Seconds())
	}
	return out
}

// Snapshot returns a copy of current per-frame totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(frameTotals))
	for k, v := range frameTotals {
		out[k] = v
	}
	return out
}

// TopN formats the n largest entries of totals.
// Example: "meshing.Encode:4.2ms, world.Neighborhood:0.3ms"
func TopN(totals map[string]time.Duration, n int) string {
	type pair struct {
		name string
		dur  time.Duration
	}
	list := make([]pair, 0, len(totals))
	for k, v := range totals {
		list = append(list, pair{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].dur > list[j].dur })
	n = min(n, len(list))
	parts := make([]string, 0, n)
	for _, p := range list[:n] {
		ms := float64(p.dur.Microseconds()) / 1000.0
		parts = append(parts, p.name+":"+strconv.FormatFloat(ms, 'f', 1, 64)+"ms")
	}
	return strings.Join(parts, ", ")
}
