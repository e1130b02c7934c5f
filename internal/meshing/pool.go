package meshing

import (
	"log"
	"sync"
	"time"

	"github.com/alitto/pond/v2"

	"voxcore/internal/metrics"
	"voxcore/internal/packing"
	"voxcore/internal/world"
)

// MeshResult contains the result of a meshing operation
type MeshResult struct {
	Mesh       Mesh
	Generation uint64
	Error      error
}

// WorkerPool encodes chunks off the render thread. Each job hands its result back over
// its own one-slot channel, so a worker never blocks on a slow consumer.
type WorkerPool struct {
	pool        pond.Pool
	layout      packing.Layout
	textures    TextureSource
	maxInflight int

	mu          sync.Mutex
	pending     map[world.ChunkCoord]chan MeshResult
	generations map[world.ChunkCoord]uint64
	closed      bool
}

// NewWorkerPool creates a pool of workers encoders. At most queueSize jobs are in flight;
// further submissions are refused until results are collected.
func NewWorkerPool(workers, queueSize int, layout packing.Layout, textures TextureSource) *WorkerPool {
	return &WorkerPool{
		pool:        pond.NewPool(workers),
		layout:      layout,
		textures:    textures,
		maxInflight: queueSize,
		pending:     make(map[world.ChunkCoord]chan MeshResult),
		generations: make(map[world.ChunkCoord]uint64),
	}
}

// SubmitJob queues an encode of nb. It returns false without blocking when the chunk
// already has a job in flight, the queue is full, or the pool is shut down.
func (p *WorkerPool) SubmitJob(nb world.Neighborhood) (<-chan MeshResult, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, false
	}
	if _, busy := p.pending[nb.Coord]; busy {
		return nil, false
	}
	if len(p.pending) >= p.maxInflight {
		metrics.MeshJobs.WithLabelValues("dropped").Inc()
		return nil, false
	}

	p.generations[nb.Coord]++
	gen := p.generations[nb.Coord]
	ch := make(chan MeshResult, 1)
	p.pending[nb.Coord] = ch
	metrics.MeshJobs.WithLabelValues("submitted").Inc()

	layout, textures := p.layout, p.textures
	p.pool.Submit(func() {
		start := time.Now()
		mesh, err := Encode(layout, &nb, textures)
		metrics.MeshDuration.Observe(time.Since(start).Seconds())
		ch <- MeshResult{Mesh: mesh, Generation: gen, Error: err}
	})
	return ch, true
}

// Invalidate marks any in-flight result for coord as stale, e.g. after the chunk was
// unloaded. Collect drops it when it arrives.
func (p *WorkerPool) Invalidate(coord world.ChunkCoord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.pending[coord]; ok {
		p.generations[coord]++
	}
}

// Collect appends every finished result to dst without blocking. Failed encodes are
// logged and skipped.
func (p *WorkerPool) Collect(dst []MeshResult) []MeshResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	for coord, ch := range p.pending {
		var res MeshResult
		select {
		case res = <-ch:
		default:
			continue
		}
		delete(p.pending, coord)

		if res.Generation != p.generations[coord] {
			metrics.MeshJobs.WithLabelValues("stale").Inc()
			continue
		}
		if res.Error != nil {
			metrics.MeshJobs.WithLabelValues("failed").Inc()
			log.Printf("[meshing] chunk %v: %v", coord, res.Error)
			continue
		}
		metrics.MeshJobs.WithLabelValues("completed").Inc()
		metrics.FacesEmitted.Add(float64(res.Mesh.Faces))
		dst = append(dst, res)
	}
	return dst
}

// GetQueueLength returns the number of jobs submitted but not yet collected.
func (p *WorkerPool) GetQueueLength() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Shutdown waits for running encodes and refuses new ones.
func (p *WorkerPool) Shutdown() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.pool.StopAndWait()
}
