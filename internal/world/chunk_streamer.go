package world

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"

	"voxcore/internal/profiling"
)

// ChunkSource is the persistent side of the world: the chunk half of the storage contract.
type ChunkSource interface {
	GetChunk(ctx context.Context, coord ChunkCoord) (*Grid, bool, error)
	PutChunk(ctx context.Context, coord ChunkCoord, g *Grid) error
}

// ChunkStreamer loads stored chunks around a center and unloads distant ones. Coordinates
// without a stored row stay unloaded: absence means "not generated", never "empty".
type ChunkStreamer struct {
	jobs       chan ChunkCoord
	pending    map[ChunkCoord]struct{}
	missing    map[ChunkCoord]struct{}
	pendingMu  sync.Mutex
	maxPending int

	maxJobsPerCall int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Dependencies
	store  *ChunkStore
	source ChunkSource
}

// NewChunkStreamer creates a streamer with workers background loaders. workers <= 0 uses
// one per CPU.
func NewChunkStreamer(store *ChunkStore, source ChunkSource, workers int) *ChunkStreamer {
	ctx, cancel := context.WithCancel(context.Background())
	cs := &ChunkStreamer{
		jobs:           make(chan ChunkCoord, 4096),
		pending:        make(map[ChunkCoord]struct{}),
		missing:        make(map[ChunkCoord]struct{}),
		maxJobsPerCall: 512,
		maxPending:     4096,
		ctx:            ctx,
		cancel:         cancel,
		store:          store,
		source:         source,
	}

	if workers <= 0 {
		workers = max(runtime.NumCPU(), 1)
	}
	for i := 0; i < workers; i++ {
		cs.wg.Add(1)
		go cs.worker()
	}

	return cs
}

// Close stops the background loaders and waits for them to exit.
func (cs *ChunkStreamer) Close() {
	cs.cancel()
	cs.wg.Wait()
}

func (cs *ChunkStreamer) worker() {
	defer cs.wg.Done()
	for {
		select {
		case coord := <-cs.jobs:
			if _, err := cs.loadChunk(cs.ctx, coord); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("[stream] chunk %v skipped: %v", coord, err)
			}
			cs.pendingMu.Lock()
			delete(cs.pending, coord)
			cs.pendingMu.Unlock()
		case <-cs.ctx.Done():
			return
		}
	}
}

// loadChunk reads one chunk from the source and installs it. It reports whether a chunk
// was installed.
func (cs *ChunkStreamer) loadChunk(ctx context.Context, coord ChunkCoord) (bool, error) {
	if cs.store.HasChunk(coord) {
		return false, nil
	}

	g, ok, err := cs.source.GetChunk(ctx, coord)
	if err != nil {
		// Corrupt or unreadable rows are treated as ungenerated until repaired.
		return false, err
	}
	if !ok {
		cs.pendingMu.Lock()
		cs.missing[coord] = struct{}{}
		cs.pendingMu.Unlock()
		return false, nil
	}

	installed := cs.store.AddChunk(NewChunkFromGrid(coord, g))
	if installed.Coord == coord {
		cs.store.MarkNeighborsDirty(coord)
	}
	return true, nil
}

// Stream loads every stored chunk within radius of center before returning.
func (cs *ChunkStreamer) Stream(ctx context.Context, center ChunkCoord, radius int) (int, error) {
	defer profiling.Track("world.Stream")()
	loaded := 0
	var errs []error
	forEachInSphere(center, radius, func(coord ChunkCoord) bool {
		if cs.isMissing(coord) {
			return true
		}
		ok, err := cs.loadChunk(ctx, coord)
		if err != nil {
			if ctx.Err() != nil {
				errs = append(errs, ctx.Err())
				return false
			}
			errs = append(errs, fmt.Errorf("chunk %v: %w", coord, err))
			return true
		}
		if ok {
			loaded++
		}
		return true
	})
	return loaded, errors.Join(errs...)
}

// StreamAroundAsync queues loads for chunks around center, nearest shells first.
func (cs *ChunkStreamer) StreamAroundAsync(center ChunkCoord, radius int) int {
	defer profiling.Track("world.StreamAroundAsync")()
	jobsPushed := 0
	forEachInSphere(center, radius, func(coord ChunkCoord) bool {
		if cs.requestChunkLimited(coord) {
			jobsPushed++
		}
		return jobsPushed < cs.maxJobsPerCall
	})
	return jobsPushed
}

func (cs *ChunkStreamer) isMissing(coord ChunkCoord) bool {
	cs.pendingMu.Lock()
	defer cs.pendingMu.Unlock()
	_, ok := cs.missing[coord]
	return ok
}

// requestChunkLimited respects pending cap and returns true if enqueued.
func (cs *ChunkStreamer) requestChunkLimited(coord ChunkCoord) bool {
	// already present?
	if cs.store.HasChunk(coord) {
		return false
	}

	cs.pendingMu.Lock()
	if _, ok := cs.missing[coord]; ok {
		cs.pendingMu.Unlock()
		return false
	}
	if _, ok := cs.pending[coord]; ok {
		cs.pendingMu.Unlock()
		return false
	}
	if cs.maxPending > 0 && len(cs.pending) >= cs.maxPending {
		cs.pendingMu.Unlock()
		return false
	}
	cs.pending[coord] = struct{}{}
	cs.pendingMu.Unlock()

	select {
	case cs.jobs <- coord:
		return true
	default:
		// queue full: rollback
		cs.pendingMu.Lock()
		delete(cs.pending, coord)
		cs.pendingMu.Unlock()
		return false
	}
}

// Evict unloads chunks outside radius, persisting any unsaved edits first.
// Chunks whose save fails are put back so the edit is not lost. Loaded neighbours of
// every unloaded chunk are marked dirty since their border faces are now exposed.
func (cs *ChunkStreamer) Evict(ctx context.Context, center ChunkCoord, radius int) (int, error) {
	removed := cs.store.EvictFarChunks(center, radius)

	var errs []error
	evicted := 0
	for _, c := range removed {
		if g, ok := c.TakeModified(); ok {
			if err := cs.source.PutChunk(ctx, c.Coord, &g); err != nil {
				c.RestoreModified()
				cs.store.AddChunk(c)
				errs = append(errs, fmt.Errorf("save chunk %v: %w", c.Coord, err))
				continue
			}
		}
		cs.store.MarkNeighborsDirty(c.Coord)
		evicted++
	}

	// Forget misses outside the radius so they are re-checked when we come back.
	r2 := radius * radius
	cs.pendingMu.Lock()
	for coord := range cs.missing {
		if coord.DistanceSq(center) > r2 {
			delete(cs.missing, coord)
		}
	}
	cs.pendingMu.Unlock()

	return evicted, errors.Join(errs...)
}

// forEachInSphere visits coordinates within radius of center in growing cube shells until
// fn returns false.
func forEachInSphere(center ChunkCoord, radius int, fn func(ChunkCoord) bool) {
	r2 := radius * radius
	for r := 0; r <= radius; r++ {
		for dx := -r; dx <= r; dx++ {
			for dy := -r; dy <= r; dy++ {
				for dz := -r; dz <= r; dz++ {
					if max(abs(dx), abs(dy), abs(dz)) != r {
						continue
					}
					if dx*dx+dy*dy+dz*dz > r2 {
						continue
					}
					if !fn(center.Add(ChunkCoord{dx, dy, dz})) {
						return
					}
				}
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
