package world

import (
	"sync"

	"voxcore/internal/profiling"
)

// ChunkStore manages the chunks that are currently loaded in memory.
type ChunkStore struct {
	chunks   map[ChunkCoord]*Chunk
	mu       sync.RWMutex
	modCount uint64 // Increases on any chunk add/remove
}

// Neighborhood is a by-value snapshot of one chunk and its six face neighbours, which is
// everything the quad encoder reads. A nil neighbour means "not loaded".
type Neighborhood struct {
	Coord     ChunkCoord
	Center    Grid
	Neighbors [NumFaces]*Grid
}

// NewChunkStore creates a new chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[ChunkCoord]*Chunk),
	}
}

// GetChunk returns the loaded chunk at coord, or nil.
func (cs *ChunkStore) GetChunk(coord ChunkCoord) *Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.chunks[coord]
}

// HasChunk checks if a chunk is loaded.
func (cs *ChunkStore) HasChunk(coord ChunkCoord) bool {
	cs.mu.RLock()
	_, exists := cs.chunks[coord]
	cs.mu.RUnlock()
	return exists
}

// AddChunk inserts a chunk unless one is already loaded at its coordinate. It returns the
// chunk that ends up in the store.
func (cs *ChunkStore) AddChunk(chunk *Chunk) *Chunk {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if existing, ok := cs.chunks[chunk.Coord]; ok {
		return existing
	}
	cs.chunks[chunk.Coord] = chunk
	cs.modCount++
	return chunk
}

// RemoveChunk unloads the chunk at coord and returns it, or nil if none was loaded.
func (cs *ChunkStore) RemoveChunk(coord ChunkCoord) *Chunk {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	c, ok := cs.chunks[coord]
	if !ok {
		return nil
	}
	delete(cs.chunks, coord)
	cs.modCount++
	return c
}

// Get returns the block at a world position. Unloaded chunks read as air.
func (cs *ChunkStore) Get(pos BlockPos) BlockType {
	c := cs.GetChunk(pos.Chunk())
	if c == nil {
		return BlockTypeAir
	}
	l := pos.Local()
	return c.GetBlock(l.X, l.Y, l.Z)
}

// IsAir checks if the block at the specified world position is air.
func (cs *ChunkStore) IsAir(pos BlockPos) bool {
	return cs.Get(pos) == BlockTypeAir
}

// Set writes a block at a world position. It returns false when the chunk is not loaded.
// Edits on a chunk border mark the touching neighbour dirty so its faces are rebuilt.
func (cs *ChunkStore) Set(pos BlockPos, b BlockType) bool {
	coord := pos.Chunk()
	c := cs.GetChunk(coord)
	if c == nil {
		return false
	}
	l := pos.Local()
	c.SetBlock(l.X, l.Y, l.Z, b)

	if !l.OnBorder() {
		return true
	}
	for _, f := range Faces {
		dx, dy, dz := f.Normal()
		n := l
		n.X += dx
		n.Y += dy
		n.Z += dz
		if n.InBounds() {
			continue
		}
		if nb := cs.GetChunk(coord.Add(ChunkCoord{dx, dy, dz})); nb != nil {
			nb.MarkDirty()
		}
	}
	return true
}

// Neighborhood snapshots the chunk at coord and its loaded face neighbours.
func (cs *ChunkStore) Neighborhood(coord ChunkCoord) (Neighborhood, bool) {
	defer profiling.Track("world.Neighborhood")()
	cs.mu.RLock()
	center, ok := cs.chunks[coord]
	var neighbors [NumFaces]*Chunk
	if ok {
		for _, f := range Faces {
			dx, dy, dz := f.Normal()
			neighbors[f] = cs.chunks[coord.Add(ChunkCoord{dx, dy, dz})]
		}
	}
	cs.mu.RUnlock()
	if !ok {
		return Neighborhood{}, false
	}

	nb := Neighborhood{Coord: coord, Center: center.Snapshot()}
	for f, c := range neighbors {
		if c == nil {
			continue
		}
		g := c.Snapshot()
		nb.Neighbors[f] = &g
	}
	return nb, true
}

// MarkNeighborsDirty flags every loaded face neighbour of coord for re-meshing.
func (cs *ChunkStore) MarkNeighborsDirty(coord ChunkCoord) {
	for _, f := range Faces {
		dx, dy, dz := f.Normal()
		if nb := cs.GetChunk(coord.Add(ChunkCoord{dx, dy, dz})); nb != nil {
			nb.MarkDirty()
		}
	}
}

// GetAllChunks returns every loaded chunk.
func (cs *ChunkStore) GetAllChunks() []*Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	chunks := make([]*Chunk, 0, len(cs.chunks))
	for _, c := range cs.chunks {
		chunks = append(chunks, c)
	}
	return chunks
}

// AppendChunksInRadius appends loaded chunks within a sphere of radius chunks around center.
func (cs *ChunkStore) AppendChunksInRadius(center ChunkCoord, radius int, dst []*Chunk) []*Chunk {
	defer profiling.Track("world.AppendChunksInRadius")()
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	r2 := radius * radius
	for coord, c := range cs.chunks {
		if coord.DistanceSq(center) <= r2 {
			dst = append(dst, c)
		}
	}
	return dst
}

// GetModCount returns the current modification count of the chunk map.
func (cs *ChunkStore) GetModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}

// EvictFarChunks removes chunks outside the given radius and returns them so the caller can
// persist pending edits.
func (cs *ChunkStore) EvictFarChunks(center ChunkCoord, radius int) []*Chunk {
	defer profiling.Track("world.EvictFarChunks")()
	var removed []*Chunk
	r2 := radius * radius
	cs.mu.Lock()
	for coord, c := range cs.chunks {
		if coord.DistanceSq(center) > r2 {
			delete(cs.chunks, coord)
			cs.modCount++
			removed = append(removed, c)
		}
	}
	cs.mu.Unlock()
	return removed
}

// Len returns the number of loaded chunks.
func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}
