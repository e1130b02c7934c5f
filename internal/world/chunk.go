package world

import "sync"

// Chunk is a loaded 16x16x16 region of the world.
type Chunk struct {
	Coord ChunkCoord

	mu       sync.RWMutex
	grid     Grid
	dirty    bool // needs re-meshing
	modified bool // differs from the stored copy
}

// NewChunk creates an empty chunk at the specified chunk coordinates
func NewChunk(coord ChunkCoord) *Chunk {
	return &Chunk{Coord: coord, dirty: true}
}

// NewChunkFromGrid wraps a grid loaded from storage. The chunk starts clean on disk.
func NewChunkFromGrid(coord ChunkCoord, g *Grid) *Chunk {
	c := &Chunk{Coord: coord, dirty: true}
	c.grid = *g
	return c
}

// GetBlock returns the block type at the specified local coordinates
func (c *Chunk) GetBlock(x, y, z int) BlockType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.grid.At(x, y, z)
}

// SetBlock sets the block type at the specified local coordinates
func (c *Chunk) SetBlock(x, y, z int, b BlockType) {
	if !(LocalPos{x, y, z}).InBounds() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.grid.At(x, y, z) == b {
		return
	}
	c.grid.Set(x, y, z, b)
	c.dirty = true
	c.modified = true
}

// Snapshot returns a copy of the voxel grid that is safe to use without the chunk lock.
func (c *Chunk) Snapshot() Grid {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.grid
}

// IsDirty returns whether the chunk has been modified since last render
func (c *Chunk) IsDirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

// MarkDirty flags the chunk for re-meshing, e.g. after a neighbour changed.
func (c *Chunk) MarkDirty() {
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}

// SetClean marks the chunk as meshed.
func (c *Chunk) SetClean() {
	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()
}

// IsModified reports whether the chunk has edits that are not yet persisted.
func (c *Chunk) IsModified() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.modified
}

// TakeModified returns a grid snapshot and clears the modified flag in one step, so an edit
// made after the snapshot is never lost.
func (c *Chunk) TakeModified() (Grid, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.modified {
		return Grid{}, false
	}
	c.modified = false
	return c.grid, true
}

// RestoreModified re-flags a chunk whose save failed.
func (c *Chunk) RestoreModified() {
	c.mu.Lock()
	c.modified = true
	c.mu.Unlock()
}
