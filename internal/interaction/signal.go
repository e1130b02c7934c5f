// Package interaction carries the targeted-block signal from input handling to the
// vertex and shading stages.
package interaction

import "voxcore/internal/world"

// Signal values.
const (
	ValueNone      uint32 = 0
	ValueHighlight uint32 = 1
	// ValueDestroyBase is the value of destroy stage 0. Stage s is ValueDestroyBase + s.
	ValueDestroyBase uint32 = 2

	// DestroyStages is the number of layers in the destroy overlay array.
	DestroyStages = 10
	// MaxValue is the largest value a signal carries.
	MaxValue = ValueDestroyBase + DestroyStages - 1
)

// Signal names the one voxel face being interacted with this frame. The zero Signal means
// nothing is targeted.
type Signal struct {
	Block world.BlockPos
	Face  world.BlockFace
	Value uint32
}

// Highlight targets pos without break progress.
func Highlight(pos world.BlockPos, face world.BlockFace) Signal {
	return Signal{Block: pos, Face: face, Value: ValueHighlight}
}

// Destroying targets pos at a destroy stage, clamped to the overlay array.
func Destroying(pos world.BlockPos, face world.BlockFace, stage int) Signal {
	stage = min(max(stage, 0), DestroyStages-1)
	return Signal{Block: pos, Face: face, Value: ValueDestroyBase + uint32(stage)}
}

// Active reports whether the signal targets anything.
func (s Signal) Active() bool { return s.Value != ValueNone }

// Stage returns the destroy stage, or false when the block is not being broken.
func (s Signal) Stage() (int, bool) {
	if s.Value < ValueDestroyBase {
		return 0, false
	}
	return int(s.Value - ValueDestroyBase), true
}

// Matches reports whether a vertex of face at pos is the target. perFace limits the
// match to the targeted face; otherwise the whole voxel matches.
func (s Signal) Matches(pos world.BlockPos, face world.BlockFace, perFace bool) bool {
	if !s.Active() || s.Block != pos {
		return false
	}
	return !perFace || s.Face == face
}
