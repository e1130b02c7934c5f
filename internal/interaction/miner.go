package interaction

import (
	"math"

	"voxcore/internal/world"
)

// BreakTime is the time in seconds to break a block of hardness 1.
const BreakTime = 0.5

// Miner tracks break progress on the targeted block.
type Miner struct {
	IsBreaking    bool
	BreakingBlock world.BlockPos
	BreakProgress float32
}

// Reset drops any progress.
func (m *Miner) Reset() {
	m.IsBreaking = false
	m.BreakProgress = 0
}

// Update advances mining by dt seconds and returns the signal for this frame. broken is
// true on the frame the block finishes; the caller removes it. A nil target clears the
// signal; holding false keeps the highlight without progress.
func (m *Miner) Update(dt float64, target *Target, holding bool, hardness float32) (sig Signal, broken bool) {
	if target == nil {
		m.Reset()
		return Signal{}, false
	}
	if !holding {
		m.Reset()
		return Highlight(target.Block, target.Face), false
	}

	if m.IsBreaking {
		if m.BreakingBlock != target.Block {
			// Target changed, reset progress but continue mining new block
			m.BreakProgress = 0
			m.BreakingBlock = target.Block
		}
	} else {
		m.IsBreaking = true
		m.BreakingBlock = target.Block
		m.BreakProgress = 0
	}

	if hardness <= 0 {
		hardness = 1
	}
	m.BreakProgress += float32(dt) / (BreakTime * hardness)

	if m.BreakProgress >= 1.0 {
		m.Reset()
		return Highlight(target.Block, target.Face), true
	}
	stage := int(math.Floor(float64(m.BreakProgress) * DestroyStages))
	return Destroying(target.Block, target.Face, stage), false
}
