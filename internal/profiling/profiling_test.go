package profiling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackAndEndFrame(t *testing.T) {
	EndFrame()
	stop := Track("test.stage")
	time.Sleep(time.Millisecond)
	stop()

	snap := Snapshot()
	assert.GreaterOrEqual(t, snap["test.stage"], time.Millisecond)

	got := EndFrame()
	assert.Contains(t, got, "test.stage")
	assert.Empty(t, Snapshot())
}

func TestTopN(t *testing.T) {
	totals := map[string]time.Duration{
		"a": 1500 * time.Microsecond,
		"b": 4 * time.Millisecond,
		"c": 100 * time.Microsecond,
	}
	assert.Equal(t, "b:4.0ms, a:1.5ms", TopN(totals, 2))
	assert.Equal(t, "b:4.0ms, a:1.5ms, c:0.1ms", TopN(totals, 10))
}
