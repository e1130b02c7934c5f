package main

import "time"

// fpsLimiter paces the render loop to a fixed frame rate.
type fpsLimiter struct {
	limit int
	next  time.Time
}

// Wait blocks until the next frame is due. A paused viewer is capped at 30 frames per
// second whatever the configured limit.
func (f *fpsLimiter) Wait(paused bool) {
	limit := f.limit
	if paused {
		limit = 30
	}
	if limit <= 0 {
		f.next = time.Time{}
		return
	}

	target := time.Second / time.Duration(limit)
	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
		// spin for the last few microseconds
		if time.Until(f.next) <= 0 {
			break
		}
	}

	// Resync after a hitch so we don't race to catch up.
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}
