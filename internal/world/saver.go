package world

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// Saver writes modified chunks back to their source. Extra, when set, runs after the chunks
// on every flush; the viewer uses it for the player pose.
type Saver struct {
	Chunks *ChunkStore
	Source ChunkSource
	Extra  func(ctx context.Context) error
}

// Flush persists every loaded chunk with unsaved edits and returns how many were written.
// A chunk whose write fails keeps its modified flag and is retried on the next flush.
func (s *Saver) Flush(ctx context.Context) (int, error) {
	var errs []error
	saved := 0
	for _, c := range s.Chunks.GetAllChunks() {
		g, ok := c.TakeModified()
		if !ok {
			continue
		}
		if err := s.Source.PutChunk(ctx, c.Coord, &g); err != nil {
			c.RestoreModified()
			errs = append(errs, fmt.Errorf("save chunk %v: %w", c.Coord, err))
			continue
		}
		saved++
	}
	if s.Extra != nil {
		if err := s.Extra(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return saved, errors.Join(errs...)
}

// Run flushes every interval until ctx is done, then flushes one last time.
func (s *Saver) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := s.Flush(ctx); err != nil {
				log.Printf("[save] flush failed: %v", err)
			}
		case <-ctx.Done():
			// The run context is gone; use a fresh one so the final write is not cancelled.
			final, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if n, err := s.Flush(final); err != nil {
				log.Printf("[save] final flush failed: %v", err)
			} else if n > 0 {
				log.Printf("[save] final flush wrote %d chunks", n)
			}
			cancel()
			return
		}
	}
}
