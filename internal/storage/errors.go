package storage

import (
	"errors"
	"fmt"

	"voxcore/internal/world"
)

var (
	// ErrCorruptChunk marks a chunk blob that does not decode to a full grid.
	ErrCorruptChunk = errors.New("corrupt chunk blob")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("store closed")
	// ErrInvalidSlot is returned for hotbar slots outside 0-8.
	ErrInvalidSlot = errors.New("invalid hotbar slot")
	// ErrInvalidItem is returned for empty item ids where an item is required.
	ErrInvalidItem = errors.New("invalid item id")
	// ErrInsufficientItems is returned when an inventory adjustment would go below zero.
	ErrInsufficientItems = errors.New("insufficient items")
)

// StorageError is the error type surfaced by every Store operation.
type StorageError struct {
	Op    string
	Coord *world.ChunkCoord
	Err   error
}

func (e *StorageError) Error() string {
	if e.Coord != nil {
		return fmt.Sprintf("storage: %s (%d,%d,%d): %v", e.Op, e.Coord.X, e.Coord.Y, e.Coord.Z, e.Err)
	}
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func opError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

func chunkError(op string, coord world.ChunkCoord, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Coord: &coord, Err: err}
}

func isCorrupt(err error) bool {
	return errors.Is(err, ErrCorruptChunk)
}
