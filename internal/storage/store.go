// Package storage persists chunks, the player pose, the inventory and the hotbar.
package storage

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"voxcore/internal/config"
	"voxcore/internal/metrics"
	"voxcore/internal/world"
)

// HotbarSlots is the fixed number of hotbar slots.
const HotbarSlots = 9

// ItemID identifies an inventory item. Block items use the block name.
type ItemID string

// NoItem marks an empty hotbar slot.
const NoItem ItemID = ""

// PlayerState is the persisted player row.
type PlayerState struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3 // roll, pitch, yaw
	Slot     int        // selected hotbar slot
}

// DefaultPlayer is the pose written when a world is created.
func DefaultPlayer() PlayerState {
	return PlayerState{Position: mgl32.Vec3{0, 5, 0}}
}

// Store is the durable side of the world. Every write is atomic: readers see either the
// previous or the new value, never a mix. All errors are *StorageError.
type Store interface {
	world.ChunkSource

	Player(ctx context.Context) (PlayerState, error)
	SetPlayer(ctx context.Context, p PlayerState) error

	Inventory(ctx context.Context) (map[ItemID]int, error)
	// AdjustInventory adds delta to the count of item and returns the new count. A count
	// of zero removes the item.
	AdjustInventory(ctx context.Context, item ItemID, delta int) (int, error)

	Hotbar(ctx context.Context) ([HotbarSlots]ItemID, error)
	SetHotbarSlot(ctx context.Context, slot int, item ItemID) error

	Close() error
}

// Open opens the backend selected by cfg.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return OpenSQLite(cfg.Path)
	case config.DriverBadger:
		return OpenBadger(cfg.Path)
	default:
		return nil, opError("open", fmt.Errorf("unknown driver %q", cfg.Driver))
	}
}

func validSlot(slot int) error {
	if slot < 0 || slot >= HotbarSlots {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	return nil
}

// nextCount applies delta to current and enforces the inventory rules.
func nextCount(item ItemID, current, delta int) (int, error) {
	if item == NoItem {
		return 0, ErrInvalidItem
	}
	n := current + delta
	if n < 0 {
		return current, fmt.Errorf("%w: have %d %s, need %d", ErrInsufficientItems, current, item, -delta)
	}
	return n, nil
}

func observeLoad(found bool, err error) {
	switch {
	case err != nil && isCorrupt(err):
		metrics.ChunkLoads.WithLabelValues("corrupt").Inc()
	case err != nil:
		metrics.ChunkLoads.WithLabelValues("error").Inc()
	case found:
		metrics.ChunkLoads.WithLabelValues("hit").Inc()
	default:
		metrics.ChunkLoads.WithLabelValues("miss").Inc()
	}
}

func observeSave(err error) {
	if err != nil {
		metrics.ChunkSaves.WithLabelValues("error").Inc()
		return
	}
	metrics.ChunkSaves.WithLabelValues("ok").Inc()
}
