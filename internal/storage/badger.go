package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/dgraph-io/badger/v3"

	"voxcore/internal/world"
)

// Key layout:
//
//	c/<x>/<y>/<z>   zstd chunk blob
//	player          JSON PlayerState
//	inv/<item>      big-endian uint64 count
//	hotbar/<slot>   item id, empty for no item
const (
	keyPlayer    = "player"
	prefixInv    = "inv/"
	prefixHotbar = "hotbar/"
	maxTxnRetry  = 8
)

// BadgerStore keeps the world in a Badger key-value database.
type BadgerStore struct {
	db     *badger.DB
	closed atomic.Bool
}

var _ Store = (*BadgerStore)(nil)

// OpenBadger opens or creates a database in dir. An empty dir keeps everything in memory.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, opError("open", err)
	}
	s := &BadgerStore{db: db}
	if err := s.seed(); err != nil {
		_ = db.Close()
		return nil, opError("init schema", err)
	}
	return s, nil
}

// seed writes the initial player and hotbar keys when they are missing.
func (s *BadgerStore) seed() error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(keyPlayer)); errors.Is(err, badger.ErrKeyNotFound) {
			data, err := json.Marshal(DefaultPlayer())
			if err != nil {
				return err
			}
			if err := txn.Set([]byte(keyPlayer), data); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		for slot := 0; slot < HotbarSlots; slot++ {
			key := hotbarKey(slot)
			if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
				if err := txn.Set(key, []byte{}); err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
		}
		return nil
	})
}

func chunkKey(c world.ChunkCoord) []byte {
	return []byte(fmt.Sprintf("c/%d/%d/%d", c.X, c.Y, c.Z))
}

func invKey(item ItemID) []byte {
	return []byte(prefixInv + string(item))
}

func hotbarKey(slot int) []byte {
	return []byte(prefixHotbar + strconv.Itoa(slot))
}

func (s *BadgerStore) check() error {
	if s.closed.Load() {
		return ErrClosed
	}
	return nil
}

// update runs fn in a read-write transaction, retrying on write conflicts.
func (s *BadgerStore) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for i := 0; i < maxTxnRetry; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// GetChunk returns the stored grid at coord. ok is false when no key exists.
func (s *BadgerStore) GetChunk(ctx context.Context, coord world.ChunkCoord) (g *world.Grid, ok bool, err error) {
	defer func() { observeLoad(ok, err) }()
	if err := s.check(); err != nil {
		return nil, false, chunkError("get chunk", coord, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, false, chunkError("get chunk", coord, err)
	}

	var blob []byte
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chunkKey(coord))
		if err != nil {
			return err
		}
		blob, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, chunkError("get chunk", coord, err)
	}

	g, err = DecodeGrid(blob)
	if err != nil {
		return nil, false, chunkError("get chunk", coord, err)
	}
	return g, true, nil
}

// PutChunk replaces the stored grid at coord.
func (s *BadgerStore) PutChunk(ctx context.Context, coord world.ChunkCoord, g *world.Grid) (err error) {
	defer func() { observeSave(err) }()
	if err := s.check(); err != nil {
		return chunkError("put chunk", coord, err)
	}
	blob, err := EncodeGrid(g)
	if err != nil {
		return chunkError("put chunk", coord, err)
	}
	err = s.update(ctx, func(txn *badger.Txn) error {
		return txn.Set(chunkKey(coord), blob)
	})
	return chunkError("put chunk", coord, err)
}

// Player returns the stored player pose.
func (s *BadgerStore) Player(ctx context.Context) (PlayerState, error) {
	var p PlayerState
	if err := s.check(); err != nil {
		return p, opError("get player", err)
	}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPlayer))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	return p, opError("get player", err)
}

// SetPlayer overwrites the player pose.
func (s *BadgerStore) SetPlayer(ctx context.Context, p PlayerState) error {
	if err := s.check(); err != nil {
		return opError("set player", err)
	}
	if err := validSlot(p.Slot); err != nil {
		return opError("set player", err)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return opError("set player", err)
	}
	err = s.update(ctx, func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPlayer), data)
	})
	return opError("set player", err)
}

// Inventory returns every item with a positive count.
func (s *BadgerStore) Inventory(ctx context.Context) (map[ItemID]int, error) {
	if err := s.check(); err != nil {
		return nil, opError("get inventory", err)
	}
	inv := make(map[ItemID]int)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 32, Prefix: []byte(prefixInv)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			id := ItemID(strings.TrimPrefix(string(item.Key()), prefixInv))
			if err := item.Value(func(val []byte) error {
				if len(val) != 8 {
					return fmt.Errorf("inventory count for %s is %d bytes", id, len(val))
				}
				inv[id] = int(binary.BigEndian.Uint64(val))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, opError("get inventory", err)
	}
	return inv, nil
}

// AdjustInventory applies delta inside one transaction.
func (s *BadgerStore) AdjustInventory(ctx context.Context, item ItemID, delta int) (int, error) {
	if err := s.check(); err != nil {
		return 0, opError("adjust inventory", err)
	}
	if item == NoItem {
		return 0, opError("adjust inventory", ErrInvalidItem)
	}

	var result int
	err := s.update(ctx, func(txn *badger.Txn) error {
		current := 0
		it, err := txn.Get(invKey(item))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			val, err := it.ValueCopy(nil)
			if err != nil {
				return err
			}
			if len(val) != 8 {
				return fmt.Errorf("inventory count for %s is %d bytes", item, len(val))
			}
			current = int(binary.BigEndian.Uint64(val))
		}

		n, err := nextCount(item, current, delta)
		result = n
		if err != nil {
			return err
		}
		if n == 0 {
			return txn.Delete(invKey(item))
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(n))
		return txn.Set(invKey(item), buf)
	})
	if err != nil {
		return result, opError("adjust inventory", err)
	}
	return result, nil
}

// Hotbar returns the nine slots; empty slots are NoItem.
func (s *BadgerStore) Hotbar(ctx context.Context) ([HotbarSlots]ItemID, error) {
	var bar [HotbarSlots]ItemID
	if err := s.check(); err != nil {
		return bar, opError("get hotbar", err)
	}
	err := s.db.View(func(txn *badger.Txn) error {
		for slot := 0; slot < HotbarSlots; slot++ {
			item, err := txn.Get(hotbarKey(slot))
			if err != nil {
				return err
			}
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			bar[slot] = ItemID(val)
		}
		return nil
	})
	return bar, opError("get hotbar", err)
}

// SetHotbarSlot stores item in slot. NoItem clears the slot.
func (s *BadgerStore) SetHotbarSlot(ctx context.Context, slot int, item ItemID) error {
	if err := s.check(); err != nil {
		return opError("set hotbar", err)
	}
	if err := validSlot(slot); err != nil {
		return opError("set hotbar", err)
	}
	err := s.update(ctx, func(txn *badger.Txn) error {
		return txn.Set(hotbarKey(slot), []byte(item))
	})
	return opError("set hotbar", err)
}

// Close closes the database. Later calls return ErrClosed.
func (s *BadgerStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return opError("close", s.db.Close())
}
