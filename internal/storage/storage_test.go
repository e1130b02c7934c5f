package storage

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v3"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxcore/internal/config"
	"voxcore/internal/world"
)

type backend struct {
	name string
	open func(t *testing.T) Store
	// corrupt writes raw bytes as the blob of coord.
	corrupt func(t *testing.T, s Store, coord world.ChunkCoord, blob []byte)
}

var backends = []backend{
	{
		name: "sqlite",
		open: func(t *testing.T) Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "world.sqlite"))
			require.NoError(t, err)
			return s
		},
		corrupt: func(t *testing.T, s Store, coord world.ChunkCoord, blob []byte) {
			_, err := s.(*SQLiteStore).db.Exec(`INSERT OR REPLACE INTO chunks (x, y, z, data) VALUES (?, ?, ?, ?)`,
				coord.X, coord.Y, coord.Z, blob)
			require.NoError(t, err)
		},
	},
	{
		name: "badger",
		open: func(t *testing.T) Store {
			s, err := OpenBadger("")
			require.NoError(t, err)
			return s
		},
		corrupt: func(t *testing.T, s Store, coord world.ChunkCoord, blob []byte) {
			err := s.(*BadgerStore).db.Update(func(txn *badger.Txn) error {
				return txn.Set(chunkKey(coord), blob)
			})
			require.NoError(t, err)
		},
	},
}

func eachBackend(t *testing.T, fn func(t *testing.T, b backend, s Store)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			defer s.Close()
			fn(t, b, s)
		})
	}
}

func sampleGrid() *world.Grid {
	g := new(world.Grid)
	for x := 0; x < world.ChunkSize; x++ {
		for z := 0; z < world.ChunkSize; z++ {
			g.Set(x, 0, z, world.BlockTypeRock)
			g.Set(x, 1, z, world.BlockTypeDirt)
		}
	}
	g.Set(3, 2, 7, world.BlockTypeGrass)
	g.Set(15, 15, 15, world.BlockTypeGlass)
	return g
}

func TestChunkRoundTrip(t *testing.T) {
	eachBackend(t, func(t *testing.T, _ backend, s Store) {
		ctx := context.Background()
		coord := world.ChunkCoord{X: -3, Y: 1, Z: 7}
		g := sampleGrid()

		require.NoError(t, s.PutChunk(ctx, coord, g))
		got, ok, err := s.GetChunk(ctx, coord)
		require.NoError(t, err)
		require.True(t, ok)

		want, _ := g.MarshalBinary()
		have, _ := got.MarshalBinary()
		assert.True(t, bytes.Equal(want, have), "grid must round-trip byte for byte")

		// Overwrite replaces the whole grid.
		empty := new(world.Grid)
		require.NoError(t, s.PutChunk(ctx, coord, empty))
		got, ok, err = s.GetChunk(ctx, coord)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, got.IsEmpty())
	})
}

func TestMissingChunkIsNotAnError(t *testing.T) {
	eachBackend(t, func(t *testing.T, _ backend, s Store) {
		g, ok, err := s.GetChunk(context.Background(), world.ChunkCoord{X: 99})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, g)
	})
}

func TestCorruptChunkIsReported(t *testing.T) {
	eachBackend(t, func(t *testing.T, b backend, s Store) {
		ctx := context.Background()
		short := blobEncoder.EncodeAll(make([]byte, 100), nil)

		for name, blob := range map[string][]byte{"garbage": []byte("not zstd"), "undersized": short} {
			coord := world.ChunkCoord{Y: len(name)}
			b.corrupt(t, s, coord, blob)

			_, ok, err := s.GetChunk(ctx, coord)
			assert.False(t, ok, name)
			assert.ErrorIs(t, err, ErrCorruptChunk, name)

			var se *StorageError
			require.True(t, errors.As(err, &se), name)
			require.NotNil(t, se.Coord)
			assert.Equal(t, coord, *se.Coord)
		}
	})
}

func TestInitialState(t *testing.T) {
	eachBackend(t, func(t *testing.T, _ backend, s Store) {
		ctx := context.Background()

		p, err := s.Player(ctx)
		require.NoError(t, err)
		assert.Equal(t, DefaultPlayer(), p)
		assert.Equal(t, mgl32.Vec3{0, 5, 0}, p.Position)

		bar, err := s.Hotbar(ctx)
		require.NoError(t, err)
		for i, item := range bar {
			assert.Equal(t, NoItem, item, "slot %d", i)
		}

		inv, err := s.Inventory(ctx)
		require.NoError(t, err)
		assert.Empty(t, inv)
	})
}

func TestPlayer(t *testing.T) {
	eachBackend(t, func(t *testing.T, _ backend, s Store) {
		ctx := context.Background()
		p := PlayerState{
			Position: mgl32.Vec3{1.5, 70.25, -3},
			Rotation: mgl32.Vec3{0, -0.5, 2},
			Slot:     4,
		}
		require.NoError(t, s.SetPlayer(ctx, p))
		got, err := s.Player(ctx)
		require.NoError(t, err)
		assert.Equal(t, p, got)

		p.Slot = HotbarSlots
		assert.ErrorIs(t, s.SetPlayer(ctx, p), ErrInvalidSlot)
	})
}

func TestInventory(t *testing.T) {
	eachBackend(t, func(t *testing.T, _ backend, s Store) {
		ctx := context.Background()

		n, err := s.AdjustInventory(ctx, "rock", 5)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		n, err = s.AdjustInventory(ctx, "rock", -2)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		_, err = s.AdjustInventory(ctx, "dirt", 1)
		require.NoError(t, err)

		inv, err := s.Inventory(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[ItemID]int{"rock": 3, "dirt": 1}, inv)

		n, err = s.AdjustInventory(ctx, "rock", -4)
		assert.ErrorIs(t, err, ErrInsufficientItems)
		assert.Equal(t, 3, n, "count unchanged")

		n, err = s.AdjustInventory(ctx, "rock", -3)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		inv, err = s.Inventory(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[ItemID]int{"dirt": 1}, inv)

		_, err = s.AdjustInventory(ctx, NoItem, 1)
		assert.ErrorIs(t, err, ErrInvalidItem)
	})
}

func TestBadgerShortInventoryValue(t *testing.T) {
	s, err := OpenBadger("")
	require.NoError(t, err)
	defer s.Close()

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(invKey("rock"), []byte{1, 2, 3})
	})
	require.NoError(t, err)

	var n int
	assert.NotPanics(t, func() {
		n, err = s.AdjustInventory(context.Background(), "rock", 1)
	})
	require.Error(t, err)
	var se *StorageError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, 0, n)
}

func TestHotbar(t *testing.T) {
	eachBackend(t, func(t *testing.T, _ backend, s Store) {
		ctx := context.Background()

		require.NoError(t, s.SetHotbarSlot(ctx, 0, "rock"))
		require.NoError(t, s.SetHotbarSlot(ctx, 8, "glass"))
		bar, err := s.Hotbar(ctx)
		require.NoError(t, err)
		assert.Equal(t, ItemID("rock"), bar[0])
		assert.Equal(t, ItemID("glass"), bar[8])
		assert.Equal(t, NoItem, bar[4])

		require.NoError(t, s.SetHotbarSlot(ctx, 0, NoItem))
		bar, err = s.Hotbar(ctx)
		require.NoError(t, err)
		assert.Equal(t, NoItem, bar[0])

		assert.ErrorIs(t, s.SetHotbarSlot(ctx, -1, "rock"), ErrInvalidSlot)
		assert.ErrorIs(t, s.SetHotbarSlot(ctx, 9, "rock"), ErrInvalidSlot)
	})
}

func TestClosedStore(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			require.NoError(t, s.Close())
			require.NoError(t, s.Close(), "second close is a no-op")

			ctx := context.Background()
			_, _, err := s.GetChunk(ctx, world.ChunkCoord{})
			assert.ErrorIs(t, err, ErrClosed)
			assert.ErrorIs(t, s.PutChunk(ctx, world.ChunkCoord{}, new(world.Grid)), ErrClosed)
			_, err = s.Player(ctx)
			assert.ErrorIs(t, err, ErrClosed)
			_, err = s.Hotbar(ctx)
			assert.ErrorIs(t, err, ErrClosed)
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.sqlite")
	ctx := context.Background()
	coord := world.ChunkCoord{X: 1, Y: 2, Z: 3}

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.PutChunk(ctx, coord, sampleGrid()))
	require.NoError(t, s.SetHotbarSlot(ctx, 2, "leaves"))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	g, ok, err := s.GetChunk(ctx, coord)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, *sampleGrid(), *g)

	bar, err := s.Hotbar(ctx)
	require.NoError(t, err)
	assert.Equal(t, ItemID("leaves"), bar[2], "seed must not overwrite existing rows")
}

func TestOpenSelectsDriver(t *testing.T) {
	s, err := Open(config.StoreConfig{Driver: config.DriverBadger})
	require.NoError(t, err)
	_, isBadger := s.(*BadgerStore)
	assert.True(t, isBadger)
	require.NoError(t, s.Close())

	s, err = Open(config.StoreConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "w.db")})
	require.NoError(t, err)
	_, isSQLite := s.(*SQLiteStore)
	assert.True(t, isSQLite)
	require.NoError(t, s.Close())

	_, err = Open(config.StoreConfig{Driver: "postgres"})
	var se *StorageError
	assert.True(t, errors.As(err, &se))
}

func TestCodec(t *testing.T) {
	blob, err := EncodeGrid(sampleGrid())
	require.NoError(t, err)
	assert.Less(t, len(blob), world.ChunkVolume, "mostly uniform grids compress")

	g, err := DecodeGrid(blob)
	require.NoError(t, err)
	assert.Equal(t, *sampleGrid(), *g)

	_, err = DecodeGrid(blob[:len(blob)/2])
	assert.ErrorIs(t, err, ErrCorruptChunk)
}
