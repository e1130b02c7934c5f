package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	_ "modernc.org/sqlite"

	"voxcore/internal/world"
)

// SQLiteStore keeps the world in one SQLite file with four tables.
type SQLiteStore struct {
	db     *sql.DB
	closed atomic.Bool
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens or creates the database at path and seeds the initial player and
// hotbar rows.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, opError("open", fmt.Errorf("empty db path"))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, opError("open", err)
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	dsn := "file:" + path +
		"?_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, opError("open", err)
	}
	// WAL lets readers run beside the single writer, so a small pool keeps lookups of
	// different coordinates from queueing behind each other.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(0)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, opError("init schema", err)
	}
	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chunks (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			data BLOB NOT NULL,
			PRIMARY KEY (x, y, z)
		);`,
		`CREATE TABLE IF NOT EXISTS player (
			id INTEGER PRIMARY KEY CHECK (id = 0),
			x REAL NOT NULL,
			y REAL NOT NULL,
			z REAL NOT NULL,
			roll REAL NOT NULL,
			pitch REAL NOT NULL,
			yaw REAL NOT NULL,
			inventory_slot INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS inventory (
			item TEXT PRIMARY KEY,
			count INTEGER NOT NULL CHECK (count > 0)
		);`,
		`CREATE TABLE IF NOT EXISTS hotbar (
			slot INTEGER PRIMARY KEY CHECK (slot >= 0 AND slot < 9),
			item TEXT
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}

	p := DefaultPlayer()
	if _, err := db.Exec(`INSERT OR IGNORE INTO player (id, x, y, z, roll, pitch, yaw, inventory_slot)
		VALUES (0, ?, ?, ?, ?, ?, ?, ?)`,
		p.Position.X(), p.Position.Y(), p.Position.Z(),
		p.Rotation.X(), p.Rotation.Y(), p.Rotation.Z(), p.Slot); err != nil {
		return err
	}
	for slot := 0; slot < HotbarSlots; slot++ {
		if _, err := db.Exec(`INSERT OR IGNORE INTO hotbar (slot, item) VALUES (?, NULL)`, slot); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) check() error {
	if s.closed.Load() {
		return ErrClosed
	}
	return nil
}

// GetChunk returns the stored grid at coord. ok is false when no row exists.
func (s *SQLiteStore) GetChunk(ctx context.Context, coord world.ChunkCoord) (g *world.Grid, ok bool, err error) {
	defer func() { observeLoad(ok, err) }()
	if err := s.check(); err != nil {
		return nil, false, chunkError("get chunk", coord, err)
	}

	var blob []byte
	err = s.db.QueryRowContext(ctx, `SELECT data FROM chunks WHERE x = ? AND y = ? AND z = ?`,
		coord.X, coord.Y, coord.Z).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
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
func (s *SQLiteStore) PutChunk(ctx context.Context, coord world.ChunkCoord, g *world.Grid) (err error) {
	defer func() { observeSave(err) }()
	if err := s.check(); err != nil {
		return chunkError("put chunk", coord, err)
	}
	blob, err := EncodeGrid(g)
	if err != nil {
		return chunkError("put chunk", coord, err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO chunks (x, y, z, data) VALUES (?, ?, ?, ?)
		ON CONFLICT (x, y, z) DO UPDATE SET data = excluded.data`,
		coord.X, coord.Y, coord.Z, blob)
	return chunkError("put chunk", coord, err)
}

// Player returns the stored player row.
func (s *SQLiteStore) Player(ctx context.Context) (PlayerState, error) {
	if err := s.check(); err != nil {
		return PlayerState{}, opError("get player", err)
	}
	var x, y, z, roll, pitch, yaw float32
	var slot int
	err := s.db.QueryRowContext(ctx, `SELECT x, y, z, roll, pitch, yaw, inventory_slot FROM player WHERE id = 0`).
		Scan(&x, &y, &z, &roll, &pitch, &yaw, &slot)
	if err != nil {
		return PlayerState{}, opError("get player", err)
	}
	return PlayerState{
		Position: mgl32.Vec3{x, y, z},
		Rotation: mgl32.Vec3{roll, pitch, yaw},
		Slot:     slot,
	}, nil
}

// SetPlayer overwrites the player row in one statement.
func (s *SQLiteStore) SetPlayer(ctx context.Context, p PlayerState) error {
	if err := s.check(); err != nil {
		return opError("set player", err)
	}
	if err := validSlot(p.Slot); err != nil {
		return opError("set player", err)
	}
	_, err := s.db.ExecContext(ctx, `UPDATE player SET x = ?, y = ?, z = ?, roll = ?, pitch = ?, yaw = ?, inventory_slot = ? WHERE id = 0`,
		p.Position.X(), p.Position.Y(), p.Position.Z(),
		p.Rotation.X(), p.Rotation.Y(), p.Rotation.Z(), p.Slot)
	return opError("set player", err)
}

// Inventory returns every item with a positive count.
func (s *SQLiteStore) Inventory(ctx context.Context) (map[ItemID]int, error) {
	if err := s.check(); err != nil {
		return nil, opError("get inventory", err)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT item, count FROM inventory`)
	if err != nil {
		return nil, opError("get inventory", err)
	}
	defer rows.Close()

	inv := make(map[ItemID]int)
	for rows.Next() {
		var item string
		var count int
		if err := rows.Scan(&item, &count); err != nil {
			return nil, opError("get inventory", err)
		}
		inv[ItemID(item)] = count
	}
	return inv, opError("get inventory", rows.Err())
}

// AdjustInventory reads, checks and writes the count inside one transaction.
func (s *SQLiteStore) AdjustInventory(ctx context.Context, item ItemID, delta int) (int, error) {
	if err := s.check(); err != nil {
		return 0, opError("adjust inventory", err)
	}
	if item == NoItem {
		return 0, opError("adjust inventory", ErrInvalidItem)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, opError("adjust inventory", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current int
	err = tx.QueryRowContext(ctx, `SELECT count FROM inventory WHERE item = ?`, string(item)).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, opError("adjust inventory", err)
	}

	n, err := nextCount(item, current, delta)
	if err != nil {
		return current, opError("adjust inventory", err)
	}
	if n == 0 {
		_, err = tx.ExecContext(ctx, `DELETE FROM inventory WHERE item = ?`, string(item))
	} else {
		_, err = tx.ExecContext(ctx, `INSERT INTO inventory (item, count) VALUES (?, ?)
			ON CONFLICT (item) DO UPDATE SET count = excluded.count`, string(item), n)
	}
	if err != nil {
		return 0, opError("adjust inventory", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, opError("adjust inventory", err)
	}
	return n, nil
}

// Hotbar returns the nine slots; empty slots are NoItem.
func (s *SQLiteStore) Hotbar(ctx context.Context) ([HotbarSlots]ItemID, error) {
	var bar [HotbarSlots]ItemID
	if err := s.check(); err != nil {
		return bar, opError("get hotbar", err)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT slot, item FROM hotbar ORDER BY slot`)
	if err != nil {
		return bar, opError("get hotbar", err)
	}
	defer rows.Close()

	for rows.Next() {
		var slot int
		var item sql.NullString
		if err := rows.Scan(&slot, &item); err != nil {
			return bar, opError("get hotbar", err)
		}
		if validSlot(slot) == nil && item.Valid {
			bar[slot] = ItemID(item.String)
		}
	}
	return bar, opError("get hotbar", rows.Err())
}

// SetHotbarSlot stores item in slot. NoItem clears the slot.
func (s *SQLiteStore) SetHotbarSlot(ctx context.Context, slot int, item ItemID) error {
	if err := s.check(); err != nil {
		return opError("set hotbar", err)
	}
	if err := validSlot(slot); err != nil {
		return opError("set hotbar", err)
	}
	value := sql.NullString{String: string(item), Valid: item != NoItem}
	_, err := s.db.ExecContext(ctx, `UPDATE hotbar SET item = ? WHERE slot = ?`, value, slot)
	return opError("set hotbar", err)
}

// Close closes the database. Later calls return ErrClosed.
func (s *SQLiteStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return opError("close", s.db.Close())
}
