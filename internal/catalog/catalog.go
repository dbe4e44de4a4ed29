// Package catalog stores a tile content pool in a SQLite database.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/tilepan/internal/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS tiles (
	position INTEGER PRIMARY KEY,
	id       TEXT NOT NULL UNIQUE,
	title    TEXT NOT NULL,
	url      TEXT NOT NULL DEFAULT '',
	color    TEXT NOT NULL DEFAULT ''
)`

// Tile is one catalog row. Position orders the pool.
type Tile struct {
	Position int64
	ID       string
	Title    string
	URL      string
	Color    string
}

// Catalog is a handle to a tile catalog database.
type Catalog struct {
	db       *sql.DB
	path     string
	readOnly bool
}

// Create opens path for writing, creating the file and schema if needed.
func Create(ctx context.Context, path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		log.ErrorErr(log.CatCatalog, "Failed to create schema", err, "path", path)
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}
	log.Info(log.CatCatalog, "Catalog ready", "path", path)
	return &Catalog{db: db, path: path}, nil
}

// Open opens an existing catalog read-only, the way the running viewer
// consumes it.
func Open(ctx context.Context, path string) (*Catalog, error) {
	log.Debug(log.CatCatalog, "Opening catalog", "path", path)
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		log.ErrorErr(log.CatCatalog, "Failed to ping catalog", err, "path", path)
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	return &Catalog{db: db, path: path, readOnly: true}, nil
}

// Path returns the database file path.
func (c *Catalog) Path() string { return c.path }

// Close closes the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// ErrReadOnly is returned by Insert on a catalog opened with Open.
var ErrReadOnly = errors.New("catalog is read-only")

// Insert appends tiles in one transaction. Position is assigned by the
// database and ignored on input.
func (c *Catalog) Insert(ctx context.Context, tiles ...Tile) error {
	if c.readOnly {
		return ErrReadOnly
	}
	if len(tiles) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tiles (id, title, url, color) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, t := range tiles {
		if t.ID == "" {
			return fmt.Errorf("inserting tile %q: empty id", t.Title)
		}
		if _, err := stmt.ExecContext(ctx, t.ID, t.Title, t.URL, t.Color); err != nil {
			return fmt.Errorf("inserting tile %s: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing insert: %w", err)
	}
	log.Debug(log.CatCatalog, "Inserted tiles", "count", len(tiles))
	return nil
}

// Items returns up to limit tiles ordered by position. limit <= 0 returns
// every tile.
func (c *Catalog) Items(ctx context.Context, limit int) ([]Tile, error) {
	query := `SELECT position, id, title, url, color FROM tiles ORDER BY position`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tiles []Tile
	for rows.Next() {
		var t Tile
		if err := rows.Scan(&t.Position, &t.ID, &t.Title, &t.URL, &t.Color); err != nil {
			return nil, fmt.Errorf("scanning tile: %w", err)
		}
		tiles = append(tiles, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading tiles: %w", err)
	}
	return tiles, nil
}

// Count returns the number of tiles.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tiles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting tiles: %w", err)
	}
	return n, nil
}
