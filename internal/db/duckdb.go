package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

// DB is the catalog of rendered documents. The documents themselves live in
// the CAS; the catalog maps crate, version and format to a content hash.
type DB struct {
	conn *sql.DB
}

func New(dbPath string) (*DB, error) {
	if dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	conn, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) initSchema() error {
	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_render_id START 1;`,

		`CREATE TABLE IF NOT EXISTS renders (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			version TEXT NOT NULL,
			format TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			format_version INTEGER NOT NULL DEFAULT 0,
			item_count INTEGER NOT NULL DEFAULT 0,
			sections TEXT,
			rendered_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(name, version, format)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_renders_name ON renders (name)`,
		`CREATE INDEX IF NOT EXISTS idx_renders_hash ON renders (content_hash)`,
	}

	for _, q := range queries {
		if _, err := db.conn.Exec(q); err != nil {
			return fmt.Errorf("executing %q: %w", q, err)
		}
	}
	return nil
}

// Render is one catalogued document.
type Render struct {
	ID            int
	Name          string
	Version       string
	Format        string
	ContentHash   string
	FormatVersion int
	ItemCount     int
	Sections      map[string]int // section title → rendered items
	RenderedAt    time.Time
}

// RecordRender stores r, replacing any earlier render of the same crate,
// version and format.
func (db *DB) RecordRender(ctx context.Context, r *Render) error {
	sections, err := json.Marshal(r.Sections)
	if err != nil {
		return fmt.Errorf("encoding sections: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM renders WHERE name = ? AND version = ? AND format = ?`,
		r.Name, r.Version, r.Format,
	); err != nil {
		return fmt.Errorf("deleting previous render: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO renders (id, name, version, format, content_hash, format_version, item_count, sections)
		 VALUES (nextval('seq_render_id'), ?, ?, ?, ?, ?, ?, ?)`,
		r.Name, r.Version, r.Format, r.ContentHash, r.FormatVersion, r.ItemCount, string(sections),
	); err != nil {
		return fmt.Errorf("inserting render: %w", err)
	}
	return tx.Commit()
}

const renderColumns = `id, name, version, format, content_hash, format_version, item_count, sections, rendered_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRender(s scanner) (*Render, error) {
	var r Render
	var sections sql.NullString
	if err := s.Scan(&r.ID, &r.Name, &r.Version, &r.Format, &r.ContentHash,
		&r.FormatVersion, &r.ItemCount, &sections, &r.RenderedAt); err != nil {
		return nil, err
	}
	if sections.Valid && sections.String != "" {
		if err := json.Unmarshal([]byte(sections.String), &r.Sections); err != nil {
			return nil, fmt.Errorf("decoding sections of %s %s: %w", r.Name, r.Version, err)
		}
	}
	return &r, nil
}

// GetRender returns the catalogued render, or nil when there is none.
func (db *DB) GetRender(ctx context.Context, name, version, format string) (*Render, error) {
	r, err := scanRender(db.conn.QueryRowContext(ctx,
		`SELECT `+renderColumns+` FROM renders WHERE name = ? AND version = ? AND format = ?`,
		name, version, format,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListRenders returns every render ordered by crate, version and format.
func (db *DB) ListRenders(ctx context.Context) ([]Render, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+renderColumns+` FROM renders ORDER BY name, version, format`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var renders []Render
	for rows.Next() {
		r, err := scanRender(rows)
		if err != nil {
			return nil, err
		}
		renders = append(renders, *r)
	}
	return renders, rows.Err()
}

// DeleteRenders removes every render of a crate, or all renders when name is empty.
func (db *DB) DeleteRenders(ctx context.Context, name string) (int64, error) {
	var res sql.Result
	var err error
	if name == "" {
		res, err = db.conn.ExecContext(ctx, `DELETE FROM renders`)
	} else {
		res, err = db.conn.ExecContext(ctx, `DELETE FROM renders WHERE name = ?`, name)
	}
	if err != nil {
		return 0, fmt.Errorf("deleting renders: %w", err)
	}
	return res.RowsAffected()
}
