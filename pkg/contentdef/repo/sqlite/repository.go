// Package sqlite implements the definition store on a single SQLite file,
// suitable for embedding the definition service without a database server.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/contentforge/contentdef/pkg/contentdef"
)

//go:embed schema.sql
var schemaSQL string

// Store implements contentdef.DefinitionStore using SQLite. Definitions are
// persisted as JSON documents keyed by name. Alter operations run inside an
// immediate transaction, so concurrent alters of the same name serialize on
// the database write lock.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and ensures
// the definition schema exists. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %q: %w", path, err)
	}
	// The sqlite driver is single-writer; more connections only add lock churn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing database handle. The caller is responsible for
// having applied the schema.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func storeError(kind, name, op string, err error) error {
	return &contentdef.StoreError{Kind: kind, Name: name, Op: op, Err: err}
}

func tableFor(kind string) string {
	if kind == "type" {
		return "content_type_definitions"
	}
	return "content_part_definitions"
}

func (s *Store) getDefinition(ctx context.Context, kind, name string, out interface{}) (bool, error) {
	query := fmt.Sprintf(`SELECT definition FROM %s WHERE name = ?`, tableFor(kind))

	var raw []byte
	err := s.db.QueryRowContext(ctx, query, name).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, storeError(kind, name, "get", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, storeError(kind, name, "decode", err)
	}
	return true, nil
}

func (s *Store) upsertDefinition(ctx context.Context, kind, name string, def interface{}) error {
	raw, err := json.Marshal(def)
	if err != nil {
		return storeError(kind, name, "encode", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (name, definition) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET
			definition = excluded.definition,
			updated_at = strftime('%%Y-%%m-%%dT%%H:%%M:%%fZ', 'now')`, tableFor(kind))

	if _, err := s.db.ExecContext(ctx, query, name, raw); err != nil {
		return storeError(kind, name, "store", err)
	}
	return nil
}

func (s *Store) deleteDefinition(ctx context.Context, kind, name string, notFound error) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE name = ?`, tableFor(kind))

	res, err := s.db.ExecContext(ctx, query, name)
	if err != nil {
		return storeError(kind, name, "delete", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storeError(kind, name, "delete", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

// Type definition operations

func (s *Store) GetTypeDefinition(ctx context.Context, name string) (*contentdef.ContentTypeDefinition, error) {
	var def contentdef.ContentTypeDefinition
	found, err := s.getDefinition(ctx, "type", name, &def)
	if err != nil || !found {
		return nil, err
	}
	return &def, nil
}

func (s *Store) ListTypeDefinitions(ctx context.Context) ([]*contentdef.ContentTypeDefinition, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT definition FROM content_type_definitions ORDER BY name`)
	if err != nil {
		return nil, storeError("type", "", "list", err)
	}
	defer rows.Close()

	var result []*contentdef.ContentTypeDefinition
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, storeError("type", "", "list", err)
		}
		var def contentdef.ContentTypeDefinition
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, storeError("type", "", "decode", err)
		}
		result = append(result, &def)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("type", "", "list", err)
	}
	return result, nil
}

func (s *Store) StoreTypeDefinition(ctx context.Context, def *contentdef.ContentTypeDefinition) error {
	return s.upsertDefinition(ctx, "type", def.Name, def)
}

func (s *Store) DeleteTypeDefinition(ctx context.Context, name string) error {
	return s.deleteDefinition(ctx, "type", name, contentdef.ErrTypeNotFound)
}

func (s *Store) AlterTypeDefinition(ctx context.Context, name string, mutate func(*contentdef.ContentTypeDefinition)) (*contentdef.ContentTypeDefinition, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeError("type", name, "alter", err)
	}
	defer tx.Rollback()

	def := &contentdef.ContentTypeDefinition{Name: name}
	var raw []byte
	err = tx.QueryRowContext(ctx, `SELECT definition FROM content_type_definitions WHERE name = ?`, name).Scan(&raw)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, def); err != nil {
			return nil, storeError("type", name, "decode", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		// start from a fresh definition carrying the name
	default:
		return nil, storeError("type", name, "alter", err)
	}

	mutate(def)
	def.Name = name

	encoded, err := json.Marshal(def)
	if err != nil {
		return nil, storeError("type", name, "encode", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO content_type_definitions (name, definition) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET
			definition = excluded.definition,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`, name, encoded)
	if err != nil {
		return nil, storeError("type", name, "alter", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeError("type", name, "alter", err)
	}
	return def, nil
}

// Part definition operations

func (s *Store) GetPartDefinition(ctx context.Context, name string) (*contentdef.ContentPartDefinition, error) {
	var def contentdef.ContentPartDefinition
	found, err := s.getDefinition(ctx, "part", name, &def)
	if err != nil || !found {
		return nil, err
	}
	return &def, nil
}

func (s *Store) ListPartDefinitions(ctx context.Context) ([]*contentdef.ContentPartDefinition, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT definition FROM content_part_definitions ORDER BY name`)
	if err != nil {
		return nil, storeError("part", "", "list", err)
	}
	defer rows.Close()

	var result []*contentdef.ContentPartDefinition
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, storeError("part", "", "list", err)
		}
		var def contentdef.ContentPartDefinition
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, storeError("part", "", "decode", err)
		}
		result = append(result, &def)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("part", "", "list", err)
	}
	return result, nil
}

func (s *Store) StorePartDefinition(ctx context.Context, def *contentdef.ContentPartDefinition) error {
	return s.upsertDefinition(ctx, "part", def.Name, def)
}

func (s *Store) DeletePartDefinition(ctx context.Context, name string) error {
	return s.deleteDefinition(ctx, "part", name, contentdef.ErrPartNotFound)
}

func (s *Store) AlterPartDefinition(ctx context.Context, name string, mutate func(*contentdef.ContentPartDefinition)) (*contentdef.ContentPartDefinition, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeError("part", name, "alter", err)
	}
	defer tx.Rollback()

	def := &contentdef.ContentPartDefinition{Name: name}
	var raw []byte
	err = tx.QueryRowContext(ctx, `SELECT definition FROM content_part_definitions WHERE name = ?`, name).Scan(&raw)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, def); err != nil {
			return nil, storeError("part", name, "decode", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		// start from a fresh definition carrying the name
	default:
		return nil, storeError("part", name, "alter", err)
	}

	mutate(def)
	def.Name = name

	encoded, err := json.Marshal(def)
	if err != nil {
		return nil, storeError("part", name, "encode", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO content_part_definitions (name, definition) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET
			definition = excluded.definition,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`, name, encoded)
	if err != nil {
		return nil, storeError("part", name, "alter", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeError("part", name, "alter", err)
	}
	return def, nil
}
