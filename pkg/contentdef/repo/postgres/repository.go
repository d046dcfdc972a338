package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contentforge/contentdef/pkg/contentdef"
)

// DBTX is an interface that allows us to use either a database connection or a
// transaction. Begin is required for the transactional alter operations.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	Begin(context.Context) (pgx.Tx, error)
}

// Store implements contentdef.DefinitionStore using PostgreSQL. Definitions
// are persisted as JSONB documents keyed by name; alter operations run inside
// a transaction holding a row lock, so concurrent alters of the same name
// serialize.
type Store struct {
	db DBTX
}

// New creates a new PostgreSQL definition store
func New(db DBTX) *Store {
	return &Store{db: db}
}

// NewWithPool creates a new PostgreSQL definition store with a connection pool
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

// Schema is the DDL for the definition tables.
const Schema = `
CREATE TABLE IF NOT EXISTS content_type_definitions (
    name        TEXT PRIMARY KEY,
    definition  JSONB NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS content_part_definitions (
    name        TEXT PRIMARY KEY,
    definition  JSONB NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the definition tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return storeError("schema", "", "ensure_schema", err)
	}
	return nil
}

// storeError maps well-known postgres error codes and wraps the result in a
// contentdef.StoreError carrying the definition kind, name, and operation.
func storeError(kind, name, op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			err = errors.New("definition already exists")
		case "23502": // not_null_violation
			err = fmt.Errorf("required column %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			err = errors.New("table does not exist - database migration required")
		default:
			err = fmt.Errorf("%s (code: %s)", pgErr.Message, pgErr.Code)
		}
	}
	return &contentdef.StoreError{Kind: kind, Name: name, Op: op, Err: err}
}

// Type definition operations

func (s *Store) GetTypeDefinition(ctx context.Context, name string) (*contentdef.ContentTypeDefinition, error) {
	query := `SELECT definition FROM content_type_definitions WHERE name = $1`

	var raw []byte
	err := s.db.QueryRow(ctx, query, name).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeError("type", name, "get", err)
	}

	var def contentdef.ContentTypeDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, storeError("type", name, "decode", err)
	}
	return &def, nil
}

func (s *Store) ListTypeDefinitions(ctx context.Context) ([]*contentdef.ContentTypeDefinition, error) {
	query := `SELECT definition FROM content_type_definitions ORDER BY name`

	rows, err := s.db.Query(ctx, query)
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
	raw, err := json.Marshal(def)
	if err != nil {
		return storeError("type", def.Name, "encode", err)
	}

	query := `
		INSERT INTO content_type_definitions (name, definition)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET definition = EXCLUDED.definition, updated_at = now()`

	if _, err := s.db.Exec(ctx, query, def.Name, raw); err != nil {
		return storeError("type", def.Name, "store", err)
	}
	return nil
}

func (s *Store) DeleteTypeDefinition(ctx context.Context, name string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM content_type_definitions WHERE name = $1`, name)
	if err != nil {
		return storeError("type", name, "delete", err)
	}
	if tag.RowsAffected() == 0 {
		return contentdef.ErrTypeNotFound
	}
	return nil
}

func (s *Store) AlterTypeDefinition(ctx context.Context, name string, mutate func(*contentdef.ContentTypeDefinition)) (*contentdef.ContentTypeDefinition, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, storeError("type", name, "alter", err)
	}
	defer tx.Rollback(ctx)

	def := &contentdef.ContentTypeDefinition{Name: name}
	var raw []byte
	err = tx.QueryRow(ctx, `SELECT definition FROM content_type_definitions WHERE name = $1 FOR UPDATE`, name).Scan(&raw)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, def); err != nil {
			return nil, storeError("type", name, "decode", err)
		}
	case errors.Is(err, pgx.ErrNoRows):
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

	query := `
		INSERT INTO content_type_definitions (name, definition)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET definition = EXCLUDED.definition, updated_at = now()`
	if _, err := tx.Exec(ctx, query, name, encoded); err != nil {
		return nil, storeError("type", name, "alter", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storeError("type", name, "alter", err)
	}
	return def, nil
}

// Part definition operations

func (s *Store) GetPartDefinition(ctx context.Context, name string) (*contentdef.ContentPartDefinition, error) {
	query := `SELECT definition FROM content_part_definitions WHERE name = $1`

	var raw []byte
	err := s.db.QueryRow(ctx, query, name).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeError("part", name, "get", err)
	}

	var def contentdef.ContentPartDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, storeError("part", name, "decode", err)
	}
	return &def, nil
}

func (s *Store) ListPartDefinitions(ctx context.Context) ([]*contentdef.ContentPartDefinition, error) {
	query := `SELECT definition FROM content_part_definitions ORDER BY name`

	rows, err := s.db.Query(ctx, query)
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
	raw, err := json.Marshal(def)
	if err != nil {
		return storeError("part", def.Name, "encode", err)
	}

	query := `
		INSERT INTO content_part_definitions (name, definition)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET definition = EXCLUDED.definition, updated_at = now()`

	if _, err := s.db.Exec(ctx, query, def.Name, raw); err != nil {
		return storeError("part", def.Name, "store", err)
	}
	return nil
}

func (s *Store) DeletePartDefinition(ctx context.Context, name string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM content_part_definitions WHERE name = $1`, name)
	if err != nil {
		return storeError("part", name, "delete", err)
	}
	if tag.RowsAffected() == 0 {
		return contentdef.ErrPartNotFound
	}
	return nil
}

func (s *Store) AlterPartDefinition(ctx context.Context, name string, mutate func(*contentdef.ContentPartDefinition)) (*contentdef.ContentPartDefinition, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, storeError("part", name, "alter", err)
	}
	defer tx.Rollback(ctx)

	def := &contentdef.ContentPartDefinition{Name: name}
	var raw []byte
	err = tx.QueryRow(ctx, `SELECT definition FROM content_part_definitions WHERE name = $1 FOR UPDATE`, name).Scan(&raw)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, def); err != nil {
			return nil, storeError("part", name, "decode", err)
		}
	case errors.Is(err, pgx.ErrNoRows):
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

	query := `
		INSERT INTO content_part_definitions (name, definition)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET definition = EXCLUDED.definition, updated_at = now()`
	if _, err := tx.Exec(ctx, query, name, encoded); err != nil {
		return nil, storeError("part", name, "alter", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storeError("part", name, "alter", err)
	}
	return def, nil
}
