// Package pgstore is a PostgreSQL-backed storage backend, grounded on
// Lychee-Technology-forma's pgx/pgxpool repositories
// (internal/postgres_repository.go, internal/postgres_persistent_repository*.go):
// a pgxpool.Pool-backed struct, batched writes via pgx.Batch, and
// pgconn.PgError-code-driven constraint-violation classification.
//
// Every gluedb table is physically one Postgres table holding a bytea
// primary key and a jsonb row document (storages/pgstore/codec.go), the
// same EAV-flavored "store the row as JSON, keep a thin relational
// envelope around it" shape the teacher's attribute repository uses for
// its EAV table, generalized from "one shared EAV table for every schema"
// to "one physical table per gluedb table" since gluedb has no single
// fixed attribute catalog to key off of.
package pgstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lychee-technology/gluedb"
)

// querier is the subset of pgxpool.Pool and pgx.Tx this package needs, so
// every method below works identically inside or outside a transaction
// (see transaction.go).
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// pgxPoolIface is querier plus the pool-only operations (Begin, Close), so
// storages/pgstore's tests can substitute pashagolub/pgxmock/v4's mock pool
// in place of a real *pgxpool.Pool (pgstore_test.go) without touching a
// live Postgres instance; pgstore_integration_test.go exercises the
// concrete *pgxpool.Pool path against a real container instead.
type pgxPoolIface interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

const systemTable = "gluedb_schemas"

// Store is the PostgreSQL-backed gluedb.Store/StoreMut/Transaction/Metadata
// implementation.
type Store struct {
	pool pgxPoolIface

	mu    sync.RWMutex
	tx    pgx.Tx // non-nil while a transaction is open
	cache map[string]*gluedb.Schema

	functions functionRegistry
}

// Open connects to Postgres and ensures the system table exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgstore: connect: %w", err)
	}
	return newStore(ctx, pool)
}

func newStore(ctx context.Context, pool pgxPoolIface) (*Store, error) {
	s := &Store{pool: pool, cache: make(map[string]*gluedb.Schema),
		functions: functionRegistry{funcs: make(map[string]gluedb.ScalarFunction)}}
	if err := s.ensureSystemTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the pool.
func (s *Store) Close() { s.pool.Close() }

func (s *Store) q() querier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tx != nil {
		return s.tx
	}
	return s.pool
}

func tableName(name string) string { return "t_" + name }

func (s *Store) ensureSystemTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+systemTable+` (
			table_name text PRIMARY KEY,
			schema_json jsonb NOT NULL
		)`)
	return err
}

// --- Metadata ---

func (s *Store) BackendName() string { return "pgstore" }
func (s *Store) FormatVersion() int  { return 1 }

// --- Store ---

func (s *Store) FetchSchema(ctx context.Context, table string) (*gluedb.Schema, error) {
	s.mu.RLock()
	if sc, ok := s.cache[table]; ok {
		s.mu.RUnlock()
		cp := *sc
		return &cp, nil
	}
	s.mu.RUnlock()

	var raw []byte
	err := s.q().QueryRow(ctx, `SELECT schema_json FROM `+systemTable+` WHERE table_name = $1`, table).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classifyError(err)
	}
	w, err := unmarshalSchemaWire(raw)
	if err != nil {
		return nil, err
	}
	sc := decodeSchema(w)
	s.mu.Lock()
	s.cache[table] = sc
	s.mu.Unlock()
	cp := *sc
	return &cp, nil
}

func (s *Store) FetchAllSchemas(ctx context.Context) ([]*gluedb.Schema, error) {
	rows, err := s.q().Query(ctx, `SELECT table_name, schema_json FROM `+systemTable+` ORDER BY table_name`)
	if err != nil {
		return nil, classifyError(err)
	}
	defer rows.Close()

	var out []*gluedb.Schema
	for rows.Next() {
		var name string
		var raw []byte
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, err
		}
		w, err := unmarshalSchemaWire(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, decodeSchema(w))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TableName < out[j].TableName })
	return out, rows.Err()
}

func (s *Store) FetchData(ctx context.Context, table string, key gluedb.Key) (gluedb.Row, bool, error) {
	enc, err := key.Encode()
	if err != nil {
		return nil, false, err
	}
	var raw []byte
	err = s.q().QueryRow(ctx, `SELECT row_data FROM `+pgx.Identifier{tableName(table)}.Sanitize()+` WHERE key_encoded = $1`, enc).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, classifyError(err)
	}
	w, err := unmarshalRowWire(raw)
	if err != nil {
		return nil, false, err
	}
	row, err := decodeRow(w)
	return row, true, err
}

func (s *Store) ScanData(ctx context.Context, table string) (gluedb.RowIter, error) {
	rows, err := s.q().Query(ctx, `SELECT key_encoded, row_data FROM `+pgx.Identifier{tableName(table)}.Sanitize()+` ORDER BY key_encoded`)
	if err != nil {
		return nil, classifyError(err)
	}
	return &pgRowIter{rows: rows}, nil
}

type pgRowIter struct {
	rows pgx.Rows
}

func (it *pgRowIter) Next(ctx context.Context) (gluedb.Key, gluedb.Row, bool, error) {
	if !it.rows.Next() {
		return gluedb.Key{}, nil, false, it.rows.Err()
	}
	var enc []byte
	var raw []byte
	if err := it.rows.Scan(&enc, &raw); err != nil {
		return gluedb.Key{}, nil, false, err
	}
	key, err := gluedb.DecodeKey(enc)
	if err != nil {
		return gluedb.Key{}, nil, false, err
	}
	w, err := unmarshalRowWire(raw)
	if err != nil {
		return gluedb.Key{}, nil, false, err
	}
	row, err := decodeRow(w)
	if err != nil {
		return gluedb.Key{}, nil, false, err
	}
	return key, row, true, nil
}

func (it *pgRowIter) Close() error {
	it.rows.Close()
	return nil
}
