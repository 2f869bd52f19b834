// Package duckstore is an embedded DuckDB-backed storage backend, grounded
// on Lychee-Technology-forma's internal/duckdb_conn.go: a database/sql DB
// opened against the duckdb-go/v2 driver, single-connection pooling (DuckDB
// serializes writes internally), and zap-logged extension loading.
//
// Every gluedb table is one physical DuckDB table holding a BLOB primary
// key and a VARCHAR row document (storages/duckstore/codec.go encodes each
// row as a small JSON envelope), the same "row as one encoded document"
// shape storages/pgstore uses, adapted to a VARCHAR column since DuckDB has
// no native JSONB type.
package duckstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	_ "github.com/duckdb/duckdb-go/v2"
	"go.uber.org/zap"

	"github.com/lychee-technology/gluedb"
)

// duckFormatVersion is stamped into every persisted schema's Comment via
// gluedb.FileStorageFormatVersionComment (see mutate.go's InsertSchema);
// FetchSchema refuses to load a schema stamped with a different version,
// per the file-storage migration policy shared with storages/mysqlstore and
// storages/s3store (no in-place migration in scope).
const duckFormatVersion = 1

const systemTable = "gluedb_schemas"

// Config configures a duckstore.Store, trimmed from
// Lychee-Technology-forma's gluedb.DuckDBConfig to the knobs this backend
// actually exercises.
type Config struct {
	// Path is the database file, or ":memory:" for an in-process database.
	Path string
	// MaxConnections overrides the default single-connection pool; DuckDB
	// itself serializes writes, so values above 1 only help read-heavy
	// workloads.
	MaxConnections int
}

// execQuerier is the subset of *sql.DB and *sql.Tx this package needs, so
// every method works unchanged inside or outside a transaction (see
// transaction.go), mirroring storages/pgstore's querier interface.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the DuckDB-backed gluedb.Store/StoreMut/Transaction/Metadata
// implementation.
type Store struct {
	db *sql.DB

	mu    sync.RWMutex
	tx    *sql.Tx // non-nil while a transaction is open
	cache map[string]*gluedb.Schema

	functions functionRegistry
}

// Open opens (or creates) a DuckDB database at cfg.Path and ensures the
// system table exists.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	dsn := cfg.Path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("duckstore: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("duckstore: ping: %w", err)
	}

	s := &Store{db: db, cache: make(map[string]*gluedb.Schema),
		functions: functionRegistry{funcs: make(map[string]gluedb.ScalarFunction)}}
	if err := s.ensureSystemTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying DB handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) q() execQuerier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func tableName(name string) string { return "t_" + name }

func checkFormatVersion(sc *gluedb.Schema) error {
	marker := fmt.Sprintf("%s%d", gluedb.FileStorageFormatVersionComment, duckFormatVersion)
	if sc.Comment == "" {
		return fmt.Errorf("duckstore: table %q has no file-storage-format-version marker", sc.TableName)
	}
	for _, part := range splitComment(sc.Comment) {
		if part == marker {
			return nil
		}
	}
	return fmt.Errorf("duckstore: table %q was written with a different file-storage format version than %d", sc.TableName, duckFormatVersion)
}

func splitComment(c string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(c); i++ {
		if i == len(c) || c[i] == ';' {
			part := c[start:i]
			for len(part) > 0 && part[0] == ' ' {
				part = part[1:]
			}
			out = append(out, part)
			start = i + 1
		}
	}
	return out
}

func (s *Store) ensureSystemTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+systemTable+` (
			table_name VARCHAR PRIMARY KEY,
			schema_json VARCHAR NOT NULL
		)`)
	if err != nil {
		zap.S().Errorw("duckstore: ensure system table failed", "err", err)
	}
	return err
}

// --- Metadata ---

func (s *Store) BackendName() string { return "duckstore" }
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

	var raw string
	err := s.q().QueryRowContext(ctx, `SELECT schema_json FROM `+systemTable+` WHERE table_name = ?`, table).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	w, err := unmarshalSchemaWire(raw)
	if err != nil {
		return nil, err
	}
	sc := decodeSchema(w)
	if err := checkFormatVersion(sc); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cache[table] = sc
	s.mu.Unlock()
	cp := *sc
	return &cp, nil
}

func (s *Store) FetchAllSchemas(ctx context.Context) ([]*gluedb.Schema, error) {
	rows, err := s.q().QueryContext(ctx, `SELECT table_name, schema_json FROM `+systemTable+` ORDER BY table_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*gluedb.Schema
	for rows.Next() {
		var name, raw string
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
	var raw string
	err = s.q().QueryRowContext(ctx, `SELECT row_data FROM `+tableName(table)+` WHERE key_encoded = ?`, enc).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	w, err := unmarshalRowWire(raw)
	if err != nil {
		return nil, false, err
	}
	row, err := decodeRow(w)
	return row, true, err
}

func (s *Store) ScanData(ctx context.Context, table string) (gluedb.RowIter, error) {
	rows, err := s.q().QueryContext(ctx, `SELECT key_encoded, row_data FROM `+tableName(table)+` ORDER BY key_encoded`)
	if err != nil {
		return nil, err
	}
	return &duckRowIter{rows: rows}, nil
}

type duckRowIter struct {
	rows *sql.Rows
}

func (it *duckRowIter) Next(ctx context.Context) (gluedb.Key, gluedb.Row, bool, error) {
	if !it.rows.Next() {
		return gluedb.Key{}, nil, false, it.rows.Err()
	}
	var enc []byte
	var raw string
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

func (it *duckRowIter) Close() error {
	return it.rows.Close()
}
