// Package mysqlstore is a MySQL-backed storage backend. The connection
// setup is grounded on sqldef's adapter/mysql/mysql.go: a go-sql-driver/
// mysql driver.Config built field-by-field then rendered via FormatDSN,
// rather than hand-assembling a DSN string.
//
// Every gluedb table is one physical MySQL table holding a VARBINARY(255)
// primary key and a JSON row document, the same "row as one encoded
// document" shape storages/pgstore and storages/duckstore use, adapted to
// MySQL's native JSON column type.
package mysqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	driver "github.com/go-sql-driver/mysql"

	"github.com/lychee-technology/gluedb"
)

const systemTable = "gluedb_schemas"

// mysqlFormatVersion is stamped into every persisted schema's Comment, the
// same file-storage migration policy storages/duckstore enforces.
const mysqlFormatVersion = 1

// DSNConfig builds a MySQL DSN the way sqldef's adapter does, through
// go-sql-driver/mysql's own driver.Config rather than string formatting.
type DSNConfig struct {
	User     string
	Password string
	Host     string
	Port     int
	DBName   string
	Socket   string
}

// BuildDSN renders c into a go-sql-driver/mysql DSN string.
func BuildDSN(c DSNConfig) string {
	cfg := driver.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.DBName = c.DBName
	cfg.TLSConfig = "preferred"
	cfg.ParseTime = false
	if c.Socket == "" {
		cfg.Net = "tcp"
		port := c.Port
		if port == 0 {
			port = 3306
		}
		cfg.Addr = fmt.Sprintf("%s:%d", c.Host, port)
	} else {
		cfg.Net = "unix"
		cfg.Addr = c.Socket
	}
	return cfg.FormatDSN()
}

// execQuerier is the subset of *sql.DB and *sql.Tx this package needs.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the MySQL-backed gluedb.Store/StoreMut/Transaction/Metadata
// implementation.
type Store struct {
	db *sql.DB

	mu    sync.RWMutex
	tx    *sql.Tx
	cache map[string]*gluedb.Schema

	functions functionRegistry
}

// Open connects to MySQL via dsn (built by BuildDSN, or any valid
// go-sql-driver/mysql DSN) and ensures the system table exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysqlstore: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysqlstore: ping: %w", err)
	}
	s := &Store{db: db, cache: make(map[string]*gluedb.Schema),
		functions: functionRegistry{funcs: make(map[string]gluedb.ScalarFunction)}}
	if err := s.ensureSystemTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) q() execQuerier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func tableName(name string) string { return "t_" + name }

func (s *Store) ensureSystemTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+systemTable+` (
			table_name VARCHAR(255) PRIMARY KEY,
			schema_json JSON NOT NULL
		)`)
	return classifyError(err)
}

// --- Metadata ---

func (s *Store) BackendName() string { return "mysqlstore" }
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
		return nil, classifyError(err)
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
		return nil, classifyError(err)
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
	rows, err := s.q().QueryContext(ctx, `SELECT key_encoded, row_data FROM `+tableName(table)+` ORDER BY key_encoded`)
	if err != nil {
		return nil, classifyError(err)
	}
	return &mysqlRowIter{rows: rows}, nil
}

type mysqlRowIter struct {
	rows *sql.Rows
}

func (it *mysqlRowIter) Next(ctx context.Context) (gluedb.Key, gluedb.Row, bool, error) {
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

func (it *mysqlRowIter) Close() error { return it.rows.Close() }

func checkFormatVersion(sc *gluedb.Schema) error {
	marker := fmt.Sprintf("%s%d", gluedb.FileStorageFormatVersionComment, mysqlFormatVersion)
	for _, part := range splitComment(sc.Comment) {
		if part == marker {
			return nil
		}
	}
	return fmt.Errorf("mysqlstore: table %q was written with a different file-storage format version than %d", sc.TableName, mysqlFormatVersion)
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
