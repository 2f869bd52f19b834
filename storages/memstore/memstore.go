// Package memstore is the in-memory reference storage backend: every
// capability spec §4.5 names (Store, StoreMut, Index, IndexMut, AlterTable,
// Transaction, Metadata, CustomFunctionMut) against plain Go maps guarded by
// a RWMutex, grounded on forma's schemaMetadataCache's
// sync.RWMutex-guarded-map pattern (internal/schema_metadata_cache.go) and
// on original_source/src/storages/sled_storage's capability surface for
// what an embedded key-value backend must expose.
package memstore

import (
	"context"
	"encoding/hex"
	"sort"
	"sync"

	"github.com/lychee-technology/gluedb"
)

type tableData struct {
	rows   map[string]gluedb.KeyRow // hex(Key.Encode()) -> KeyRow
	nextID uint64
}

func newTableData() *tableData {
	return &tableData{rows: make(map[string]gluedb.KeyRow)}
}

func (t *tableData) clone() *tableData {
	c := &tableData{rows: make(map[string]gluedb.KeyRow, len(t.rows)), nextID: t.nextID}
	for k, v := range t.rows {
		c.rows[k] = v
	}
	return c
}

// state is the mutable content of the store: every table's schema and row
// set. A Transaction clones this wholesale at BEGIN and swaps it back in at
// COMMIT, giving snapshot isolation cheaply for an in-memory backend.
type state struct {
	schemas map[string]*gluedb.Schema
	tables  map[string]*tableData
}

func newState() *state {
	return &state{schemas: make(map[string]*gluedb.Schema), tables: make(map[string]*tableData)}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.schemas {
		sc := *v
		c.schemas[k] = &sc
	}
	for k, v := range s.tables {
		c.tables[k] = v.clone()
	}
	return c
}

// Store is the in-memory backend. It is safe for single-goroutine use per
// spec §5's cooperative single-threaded scheduling model; the RWMutex guards
// against accidental concurrent access rather than enabling parallel query
// execution.
type Store struct {
	mu        sync.RWMutex
	committed *state

	// non-nil while a transaction is open; reads and writes target this
	// snapshot instead of committed, giving read-your-writes (spec §5).
	active     *state
	autocommit bool

	functions map[string]gluedb.ScalarFunction
}

// New constructs an empty Store.
func New() *Store {
	return &Store{committed: newState(), functions: make(map[string]gluedb.ScalarFunction)}
}

func (s *Store) current() *state {
	if s.active != nil {
		return s.active
	}
	return s.committed
}

// --- Metadata ---

func (s *Store) BackendName() string { return "memstore" }
func (s *Store) FormatVersion() int  { return 1 }

// --- Store ---

func (s *Store) FetchSchema(ctx context.Context, table string) (*gluedb.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.current().schemas[table]
	if !ok {
		return nil, nil
	}
	cp := *sc
	return &cp, nil
}

func (s *Store) FetchAllSchemas(ctx context.Context) ([]*gluedb.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*gluedb.Schema, 0, len(s.current().schemas))
	for _, sc := range s.current().schemas {
		cp := *sc
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TableName < out[j].TableName })
	return out, nil
}

func (s *Store) FetchData(ctx context.Context, table string, key gluedb.Key) (gluedb.Row, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	td, ok := s.current().tables[table]
	if !ok {
		return nil, false, nil
	}
	enc, err := key.Encode()
	if err != nil {
		return nil, false, err
	}
	kr, ok := td.rows[hex.EncodeToString(enc)]
	if !ok {
		return nil, false, nil
	}
	return kr.Row, true, nil
}

func (s *Store) ScanData(ctx context.Context, table string) (gluedb.RowIter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	td, ok := s.current().tables[table]
	if !ok {
		return &sliceIter{}, nil
	}
	pairs := make([]gluedb.KeyRow, 0, len(td.rows))
	for _, kr := range td.rows {
		pairs = append(pairs, kr)
	}
	sort.Slice(pairs, func(i, j int) bool {
		c, err := pairs[i].Key.Compare(pairs[j].Key)
		if err != nil {
			return false
		}
		return c < 0
	})
	return &sliceIter{pairs: pairs}, nil
}

type sliceIter struct {
	pairs []gluedb.KeyRow
	pos   int
}

func (it *sliceIter) Next(ctx context.Context) (gluedb.Key, gluedb.Row, bool, error) {
	if it.pos >= len(it.pairs) {
		return gluedb.Key{}, nil, false, nil
	}
	p := it.pairs[it.pos]
	it.pos++
	return p.Key, p.Row, true, nil
}

func (it *sliceIter) Close() error { return nil }

// --- StoreMut ---

func (s *Store) InsertSchema(ctx context.Context, schema *gluedb.Schema) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *schema
	st := s.current()
	st.schemas[schema.TableName] = &cp
	if _, ok := st.tables[schema.TableName]; !ok {
		st.tables[schema.TableName] = newTableData()
	}
	return nil
}

func (s *Store) DeleteSchema(ctx context.Context, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.current()
	delete(st.schemas, table)
	delete(st.tables, table)
	return nil
}

func (s *Store) AppendData(ctx context.Context, table string, rows []gluedb.Row) ([]gluedb.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.current()
	td, ok := st.tables[table]
	if !ok {
		td = newTableData()
		st.tables[table] = td
	}
	keys := make([]gluedb.Key, len(rows))
	for i, r := range rows {
		td.nextID++
		key := gluedb.GeneratedKey(td.nextID)
		enc, err := key.Encode()
		if err != nil {
			return nil, err
		}
		td.rows[hex.EncodeToString(enc)] = gluedb.KeyRow{Key: key, Row: r}
		keys[i] = key
	}
	return keys, nil
}

func (s *Store) InsertData(ctx context.Context, table string, pairs []gluedb.KeyRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.current()
	td, ok := st.tables[table]
	if !ok {
		td = newTableData()
		st.tables[table] = td
	}
	for _, p := range pairs {
		enc, err := p.Key.Encode()
		if err != nil {
			return err
		}
		td.rows[hex.EncodeToString(enc)] = p
	}
	return nil
}

func (s *Store) UpdateData(ctx context.Context, table string, pairs []gluedb.KeyRow) error {
	return s.InsertData(ctx, table, pairs)
}

func (s *Store) DeleteData(ctx context.Context, table string, keys []gluedb.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.current()
	td, ok := st.tables[table]
	if !ok {
		return nil
	}
	for _, k := range keys {
		enc, err := k.Encode()
		if err != nil {
			return err
		}
		delete(td.rows, hex.EncodeToString(enc))
	}
	return nil
}
