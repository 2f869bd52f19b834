package s3store

import (
	"context"
	"fmt"

	"github.com/lychee-technology/gluedb"
)

func (s *Store) InsertSchema(ctx context.Context, schema *gluedb.Schema) error {
	schema = schema.WithFileStorageFormatVersion(s3FormatVersion)
	raw, err := marshalSchemaWire(schema)
	if err != nil {
		return err
	}
	return s.putObject(ctx, s.schemaKey(schema.TableName), raw)
}

func (s *Store) DeleteSchema(ctx context.Context, table string) error {
	return s.deleteObject(ctx, s.schemaKey(table))
}

// AppendData allocates sequential keys the same way storages/duckstore
// does, seeded from the current object count under the table's data
// prefix on first use per table and incremented in process memory after
// that. Like the SQL-backed stores' "SELECT count(*)"-derived allocation,
// this is not safe across concurrent writers to the same bucket/prefix;
// it only guarantees monotone, unique keys within one Store instance.
func (s *Store) AppendData(ctx context.Context, table string, rows []gluedb.Row) ([]gluedb.Key, error) {
	next, err := s.nextOrdinal(ctx, table)
	if err != nil {
		return nil, err
	}

	keys := make([]gluedb.Key, len(rows))
	pairs := make([]gluedb.KeyRow, len(rows))
	for i, row := range rows {
		key := gluedb.GeneratedKey(next)
		next++
		keys[i] = key
		pairs[i] = gluedb.KeyRow{Key: key, Row: row}
	}
	s.mu.Lock()
	s.counters[table] = next
	s.mu.Unlock()

	if err := s.InsertData(ctx, table, pairs); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *Store) nextOrdinal(ctx context.Context, table string) (uint64, error) {
	s.mu.Lock()
	if n, ok := s.counters[table]; ok {
		s.mu.Unlock()
		return n, nil
	}
	s.mu.Unlock()

	it, err := s.ScanData(ctx, table)
	if err != nil {
		return 0, err
	}
	defer it.Close()
	var count uint64
	for {
		_, _, ok, err := it.Next(ctx)
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		count++
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.counters[table]; ok {
		return n, nil
	}
	s.counters[table] = count
	return count, nil
}

func (s *Store) InsertData(ctx context.Context, table string, pairs []gluedb.KeyRow) error {
	for _, p := range pairs {
		enc, err := p.Key.Encode()
		if err != nil {
			return err
		}
		raw, err := marshalRowWire(p.Row)
		if err != nil {
			return err
		}
		if err := s.putObject(ctx, s.dataKey(table, enc), raw); err != nil {
			return fmt.Errorf("s3store: insert into %q: %w", table, err)
		}
	}
	return nil
}

func (s *Store) UpdateData(ctx context.Context, table string, pairs []gluedb.KeyRow) error {
	return s.InsertData(ctx, table, pairs)
}

func (s *Store) DeleteData(ctx context.Context, table string, keys []gluedb.Key) error {
	for _, k := range keys {
		enc, err := k.Encode()
		if err != nil {
			return err
		}
		if err := s.deleteObject(ctx, s.dataKey(table, enc)); err != nil {
			return fmt.Errorf("s3store: delete from %q: %w", table, err)
		}
	}
	return nil
}
