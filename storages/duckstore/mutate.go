package duckstore

import (
	"context"

	"github.com/lychee-technology/gluedb"
)

func (s *Store) InsertSchema(ctx context.Context, schema *gluedb.Schema) error {
	schema.WithFileStorageFormatVersion(duckFormatVersion)
	raw, err := marshalSchemaWire(schema)
	if err != nil {
		return err
	}
	q := s.q()
	if _, err := q.ExecContext(ctx, `DELETE FROM `+systemTable+` WHERE table_name = ?`, schema.TableName); err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, `INSERT INTO `+systemTable+` (table_name, schema_json) VALUES (?, ?)`, schema.TableName, raw); err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+tableName(schema.TableName)+` (
			key_encoded BLOB PRIMARY KEY,
			row_data VARCHAR NOT NULL
		)`); err != nil {
		return err
	}

	cp := *schema
	s.mu.Lock()
	s.cache[schema.TableName] = &cp
	s.mu.Unlock()
	return nil
}

func (s *Store) DeleteSchema(ctx context.Context, table string) error {
	q := s.q()
	if _, err := q.ExecContext(ctx, `DROP TABLE IF EXISTS `+tableName(table)); err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM `+systemTable+` WHERE table_name = ?`, table); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.cache, table)
	s.mu.Unlock()
	return nil
}

// AppendData counts existing rows to derive the next key, matching
// storages/pgstore's simplification (no durable sequence); acceptable for
// a single-process embedded backend since DuckDB itself serializes writes
// through the one open connection.
func (s *Store) AppendData(ctx context.Context, table string, rows []gluedb.Row) ([]gluedb.Key, error) {
	q := s.q()
	var count uint64
	if err := q.QueryRowContext(ctx, `SELECT count(*) FROM `+tableName(table)).Scan(&count); err != nil {
		return nil, err
	}

	keys := make([]gluedb.Key, len(rows))
	for i, r := range rows {
		key := gluedb.GeneratedKey(count + uint64(i) + 1)
		keys[i] = key
		enc, err := key.Encode()
		if err != nil {
			return nil, err
		}
		raw, err := marshalRowWire(r)
		if err != nil {
			return nil, err
		}
		if _, err := q.ExecContext(ctx, `INSERT INTO `+tableName(table)+` (key_encoded, row_data) VALUES (?, ?)`, enc, raw); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func (s *Store) InsertData(ctx context.Context, table string, pairs []gluedb.KeyRow) error {
	q := s.q()
	for _, p := range pairs {
		enc, err := p.Key.Encode()
		if err != nil {
			return err
		}
		raw, err := marshalRowWire(p.Row)
		if err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM `+tableName(table)+` WHERE key_encoded = ?`, enc); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `INSERT INTO `+tableName(table)+` (key_encoded, row_data) VALUES (?, ?)`, enc, raw); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) UpdateData(ctx context.Context, table string, pairs []gluedb.KeyRow) error {
	return s.InsertData(ctx, table, pairs)
}

func (s *Store) DeleteData(ctx context.Context, table string, keys []gluedb.Key) error {
	q := s.q()
	for _, k := range keys {
		enc, err := k.Encode()
		if err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM `+tableName(table)+` WHERE key_encoded = ?`, enc); err != nil {
			return err
		}
	}
	return nil
}
