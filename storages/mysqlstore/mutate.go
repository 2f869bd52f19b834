package mysqlstore

import (
	"context"

	"github.com/lychee-technology/gluedb"
)

func (s *Store) InsertSchema(ctx context.Context, schema *gluedb.Schema) error {
	schema.WithFileStorageFormatVersion(mysqlFormatVersion)
	raw, err := marshalSchemaWire(schema)
	if err != nil {
		return err
	}
	q := s.q()
	_, err = q.ExecContext(ctx, `
		INSERT INTO `+systemTable+` (table_name, schema_json) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE schema_json = VALUES(schema_json)`,
		schema.TableName, raw)
	if err != nil {
		return classifyError(err)
	}
	_, err = q.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+tableName(schema.TableName)+` (
			key_encoded VARBINARY(255) PRIMARY KEY,
			row_data JSON NOT NULL
		)`)
	if err != nil {
		return classifyError(err)
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
		return classifyError(err)
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM `+systemTable+` WHERE table_name = ?`, table); err != nil {
		return classifyError(err)
	}
	s.mu.Lock()
	delete(s.cache, table)
	s.mu.Unlock()
	return nil
}

// AppendData derives the next key via SELECT count(*), the same documented
// simplification storages/pgstore and storages/duckstore accept.
func (s *Store) AppendData(ctx context.Context, table string, rows []gluedb.Row) ([]gluedb.Key, error) {
	q := s.q()
	var count uint64
	if err := q.QueryRowContext(ctx, `SELECT count(*) FROM `+tableName(table)).Scan(&count); err != nil {
		return nil, classifyError(err)
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
			return nil, classifyError(err)
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
		_, err = q.ExecContext(ctx, `
			INSERT INTO `+tableName(table)+` (key_encoded, row_data) VALUES (?, ?)
			ON DUPLICATE KEY UPDATE row_data = VALUES(row_data)`, enc, raw)
		if err != nil {
			return classifyError(err)
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
			return classifyError(err)
		}
	}
	return nil
}
