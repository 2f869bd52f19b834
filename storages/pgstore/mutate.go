package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/lychee-technology/gluedb"
)

func (s *Store) InsertSchema(ctx context.Context, schema *gluedb.Schema) error {
	raw, err := marshalSchemaWire(schema)
	if err != nil {
		return err
	}
	q := s.q()
	_, err = q.Exec(ctx, `
		INSERT INTO `+systemTable+` (table_name, schema_json) VALUES ($1, $2)
		ON CONFLICT (table_name) DO UPDATE SET schema_json = EXCLUDED.schema_json`,
		schema.TableName, raw)
	if err != nil {
		return classifyError(err)
	}
	_, err = q.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+pgx.Identifier{tableName(schema.TableName)}.Sanitize()+` (
			key_encoded bytea PRIMARY KEY,
			row_data jsonb NOT NULL
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
	if _, err := q.Exec(ctx, `DROP TABLE IF EXISTS `+pgx.Identifier{tableName(table)}.Sanitize()); err != nil {
		return classifyError(err)
	}
	if _, err := q.Exec(ctx, `DELETE FROM `+systemTable+` WHERE table_name = $1`, table); err != nil {
		return classifyError(err)
	}
	s.mu.Lock()
	delete(s.cache, table)
	s.mu.Unlock()
	return nil
}

// AppendData derives each new gluedb.GeneratedKey from the table's current
// row count (SELECT count(*)) plus the row's position in the batch, the
// same scheme storages/duckstore and storages/mysqlstore use; no Postgres
// sequence is involved.
func (s *Store) AppendData(ctx context.Context, table string, rows []gluedb.Row) ([]gluedb.Key, error) {
	q := s.q()
	var maxExisting uint64
	err := q.QueryRow(ctx, `SELECT count(*) FROM `+pgx.Identifier{tableName(table)}.Sanitize()).Scan(&maxExisting)
	if err != nil {
		return nil, classifyError(err)
	}

	keys := make([]gluedb.Key, len(rows))
	batch := &pgx.Batch{}
	for i, r := range rows {
		key := gluedb.GeneratedKey(maxExisting + uint64(i) + 1)
		keys[i] = key
		enc, err := key.Encode()
		if err != nil {
			return nil, err
		}
		raw, err := marshalRowWire(r)
		if err != nil {
			return nil, err
		}
		batch.Queue(`INSERT INTO `+pgx.Identifier{tableName(table)}.Sanitize()+` (key_encoded, row_data) VALUES ($1, $2)`, enc, raw)
	}
	if err := s.execBatch(ctx, batch, len(rows)); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *Store) InsertData(ctx context.Context, table string, pairs []gluedb.KeyRow) error {
	batch := &pgx.Batch{}
	for _, p := range pairs {
		enc, err := p.Key.Encode()
		if err != nil {
			return err
		}
		raw, err := marshalRowWire(p.Row)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO `+pgx.Identifier{tableName(table)}.Sanitize()+` (key_encoded, row_data) VALUES ($1, $2)
			ON CONFLICT (key_encoded) DO UPDATE SET row_data = EXCLUDED.row_data`, enc, raw)
	}
	return s.execBatch(ctx, batch, len(pairs))
}

func (s *Store) UpdateData(ctx context.Context, table string, pairs []gluedb.KeyRow) error {
	return s.InsertData(ctx, table, pairs)
}

func (s *Store) DeleteData(ctx context.Context, table string, keys []gluedb.Key) error {
	batch := &pgx.Batch{}
	for _, k := range keys {
		enc, err := k.Encode()
		if err != nil {
			return err
		}
		batch.Queue(`DELETE FROM `+pgx.Identifier{tableName(table)}.Sanitize()+` WHERE key_encoded = $1`, enc)
	}
	return s.execBatch(ctx, batch, len(keys))
}

// execBatch sends all n queued writes of a pgx.Batch in one SendBatch round
// trip and reads back each statement's result, stopping at the first error.
func (s *Store) execBatch(ctx context.Context, batch *pgx.Batch, n int) error {
	if n == 0 {
		return nil
	}
	results := s.q().SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < n; i++ {
		if _, err := results.Exec(); err != nil {
			return classifyError(err)
		}
	}
	return nil
}
