package mysqlstore

import (
	"context"

	"github.com/lychee-technology/gluedb"
)

func (s *Store) Begin(ctx context.Context, autocommit bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx != nil {
		return false, &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeTransactionState, Message: "transaction already active"}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, classifyError(err)
	}
	s.tx = tx
	return true, nil
}

func (s *Store) Commit(ctx context.Context) error {
	s.mu.Lock()
	tx := s.tx
	s.tx = nil
	s.mu.Unlock()
	if tx == nil {
		return &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeTransactionState, Message: "no active transaction"}
	}
	return classifyError(tx.Commit())
}

// Rollback clears the schema cache entirely after a successful rollback,
// matching storages/pgstore and storages/duckstore's tradeoff: InsertSchema/
// DeleteSchema write through the cache unconditionally, so a rolled-back
// DDL change would otherwise leave a stale cache entry.
func (s *Store) Rollback(ctx context.Context) error {
	s.mu.Lock()
	tx := s.tx
	s.tx = nil
	s.mu.Unlock()
	if tx == nil {
		return &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeTransactionState, Message: "no active transaction"}
	}
	err := tx.Rollback()
	s.mu.Lock()
	s.cache = make(map[string]*gluedb.Schema)
	s.mu.Unlock()
	return classifyError(err)
}
