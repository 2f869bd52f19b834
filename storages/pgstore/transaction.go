package pgstore

import (
	"context"

	"github.com/lychee-technology/gluedb"
)

// Begin opens a real Postgres transaction at REPEATABLE READ, which Postgres
// implements as snapshot isolation; every subsequent call through q() is
// routed to it until Commit/Rollback.
func (s *Store) Begin(ctx context.Context, autocommit bool) (bool, error) {
	s.mu.Lock()
	if s.tx != nil {
		s.mu.Unlock()
		return false, &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeTransactionState,
			Message: "a transaction is already active"}
	}
	s.mu.Unlock()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, classifyError(err)
	}
	if _, err := tx.Exec(ctx, `SET TRANSACTION ISOLATION LEVEL REPEATABLE READ`); err != nil {
		_ = tx.Rollback(ctx)
		return false, classifyError(err)
	}
	s.mu.Lock()
	s.tx = tx
	s.mu.Unlock()
	return true, nil
}

func (s *Store) Commit(ctx context.Context) error {
	s.mu.Lock()
	tx := s.tx
	s.tx = nil
	s.mu.Unlock()
	if tx == nil {
		return &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeTransactionState,
			Message: "no active transaction"}
	}
	return classifyError(tx.Commit(ctx))
}

func (s *Store) Rollback(ctx context.Context) error {
	s.mu.Lock()
	tx := s.tx
	s.tx = nil
	s.mu.Unlock()
	if tx == nil {
		return &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeTransactionState,
			Message: "no active transaction"}
	}
	if err := tx.Rollback(ctx); err != nil {
		return classifyError(err)
	}
	// The in-process schema cache (schema_codec.go's Default-expression
	// carrier) isn't itself transactional; drop it so a rolled-back
	// CREATE/ALTER/DROP TABLE can't leave a stale entry behind. The next
	// FetchSchema re-reads the committed row, at the cost of losing any
	// cached Default expressions for tables untouched by this rollback.
	s.mu.Lock()
	s.cache = make(map[string]*gluedb.Schema)
	s.mu.Unlock()
	return nil
}
