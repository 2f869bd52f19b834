package memstore

import (
	"context"

	"github.com/lychee-technology/gluedb"
)

// Begin opens a transaction by cloning committed into active; every read
// and write until Commit/Rollback targets that clone (current()), giving
// snapshot isolation and read-your-writes for free (spec §5).
func (s *Store) Begin(ctx context.Context, autocommit bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return false, &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeTransactionState,
			Message: "a transaction is already active"}
	}
	s.active = s.committed.clone()
	s.autocommit = autocommit
	return true, nil
}

// Commit swaps active into committed.
func (s *Store) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeTransactionState,
			Message: "no active transaction"}
	}
	s.committed = s.active
	s.active = nil
	return nil
}

// Rollback discards active, leaving committed untouched.
func (s *Store) Rollback(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeTransactionState,
			Message: "no active transaction"}
	}
	s.active = nil
	return nil
}
