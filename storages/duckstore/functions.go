package duckstore

import (
	"sync"

	"github.com/lychee-technology/gluedb"
)

// functionRegistry holds registered scalar functions in process memory
// only, matching storages/memstore and storages/pgstore: a Go func value
// has no durable representation DuckDB (or any SQL engine) can persist.
type functionRegistry struct {
	mu    sync.RWMutex
	funcs map[string]gluedb.ScalarFunction
}

func (s *Store) LookupFunction(name string) (gluedb.ScalarFunction, bool) {
	s.functions.mu.RLock()
	defer s.functions.mu.RUnlock()
	fn, ok := s.functions.funcs[name]
	return fn, ok
}

func (s *Store) RegisterFunction(fn gluedb.ScalarFunction) error {
	if fn.Name == "" {
		return &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeUnknownFunction, Message: "function must have a name"}
	}
	s.functions.mu.Lock()
	defer s.functions.mu.Unlock()
	s.functions.funcs[fn.Name] = fn
	return nil
}
