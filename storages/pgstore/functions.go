package pgstore

import (
	"sync"

	"github.com/lychee-technology/gluedb"
)

// functions holds registered scalar functions in process memory only;
// like schema Default expressions, a Go func value has no durable
// representation to persist into Postgres, so CustomFunctionMut's
// registry is scoped to this Store's lifetime, matching
// storages/memstore's in-memory registry.
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
