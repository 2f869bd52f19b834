package memstore

import (
	"github.com/lychee-technology/gluedb"
)

func (s *Store) LookupFunction(name string) (gluedb.ScalarFunction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn, ok := s.functions[name]
	return fn, ok
}

func (s *Store) RegisterFunction(fn gluedb.ScalarFunction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn.Name == "" {
		return &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeUnknownFunction,
			Message: "function must have a name"}
	}
	s.functions[fn.Name] = fn
	return nil
}
