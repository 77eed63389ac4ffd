package documents

import "sync"

// InFlight registro de operaciones en curso. Una segunda operación con la misma
// clave se rechaza mientras la primera no termine.
type InFlight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewInFlight construye el registro vacío.
func NewInFlight() *InFlight {
	return &InFlight{keys: make(map[string]struct{})}
}

// Acquire reserva la clave. Devuelve false si ya está tomada; si no, la
// función release la libera.
func (g *InFlight) Acquire(key string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.keys[key]; busy {
		return nil, false
	}
	g.keys[key] = struct{}{}
	return func() {
		g.mu.Lock()
		delete(g.keys, key)
		g.mu.Unlock()
	}, true
}

// Len cantidad de operaciones en curso.
func (g *InFlight) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.keys)
}
