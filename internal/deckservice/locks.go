package deckservice

import "sync"

// deckLocks hands out one mutex per deck id and forgets it once unused.
type deckLocks struct {
	mu sync.Mutex
	m  map[string]*deckLock
}

type deckLock struct {
	mu   sync.Mutex
	refs int
}

// lock blocks until id is free and returns the matching unlock.
func (l *deckLocks) lock(id string) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[string]*deckLock)
	}
	e, ok := l.m[id]
	if !ok {
		e = &deckLock{}
		l.m[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.m, id)
		}
		l.mu.Unlock()
	}
}
