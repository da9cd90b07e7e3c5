package sessions

import "sync"

// Locker serializes work per session id. Mutexes are dropped as soon as no
// goroutine holds or waits for them.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func NewLocker() *Locker {
	return &Locker{
		locks: make(map[string]*refMutex),
	}
}

// Lock blocks until the session id is free and returns its unlock func.
func (l *Locker) Lock(id string) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &refMutex{}
		l.locks[id] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()

	return func() {
		m.Unlock()

		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// held returns the number of session ids currently locked or waited on.
func (l *Locker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
