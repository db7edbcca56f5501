package session

import "sync"

// sessionLocks serializes all mutations for a given session. Two racing
// heartbeats for the same session must not both decide to auto-clock-out or
// interleave outside_since writes; sessions of different participants stay
// fully parallel. Entries are reference counted and dropped when the last
// holder releases, so the map does not accumulate closed sessions.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

// Lock acquires the per-session mutex and returns its release func.
func (l *sessionLocks) Lock(key string) func() {
	l.mu.Lock()
	e, exists := l.locks[key]
	if !exists {
		e = &sessionLock{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
