// Package locker provides an in-process mutual exclusion primitive keyed by
// an arbitrary subject string. Operations sharing a subject serialize;
// distinct subjects proceed fully in parallel.
package locker

import (
	"sort"
	"sync"
)

type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyedLock is a concurrent map from subject key to a mutex. Lock entries
// are created on demand and removed once the last holder releases them, so
// the map does not grow with the number of subjects ever seen.
type KeyedLock struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New creates an empty KeyedLock.
func New() *KeyedLock {
	return &KeyedLock{entries: make(map[string]*entry)}
}

func (l *KeyedLock) acquire(key string) *entry {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return e
}

func (l *KeyedLock) release(key string, e *entry) {
	e.mu.Unlock()

	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
	l.mu.Unlock()
}

// Do runs fn while holding the lock for key. The lock is not reentrant:
// fn must not call Do or DoMulti with any key it already holds.
func (l *KeyedLock) Do(key string, fn func() error) error {
	e := l.acquire(key)
	defer l.release(key, e)
	return fn()
}

// DoMulti runs fn while holding the locks for every key. Keys are
// deduplicated and acquired in sorted order so that two callers locking
// overlapping key sets can never deadlock.
func (l *KeyedLock) DoMulti(keys []string, fn func() error) error {
	uniq := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	sort.Strings(uniq)

	held := make([]*entry, len(uniq))
	for i, k := range uniq {
		held[i] = l.acquire(k)
	}
	defer func() {
		for i := len(uniq) - 1; i >= 0; i-- {
			l.release(uniq[i], held[i])
		}
	}()

	return fn()
}
