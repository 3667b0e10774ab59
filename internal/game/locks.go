package game

import "sync"

// keyedLocks serializes all mutations of one game's state. Both
// transport surfaces funnel through the same lock, so concurrent kill
// or vote requests against a game are strictly ordered and the
// read-modify-write span of each handler is atomic per game.
//
// Entries are never removed. Deleting an entry while a goroutine is
// parked on its mutex would let a later caller mint a second mutex for
// the same id; a deleted game leaves one idle mutex behind instead.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedLocks) lock(id string) func() {
	k.mu.Lock()
	m, ok := k.locks[id]
	if !ok {
		m = &sync.Mutex{}
		k.locks[id] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
