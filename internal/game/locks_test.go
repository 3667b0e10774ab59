package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedLocksMutualExclusion(t *testing.T) {
	k := newKeyedLocks()
	unlock := k.lock("g1")

	acquired := make(chan struct{})
	go func() {
		u := k.lock("g1")
		u()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second caller acquired a held lock")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock was never handed to the second caller")
	}
}

func TestKeyedLocksIndependentKeys(t *testing.T) {
	k := newKeyedLocks()
	unlock := k.lock("g1")
	defer unlock()

	done := make(chan struct{})
	go func() {
		u := k.lock("g2")
		u()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("a held lock on one game blocked another game")
	}
}

func TestLockEntrySurvivesGameDelete(t *testing.T) {
	f := newFixture(t)
	f.createGame(nil)
	require.NoError(t, f.svc.DeleteGame(f.ctx, f.game.ID))

	f.svc.locks.mu.Lock()
	_, ok := f.svc.locks.locks[f.game.ID]
	f.svc.locks.mu.Unlock()
	assert.True(t, ok, "a caller parked on the mutex must never see a replacement minted")
}
