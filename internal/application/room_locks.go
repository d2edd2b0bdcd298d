package application

import (
	"slices"
	"sync"
)

// roomLockTable serializes bookings per room. Locks are acquired in ascending
// room id order so multi-room bookings with overlapping room sets cannot
// deadlock against each other.
type roomLockTable struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newRoomLockTable() *roomLockTable {
	return &roomLockTable{locks: make(map[int64]*sync.Mutex)}
}

func (t *roomLockTable) lockFor(roomID int64) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.locks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[roomID] = lock
	}
	return lock
}

// Acquire locks every room in the set and returns a release function.
// The input is deduplicated and sorted; callers may pass ids in any order.
func (t *roomLockTable) Acquire(roomIDs []int64) func() {
	ordered := slices.Clone(roomIDs)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	held := make([]*sync.Mutex, 0, len(ordered))
	for _, id := range ordered {
		lock := t.lockFor(id)
		lock.Lock()
		held = append(held, lock)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
