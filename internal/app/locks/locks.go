package locks

import (
	"sort"
	"sync"

	"hotelier/internal/domain/room"
)

// RoomLocks serializes lifecycle commands per room. The availability check
// and the subsequent reservation/room write form a check-then-act sequence;
// holding the room's lock across both is what makes two concurrent bookings
// of overlapping dates on one room impossible.
type RoomLocks struct {
	mu    sync.Mutex
	locks map[room.RoomID]*sync.Mutex
}

func NewRoomLocks() *RoomLocks {
	return &RoomLocks{locks: make(map[room.RoomID]*sync.Mutex)}
}

func (l *RoomLocks) lockFor(id room.RoomID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

// Acquire locks the given rooms in a canonical order (deduplicated, sorted)
// so commands touching two rooms, such as an edit that moves the stay,
// cannot deadlock against each other. The returned release function unlocks
// in reverse order.
func (l *RoomLocks) Acquire(ids ...room.RoomID) (release func()) {
	uniq := make([]room.RoomID, 0, len(ids))
	seen := make(map[room.RoomID]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i] < uniq[j] })

	held := make([]*sync.Mutex, 0, len(uniq))
	for _, id := range uniq {
		m := l.lockFor(id)
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
