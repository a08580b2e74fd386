package middleware

import (
	"context"
	"errors"
	"sort"

	"hotelier/internal/app/commands"
	"hotelier/internal/app/locks"
	"hotelier/internal/app/uow"
	"hotelier/internal/domain/room"
)

// ErrRoomResolutionUnstable is returned when a command's room set kept
// changing between lock acquisitions. Callers treat it as a transient
// conflict and retry.
var ErrRoomResolutionUnstable = errors.New("middleware: room assignment kept changing during locking")

const roomResolveAttempts = 4

// RoomScoped commands name the rooms they may write. Resolution gets a
// read-only unit because reservation-scoped commands need to look up the
// current room before any lock is held.
type RoomScoped interface {
	commands.Command
	RoomKeys(ctx context.Context, unit uow.UnitOfWork) ([]room.RoomID, error)
}

// SerializeRooms holds the per-room locks across the whole command,
// availability check through commit. Without it the check-then-act gap
// would let two concurrent bookings of overlapping dates both succeed.
// Keys are re-resolved after acquisition: a concurrent edit can move the
// reservation between the lookup and the lock, and the handler must only
// ever run while holding the locks of the rooms it will actually touch.
func SerializeRooms(registry *locks.RoomLocks, factory uow.UoWFactory) CommandMiddleware {
	if registry == nil {
		panic("middleware: room lock registry required")
	}
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			scoped, ok := cmd.(RoomScoped)
			if !ok {
				return nextFn(ctx, cmd)
			}
			ids, err := resolveRoomKeys(ctx, factory, scoped)
			if err != nil {
				return nil, err
			}
			for attempt := 0; attempt < roomResolveAttempts; attempt++ {
				release := registry.Acquire(ids...)
				current, err := resolveRoomKeys(ctx, factory, scoped)
				if err != nil {
					release()
					return nil, err
				}
				if sameRoomSet(ids, current) {
					res, err := nextFn(ctx, cmd)
					release()
					return res, err
				}
				release()
				ids = current
			}
			return nil, ErrRoomResolutionUnstable
		})
	}
}

func resolveRoomKeys(ctx context.Context, factory uow.UoWFactory, scoped RoomScoped) ([]room.RoomID, error) {
	unit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() { _ = unit.Rollback(ctx) }()
	return scoped.RoomKeys(ctx, unit)
}

func sameRoomSet(a, b []room.RoomID) bool {
	as := normalizeRoomIDs(a)
	bs := normalizeRoomIDs(b)
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func normalizeRoomIDs(ids []room.RoomID) []room.RoomID {
	seen := make(map[room.RoomID]struct{}, len(ids))
	out := make([]room.RoomID, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
