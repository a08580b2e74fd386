package availability

import (
	"context"

	"hotelier/internal/domain/reservation"
	"hotelier/internal/domain/room"
	"hotelier/internal/domain/shared/daterange"
)

// Checker answers whether a room can take a stay. It is a pure read over the
// reservation store: only blocking reservations (Confirmed, CheckedIn)
// count, and intervals compare with the half-open overlap predicate.
type Checker struct {
	Reservations reservation.Repository
}

// IsAvailable reports whether no blocking reservation overlaps the stay.
// exclude lets an edit-in-place ignore the reservation being modified.
func (c Checker) IsAvailable(ctx context.Context, roomID room.RoomID, stay daterange.DateRange, exclude reservation.ReservationID) (bool, error) {
	overlapping, err := c.Reservations.OverlappingForRoom(ctx, roomID, stay)
	if err != nil {
		return false, err
	}
	for _, r := range overlapping {
		if exclude != "" && r.ID == exclude {
			continue
		}
		if r.Status.Blocks() {
			return false, nil
		}
	}
	return true, nil
}
