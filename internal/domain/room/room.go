package room

import (
	"context"
	"errors"

	"hotelier/internal/domain/shared/money"
)

var (
	ErrNotFound         = errors.New("room: not found")
	ErrCapacityExceeded = errors.New("room: guest count exceeds capacity")
	ErrUnderMaintenance = errors.New("room: under maintenance")
)

type RoomID string

// RoomStatus is a derived cache of the room's active reservations. Only the
// reservation lifecycle handlers write it; Maintenance is set externally and
// survives releases.
type RoomStatus string

const (
	StatusAvailable   RoomStatus = "AVAILABLE"
	StatusReserved    RoomStatus = "RESERVED"
	StatusOccupied    RoomStatus = "OCCUPIED"
	StatusMaintenance RoomStatus = "MAINTENANCE"
)

type Room struct {
	ID          RoomID
	Number      string
	Capacity    int
	NightlyRate money.Money
	Status      RoomStatus
}

// Catalog is the external room store the engine reads rooms from and writes
// derived status back to.
type Catalog interface {
	ByID(ctx context.Context, id RoomID) (*Room, error)
	Save(ctx context.Context, room *Room) error
	List(ctx context.Context) ([]*Room, error)
}

// FitsGuests validates the capacity invariant checked at reservation creation.
func (r *Room) FitsGuests(count int) error {
	if count > r.Capacity {
		return ErrCapacityExceeded
	}
	return nil
}

// MarkReserved flags the room as held by a confirmed reservation.
func (r *Room) MarkReserved() error {
	if r.Status == StatusMaintenance {
		return ErrUnderMaintenance
	}
	r.Status = StatusReserved
	return nil
}

// MarkOccupied flags the room as physically checked into.
func (r *Room) MarkOccupied() error {
	if r.Status == StatusMaintenance {
		return ErrUnderMaintenance
	}
	r.Status = StatusOccupied
	return nil
}

// Release returns the room to the available pool. A room parked in
// Maintenance keeps that status; releases never clear it.
func (r *Room) Release() {
	if r.Status == StatusMaintenance {
		return
	}
	r.Status = StatusAvailable
}
