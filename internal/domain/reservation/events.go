package reservation

import (
	"time"

	"hotelier/internal/domain/amenity"
	"hotelier/internal/domain/guest"
	"hotelier/internal/domain/room"
	"hotelier/internal/domain/shared/daterange"
	"hotelier/internal/domain/shared/money"
)

type Created struct {
	ReservationID ReservationID
	RoomID        room.RoomID
	GuestID       guest.GuestID
	Range         daterange.DateRange
	GuestsCount   int
	Total         money.Money
	At            time.Time
}

func (e Created) EventName() string     { return "reservation.created" }
func (e Created) AggregateID() string   { return string(e.ReservationID) }
func (e Created) OccurredAt() time.Time { return e.At }

type Edited struct {
	ReservationID ReservationID
	RoomID        room.RoomID
	Range         daterange.DateRange
	Total         money.Money
	At            time.Time
}

func (e Edited) EventName() string     { return "reservation.edited" }
func (e Edited) AggregateID() string   { return string(e.ReservationID) }
func (e Edited) OccurredAt() time.Time { return e.At }

type AmenityAdded struct {
	ReservationID ReservationID
	AmenityID     amenity.AmenityID
	Quantity      int
	Total         money.Money
	At            time.Time
}

func (e AmenityAdded) EventName() string     { return "reservation.amenity_added" }
func (e AmenityAdded) AggregateID() string   { return string(e.ReservationID) }
func (e AmenityAdded) OccurredAt() time.Time { return e.At }

type AmenityRemoved struct {
	ReservationID ReservationID
	AmenityID     amenity.AmenityID
	Total         money.Money
	At            time.Time
}

func (e AmenityRemoved) EventName() string     { return "reservation.amenity_removed" }
func (e AmenityRemoved) AggregateID() string   { return string(e.ReservationID) }
func (e AmenityRemoved) OccurredAt() time.Time { return e.At }

type CheckedIn struct {
	ReservationID ReservationID
	RoomID        room.RoomID
	At            time.Time
}

func (e CheckedIn) EventName() string     { return "reservation.checked_in" }
func (e CheckedIn) AggregateID() string   { return string(e.ReservationID) }
func (e CheckedIn) OccurredAt() time.Time { return e.At }

type CheckedOut struct {
	ReservationID ReservationID
	RoomID        room.RoomID
	Total         money.Money
	At            time.Time
}

func (e CheckedOut) EventName() string     { return "reservation.checked_out" }
func (e CheckedOut) AggregateID() string   { return string(e.ReservationID) }
func (e CheckedOut) OccurredAt() time.Time { return e.At }

type Cancelled struct {
	ReservationID ReservationID
	RoomID        room.RoomID
	At            time.Time
}

func (e Cancelled) EventName() string     { return "reservation.cancelled" }
func (e Cancelled) AggregateID() string   { return string(e.ReservationID) }
func (e Cancelled) OccurredAt() time.Time { return e.At }

type Reactivated struct {
	ReservationID ReservationID
	RoomID        room.RoomID
	Range         daterange.DateRange
	At            time.Time
}

func (e Reactivated) EventName() string     { return "reservation.reactivated" }
func (e Reactivated) AggregateID() string   { return string(e.ReservationID) }
func (e Reactivated) OccurredAt() time.Time { return e.At }

type NoShowRecorded struct {
	ReservationID ReservationID
	RoomID        room.RoomID
	At            time.Time
}

func (e NoShowRecorded) EventName() string     { return "reservation.no_show" }
func (e NoShowRecorded) AggregateID() string   { return string(e.ReservationID) }
func (e NoShowRecorded) OccurredAt() time.Time { return e.At }
