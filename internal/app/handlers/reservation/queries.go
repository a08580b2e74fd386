package reservation

import (
	"context"
	"time"

	"hotelier/internal/app/availability"
	"hotelier/internal/app/handlers/support"
	"hotelier/internal/app/queries"
	"hotelier/internal/app/uow"
	"hotelier/internal/domain/guest"
	"hotelier/internal/domain/invoice"
	domainreservation "hotelier/internal/domain/reservation"
	"hotelier/internal/domain/room"
	domainrange "hotelier/internal/domain/shared/daterange"
)

const (
	roomAvailabilityKey  = "reservation.room_availability"
	getReservationKey    = "reservation.get"
	guestReservationsKey = "reservation.list_by_guest"
	invoiceKey           = "reservation.invoice"
)

// RoomAvailabilityQuery asks whether a room is free for a stay.
type RoomAvailabilityQuery struct {
	RoomID   string
	CheckIn  time.Time
	CheckOut time.Time
}

func (q RoomAvailabilityQuery) Key() string { return roomAvailabilityKey }

type RoomAvailabilityResult struct {
	RoomID    string `json:"room_id"`
	Available bool   `json:"available"`
}

type RoomAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *RoomAvailabilityHandler) Handle(ctx context.Context, q RoomAvailabilityQuery) (*RoomAvailabilityResult, error) {
	stay, err := domainrange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return nil, err
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	if _, err := unit.Rooms().ByID(execCtx, room.RoomID(q.RoomID)); err != nil {
		return nil, err
	}
	checker := availability.Checker{Reservations: unit.Reservations()}
	free, err := checker.IsAvailable(execCtx, room.RoomID(q.RoomID), stay, "")
	if err != nil {
		return nil, err
	}
	return &RoomAvailabilityResult{RoomID: q.RoomID, Available: free}, nil
}

// GetReservationQuery fetches a single reservation by id.
type GetReservationQuery struct {
	ReservationID string
}

func (q GetReservationQuery) Key() string { return getReservationKey }

type GetReservationHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetReservationHandler) Handle(ctx context.Context, q GetReservationQuery) (*domainreservation.Reservation, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	return unit.Reservations().ByID(execCtx, domainreservation.ReservationID(q.ReservationID))
}

// GuestReservationsQuery lists a guest's reservations, any status.
type GuestReservationsQuery struct {
	GuestID string
}

func (q GuestReservationsQuery) Key() string { return guestReservationsKey }

type GuestReservationsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GuestReservationsHandler) Handle(ctx context.Context, q GuestReservationsQuery) ([]*domainreservation.Reservation, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	if _, err := unit.Guests().ByID(execCtx, guest.GuestID(q.GuestID)); err != nil {
		return nil, err
	}
	return unit.Reservations().ListByGuest(execCtx, guest.GuestID(q.GuestID))
}

// InvoiceQuery assembles the invoice for a checked-out reservation.
type InvoiceQuery struct {
	ReservationID string
}

func (q InvoiceQuery) Key() string { return invoiceKey }

type InvoiceHandler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *InvoiceHandler) Handle(ctx context.Context, q InvoiceQuery) (*invoice.Invoice, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	resv, err := unit.Reservations().ByID(execCtx, domainreservation.ReservationID(q.ReservationID))
	if err != nil {
		return nil, err
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	inv, err := invoice.Assemble(resv, now())
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

var (
	_ queries.Handler[RoomAvailabilityQuery, *RoomAvailabilityResult]           = (*RoomAvailabilityHandler)(nil)
	_ queries.Handler[GetReservationQuery, *domainreservation.Reservation]      = (*GetReservationHandler)(nil)
	_ queries.Handler[GuestReservationsQuery, []*domainreservation.Reservation] = (*GuestReservationsHandler)(nil)
	_ queries.Handler[InvoiceQuery, *invoice.Invoice]                           = (*InvoiceHandler)(nil)
)
