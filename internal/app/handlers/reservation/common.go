package reservation

import (
	"context"
	"errors"

	"hotelier/internal/app/outbox"
	"hotelier/internal/app/uow"
	domainpricing "hotelier/internal/domain/pricing"
	domainreservation "hotelier/internal/domain/reservation"
	domainroom "hotelier/internal/domain/room"
	domainrange "hotelier/internal/domain/shared/daterange"
	"hotelier/internal/domain/shared/money"
)

// ErrRoomUnavailable is the overlap rejection of the availability guard.
var ErrRoomUnavailable = errors.New("reservation: room is not available for the requested dates")

func recordEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, resv *domainreservation.Reservation) error {
	evs := resv.PendingEvents()
	resv.ClearEvents()
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	return outbox.RecordDomainEvents(ctx, box, encoder, evs)
}

// syncRoomStatus recomputes the room's derived status cache from its active
// reservations and writes it back in the same unit as the reservation
// change. Any CheckedIn reservation makes the room Occupied, otherwise any
// Confirmed one makes it Reserved, otherwise it is released. This is the
// only writer of room status in the whole engine.
func syncRoomStatus(ctx context.Context, unit uow.UnitOfWork, roomID domainroom.RoomID) error {
	rm, err := unit.Rooms().ByID(ctx, roomID)
	if err != nil {
		return err
	}
	active, err := unit.Reservations().ActiveForRoom(ctx, roomID)
	if err != nil {
		return err
	}
	checkedIn, confirmed := false, false
	for _, r := range active {
		switch r.Status {
		case domainreservation.StatusCheckedIn:
			checkedIn = true
		case domainreservation.StatusConfirmed:
			confirmed = true
		}
	}
	switch {
	case checkedIn:
		if err := rm.MarkOccupied(); err != nil {
			return err
		}
	case confirmed:
		if err := rm.MarkReserved(); err != nil {
			return err
		}
	default:
		rm.Release()
	}
	return unit.Rooms().Save(ctx, rm)
}

// currentRoomOf resolves the room a reservation currently holds, for lock
// acquisition before the command's own unit opens.
func currentRoomOf(ctx context.Context, unit uow.UnitOfWork, id domainreservation.ReservationID) (domainroom.RoomID, error) {
	resv, err := unit.Reservations().ByID(ctx, id)
	if err != nil {
		return "", err
	}
	return resv.RoomID, nil
}

// requote reprices a stay while keeping a previously snapshotted discount.
// Edits never re-shop promotions; the terms agreed at booking follow the
// reservation to its new dates or room.
func requote(stay domainrange.DateRange, nightly money.Money, snap domainreservation.PromoSnapshot) (domainpricing.StayQuote, error) {
	quote, err := domainpricing.Quote(stay, nightly, nil, stay.CheckIn)
	if err != nil {
		return domainpricing.StayQuote{}, err
	}
	if !snap.Applied() {
		return quote, nil
	}
	discounted, err := quote.Original.Sub(quote.Original.Percent(snap.DiscountPercent))
	if err != nil {
		return domainpricing.StayQuote{}, err
	}
	quote.DiscountPercent = snap.DiscountPercent
	quote.PromotionID = snap.PromotionID
	quote.Stay = discounted
	return quote, nil
}
