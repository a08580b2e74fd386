package reservation

import (
	"context"
	"time"

	"hotelier/internal/app/availability"
	"hotelier/internal/app/commands"
	"hotelier/internal/app/handlers/support"
	"hotelier/internal/app/middleware"
	"hotelier/internal/app/outbox"
	"hotelier/internal/app/uow"
	domainreservation "hotelier/internal/domain/reservation"
	domainroom "hotelier/internal/domain/room"
	domainrange "hotelier/internal/domain/shared/daterange"
)

const editKey = "reservation.edit"

// EditCommand changes a reservation in place. Nil fields keep their current
// value. After check-in only the checkout date, guest count, and amenities
// may change.
type EditCommand struct {
	ReservationID   string
	NewRoomID       *string
	NewCheckIn      *time.Time
	NewCheckOut     *time.Time
	NewGuests       *int
	IdempotencyKeyV string
}

func (c EditCommand) Key() string { return editKey }

func (c EditCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c EditCommand) ResultPrototype() any { return &EditResult{} }

func (c EditCommand) RoomKeys(ctx context.Context, unit uow.UnitOfWork) ([]domainroom.RoomID, error) {
	current, err := currentRoomOf(ctx, unit, domainreservation.ReservationID(c.ReservationID))
	if err != nil {
		return nil, err
	}
	keys := []domainroom.RoomID{current}
	if c.NewRoomID != nil {
		keys = append(keys, domainroom.RoomID(*c.NewRoomID))
	}
	return keys, nil
}

type EditResult struct {
	ReservationID string `json:"reservation_id"`
	TotalCents    int64  `json:"total_cents"`
	Currency      string `json:"currency"`
}

type EditHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *EditHandler) Handle(ctx context.Context, cmd EditCommand) (*EditResult, error) {
	now := time.Now().UTC()

	var result *EditResult
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		resv, err := unit.Reservations().ByID(ctx, domainreservation.ReservationID(cmd.ReservationID))
		if err != nil {
			return err
		}
		if !resv.Status.Blocks() {
			return domainreservation.ErrInvalidState
		}

		oldRoomID := resv.RoomID
		targetRoomID := oldRoomID
		if cmd.NewRoomID != nil {
			targetRoomID = domainroom.RoomID(*cmd.NewRoomID)
		}
		roomChanged := targetRoomID != oldRoomID
		if roomChanged && resv.Status == domainreservation.StatusCheckedIn {
			return domainreservation.ErrCheckedInFrozen
		}

		checkIn := resv.Range.CheckIn
		if cmd.NewCheckIn != nil {
			checkIn = *cmd.NewCheckIn
		}
		checkOut := resv.Range.CheckOut
		if cmd.NewCheckOut != nil {
			checkOut = *cmd.NewCheckOut
		}
		stay, err := domainrange.New(checkIn, checkOut)
		if err != nil {
			return err
		}

		rm, err := unit.Rooms().ByID(ctx, targetRoomID)
		if err != nil {
			return err
		}
		guests := resv.Guests
		if cmd.NewGuests != nil {
			guests = *cmd.NewGuests
		}
		if err := rm.FitsGuests(guests); err != nil {
			return err
		}
		if roomChanged && rm.Status == domainroom.StatusMaintenance {
			return domainroom.ErrUnderMaintenance
		}

		checker := availability.Checker{Reservations: unit.Reservations()}
		free, err := checker.IsAvailable(ctx, targetRoomID, stay, resv.ID)
		if err != nil {
			return err
		}
		if !free {
			return ErrRoomUnavailable
		}

		quote, err := requote(stay, rm.NightlyRate, resv.Promo)
		if err != nil {
			return err
		}
		if roomChanged {
			if err := resv.MoveRoom(targetRoomID, quote, now); err != nil {
				return err
			}
		}
		if err := resv.Reschedule(stay, quote, now); err != nil {
			return err
		}
		if cmd.NewGuests != nil {
			if err := resv.SetGuests(guests, now); err != nil {
				return err
			}
		}

		if err := unit.Reservations().Save(ctx, resv); err != nil {
			return err
		}
		if err := syncRoomStatus(ctx, unit, targetRoomID); err != nil {
			return err
		}
		if roomChanged {
			if err := syncRoomStatus(ctx, unit, oldRoomID); err != nil {
				return err
			}
		}
		if err := recordEvents(ctx, h.Outbox, h.Encoder, resv); err != nil {
			return err
		}

		result = &EditResult{
			ReservationID: string(resv.ID),
			TotalCents:    resv.Total.Cents,
			Currency:      resv.Total.Currency,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

var _ commands.Handler[EditCommand, *EditResult] = (*EditHandler)(nil)
var _ middleware.IdempotentCommand = EditCommand{}
var _ middleware.RoomScoped = EditCommand{}
