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
	domainguest "hotelier/internal/domain/guest"
	domainpricing "hotelier/internal/domain/pricing"
	domainpromotion "hotelier/internal/domain/promotion"
	domainreservation "hotelier/internal/domain/reservation"
	domainroom "hotelier/internal/domain/room"
	domainrange "hotelier/internal/domain/shared/daterange"
)

const createKey = "reservation.create"

type CreateCommand struct {
	CommandID       string
	GuestID         string
	RoomID          string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	IdempotencyKeyV string
}

func (c CreateCommand) Key() string { return createKey }

func (c CreateCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateCommand) ResultPrototype() any { return &CreateResult{} }

func (c CreateCommand) RoomKeys(ctx context.Context, unit uow.UnitOfWork) ([]domainroom.RoomID, error) {
	return []domainroom.RoomID{domainroom.RoomID(c.RoomID)}, nil
}

type CreateResult struct {
	ReservationID string `json:"reservation_id"`
	TotalCents    int64  `json:"total_cents"`
	Currency      string `json:"currency"`
}

type CreateHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

// Handle books a room: range and capacity guards, availability under the
// room lock, promotion selection, pricing, then reservation and room
// persisted in one unit.
func (h *CreateHandler) Handle(ctx context.Context, cmd CreateCommand) (*CreateResult, error) {
	stay, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	var result *CreateResult
	err = support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		rm, err := unit.Rooms().ByID(ctx, domainroom.RoomID(cmd.RoomID))
		if err != nil {
			return err
		}
		if err := rm.FitsGuests(cmd.Guests); err != nil {
			return err
		}
		if rm.Status == domainroom.StatusMaintenance {
			return domainroom.ErrUnderMaintenance
		}

		checker := availability.Checker{Reservations: unit.Reservations()}
		free, err := checker.IsAvailable(ctx, rm.ID, stay, "")
		if err != nil {
			return err
		}
		if !free {
			return ErrRoomUnavailable
		}

		candidates, err := unit.Promotions().ApplicableForRange(ctx, stay)
		if err != nil {
			return err
		}
		promo := domainpromotion.Best(candidates, stay, now)

		quote, err := domainpricing.Quote(stay, rm.NightlyRate, promo, now)
		if err != nil {
			return err
		}

		resv, err := domainreservation.New(domainreservation.CreateParams{
			ID:        domainreservation.ReservationID(cmd.CommandID),
			GuestID:   domainguest.GuestID(cmd.GuestID),
			RoomID:    rm.ID,
			Range:     stay,
			Guests:    cmd.Guests,
			Quote:     quote,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}

		if err := unit.Reservations().Save(ctx, resv); err != nil {
			return err
		}
		if err := syncRoomStatus(ctx, unit, rm.ID); err != nil {
			return err
		}
		if err := recordEvents(ctx, h.Outbox, h.Encoder, resv); err != nil {
			return err
		}

		result = &CreateResult{
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

var _ commands.Handler[CreateCommand, *CreateResult] = (*CreateHandler)(nil)
var _ middleware.IdempotentCommand = CreateCommand{}
var _ middleware.RoomScoped = CreateCommand{}
