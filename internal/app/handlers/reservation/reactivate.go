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
)

const reactivateKey = "reservation.reactivate"

// ReactivateCommand is the one path out of Cancelled, gated by a fresh
// availability check: another booking may have taken the slot meanwhile.
type ReactivateCommand struct {
	ReservationID   string
	IdempotencyKeyV string
}

func (c ReactivateCommand) Key() string { return reactivateKey }

func (c ReactivateCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c ReactivateCommand) ResultPrototype() any { return &ReactivateResult{} }

func (c ReactivateCommand) RoomKeys(ctx context.Context, unit uow.UnitOfWork) ([]domainroom.RoomID, error) {
	current, err := currentRoomOf(ctx, unit, domainreservation.ReservationID(c.ReservationID))
	if err != nil {
		return nil, err
	}
	return []domainroom.RoomID{current}, nil
}

type ReactivateResult struct {
	ReservationID string `json:"reservation_id"`
}

type ReactivateHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *ReactivateHandler) Handle(ctx context.Context, cmd ReactivateCommand) (*ReactivateResult, error) {
	now := time.Now().UTC()
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		resv, err := unit.Reservations().ByID(ctx, domainreservation.ReservationID(cmd.ReservationID))
		if err != nil {
			return err
		}
		if resv.Status != domainreservation.StatusCancelled {
			return domainreservation.ErrInvalidState
		}

		checker := availability.Checker{Reservations: unit.Reservations()}
		free, err := checker.IsAvailable(ctx, resv.RoomID, resv.Range, resv.ID)
		if err != nil {
			return err
		}
		if !free {
			return ErrRoomUnavailable
		}

		if err := resv.Reactivate(now); err != nil {
			return err
		}
		if err := unit.Reservations().Save(ctx, resv); err != nil {
			return err
		}
		if err := syncRoomStatus(ctx, unit, resv.RoomID); err != nil {
			return err
		}
		return recordEvents(ctx, h.Outbox, h.Encoder, resv)
	})
	if err != nil {
		return nil, err
	}
	return &ReactivateResult{ReservationID: cmd.ReservationID}, nil
}

var _ commands.Handler[ReactivateCommand, *ReactivateResult] = (*ReactivateHandler)(nil)
var _ middleware.IdempotentCommand = ReactivateCommand{}
var _ middleware.RoomScoped = ReactivateCommand{}
