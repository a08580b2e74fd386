package reservation

import (
	"context"
	"time"

	"hotelier/internal/app/commands"
	"hotelier/internal/app/handlers/support"
	"hotelier/internal/app/middleware"
	"hotelier/internal/app/outbox"
	"hotelier/internal/app/uow"
	domainreservation "hotelier/internal/domain/reservation"
	domainroom "hotelier/internal/domain/room"
)

const checkInKey = "reservation.check_in"

type CheckInCommand struct {
	ReservationID string
}

func (c CheckInCommand) Key() string { return checkInKey }

func (c CheckInCommand) RoomKeys(ctx context.Context, unit uow.UnitOfWork) ([]domainroom.RoomID, error) {
	current, err := currentRoomOf(ctx, unit, domainreservation.ReservationID(c.ReservationID))
	if err != nil {
		return nil, err
	}
	return []domainroom.RoomID{current}, nil
}

type CheckInResult struct {
	ReservationID string `json:"reservation_id"`
}

type CheckInHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CheckInHandler) Handle(ctx context.Context, cmd CheckInCommand) (*CheckInResult, error) {
	now := time.Now().UTC()
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		resv, err := unit.Reservations().ByID(ctx, domainreservation.ReservationID(cmd.ReservationID))
		if err != nil {
			return err
		}
		if err := resv.CheckIn(now); err != nil {
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
	return &CheckInResult{ReservationID: cmd.ReservationID}, nil
}

var _ commands.Handler[CheckInCommand, *CheckInResult] = (*CheckInHandler)(nil)
var _ middleware.RoomScoped = CheckInCommand{}
