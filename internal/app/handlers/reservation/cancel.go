package reservation

import (
	"context"
	"log/slog"
	"time"

	"hotelier/internal/app/commands"
	"hotelier/internal/app/handlers/support"
	"hotelier/internal/app/middleware"
	"hotelier/internal/app/outbox"
	"hotelier/internal/app/policies"
	"hotelier/internal/app/uow"
	domainguest "hotelier/internal/domain/guest"
	domainreservation "hotelier/internal/domain/reservation"
	domainroom "hotelier/internal/domain/room"
)

const (
	cancelByGuestKey    = "reservation.cancel_by_guest"
	cancelByOperatorKey = "reservation.cancel_by_operator"
)

// CancelByGuestCommand cancels on behalf of the owning guest; ownership is
// part of the guard.
type CancelByGuestCommand struct {
	ReservationID string
	GuestID       string
}

func (c CancelByGuestCommand) Key() string { return cancelByGuestKey }

func (c CancelByGuestCommand) RoomKeys(ctx context.Context, unit uow.UnitOfWork) ([]domainroom.RoomID, error) {
	current, err := currentRoomOf(ctx, unit, domainreservation.ReservationID(c.ReservationID))
	if err != nil {
		return nil, err
	}
	return []domainroom.RoomID{current}, nil
}

// CancelByOperatorCommand carries no ownership check and triggers a
// best-effort notification to the guest after commit.
type CancelByOperatorCommand struct {
	ReservationID string
}

func (c CancelByOperatorCommand) Key() string { return cancelByOperatorKey }

func (c CancelByOperatorCommand) RoomKeys(ctx context.Context, unit uow.UnitOfWork) ([]domainroom.RoomID, error) {
	current, err := currentRoomOf(ctx, unit, domainreservation.ReservationID(c.ReservationID))
	if err != nil {
		return nil, err
	}
	return []domainroom.RoomID{current}, nil
}

type CancelResult struct {
	ReservationID string `json:"reservation_id"`
	// Warning is set when the cancellation email could not be sent; the
	// cancellation itself has already committed and is never rolled back
	// by a notification fault.
	Warning string `json:"warning,omitempty"`
}

type CancelByGuestHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CancelByGuestHandler) Handle(ctx context.Context, cmd CancelByGuestCommand) (*CancelResult, error) {
	now := time.Now().UTC()
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		resv, err := unit.Reservations().ByID(ctx, domainreservation.ReservationID(cmd.ReservationID))
		if err != nil {
			return err
		}
		if err := resv.CancelBy(domainguest.GuestID(cmd.GuestID), now); err != nil {
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
	return &CancelResult{ReservationID: cmd.ReservationID}, nil
}

type CancelByOperatorHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Notifier   policies.Notifier
	Logger     *slog.Logger
}

func (h *CancelByOperatorHandler) Handle(ctx context.Context, cmd CancelByOperatorCommand) (*CancelResult, error) {
	now := time.Now().UTC()

	var (
		cancelled *domainreservation.Reservation
		roomNo    string
		guestRec  *domainguest.Guest
	)
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		resv, err := unit.Reservations().ByID(ctx, domainreservation.ReservationID(cmd.ReservationID))
		if err != nil {
			return err
		}
		if err := resv.Cancel(now); err != nil {
			return err
		}
		if err := unit.Reservations().Save(ctx, resv); err != nil {
			return err
		}
		if err := syncRoomStatus(ctx, unit, resv.RoomID); err != nil {
			return err
		}
		if err := recordEvents(ctx, h.Outbox, h.Encoder, resv); err != nil {
			return err
		}
		cancelled = resv
		if rm, err := unit.Rooms().ByID(ctx, resv.RoomID); err == nil {
			roomNo = rm.Number
		}
		if g, err := unit.Guests().ByID(ctx, resv.GuestID); err == nil {
			guestRec = g
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &CancelResult{ReservationID: cmd.ReservationID}
	if h.Notifier != nil && guestRec != nil && guestRec.Email != "" {
		notice := policies.CancellationNotice{
			ReservationID: string(cancelled.ID),
			GuestName:     guestRec.Name,
			RoomNumber:    roomNo,
			CheckIn:       cancelled.Range.CheckIn,
			CheckOut:      cancelled.Range.CheckOut,
			CancelledAt:   now,
		}
		if err := h.Notifier.SendCancellation(ctx, guestRec.Email, notice); err != nil {
			result.Warning = "cancellation email failed: " + err.Error()
			if h.Logger != nil {
				h.Logger.Warn("cancellation email failed", "reservation_id", cancelled.ID, "error", err)
			}
		}
	}
	return result, nil
}

var _ commands.Handler[CancelByGuestCommand, *CancelResult] = (*CancelByGuestHandler)(nil)
var _ commands.Handler[CancelByOperatorCommand, *CancelResult] = (*CancelByOperatorHandler)(nil)
var _ middleware.RoomScoped = CancelByGuestCommand{}
var _ middleware.RoomScoped = CancelByOperatorCommand{}
