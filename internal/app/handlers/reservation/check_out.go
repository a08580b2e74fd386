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
	domaininvoice "hotelier/internal/domain/invoice"
	domainreservation "hotelier/internal/domain/reservation"
	domainroom "hotelier/internal/domain/room"
)

const checkOutKey = "reservation.check_out"

type CheckOutCommand struct {
	ReservationID string
}

func (c CheckOutCommand) Key() string { return checkOutKey }

func (c CheckOutCommand) RoomKeys(ctx context.Context, unit uow.UnitOfWork) ([]domainroom.RoomID, error) {
	current, err := currentRoomOf(ctx, unit, domainreservation.ReservationID(c.ReservationID))
	if err != nil {
		return nil, err
	}
	return []domainroom.RoomID{current}, nil
}

type CheckOutResult struct {
	ReservationID string `json:"reservation_id"`
	TotalCents    int64  `json:"total_cents"`
	Currency      string `json:"currency"`
	// Warning is set when the post-commit invoice archive failed; the
	// checkout itself has already committed.
	Warning string `json:"warning,omitempty"`
}

type CheckOutHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Archiver   policies.InvoiceArchiver
	Logger     *slog.Logger
}

func (h *CheckOutHandler) Handle(ctx context.Context, cmd CheckOutCommand) (*CheckOutResult, error) {
	now := time.Now().UTC()

	var checkedOut *domainreservation.Reservation
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		resv, err := unit.Reservations().ByID(ctx, domainreservation.ReservationID(cmd.ReservationID))
		if err != nil {
			return err
		}
		if err := resv.CheckOut(now); err != nil {
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
		checkedOut = resv
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &CheckOutResult{
		ReservationID: string(checkedOut.ID),
		TotalCents:    checkedOut.Total.Cents,
		Currency:      checkedOut.Total.Currency,
	}
	if h.Archiver != nil {
		inv, err := domaininvoice.Assemble(checkedOut, now)
		if err == nil {
			_, err = h.Archiver.Archive(ctx, inv)
		}
		if err != nil {
			result.Warning = "invoice archive failed: " + err.Error()
			if h.Logger != nil {
				h.Logger.Warn("invoice archive failed", "reservation_id", checkedOut.ID, "error", err)
			}
		}
	}
	return result, nil
}

var _ commands.Handler[CheckOutCommand, *CheckOutResult] = (*CheckOutHandler)(nil)
var _ middleware.RoomScoped = CheckOutCommand{}
