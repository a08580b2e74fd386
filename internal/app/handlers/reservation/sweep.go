package reservation

import (
	"context"
	"log/slog"
	"time"

	"hotelier/internal/app/commands"
	"hotelier/internal/app/handlers/support"
	"hotelier/internal/app/locks"
	"hotelier/internal/app/outbox"
	"hotelier/internal/app/uow"
	domainreservation "hotelier/internal/domain/reservation"
	domainrange "hotelier/internal/domain/shared/daterange"
)

const sweepNoShowsKey = "reservation.sweep_no_shows"

// SweepNoShowsCommand retires every Confirmed reservation whose arrival
// date is strictly before AsOf. Re-running with the same date is a no-op:
// already swept reservations are no longer Confirmed and are skipped.
type SweepNoShowsCommand struct {
	AsOf time.Time
}

func (c SweepNoShowsCommand) Key() string { return sweepNoShowsKey }

// ManagesOwnUnits keeps the transaction middleware from binding one unit to
// the whole sweep; each candidate gets its own commit or rollback.
func (c SweepNoShowsCommand) ManagesOwnUnits() {}

type SweepNoShowsResult struct {
	Transitioned int `json:"transitioned"`
}

type SweepNoShowsHandler struct {
	UoWFactory uow.UoWFactory
	Locks      *locks.RoomLocks
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

// Handle processes candidates one per unit, re-reading under the room lock
// so a concurrent check-in wins: only reservations still found Confirmed at
// write time transition.
func (h *SweepNoShowsHandler) Handle(ctx context.Context, cmd SweepNoShowsCommand) (*SweepNoShowsResult, error) {
	asOf := domainrange.Day(cmd.AsOf)
	now := time.Now().UTC()

	candidates, err := h.listCandidates(ctx, asOf)
	if err != nil {
		return nil, err
	}

	count := 0
	for _, candidate := range candidates {
		release := func() {}
		if h.Locks != nil {
			release = h.Locks.Acquire(candidate.RoomID)
		}
		err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
			resv, err := unit.Reservations().ByID(ctx, candidate.ID)
			if err != nil {
				return err
			}
			if resv.Status != domainreservation.StatusConfirmed || !resv.Range.CheckIn.Before(asOf) {
				return nil
			}
			if err := resv.MarkNoShow(now); err != nil {
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
			count++
			return nil
		})
		release()
		if err != nil {
			if h.Logger != nil {
				h.Logger.Warn("no-show sweep skipped reservation", "reservation_id", candidate.ID, "error", err)
			}
			continue
		}
	}
	if h.Logger != nil {
		h.Logger.Info("no-show sweep finished", "as_of", asOf, "transitioned", count)
	}
	return &SweepNoShowsResult{Transitioned: count}, nil
}

func (h *SweepNoShowsHandler) listCandidates(ctx context.Context, asOf time.Time) ([]*domainreservation.Reservation, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	return unit.Reservations().ConfirmedArrivingBefore(execCtx, asOf)
}

var _ commands.Handler[SweepNoShowsCommand, *SweepNoShowsResult] = (*SweepNoShowsHandler)(nil)
