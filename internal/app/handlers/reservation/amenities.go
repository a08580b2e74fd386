package reservation

import (
	"context"
	"time"

	"hotelier/internal/app/commands"
	"hotelier/internal/app/handlers/support"
	"hotelier/internal/app/outbox"
	"hotelier/internal/app/uow"
	domainamenity "hotelier/internal/domain/amenity"
	domainreservation "hotelier/internal/domain/reservation"
)

const (
	addAmenityKey    = "reservation.add_amenity"
	removeAmenityKey = "reservation.remove_amenity"
)

// AddAmenityCommand attaches a catalog amenity at its current price; the
// price is snapshotted so later catalog changes never move this reservation.
type AddAmenityCommand struct {
	ReservationID string
	AmenityID     string
	Quantity      int
}

func (c AddAmenityCommand) Key() string { return addAmenityKey }

type RemoveAmenityCommand struct {
	ReservationID string
	AmenityID     string
}

func (c RemoveAmenityCommand) Key() string { return removeAmenityKey }

type AmenityResult struct {
	ReservationID string `json:"reservation_id"`
	TotalCents    int64  `json:"total_cents"`
	Currency      string `json:"currency"`
}

type AddAmenityHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *AddAmenityHandler) Handle(ctx context.Context, cmd AddAmenityCommand) (*AmenityResult, error) {
	now := time.Now().UTC()
	var result *AmenityResult
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		resv, err := unit.Reservations().ByID(ctx, domainreservation.ReservationID(cmd.ReservationID))
		if err != nil {
			return err
		}
		item, err := unit.Amenities().ByID(ctx, domainamenity.AmenityID(cmd.AmenityID))
		if err != nil {
			return err
		}
		if err := resv.AddAmenity(item, cmd.Quantity, now); err != nil {
			return err
		}
		if err := unit.Reservations().Save(ctx, resv); err != nil {
			return err
		}
		if err := recordEvents(ctx, h.Outbox, h.Encoder, resv); err != nil {
			return err
		}
		result = &AmenityResult{
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

type RemoveAmenityHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *RemoveAmenityHandler) Handle(ctx context.Context, cmd RemoveAmenityCommand) (*AmenityResult, error) {
	now := time.Now().UTC()
	var result *AmenityResult
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		resv, err := unit.Reservations().ByID(ctx, domainreservation.ReservationID(cmd.ReservationID))
		if err != nil {
			return err
		}
		if err := resv.RemoveAmenity(domainamenity.AmenityID(cmd.AmenityID), now); err != nil {
			return err
		}
		if err := unit.Reservations().Save(ctx, resv); err != nil {
			return err
		}
		if err := recordEvents(ctx, h.Outbox, h.Encoder, resv); err != nil {
			return err
		}
		result = &AmenityResult{
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

var _ commands.Handler[AddAmenityCommand, *AmenityResult] = (*AddAmenityHandler)(nil)
var _ commands.Handler[RemoveAmenityCommand, *AmenityResult] = (*RemoveAmenityHandler)(nil)
