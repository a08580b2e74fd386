package memory

import (
	"context"
	"errors"

	"hotelier/internal/app/uow"
	domainamenity "hotelier/internal/domain/amenity"
	domainguest "hotelier/internal/domain/guest"
	domainpromotion "hotelier/internal/domain/promotion"
	domainreservation "hotelier/internal/domain/reservation"
	domainroom "hotelier/internal/domain/room"
)

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	RoomsRepo        domainroom.Catalog
	ReservationsRepo domainreservation.Repository
	GuestsRepo       domainguest.Directory
	AmenitiesRepo    domainamenity.Catalog
	PromotionsRepo   domainpromotion.Catalog
}

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports; command serialization
// comes from the per-room lock registry.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.RoomsRepo == nil || f.ReservationsRepo == nil || f.GuestsRepo == nil || f.AmenitiesRepo == nil || f.PromotionsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		rooms:        f.RoomsRepo,
		reservations: f.ReservationsRepo,
		guests:       f.GuestsRepo,
		amenities:    f.AmenitiesRepo,
		promotions:   f.PromotionsRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	rooms        domainroom.Catalog
	reservations domainreservation.Repository
	guests       domainguest.Directory
	amenities    domainamenity.Catalog
	promotions   domainpromotion.Catalog
}

func (u *Unit) Rooms() domainroom.Catalog {
	return u.rooms
}

func (u *Unit) Reservations() domainreservation.Repository {
	return u.reservations
}

func (u *Unit) Guests() domainguest.Directory {
	return u.guests
}

func (u *Unit) Amenities() domainamenity.Catalog {
	return u.amenities
}

func (u *Unit) Promotions() domainpromotion.Catalog {
	return u.promotions
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.UoWFactory = Factory{}
