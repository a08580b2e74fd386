package uow

import (
	"context"

	domainamenity "hotelier/internal/domain/amenity"
	domainguest "hotelier/internal/domain/guest"
	domainpromotion "hotelier/internal/domain/promotion"
	domainreservation "hotelier/internal/domain/reservation"
	domainroom "hotelier/internal/domain/room"
)

// UnitOfWork coordinates repositories inside a transaction boundary. Commit
// applies the reservation and room writes of a lifecycle command together;
// Rollback discards them, so callers never observe a reserved room without a
// matching blocking reservation or vice versa.
type UnitOfWork interface {
	Rooms() domainroom.Catalog
	Reservations() domainreservation.Repository
	Guests() domainguest.Directory
	Amenities() domainamenity.Catalog
	Promotions() domainpromotion.Catalog

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
