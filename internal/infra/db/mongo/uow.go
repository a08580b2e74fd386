package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotelier/internal/app/uow"
	domainamenity "hotelier/internal/domain/amenity"
	domainguest "hotelier/internal/domain/guest"
	domainpromotion "hotelier/internal/domain/promotion"
	domainreservation "hotelier/internal/domain/reservation"
	domainroom "hotelier/internal/domain/room"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	RoomsRepo        domainroom.Catalog
	ReservationsRepo domainreservation.Repository
	GuestsRepo       domainguest.Directory
	AmenitiesRepo    domainamenity.Catalog
	PromotionsRepo   domainpromotion.Catalog
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:           f.DB,
		session:      session,
		rooms:        f.RoomsRepo,
		reservations: f.ReservationsRepo,
		guests:       f.GuestsRepo,
		amenities:    f.AmenitiesRepo,
		promotions:   f.PromotionsRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

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
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext makes the Mongo session available to downstream repositories.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.UoWFactory = Factory{}
