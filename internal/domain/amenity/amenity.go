package amenity

import (
	"context"
	"errors"

	"hotelier/internal/domain/shared/money"
)

var ErrNotFound = errors.New("amenity: not found")

type AmenityID string

// Amenity is a catalog entry carrying the current price. Reservations
// snapshot the price at attach time, so later catalog edits never move
// past invoices.
type Amenity struct {
	ID    AmenityID
	Name  string
	Price money.Money
}

type Catalog interface {
	ByID(ctx context.Context, id AmenityID) (*Amenity, error)
}
