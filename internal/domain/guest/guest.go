package guest

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("guest: not found")

type GuestID string

// Guest is an external identity record; the engine only needs a stable id
// for ownership checks and an email address for notifications.
type Guest struct {
	ID    GuestID
	Name  string
	Email string
}

type Directory interface {
	ByID(ctx context.Context, id GuestID) (*Guest, error)
}
