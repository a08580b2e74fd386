package policies

import (
	"context"

	"hotelier/internal/domain/invoice"
)

// InvoiceArchiver persists a rendered invoice outside the reservation store,
// best-effort and post-commit, so a storage hiccup cannot undo a checkout.
type InvoiceArchiver interface {
	Archive(ctx context.Context, inv invoice.Invoice) (location string, err error)
}
