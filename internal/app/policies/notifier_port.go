package policies

import (
	"context"
	"time"
)

// CancellationNotice carries what the guest needs to see in the email.
type CancellationNotice struct {
	ReservationID string
	GuestName     string
	RoomNumber    string
	CheckIn       time.Time
	CheckOut      time.Time
	CancelledAt   time.Time
}

// Notifier delivers best-effort messages. A failure here must never roll
// back the committed transition it follows; callers downgrade it to a
// warning on the result.
type Notifier interface {
	SendCancellation(ctx context.Context, email string, notice CancellationNotice) error
}
