package reservation

import (
	"context"
	"errors"
	"time"

	"hotelier/internal/domain/amenity"
	"hotelier/internal/domain/guest"
	"hotelier/internal/domain/pricing"
	"hotelier/internal/domain/promotion"
	"hotelier/internal/domain/room"
	"hotelier/internal/domain/shared/daterange"
	"hotelier/internal/domain/shared/events"
	"hotelier/internal/domain/shared/money"
)

var (
	ErrNotFound            = errors.New("reservation: not found")
	ErrInvalidState        = errors.New("reservation: invalid state transition")
	ErrInvalidGuests       = errors.New("reservation: guests count must be positive")
	ErrNotArrivalDay       = errors.New("reservation: check-in is only allowed on the scheduled arrival date")
	ErrCancellationTooLate = errors.New("reservation: cancellation must happen strictly before the arrival date")
	ErrCheckedInFrozen     = errors.New("reservation: room and arrival date are frozen after check-in")
	ErrNotOwner            = errors.New("reservation: guest does not own this reservation")
	ErrAmenityNotAttached  = errors.New("reservation: amenity not attached")
	ErrCurrencyMismatch    = errors.New("reservation: amenity currency differs from the stay currency")
)

type ReservationID string

// Status is the single canonical lifecycle enum; the transition methods below
// are the only mutation path.
type Status string

const (
	StatusConfirmed  Status = "CONFIRMED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusCheckedOut Status = "CHECKED_OUT"
	StatusCancelled  Status = "CANCELLED"
	StatusNoShow     Status = "NO_SHOW"
)

// Blocks reports whether a reservation in this status counts toward room
// availability. Only Confirmed and CheckedIn hold the room.
func (s Status) Blocks() bool {
	return s == StatusConfirmed || s == StatusCheckedIn
}

// PromoSnapshot freezes the discount terms at booking time. OriginalStay is
// the pre-discount stay price; a zero snapshot means no promotion applied.
type PromoSnapshot struct {
	PromotionID     promotion.PromotionID
	DiscountPercent int
	OriginalStay    money.Money
}

func (p PromoSnapshot) Applied() bool { return p.DiscountPercent > 0 }

// AmenityLine is a price-snapshotted add-on owned by the reservation.
type AmenityLine struct {
	AmenityID amenity.AmenityID
	Name      string
	UnitPrice money.Money
	Quantity  int
}

func (l AmenityLine) Subtotal() money.Money {
	return l.UnitPrice.Multiply(int64(l.Quantity))
}

type Reservation struct {
	ID        ReservationID
	GuestID   guest.GuestID
	RoomID    room.RoomID
	Range     daterange.DateRange
	Guests    int
	Status    Status
	StayTotal money.Money
	Total     money.Money
	Promo     PromoSnapshot
	Amenities []AmenityLine
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

// Repository is the durable reservation store. OverlappingForRoom must apply
// the half-open interval predicate: existing.CheckIn < checkOut AND
// checkIn < existing.CheckOut.
type Repository interface {
	ByID(ctx context.Context, id ReservationID) (*Reservation, error)
	Save(ctx context.Context, r *Reservation) error
	ListByGuest(ctx context.Context, guestID guest.GuestID) ([]*Reservation, error)
	OverlappingForRoom(ctx context.Context, roomID room.RoomID, stay daterange.DateRange) ([]*Reservation, error)
	ActiveForRoom(ctx context.Context, roomID room.RoomID) ([]*Reservation, error)
	ConfirmedArrivingBefore(ctx context.Context, day time.Time) ([]*Reservation, error)
}

type CreateParams struct {
	ID        ReservationID
	GuestID   guest.GuestID
	RoomID    room.RoomID
	Range     daterange.DateRange
	Guests    int
	Quote     pricing.StayQuote
	CreatedAt time.Time
}

// New builds a Confirmed reservation with its price already computed.
func New(params CreateParams) (*Reservation, error) {
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if params.GuestID == "" {
		return nil, errors.New("reservation: guest id required")
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	r := &Reservation{
		ID:        params.ID,
		GuestID:   params.GuestID,
		RoomID:    params.RoomID,
		Range:     params.Range,
		Guests:    params.Guests,
		Status:    StatusConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.applyQuote(params.Quote)
	r.Record(Created{ReservationID: r.ID, RoomID: r.RoomID, GuestID: r.GuestID, Range: r.Range, GuestsCount: r.Guests, Total: r.Total, At: now})
	return r, nil
}

// applyQuote snapshots a stay quote and refolds the total.
func (r *Reservation) applyQuote(q pricing.StayQuote) {
	r.StayTotal = q.Stay
	r.Promo = PromoSnapshot{}
	if q.DiscountPercent > 0 {
		r.Promo = PromoSnapshot{
			PromotionID:     q.PromotionID,
			DiscountPercent: q.DiscountPercent,
			OriginalStay:    q.Original,
		}
	}
	r.recomputeTotal()
}

// recomputeTotal derives Total from the stay portion plus amenity lines.
// It is the only writer of Total. Every line shares the stay currency;
// AddAmenity and the reprice paths enforce that, so the sum cannot fail.
func (r *Reservation) recomputeTotal() {
	total := r.StayTotal
	for _, line := range r.Amenities {
		total.Cents += line.Subtotal().Cents
	}
	r.Total = total
}

// AmenitiesTotal sums the attached line items.
func (r *Reservation) AmenitiesTotal() money.Money {
	total := money.Money{Cents: 0, Currency: r.StayTotal.Currency}
	for _, line := range r.Amenities {
		total.Cents += line.Subtotal().Cents
	}
	return total
}

// Reschedule moves the stay to a new range and reprices it. After check-in
// the arrival date is frozen; only the checkout date may move.
func (r *Reservation) Reschedule(newRange daterange.DateRange, q pricing.StayQuote, now time.Time) error {
	switch r.Status {
	case StatusConfirmed:
	case StatusCheckedIn:
		if !newRange.CheckIn.Equal(r.Range.CheckIn) {
			return ErrCheckedInFrozen
		}
	default:
		return ErrInvalidState
	}
	if err := newRange.Validate(); err != nil {
		return err
	}
	if len(r.Amenities) > 0 && q.Stay.Currency != r.StayTotal.Currency {
		return ErrCurrencyMismatch
	}
	r.Range = newRange
	r.applyQuote(q)
	r.touch(now)
	r.Record(Edited{ReservationID: r.ID, RoomID: r.RoomID, Range: r.Range, Total: r.Total, At: r.UpdatedAt})
	return nil
}

// MoveRoom reassigns the reservation to another room. Forbidden after
// check-in.
func (r *Reservation) MoveRoom(newRoom room.RoomID, q pricing.StayQuote, now time.Time) error {
	if r.Status == StatusCheckedIn {
		return ErrCheckedInFrozen
	}
	if r.Status != StatusConfirmed {
		return ErrInvalidState
	}
	if len(r.Amenities) > 0 && q.Stay.Currency != r.StayTotal.Currency {
		return ErrCurrencyMismatch
	}
	r.RoomID = newRoom
	r.applyQuote(q)
	r.touch(now)
	return nil
}

// SetGuests changes the headcount; capacity is validated by the caller
// against the room.
func (r *Reservation) SetGuests(count int, now time.Time) error {
	if !r.Status.Blocks() {
		return ErrInvalidState
	}
	if count <= 0 {
		return ErrInvalidGuests
	}
	r.Guests = count
	r.touch(now)
	return nil
}

// AddAmenity attaches a line item at the catalog's current price. Attaching
// an already-present amenity bumps the quantity and keeps the original
// snapshot price.
func (r *Reservation) AddAmenity(a *amenity.Amenity, quantity int, now time.Time) error {
	if !r.Status.Blocks() {
		return ErrInvalidState
	}
	if quantity <= 0 {
		return errors.New("reservation: amenity quantity must be positive")
	}
	if a.Price.Currency != r.StayTotal.Currency {
		return ErrCurrencyMismatch
	}
	found := false
	for i := range r.Amenities {
		if r.Amenities[i].AmenityID == a.ID {
			r.Amenities[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		r.Amenities = append(r.Amenities, AmenityLine{
			AmenityID: a.ID,
			Name:      a.Name,
			UnitPrice: a.Price,
			Quantity:  quantity,
		})
	}
	r.recomputeTotal()
	r.touch(now)
	r.Record(AmenityAdded{ReservationID: r.ID, AmenityID: a.ID, Quantity: quantity, Total: r.Total, At: r.UpdatedAt})
	return nil
}

// RemoveAmenity detaches a line item and refolds the total.
func (r *Reservation) RemoveAmenity(id amenity.AmenityID, now time.Time) error {
	if !r.Status.Blocks() {
		return ErrInvalidState
	}
	idx := -1
	for i := range r.Amenities {
		if r.Amenities[i].AmenityID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrAmenityNotAttached
	}
	r.Amenities = append(r.Amenities[:idx], r.Amenities[idx+1:]...)
	r.recomputeTotal()
	r.touch(now)
	r.Record(AmenityRemoved{ReservationID: r.ID, AmenityID: id, Total: r.Total, At: r.UpdatedAt})
	return nil
}

// CheckIn admits the guest. Allowed only from Confirmed and only on the
// scheduled arrival date. No early or late check-in through this command.
func (r *Reservation) CheckIn(now time.Time) error {
	if r.Status != StatusConfirmed {
		return ErrInvalidState
	}
	if !daterange.Day(now).Equal(r.Range.CheckIn) {
		return ErrNotArrivalDay
	}
	r.Status = StatusCheckedIn
	r.touch(now)
	r.Record(CheckedIn{ReservationID: r.ID, RoomID: r.RoomID, At: r.UpdatedAt})
	return nil
}

// CheckOut completes the stay.
func (r *Reservation) CheckOut(now time.Time) error {
	if r.Status != StatusCheckedIn {
		return ErrInvalidState
	}
	r.Status = StatusCheckedOut
	r.touch(now)
	r.Record(CheckedOut{ReservationID: r.ID, RoomID: r.RoomID, Total: r.Total, At: r.UpdatedAt})
	return nil
}

// CancelBy cancels on behalf of the owning guest; ownership is part of the
// guard.
func (r *Reservation) CancelBy(g guest.GuestID, now time.Time) error {
	if r.GuestID != g {
		return ErrNotOwner
	}
	return r.Cancel(now)
}

// Cancel releases a Confirmed reservation strictly before the arrival date.
func (r *Reservation) Cancel(now time.Time) error {
	if r.Status != StatusConfirmed {
		return ErrInvalidState
	}
	if !daterange.Day(now).Before(r.Range.CheckIn) {
		return ErrCancellationTooLate
	}
	r.Status = StatusCancelled
	r.touch(now)
	r.Record(Cancelled{ReservationID: r.ID, RoomID: r.RoomID, At: r.UpdatedAt})
	return nil
}

// Reactivate is the one path back out of Cancelled; callers must have
// re-checked availability, another booking may have taken the slot meanwhile.
func (r *Reservation) Reactivate(now time.Time) error {
	if r.Status != StatusCancelled {
		return ErrInvalidState
	}
	r.Status = StatusConfirmed
	r.touch(now)
	r.Record(Reactivated{ReservationID: r.ID, RoomID: r.RoomID, Range: r.Range, At: r.UpdatedAt})
	return nil
}

// MarkNoShow retires a Confirmed reservation whose arrival date has passed.
func (r *Reservation) MarkNoShow(now time.Time) error {
	if r.Status != StatusConfirmed {
		return ErrInvalidState
	}
	r.Status = StatusNoShow
	r.touch(now)
	r.Record(NoShowRecorded{ReservationID: r.ID, RoomID: r.RoomID, At: r.UpdatedAt})
	return nil
}

func (r *Reservation) touch(now time.Time) {
	r.UpdatedAt = now.UTC()
}
