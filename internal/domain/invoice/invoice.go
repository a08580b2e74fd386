package invoice

import (
	"errors"
	"fmt"
	"time"

	"hotelier/internal/domain/reservation"
	"hotelier/internal/domain/shared/money"
)

var ErrNotBillable = errors.New("invoice: reservation has no billable stay")

type LineKind string

const (
	LineStay     LineKind = "STAY"
	LineDiscount LineKind = "DISCOUNT"
	LineAmenity  LineKind = "AMENITY"
)

type Line struct {
	Kind        LineKind
	Description string
	Quantity    int
	Amount      money.Money
}

// Invoice is a display snapshot of a reservation's stored totals. Total is
// lifted verbatim from the reservation; assembling performs no arithmetic
// that could drift from the booked figure.
type Invoice struct {
	ReservationID reservation.ReservationID
	IssuedAt      time.Time
	Lines         []Line
	Total         money.Money
}

// Assemble builds the line-item breakdown: the stay (pre-discount when a
// promotion applied), the discount as a negative line, then one line per
// amenity at its snapshotted price.
func Assemble(r *reservation.Reservation, issuedAt time.Time) (Invoice, error) {
	if r == nil || r.Range.Nights() <= 0 {
		return Invoice{}, ErrNotBillable
	}
	inv := Invoice{
		ReservationID: r.ID,
		IssuedAt:      issuedAt.UTC(),
		Total:         r.Total,
	}

	nights := r.Range.Nights()
	if r.Promo.Applied() {
		inv.Lines = append(inv.Lines, Line{
			Kind:        LineStay,
			Description: fmt.Sprintf("%d night stay", nights),
			Quantity:    nights,
			Amount:      r.Promo.OriginalStay,
		})
		discount, err := r.StayTotal.Sub(r.Promo.OriginalStay)
		if err != nil {
			return Invoice{}, err
		}
		inv.Lines = append(inv.Lines, Line{
			Kind:        LineDiscount,
			Description: fmt.Sprintf("promotion %s (-%d%%)", r.Promo.PromotionID, r.Promo.DiscountPercent),
			Quantity:    1,
			Amount:      discount,
		})
	} else {
		inv.Lines = append(inv.Lines, Line{
			Kind:        LineStay,
			Description: fmt.Sprintf("%d night stay", nights),
			Quantity:    nights,
			Amount:      r.StayTotal,
		})
	}

	for _, item := range r.Amenities {
		inv.Lines = append(inv.Lines, Line{
			Kind:        LineAmenity,
			Description: item.Name,
			Quantity:    item.Quantity,
			Amount:      item.Subtotal(),
		})
	}
	return inv, nil
}
