package pricing

import (
	"errors"
	"time"

	"hotelier/internal/domain/promotion"
	"hotelier/internal/domain/shared/daterange"
	"hotelier/internal/domain/shared/money"
)

var (
	ErrNoNights      = errors.New("pricing: stay must cover at least one night")
	ErrCurrencyUnset = errors.New("pricing: nightly rate currency must be defined")
)

// StayQuote is the deterministic price of a stay before amenity line items:
// nights × nightly rate, with at most one promotion discount applied.
// Original and DiscountPercent are snapshotted onto the reservation so the
// discount never silently drifts after catalog changes.
type StayQuote struct {
	Nights          int
	Nightly         money.Money
	Original        money.Money
	DiscountPercent int
	PromotionID     promotion.PromotionID
	Stay            money.Money
}

// Quote prices a stay. promo may be nil; callers pre-select the winning
// promotion (see promotion.Best); the engine evaluates exactly one.
func Quote(stay daterange.DateRange, nightly money.Money, promo *promotion.Promotion, bookedAt time.Time) (StayQuote, error) {
	if nightly.Currency == "" {
		return StayQuote{}, ErrCurrencyUnset
	}
	nights := stay.Nights()
	if nights <= 0 {
		return StayQuote{}, ErrNoNights
	}
	base := nightly.Multiply(int64(nights))
	q := StayQuote{
		Nights:   nights,
		Nightly:  nightly,
		Original: base,
		Stay:     base,
	}
	if promo == nil {
		return q, nil
	}
	if !promo.InWindow(stay.CheckIn) || !promo.AppliesTo(stay, bookedAt) {
		return q, nil
	}
	discounted, err := base.Sub(base.Percent(promo.DiscountPercent))
	if err != nil {
		return StayQuote{}, err
	}
	q.DiscountPercent = promo.DiscountPercent
	q.PromotionID = promo.ID
	q.Stay = discounted
	return q, nil
}
