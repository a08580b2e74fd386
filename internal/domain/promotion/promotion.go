package promotion

import (
	"context"
	"time"

	"hotelier/internal/domain/shared/daterange"
)

type PromotionID string

// Kind selects the applicability rule; each kind only reads the parameters
// it needs.
type Kind string

const (
	KindGeneral   Kind = "GENERAL"
	KindWeekend   Kind = "WEEKEND"
	KindWeekday   Kind = "WEEKDAY"
	KindLongStay  Kind = "LONG_STAY"
	KindEarlyBird Kind = "EARLY_BIRD"
)

const (
	defaultMinNights        = 1
	defaultMinDaysInAdvance = 30
)

// Promotion is read-only input to pricing; the engine never mutates it.
type Promotion struct {
	ID              PromotionID
	Kind            Kind
	DiscountPercent int
	ValidFrom       time.Time
	ValidTo         time.Time
	// LongStay only; zero means the default of 1 night.
	MinNights int
	// EarlyBird only; zero means the default of 30 days.
	MinDaysInAdvance int
}

// Catalog returns candidate promotions whose validity window covers the stay.
type Catalog interface {
	ApplicableForRange(ctx context.Context, stay daterange.DateRange) ([]*Promotion, error)
}

// AppliesTo evaluates the kind-specific predicate against the check-in date
// and stay length, with bookedAt as "today" for advance-purchase rules.
func (p *Promotion) AppliesTo(stay daterange.DateRange, bookedAt time.Time) bool {
	switch p.Kind {
	case KindGeneral:
		return true
	case KindWeekend:
		wd := stay.CheckIn.Weekday()
		return wd == time.Friday || wd == time.Saturday
	case KindWeekday:
		wd := stay.CheckIn.Weekday()
		return wd >= time.Monday && wd <= time.Thursday
	case KindLongStay:
		min := p.MinNights
		if min <= 0 {
			min = defaultMinNights
		}
		return stay.Nights() >= min
	case KindEarlyBird:
		min := p.MinDaysInAdvance
		if min <= 0 {
			min = defaultMinDaysInAdvance
		}
		lead := int(stay.CheckIn.Sub(daterange.Day(bookedAt)).Hours() / 24)
		return lead >= min
	default:
		return false
	}
}

// InWindow reports whether the promotion record itself is live for the given
// check-in date.
func (p *Promotion) InWindow(checkIn time.Time) bool {
	day := daterange.Day(checkIn)
	if !p.ValidFrom.IsZero() && day.Before(daterange.Day(p.ValidFrom)) {
		return false
	}
	if !p.ValidTo.IsZero() && day.After(daterange.Day(p.ValidTo)) {
		return false
	}
	return true
}

// Best returns the applicable promotion with the highest discount, or nil.
// Ranking lives here rather than in pricing: the engine only ever evaluates
// one promotion at a time.
func Best(candidates []*Promotion, stay daterange.DateRange, bookedAt time.Time) *Promotion {
	var best *Promotion
	for _, p := range candidates {
		if p == nil || p.DiscountPercent <= 0 {
			continue
		}
		if !p.InWindow(stay.CheckIn) || !p.AppliesTo(stay, bookedAt) {
			continue
		}
		if best == nil || p.DiscountPercent > best.DiscountPercent {
			best = p
		}
	}
	return best
}
