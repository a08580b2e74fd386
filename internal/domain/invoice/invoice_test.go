package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelier/internal/domain/reservation"
	"hotelier/internal/domain/shared/daterange"
	"hotelier/internal/domain/shared/money"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func discountedStay(t *testing.T) *reservation.Reservation {
	t.Helper()
	dr, err := daterange.New(date(2026, time.September, 4), date(2026, time.September, 6))
	require.NoError(t, err)
	return &reservation.Reservation{
		ID:        "res-1",
		GuestID:   "guest-ada",
		RoomID:    "room-101",
		Range:     dr,
		Guests:    2,
		Status:    reservation.StatusCheckedOut,
		StayTotal: money.EUR(17000),
		Total:     money.EUR(20500),
		Promo: reservation.PromoSnapshot{
			PromotionID:     "weekend",
			DiscountPercent: 15,
			OriginalStay:    money.EUR(20000),
		},
		Amenities: []reservation.AmenityLine{
			{AmenityID: "amen-breakfast", Name: "Breakfast", UnitPrice: money.EUR(1500), Quantity: 1},
			{AmenityID: "amen-parking", Name: "Parking", UnitPrice: money.EUR(2000), Quantity: 1},
		},
	}
}

func TestAssembleBreaksDownDiscountedStay(t *testing.T) {
	r := discountedStay(t)
	issued := date(2026, time.September, 6).Add(10 * time.Hour)

	inv, err := Assemble(r, issued)
	require.NoError(t, err)

	assert.Equal(t, r.ID, inv.ReservationID)
	assert.Equal(t, issued, inv.IssuedAt)
	require.Len(t, inv.Lines, 4)

	assert.Equal(t, LineStay, inv.Lines[0].Kind)
	assert.Equal(t, "2 night stay", inv.Lines[0].Description)
	assert.Equal(t, int64(20000), inv.Lines[0].Amount.Cents, "stay line shows the pre-discount price")

	assert.Equal(t, LineDiscount, inv.Lines[1].Kind)
	assert.Equal(t, int64(-3000), inv.Lines[1].Amount.Cents)
	assert.Contains(t, inv.Lines[1].Description, "weekend")
	assert.Contains(t, inv.Lines[1].Description, "-15%")

	assert.Equal(t, LineAmenity, inv.Lines[2].Kind)
	assert.Equal(t, "Breakfast", inv.Lines[2].Description)
	assert.Equal(t, int64(1500), inv.Lines[2].Amount.Cents)
	assert.Equal(t, LineAmenity, inv.Lines[3].Kind)
	assert.Equal(t, int64(2000), inv.Lines[3].Amount.Cents)
}

func TestAssembleLiftsStoredTotalVerbatim(t *testing.T) {
	r := discountedStay(t)
	// Even if the stored figures disagree with the line items, Total wins.
	r.Total = money.EUR(99999)

	inv, err := Assemble(r, date(2026, time.September, 6))
	require.NoError(t, err)
	assert.Equal(t, int64(99999), inv.Total.Cents)
}

func TestAssembleWithoutPromotion(t *testing.T) {
	r := discountedStay(t)
	r.Promo = reservation.PromoSnapshot{}
	r.StayTotal = money.EUR(20000)
	r.Total = money.EUR(23500)
	r.Amenities = r.Amenities[:1]

	inv, err := Assemble(r, date(2026, time.September, 6))
	require.NoError(t, err)

	require.Len(t, inv.Lines, 2)
	assert.Equal(t, LineStay, inv.Lines[0].Kind)
	assert.Equal(t, int64(20000), inv.Lines[0].Amount.Cents)
	assert.Equal(t, LineAmenity, inv.Lines[1].Kind)
}

func TestAssembleRejectsNonBillableInput(t *testing.T) {
	_, err := Assemble(nil, date(2026, time.September, 6))
	assert.ErrorIs(t, err, ErrNotBillable)

	day := date(2026, time.September, 4)
	_, err = Assemble(&reservation.Reservation{
		ID:    "res-zero",
		Range: daterange.DateRange{CheckIn: day, CheckOut: day},
	}, date(2026, time.September, 6))
	assert.ErrorIs(t, err, ErrNotBillable)
}
