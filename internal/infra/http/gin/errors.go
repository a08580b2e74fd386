package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	reservationapp "hotelier/internal/app/handlers/reservation"
	"hotelier/internal/app/middleware"
	"hotelier/internal/domain/amenity"
	"hotelier/internal/domain/guest"
	"hotelier/internal/domain/invoice"
	"hotelier/internal/domain/pricing"
	"hotelier/internal/domain/reservation"
	"hotelier/internal/domain/room"
	"hotelier/internal/domain/shared/daterange"
	mongostore "hotelier/internal/infra/db/mongo"
)

// statusFor maps domain errors onto HTTP statuses: unknown entities are 404,
// malformed input is 422, state and availability conflicts are 409, and
// ownership violations are 403.
func statusFor(err error) int {
	switch {
	case errors.Is(err, reservation.ErrNotFound),
		errors.Is(err, room.ErrNotFound),
		errors.Is(err, guest.ErrNotFound),
		errors.Is(err, amenity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, reservation.ErrInvalidGuests),
		errors.Is(err, room.ErrCapacityExceeded),
		errors.Is(err, reservation.ErrCurrencyMismatch),
		errors.Is(err, pricing.ErrNoNights),
		errors.Is(err, invoice.ErrNotBillable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, reservationapp.ErrRoomUnavailable),
		errors.Is(err, reservation.ErrInvalidState),
		errors.Is(err, reservation.ErrNotArrivalDay),
		errors.Is(err, reservation.ErrCancellationTooLate),
		errors.Is(err, reservation.ErrCheckedInFrozen),
		errors.Is(err, reservation.ErrAmenityNotAttached),
		errors.Is(err, room.ErrUnderMaintenance),
		errors.Is(err, middleware.ErrRoomResolutionUnstable),
		errors.Is(err, mongostore.ErrConcurrentUpdate):
		return http.StatusConflict
	case errors.Is(err, reservation.ErrNotOwner):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
