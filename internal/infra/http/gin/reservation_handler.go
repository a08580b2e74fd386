package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hotelier/internal/app/commands"
	reservationapp "hotelier/internal/app/handlers/reservation"
)

type ReservationHandler struct {
	Commands commands.Bus
}

type createReservationRequest struct {
	GuestID  string    `json:"guest_id"`
	RoomID   string    `json:"room_id"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
	Guests   int       `json:"guests"`
}

func (h ReservationHandler) Create(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := reservationapp.CreateCommand{
		CommandID:       generateCommandID(),
		GuestID:         req.GuestID,
		RoomID:          req.RoomID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[reservationapp.CreateCommand, *reservationapp.CreateResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type editReservationRequest struct {
	RoomID   *string    `json:"room_id"`
	CheckIn  *time.Time `json:"check_in"`
	CheckOut *time.Time `json:"check_out"`
	Guests   *int       `json:"guests"`
}

func (h ReservationHandler) Edit(c *gin.Context) {
	var req editReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := reservationapp.EditCommand{
		ReservationID:   c.Param("id"),
		NewRoomID:       req.RoomID,
		NewCheckIn:      req.CheckIn,
		NewCheckOut:     req.CheckOut,
		NewGuests:       req.Guests,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[reservationapp.EditCommand, *reservationapp.EditResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) CheckIn(c *gin.Context) {
	cmd := reservationapp.CheckInCommand{ReservationID: c.Param("id")}
	result, err := commands.Dispatch[reservationapp.CheckInCommand, *reservationapp.CheckInResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) CheckOut(c *gin.Context) {
	cmd := reservationapp.CheckOutCommand{ReservationID: c.Param("id")}
	result, err := commands.Dispatch[reservationapp.CheckOutCommand, *reservationapp.CheckOutResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type cancelReservationRequest struct {
	GuestID string `json:"guest_id"`
}

// Cancel routes to the guest command when the caller identifies as a guest,
// otherwise to the operator command. Operator cancellations trigger the
// notification email.
func (h ReservationHandler) Cancel(c *gin.Context) {
	var req cancelReservationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	var (
		result *reservationapp.CancelResult
		err    error
	)
	if req.GuestID != "" {
		cmd := reservationapp.CancelByGuestCommand{ReservationID: c.Param("id"), GuestID: req.GuestID}
		result, err = commands.Dispatch[reservationapp.CancelByGuestCommand, *reservationapp.CancelResult](c.Request.Context(), h.Commands, cmd)
	} else {
		cmd := reservationapp.CancelByOperatorCommand{ReservationID: c.Param("id")}
		result, err = commands.Dispatch[reservationapp.CancelByOperatorCommand, *reservationapp.CancelResult](c.Request.Context(), h.Commands, cmd)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) Reactivate(c *gin.Context) {
	cmd := reservationapp.ReactivateCommand{
		ReservationID:   c.Param("id"),
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[reservationapp.ReactivateCommand, *reservationapp.ReactivateResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type addAmenityRequest struct {
	AmenityID string `json:"amenity_id"`
	Quantity  int    `json:"quantity"`
}

func (h ReservationHandler) AddAmenity(c *gin.Context) {
	var req addAmenityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	cmd := reservationapp.AddAmenityCommand{
		ReservationID: c.Param("id"),
		AmenityID:     req.AmenityID,
		Quantity:      req.Quantity,
	}
	result, err := commands.Dispatch[reservationapp.AddAmenityCommand, *reservationapp.AmenityResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) RemoveAmenity(c *gin.Context) {
	cmd := reservationapp.RemoveAmenityCommand{
		ReservationID: c.Param("id"),
		AmenityID:     c.Param("amenityID"),
	}
	result, err := commands.Dispatch[reservationapp.RemoveAmenityCommand, *reservationapp.AmenityResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type sweepRequest struct {
	AsOf time.Time `json:"as_of"`
}

// SweepNoShows triggers the no-show sweep on demand; the scheduler runs the
// same command daily.
func (h ReservationHandler) SweepNoShows(c *gin.Context) {
	var req sweepRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.AsOf.IsZero() {
		req.AsOf = time.Now().UTC()
	}
	cmd := reservationapp.SweepNoShowsCommand{AsOf: req.AsOf}
	result, err := commands.Dispatch[reservationapp.SweepNoShowsCommand, *reservationapp.SweepNoShowsResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ ReservationHTTP = ReservationHandler{}
