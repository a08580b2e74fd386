package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	reservationapp "hotelier/internal/app/handlers/reservation"
	"hotelier/internal/app/queries"
	"hotelier/internal/domain/invoice"
	domainreservation "hotelier/internal/domain/reservation"
)

type QueryHandler struct {
	Queries queries.Bus
}

type reservationView struct {
	ID         string            `json:"id"`
	GuestID    string            `json:"guest_id"`
	RoomID     string            `json:"room_id"`
	CheckIn    time.Time         `json:"check_in"`
	CheckOut   time.Time         `json:"check_out"`
	Guests     int               `json:"guests"`
	Status     string            `json:"status"`
	TotalCents int64             `json:"total_cents"`
	Currency   string            `json:"currency"`
	Amenities  []amenityLineView `json:"amenities,omitempty"`
	Promotion  *promotionView    `json:"promotion,omitempty"`
}

type amenityLineView struct {
	AmenityID      string `json:"amenity_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
}

type promotionView struct {
	PromotionID     string `json:"promotion_id"`
	DiscountPercent int    `json:"discount_percent"`
}

func newReservationView(resv *domainreservation.Reservation) reservationView {
	view := reservationView{
		ID:         string(resv.ID),
		GuestID:    string(resv.GuestID),
		RoomID:     string(resv.RoomID),
		CheckIn:    resv.Range.CheckIn,
		CheckOut:   resv.Range.CheckOut,
		Guests:     resv.Guests,
		Status:     string(resv.Status),
		TotalCents: resv.Total.Cents,
		Currency:   resv.Total.Currency,
	}
	for _, line := range resv.Amenities {
		view.Amenities = append(view.Amenities, amenityLineView{
			AmenityID:      string(line.AmenityID),
			Name:           line.Name,
			UnitPriceCents: line.UnitPrice.Cents,
			Quantity:       line.Quantity,
		})
	}
	if resv.Promo.Applied() {
		view.Promotion = &promotionView{
			PromotionID:     string(resv.Promo.PromotionID),
			DiscountPercent: resv.Promo.DiscountPercent,
		}
	}
	return view
}

func (h QueryHandler) GetReservation(c *gin.Context) {
	query := reservationapp.GetReservationQuery{ReservationID: c.Param("id")}
	resv, err := queries.Ask[reservationapp.GetReservationQuery, *domainreservation.Reservation](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReservationView(resv))
}

func (h QueryHandler) GuestReservations(c *gin.Context) {
	query := reservationapp.GuestReservationsQuery{GuestID: c.Param("id")}
	items, err := queries.Ask[reservationapp.GuestReservationsQuery, []*domainreservation.Reservation](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]reservationView, 0, len(items))
	for _, resv := range items {
		views = append(views, newReservationView(resv))
	}
	c.JSON(http.StatusOK, gin.H{"items": views, "total": len(views)})
}

func (h QueryHandler) RoomAvailability(c *gin.Context) {
	checkIn, err := time.Parse(time.RFC3339, c.Query("check_in"))
	if err != nil {
		checkIn, err = time.Parse("2006-01-02", c.Query("check_in"))
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_in"})
		return
	}
	checkOut, err := time.Parse(time.RFC3339, c.Query("check_out"))
	if err != nil {
		checkOut, err = time.Parse("2006-01-02", c.Query("check_out"))
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_out"})
		return
	}
	query := reservationapp.RoomAvailabilityQuery{
		RoomID:   c.Param("id"),
		CheckIn:  checkIn,
		CheckOut: checkOut,
	}
	result, err := queries.Ask[reservationapp.RoomAvailabilityQuery, *reservationapp.RoomAvailabilityResult](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type invoiceView struct {
	ReservationID string            `json:"reservation_id"`
	IssuedAt      time.Time         `json:"issued_at"`
	Lines         []invoiceLineView `json:"lines"`
	TotalCents    int64             `json:"total_cents"`
	Currency      string            `json:"currency"`
}

type invoiceLineView struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	AmountCents int64  `json:"amount_cents"`
}

func (h QueryHandler) Invoice(c *gin.Context) {
	query := reservationapp.InvoiceQuery{ReservationID: c.Param("id")}
	inv, err := queries.Ask[reservationapp.InvoiceQuery, *invoice.Invoice](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	view := invoiceView{
		ReservationID: string(inv.ReservationID),
		IssuedAt:      inv.IssuedAt,
		TotalCents:    inv.Total.Cents,
		Currency:      inv.Total.Currency,
	}
	for _, line := range inv.Lines {
		view.Lines = append(view.Lines, invoiceLineView{
			Kind:        string(line.Kind),
			Description: line.Description,
			Quantity:    line.Quantity,
			AmountCents: line.Amount.Cents,
		})
	}
	c.JSON(http.StatusOK, view)
}

var _ QueryHTTP = QueryHandler{}
