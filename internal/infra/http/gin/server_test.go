package ginserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelier/internal/app/commands"
	apprsv "hotelier/internal/app/handlers/reservation"
	"hotelier/internal/app/locks"
	"hotelier/internal/app/middleware"
	"hotelier/internal/app/queries"
	domainamenity "hotelier/internal/domain/amenity"
	domainguest "hotelier/internal/domain/guest"
	domaininvoice "hotelier/internal/domain/invoice"
	domainpromotion "hotelier/internal/domain/promotion"
	domainreservation "hotelier/internal/domain/reservation"
	domainroom "hotelier/internal/domain/room"
	domainrange "hotelier/internal/domain/shared/daterange"
	"hotelier/internal/domain/shared/money"
	"hotelier/internal/infra/config"
	ginserver "hotelier/internal/infra/http/gin"
	"hotelier/internal/infra/obs"
	"hotelier/internal/infra/storage/memory"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()

	rooms := memory.NewRoomCatalog()
	reservations := memory.NewReservationRepository()
	guests := memory.NewGuestDirectory()
	amenities := memory.NewAmenityCatalog()
	promotions := memory.NewPromotionCatalog()
	box := memory.NewOutbox()

	factory := memory.Factory{
		RoomsRepo:        rooms,
		ReservationsRepo: reservations,
		GuestsRepo:       guests,
		AmenitiesRepo:    amenities,
		PromotionsRepo:   promotions,
	}

	require.NoError(t, rooms.Save(ctx, &domainroom.Room{ID: "room-101", Number: "101", Capacity: 2, NightlyRate: money.EUR(10000), Status: domainroom.StatusAvailable}))
	require.NoError(t, rooms.Save(ctx, &domainroom.Room{ID: "room-102", Number: "102", Capacity: 4, NightlyRate: money.EUR(11000), Status: domainroom.StatusAvailable}))
	require.NoError(t, guests.Save(ctx, &domainguest.Guest{ID: "guest-ada", Name: "Ada", Email: "ada@example.com"}))
	require.NoError(t, amenities.Save(ctx, &domainamenity.Amenity{ID: "amen-breakfast", Name: "Breakfast", Price: money.EUR(1500)}))
	require.NoError(t, promotions.Save(ctx, &domainpromotion.Promotion{ID: "promo-basic", Kind: domainpromotion.KindGeneral, DiscountPercent: 5}))

	logger := slog.New(slog.DiscardHandler)
	lockRegistry := locks.NewRoomLocks()

	base := commands.NewInMemoryBus()
	commands.RegisterHandler[apprsv.CreateCommand, *apprsv.CreateResult](base, apprsv.CreateCommand{}.Key(),
		&apprsv.CreateHandler{UoWFactory: factory, Outbox: box})
	commands.RegisterHandler[apprsv.EditCommand, *apprsv.EditResult](base, apprsv.EditCommand{}.Key(),
		&apprsv.EditHandler{UoWFactory: factory, Outbox: box})
	commands.RegisterHandler[apprsv.CheckInCommand, *apprsv.CheckInResult](base, apprsv.CheckInCommand{}.Key(),
		&apprsv.CheckInHandler{UoWFactory: factory, Outbox: box})
	commands.RegisterHandler[apprsv.CheckOutCommand, *apprsv.CheckOutResult](base, apprsv.CheckOutCommand{}.Key(),
		&apprsv.CheckOutHandler{UoWFactory: factory, Outbox: box, Logger: logger})
	commands.RegisterHandler[apprsv.CancelByGuestCommand, *apprsv.CancelResult](base, apprsv.CancelByGuestCommand{}.Key(),
		&apprsv.CancelByGuestHandler{UoWFactory: factory, Outbox: box})
	commands.RegisterHandler[apprsv.CancelByOperatorCommand, *apprsv.CancelResult](base, apprsv.CancelByOperatorCommand{}.Key(),
		&apprsv.CancelByOperatorHandler{UoWFactory: factory, Outbox: box, Logger: logger})
	commands.RegisterHandler[apprsv.ReactivateCommand, *apprsv.ReactivateResult](base, apprsv.ReactivateCommand{}.Key(),
		&apprsv.ReactivateHandler{UoWFactory: factory, Outbox: box})
	commands.RegisterHandler[apprsv.AddAmenityCommand, *apprsv.AmenityResult](base, apprsv.AddAmenityCommand{}.Key(),
		&apprsv.AddAmenityHandler{UoWFactory: factory, Outbox: box})
	commands.RegisterHandler[apprsv.RemoveAmenityCommand, *apprsv.AmenityResult](base, apprsv.RemoveAmenityCommand{}.Key(),
		&apprsv.RemoveAmenityHandler{UoWFactory: factory, Outbox: box})
	commands.RegisterHandler[apprsv.SweepNoShowsCommand, *apprsv.SweepNoShowsResult](base, apprsv.SweepNoShowsCommand{}.Key(),
		&apprsv.SweepNoShowsHandler{UoWFactory: factory, Locks: lockRegistry, Outbox: box, Logger: logger})

	bus := middleware.ChainCommands(base,
		middleware.Idempotency(memory.NewIdempotencyStore(0), nil),
		middleware.SerializeRooms(lockRegistry, factory),
		middleware.Transaction(factory, nil),
		middleware.OutboxFlush(box),
	)

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler[apprsv.GetReservationQuery, *domainreservation.Reservation](queryBus, apprsv.GetReservationQuery{}.Key(), &apprsv.GetReservationHandler{UoWFactory: factory})
	queries.RegisterHandler[apprsv.GuestReservationsQuery, []*domainreservation.Reservation](queryBus, apprsv.GuestReservationsQuery{}.Key(), &apprsv.GuestReservationsHandler{UoWFactory: factory})
	queries.RegisterHandler[apprsv.RoomAvailabilityQuery, *apprsv.RoomAvailabilityResult](queryBus, apprsv.RoomAvailabilityQuery{}.Key(), &apprsv.RoomAvailabilityHandler{UoWFactory: factory})
	queries.RegisterHandler[apprsv.InvoiceQuery, *domaininvoice.Invoice](queryBus, apprsv.InvoiceQuery{}.Key(), &apprsv.InvoiceHandler{UoWFactory: factory})

	srv := ginserver.NewServer(
		config.Config{Env: "test", HTTPAddr: ":0"},
		obs.Middleware{Logger: logger},
		obs.HealthHandlers{Ready: func() error { return nil }},
		ginserver.Handlers{
			Reservation: ginserver.ReservationHandler{Commands: bus},
			Query:       ginserver.QueryHandler{Queries: queryBus},
		},
	)
	return srv.Handler
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func bookingBody(in, out time.Time) map[string]any {
	return map[string]any{
		"guest_id":  "guest-ada",
		"room_id":   "room-101",
		"check_in":  in.Format(time.RFC3339),
		"check_out": out.Format(time.RFC3339),
		"guests":    2,
	}
}

func day(n int) time.Time {
	return domainrange.Day(time.Now().UTC()).AddDate(0, 0, n)
}

func TestCreateReservationEndpoint(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", bookingBody(day(2), day(4)), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.NotEmpty(t, body["reservation_id"])
	assert.Equal(t, float64(19000), body["total_cents"], "2 nights at 100 EUR with the 5% rate")
	assert.Equal(t, "EUR", body["currency"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCreateReservationStatusMapping(t *testing.T) {
	h := newTestServer(t)

	// Occupy the slot first.
	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", bookingBody(day(2), day(4)), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/reservations", bookingBody(day(3), day(5)), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	unknownRoom := bookingBody(day(2), day(4))
	unknownRoom["room_id"] = "room-999"
	rec = doJSON(t, h, http.MethodPost, "/api/v1/reservations", unknownRoom, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	tooMany := bookingBody(day(6), day(8))
	tooMany["guests"] = 3
	rec = doJSON(t, h, http.MethodPost, "/api/v1/reservations", tooMany, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	inverted := bookingBody(day(8), day(6))
	rec = doJSON(t, h, http.MethodPost, "/api/v1/reservations", inverted, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	bad := httptest.NewRecorder()
	h.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestIdempotencyKeyHeaderReplays(t *testing.T) {
	h := newTestServer(t)
	headers := map[string]string{"Idempotency-Key": "key-123"}

	first := doJSON(t, h, http.MethodPost, "/api/v1/reservations", bookingBody(day(2), day(4)), headers)
	require.Equal(t, http.StatusCreated, first.Code)
	second := doJSON(t, h, http.MethodPost, "/api/v1/reservations", bookingBody(day(2), day(4)), headers)
	require.Equal(t, http.StatusCreated, second.Code)

	assert.Equal(t, decode(t, first)["reservation_id"], decode(t, second)["reservation_id"])
}

func TestGetReservationAndGuestListing(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", bookingBody(day(2), day(4)), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode(t, rec)["reservation_id"].(string)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/reservations/"+id, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode(t, rec)
	assert.Equal(t, id, view["id"])
	assert.Equal(t, "CONFIRMED", view["status"])
	require.NotNil(t, view["promotion"])

	rec = doJSON(t, h, http.MethodGet, "/api/v1/reservations/res-missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/guests/guest-ada/reservations", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decode(t, rec)
	assert.Equal(t, float64(1), listing["total"])

	rec = doJSON(t, h, http.MethodGet, "/api/v1/guests/guest-unknown/reservations", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoomAvailabilityEndpoint(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", bookingBody(day(2), day(4)), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	path := fmt.Sprintf("/api/v1/rooms/room-101/availability?check_in=%s&check_out=%s",
		day(2).Format("2006-01-02"), day(4).Format("2006-01-02"))
	rec = doJSON(t, h, http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["available"])

	path = fmt.Sprintf("/api/v1/rooms/room-101/availability?check_in=%s&check_out=%s",
		day(4).Format("2006-01-02"), day(6).Format("2006-01-02"))
	rec = doJSON(t, h, http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["available"], "back-to-back stay is free")

	rec = doJSON(t, h, http.MethodGet, "/api/v1/rooms/room-101/availability?check_in=garbage", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelEndpointRoutesByCaller(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", bookingBody(day(2), day(4)), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode(t, rec)["reservation_id"].(string)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/reservations/"+id+"/cancel", map[string]any{"guest_id": "guest-bo"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/reservations/"+id+"/cancel", map[string]any{"guest_id": "guest-ada"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/reservations/"+id, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CANCELLED", decode(t, rec)["status"])

	rec = doJSON(t, h, http.MethodPost, "/api/v1/reservations/"+id+"/reactivate", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAmenityAndInvoiceEndpoints(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", bookingBody(day(2), day(4)), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode(t, rec)["reservation_id"].(string)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/reservations/"+id+"/amenities", map[string]any{"amenity_id": "amen-breakfast", "quantity": 2}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(22000), decode(t, rec)["total_cents"])

	rec = doJSON(t, h, http.MethodGet, "/api/v1/reservations/"+id+"/invoice", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	inv := decode(t, rec)
	assert.Equal(t, float64(22000), inv["total_cents"])
	lines := inv["lines"].([]any)
	require.Len(t, lines, 3, "stay, discount, amenity")

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/reservations/"+id+"/amenities/amen-breakfast", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(19000), decode(t, rec)["total_cents"])

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/reservations/"+id+"/amenities/amen-breakfast", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheckInEndpointRejectsWrongDay(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", bookingBody(day(2), day(4)), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode(t, rec)["reservation_id"].(string)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/reservations/"+id+"/check-in", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSweepEndpoint(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", bookingBody(day(-3), day(-1)), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/ops/no-show-sweep", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["transitioned"])
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/livez", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/readyz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
