package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"hotelier/internal/infra/config"
	"hotelier/internal/infra/obs"
)

type ReservationHTTP interface {
	Create(c *gin.Context)
	Edit(c *gin.Context)
	CheckIn(c *gin.Context)
	CheckOut(c *gin.Context)
	Cancel(c *gin.Context)
	Reactivate(c *gin.Context)
	AddAmenity(c *gin.Context)
	RemoveAmenity(c *gin.Context)
	SweepNoShows(c *gin.Context)
}

type QueryHTTP interface {
	GetReservation(c *gin.Context)
	GuestReservations(c *gin.Context)
	RoomAvailability(c *gin.Context)
	Invoice(c *gin.Context)
}

type Handlers struct {
	Reservation ReservationHTTP
	Query       QueryHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Reservation != nil {
		api.POST("/reservations", h.Reservation.Create)
		api.PATCH("/reservations/:id", h.Reservation.Edit)
		api.POST("/reservations/:id/check-in", h.Reservation.CheckIn)
		api.POST("/reservations/:id/check-out", h.Reservation.CheckOut)
		api.POST("/reservations/:id/cancel", h.Reservation.Cancel)
		api.POST("/reservations/:id/reactivate", h.Reservation.Reactivate)
		api.POST("/reservations/:id/amenities", h.Reservation.AddAmenity)
		api.DELETE("/reservations/:id/amenities/:amenityID", h.Reservation.RemoveAmenity)
		api.POST("/ops/no-show-sweep", h.Reservation.SweepNoShows)
	}
	if h.Query != nil {
		api.GET("/reservations/:id", h.Query.GetReservation)
		api.GET("/reservations/:id/invoice", h.Query.Invoice)
		api.GET("/guests/:id/reservations", h.Query.GuestReservations)
		api.GET("/rooms/:id/availability", h.Query.RoomAvailability)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
