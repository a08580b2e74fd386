package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"hotelier/internal/app/commands"
	reservationapp "hotelier/internal/app/handlers/reservation"
	"hotelier/internal/app/locks"
	"hotelier/internal/app/middleware"
	appoutbox "hotelier/internal/app/outbox"
	"hotelier/internal/app/policies"
	"hotelier/internal/app/queries"
	"hotelier/internal/app/uow"
	domainamenity "hotelier/internal/domain/amenity"
	domainguest "hotelier/internal/domain/guest"
	domaininvoice "hotelier/internal/domain/invoice"
	domainpromotion "hotelier/internal/domain/promotion"
	domainreservation "hotelier/internal/domain/reservation"
	domainroom "hotelier/internal/domain/room"
	"hotelier/internal/domain/shared/money"
	"hotelier/internal/infra/archive"
	"hotelier/internal/infra/broker/kafka"
	"hotelier/internal/infra/config"
	mongostore "hotelier/internal/infra/db/mongo"
	ginserver "hotelier/internal/infra/http/gin"
	"hotelier/internal/infra/notify"
	"hotelier/internal/infra/obs"
	infraoutbox "hotelier/internal/infra/outbox"
	"hotelier/internal/infra/storage/memory"
	"hotelier/internal/infra/sweep"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}
	defer app.close()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := getenv("HOTEL_FIXTURES", "")
	if fixturesPath == "" {
		fixturesPath = defaultFixturesPath()
	}
	if err := app.loadFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("hotel fixtures load failed", "error", err, "path", fixturesPath)
	}

	if app.relay != nil {
		go func() {
			if err := app.relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox relay stopped", "error", err)
			}
		}()
	}
	if app.sweeper != nil {
		if err := app.sweeper.Start(ctx); err != nil {
			logger.Error("sweep scheduler failed to start", "error", err)
		}
		defer func() { _ = app.sweeper.Stop() }()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type catalogStores struct {
	rooms  domainroom.Catalog
	guests interface {
		Save(ctx context.Context, g *domainguest.Guest) error
	}
	amenities interface {
		Save(ctx context.Context, a *domainamenity.Amenity) error
	}
	promotions interface {
		Save(ctx context.Context, p *domainpromotion.Promotion) error
	}
}

type application struct {
	handlers ginserver.Handlers
	relay    *infraoutbox.Worker
	sweeper  *sweep.Scheduler
	stores   catalogStores
	ready    func() error
	close    func()
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		uowFactory uow.UoWFactory
		outboxImpl appoutbox.Outbox
		relaySrc   infraoutbox.RelaySource
		idStore    middleware.IdempotencyStore
		stores     catalogStores
		ready      = func() error { return nil }
		closeFn    = func() {}
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, fmt.Errorf("mongo connect: %w", err)
		}
		rooms := mongostore.NewRoomCatalog(client.DB)
		reservations := mongostore.NewReservationRepository(client.DB)
		guests := mongostore.NewGuestDirectory(client.DB)
		amenities := mongostore.NewAmenityCatalog(client.DB)
		promotions := mongostore.NewPromotionCatalog(client.DB)
		uowFactory = mongostore.Factory{
			DB:               client.DB,
			RoomsRepo:        rooms,
			ReservationsRepo: reservations,
			GuestsRepo:       guests,
			AmenitiesRepo:    amenities,
			PromotionsRepo:   promotions,
		}
		store := infraoutbox.NewStore(client.DB)
		outboxImpl = store
		relaySrc = store
		idStore = mongostore.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		stores = catalogStores{rooms: rooms, guests: guests, amenities: amenities, promotions: promotions}
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		closeFn = func() {
			discCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Close(discCtx)
		}
	default:
		rooms := memory.NewRoomCatalog()
		reservations := memory.NewReservationRepository()
		guests := memory.NewGuestDirectory()
		amenities := memory.NewAmenityCatalog()
		promotions := memory.NewPromotionCatalog()
		uowFactory = memory.Factory{
			RoomsRepo:        rooms,
			ReservationsRepo: reservations,
			GuestsRepo:       guests,
			AmenitiesRepo:    amenities,
			PromotionsRepo:   promotions,
		}
		box := memory.NewOutbox()
		outboxImpl = box
		relaySrc = box
		idStore = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
		stores = catalogStores{rooms: rooms, guests: guests, amenities: amenities, promotions: promotions}
	}

	var notifier policies.Notifier
	if cfg.SMTPHost != "" {
		mailer, err := notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
		if err != nil {
			return application{}, fmt.Errorf("smtp mailer: %w", err)
		}
		notifier = mailer
	} else {
		logger.Info("SMTP not configured, cancellation emails disabled")
	}

	var archiver policies.InvoiceArchiver
	if cfg.S3Endpoint != "" {
		store, err := archive.NewStore(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, logger)
		if err != nil {
			logger.Warn("invoice archive unavailable", "error", err)
		} else {
			archiver = store
		}
	}

	lockRegistry := locks.NewRoomLocks()
	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler[reservationapp.CreateCommand, *reservationapp.CreateResult](commandBus, reservationapp.CreateCommand{}.Key(), &reservationapp.CreateHandler{
		UoWFactory: uowFactory, Outbox: outboxImpl, Encoder: encoder,
	})
	commands.RegisterHandler[reservationapp.EditCommand, *reservationapp.EditResult](commandBus, reservationapp.EditCommand{}.Key(), &reservationapp.EditHandler{
		UoWFactory: uowFactory, Outbox: outboxImpl, Encoder: encoder,
	})
	commands.RegisterHandler[reservationapp.CheckInCommand, *reservationapp.CheckInResult](commandBus, reservationapp.CheckInCommand{}.Key(), &reservationapp.CheckInHandler{
		UoWFactory: uowFactory, Outbox: outboxImpl, Encoder: encoder,
	})
	commands.RegisterHandler[reservationapp.CheckOutCommand, *reservationapp.CheckOutResult](commandBus, reservationapp.CheckOutCommand{}.Key(), &reservationapp.CheckOutHandler{
		UoWFactory: uowFactory, Outbox: outboxImpl, Encoder: encoder, Archiver: archiver, Logger: logger,
	})
	commands.RegisterHandler[reservationapp.CancelByGuestCommand, *reservationapp.CancelResult](commandBus, reservationapp.CancelByGuestCommand{}.Key(), &reservationapp.CancelByGuestHandler{
		UoWFactory: uowFactory, Outbox: outboxImpl, Encoder: encoder,
	})
	commands.RegisterHandler[reservationapp.CancelByOperatorCommand, *reservationapp.CancelResult](commandBus, reservationapp.CancelByOperatorCommand{}.Key(), &reservationapp.CancelByOperatorHandler{
		UoWFactory: uowFactory, Outbox: outboxImpl, Encoder: encoder, Notifier: notifier, Logger: logger,
	})
	commands.RegisterHandler[reservationapp.ReactivateCommand, *reservationapp.ReactivateResult](commandBus, reservationapp.ReactivateCommand{}.Key(), &reservationapp.ReactivateHandler{
		UoWFactory: uowFactory, Outbox: outboxImpl, Encoder: encoder,
	})
	commands.RegisterHandler[reservationapp.AddAmenityCommand, *reservationapp.AmenityResult](commandBus, reservationapp.AddAmenityCommand{}.Key(), &reservationapp.AddAmenityHandler{
		UoWFactory: uowFactory, Outbox: outboxImpl, Encoder: encoder,
	})
	commands.RegisterHandler[reservationapp.RemoveAmenityCommand, *reservationapp.AmenityResult](commandBus, reservationapp.RemoveAmenityCommand{}.Key(), &reservationapp.RemoveAmenityHandler{
		UoWFactory: uowFactory, Outbox: outboxImpl, Encoder: encoder,
	})
	commands.RegisterHandler[reservationapp.SweepNoShowsCommand, *reservationapp.SweepNoShowsResult](commandBus, reservationapp.SweepNoShowsCommand{}.Key(), &reservationapp.SweepNoShowsHandler{
		UoWFactory: uowFactory, Locks: lockRegistry, Outbox: outboxImpl, Encoder: encoder, Logger: logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler[reservationapp.RoomAvailabilityQuery, *reservationapp.RoomAvailabilityResult](queryBus, reservationapp.RoomAvailabilityQuery{}.Key(), &reservationapp.RoomAvailabilityHandler{UoWFactory: uowFactory})
	queries.RegisterHandler[reservationapp.GetReservationQuery, *domainreservation.Reservation](queryBus, reservationapp.GetReservationQuery{}.Key(), &reservationapp.GetReservationHandler{UoWFactory: uowFactory})
	queries.RegisterHandler[reservationapp.GuestReservationsQuery, []*domainreservation.Reservation](queryBus, reservationapp.GuestReservationsQuery{}.Key(), &reservationapp.GuestReservationsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler[reservationapp.InvoiceQuery, *domaininvoice.Invoice](queryBus, reservationapp.InvoiceQuery{}.Key(), &reservationapp.InvoiceHandler{UoWFactory: uowFactory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil),
		middleware.SerializeRooms(lockRegistry, uowFactory),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxImpl),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	var relay *infraoutbox.Worker
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return application{}, fmt.Errorf("kafka producer: %w", err)
		}
		relay = &infraoutbox.Worker{
			Store:       relaySrc,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Source:      "app://hotelier",
			Backoff:     cfg.RetryBackoff,
		}
		prevClose := closeFn
		closeFn = func() {
			prevClose()
			_ = producer.Close()
		}
	} else {
		logger.Info("Kafka not configured, outbox relay disabled")
	}

	sweeper, err := sweep.NewScheduler(commandBusWithMiddleware, cfg.SweepHourUTC, logger)
	if err != nil {
		return application{}, fmt.Errorf("sweep scheduler: %w", err)
	}

	return application{
		handlers: ginserver.Handlers{
			Reservation: ginserver.ReservationHandler{Commands: commandBusWithMiddleware},
			Query:       ginserver.QueryHandler{Queries: queryBusWithMiddleware},
		},
		relay:   relay,
		sweeper: sweeper,
		stores:  stores,
		ready:   ready,
		close:   closeFn,
	}, nil
}

func (a application) loadFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("hotel fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures hotelFixtures
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	for _, fx := range fixtures.Rooms {
		room := &domainroom.Room{
			ID:          domainroom.RoomID(fx.ID),
			Number:      fx.Number,
			Capacity:    fx.Capacity,
			NightlyRate: money.Money{Cents: fx.NightlyRateCents, Currency: fx.Currency},
			Status:      domainroom.StatusAvailable,
		}
		if fx.Maintenance {
			room.Status = domainroom.StatusMaintenance
		}
		if err := a.stores.rooms.Save(ctx, room); err != nil {
			logger.Error("cannot store fixture room", "room_id", fx.ID, "error", err)
			continue
		}
	}
	for _, fx := range fixtures.Guests {
		g := &domainguest.Guest{ID: domainguest.GuestID(fx.ID), Name: fx.Name, Email: fx.Email}
		if err := a.stores.guests.Save(ctx, g); err != nil {
			logger.Error("cannot store fixture guest", "guest_id", fx.ID, "error", err)
		}
	}
	for _, fx := range fixtures.Amenities {
		am := &domainamenity.Amenity{
			ID:    domainamenity.AmenityID(fx.ID),
			Name:  fx.Name,
			Price: money.Money{Cents: fx.PriceCents, Currency: fx.Currency},
		}
		if err := a.stores.amenities.Save(ctx, am); err != nil {
			logger.Error("cannot store fixture amenity", "amenity_id", fx.ID, "error", err)
		}
	}
	for _, fx := range fixtures.Promotions {
		p := &domainpromotion.Promotion{
			ID:               domainpromotion.PromotionID(fx.ID),
			Kind:             domainpromotion.Kind(strings.ToUpper(fx.Kind)),
			DiscountPercent:  fx.DiscountPercent,
			MinNights:        fx.MinNights,
			MinDaysInAdvance: fx.MinDaysInAdvance,
		}
		if fx.ValidFrom != "" {
			p.ValidFrom = parseFixtureDate(fx.ValidFrom)
		}
		if fx.ValidTo != "" {
			p.ValidTo = parseFixtureDate(fx.ValidTo)
		}
		if err := a.stores.promotions.Save(ctx, p); err != nil {
			logger.Error("cannot store fixture promotion", "promotion_id", fx.ID, "error", err)
		}
	}
	logger.Info("hotel fixtures imported",
		"rooms", len(fixtures.Rooms),
		"guests", len(fixtures.Guests),
		"amenities", len(fixtures.Amenities),
		"promotions", len(fixtures.Promotions),
	)
	return nil
}

type hotelFixtures struct {
	Rooms      []roomFixture      `json:"rooms"`
	Guests     []guestFixture     `json:"guests"`
	Amenities  []amenityFixture   `json:"amenities"`
	Promotions []promotionFixture `json:"promotions"`
}

type roomFixture struct {
	ID               string `json:"id"`
	Number           string `json:"number"`
	Capacity         int    `json:"capacity"`
	NightlyRateCents int64  `json:"nightly_rate_cents"`
	Currency         string `json:"currency"`
	Maintenance      bool   `json:"maintenance"`
}

type guestFixture struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type amenityFixture struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Currency   string `json:"currency"`
}

type promotionFixture struct {
	ID               string `json:"id"`
	Kind             string `json:"kind"`
	DiscountPercent  int    `json:"discount_percent"`
	ValidFrom        string `json:"valid_from"`
	ValidTo          string `json:"valid_to"`
	MinNights        int    `json:"min_nights"`
	MinDaysInAdvance int    `json:"min_days_in_advance"`
}

func parseFixtureDate(value string) time.Time {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t
	}
	return time.Time{}
}

func defaultFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "hotel.json"),
		filepath.Join("..", "data", "hotel.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
