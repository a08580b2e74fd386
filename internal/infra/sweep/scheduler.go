package sweep

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"hotelier/internal/app/commands"
	reservationapp "hotelier/internal/app/handlers/reservation"
)

var ErrSchedulerNotConfigured = errors.New("sweep: scheduler missing command bus")

// Scheduler runs the daily no-show sweep. Each run targets the current day,
// retiring every Confirmed reservation whose arrival date has passed.
type Scheduler struct {
	commands  commands.Bus
	scheduler gocron.Scheduler
	hourUTC   int
	logger    *slog.Logger
}

func NewScheduler(bus commands.Bus, hourUTC int, logger *slog.Logger) (*Scheduler, error) {
	if bus == nil {
		return nil, ErrSchedulerNotConfigured
	}
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		commands:  bus,
		scheduler: sched,
		hourUTC:   hourUTC,
		logger:    logger,
	}, nil
}

func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(s.hourUTC), 0, 0))),
		gocron.NewTask(func() { s.runOnce(ctx) }),
	)
	if err != nil {
		return err
	}
	s.scheduler.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *Scheduler) runOnce(ctx context.Context) {
	cmd := reservationapp.SweepNoShowsCommand{AsOf: time.Now().UTC()}
	result, err := commands.Dispatch[reservationapp.SweepNoShowsCommand, *reservationapp.SweepNoShowsResult](ctx, s.commands, cmd)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("no-show sweep failed", "error", err)
		}
		return
	}
	if s.logger != nil {
		s.logger.Info("no-show sweep run", "transitioned", result.Transitioned)
	}
}
