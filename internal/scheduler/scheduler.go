package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/i474232898/weather-charts/internal/logx"
	"github.com/i474232898/weather-charts/internal/weather"
)

// Fetcher is the part of weather.Service the scheduler drives.
type Fetcher interface {
	FetchAndStore(ctx context.Context, loc weather.Location) error
	RefreshForecast(ctx context.Context, loc weather.Location, days int) (weather.HourlyForecast, error)
}

// DefaultInterval is used when the configured interval is below a minute.
const DefaultInterval = 15 * time.Minute

// jobTimeout bounds one location's fetch in a run.
const jobTimeout = 30 * time.Second

// Scheduler periodically records current conditions and refreshes the
// cached forecast for every configured location.
type Scheduler struct {
	scheduler    *gocron.Scheduler
	service      Fetcher
	locations    []weather.Location
	interval     time.Duration
	forecastDays int
	log          zerolog.Logger
}

// New creates a new Scheduler. forecastDays <= 0 disables forecast refresh.
func New(locations []weather.Location, interval time.Duration, forecastDays int, service Fetcher) *Scheduler {
	if interval < time.Minute {
		interval = DefaultInterval
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler:    s,
		service:      service,
		locations:    locations,
		interval:     interval,
		forecastDays: forecastDays,
		log:          logx.Component("scheduler"),
	}
}

// Start schedules the periodic job, which also runs once immediately, and
// starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		s.log.Info().Msg("no locations configured; nothing to schedule")
		return nil
	}
	if _, err := s.scheduler.Every(s.interval).Do(s.Run); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.log.Info().Dur("interval", s.interval).Int("locations", len(s.locations)).Msg("scheduler started")
	return nil
}

// Run performs one fetch pass over all locations and waits for it to finish.
func (s *Scheduler) Run() {
	s.log.Debug().Msg("running weather fetch job")

	var wg sync.WaitGroup
	for _, loc := range s.locations {
		wg.Add(1)
		go func(loc weather.Location) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()

			if err := s.service.FetchAndStore(ctx, loc); err != nil {
				s.log.Error().Err(err).Str("location", loc.Key()).Msg("fetch failed")
			}
			if s.forecastDays > 0 {
				if _, err := s.service.RefreshForecast(ctx, loc, s.forecastDays); err != nil {
					s.log.Warn().Err(err).Str("location", loc.Key()).Msg("forecast refresh failed")
				}
			}
		}(loc)
	}
	wg.Wait()
	s.log.Debug().Msg("completed weather fetch job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
