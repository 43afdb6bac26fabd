package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-appointment-engine/internal/app"
	"github.com/hackgods/clinic-appointment-engine/internal/appointment"
	"github.com/hackgods/clinic-appointment-engine/internal/config"
	"github.com/hackgods/clinic-appointment-engine/internal/logging"
)

// overdue-worker periodically reports appointments still scheduled after
// their instant. It never changes a status: completing or cancelling them is
// the doctor's call. It needs the Postgres store, since an in-memory store
// would only ever hold its own fixtures.
func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("info", false, "overdue-worker")
		bootLogger.Fatal().Err(err).Msg("config load error")
	}

	logger := logging.New(cfg.LogLevel, cfg.IsDev(), "overdue-worker")
	if err := app.RequireSharedStore(cfg); err != nil {
		logger.Fatal().Err(err).Msg("overdue worker cannot start")
	}
	logger.Info().
		Str("env", cfg.Env).
		Dur("interval", cfg.WorkerInterval).
		Msg("overdue worker starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backends, err := app.Open(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("backend setup error")
	}
	defer backends.Close(logger)

	svc := appointment.NewService(backends.Repo, backends.Locker, cfg, appointment.WithLogger(logger))

	// Run once at startup
	runOnce(rootCtx, svc, logger)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			logger.Info().Msg("shutdown signal received, stopping overdue worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc, logger)
		}
	}
}

func runOnce(ctx context.Context, svc *appointment.Service, logger zerolog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	overdue, err := svc.OverdueAppointments(runCtx)
	if err != nil {
		logger.Error().Err(err).Msg("overdue run error")
		return
	}

	for _, a := range overdue {
		logger.Warn().
			Str("appointment_id", a.ID).
			Str("patient_id", a.PatientID).
			Str("doctor_id", a.DoctorID).
			Time("instant", a.Instant).
			Msg("appointment overdue")
	}
	logger.Info().
		Int("overdue", len(overdue)).
		Dur("took", time.Since(start)).
		Msg("overdue run complete")
}
