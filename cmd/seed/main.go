package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/hackgods/clinic-appointment-engine/internal/appointment"
	"github.com/hackgods/clinic-appointment-engine/internal/config"
	"github.com/hackgods/clinic-appointment-engine/internal/db"
	"github.com/hackgods/clinic-appointment-engine/internal/logging"
)

const fakePatients = 200

func main() {
	logger := logging.New("info", false, "seed")
	logger.Info().Msg("seed starting")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config load error")
	}
	if cfg.PostgresDSN == "" {
		logger.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, db.PoolConfig{
		MaxConns: int32(cfg.PgMaxConns),
		MinConns: int32(cfg.PgMinConns),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("apply schema")
	}

	repo := appointment.NewPgRepository(pool)

	if err := appointment.SeedFixtures(ctx, repo); err != nil {
		logger.Fatal().Err(err).Msg("seed fixtures")
	}
	logger.Info().Msg("fixture doctors and patients seeded")

	created, err := seedFakePatients(ctx, repo, fakePatients)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed fake patients")
	}
	logger.Info().Int("created", created).Msg("seed complete")
}

// seedFakePatients adds generated patients with ids F0001.. so reruns skip
// the ones already present.
func seedFakePatients(ctx context.Context, repo appointment.Repository, count int) (int, error) {
	faker := gofakeit.New(0)
	created := 0

	for i := 1; i <= count; i++ {
		history := []appointment.Specialization{
			appointment.Specializations[faker.Number(0, len(appointment.Specializations)-1)],
		}

		p := appointment.Patient{
			ID:             fmt.Sprintf("F%04d", i),
			Name:           faker.Name(),
			PhoneNumber:    faker.Phone(),
			Email:          faker.Email(),
			Password:       faker.Password(true, true, true, false, false, 12),
			Age:            faker.Number(1, 90),
			MedicalHistory: history,
		}

		err := repo.CreatePatient(ctx, p)
		switch {
		case err == nil:
			created++
		case errors.Is(err, appointment.ErrDuplicateID):
		default:
			return created, err
		}
	}

	return created, nil
}
