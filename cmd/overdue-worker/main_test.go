package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-appointment-engine/internal/appointment"
	"github.com/hackgods/clinic-appointment-engine/internal/config"
	redisclient "github.com/hackgods/clinic-appointment-engine/internal/redis"
)

func TestRunOnce_ReportsOverdueAppointments(t *testing.T) {
	ctx := context.Background()
	repo := appointment.NewMemoryRepository()
	require.NoError(t, appointment.SeedFixtures(ctx, repo))

	now := time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)
	svc := appointment.NewService(repo, redisclient.NewLocalLocker(), config.Default(),
		appointment.WithClock(func() time.Time { return now }))

	appt, err := svc.Book(ctx, appointment.BookRequest{
		PatientID: "P001", DoctorID: "D001", Instant: now.Add(time.Hour),
	})
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)

	var buf bytes.Buffer
	runOnce(ctx, svc, zerolog.New(&buf))

	out := buf.String()
	assert.Contains(t, out, `"message":"appointment overdue"`)
	assert.Contains(t, out, appt.ID)
	assert.Contains(t, out, `"overdue":1`)

	// reporting leaves the appointment scheduled
	appts, err := svc.PatientAppointments(ctx, "P001", appointment.ViewAll)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, appointment.StatusScheduled, appts[0].Status)
}
