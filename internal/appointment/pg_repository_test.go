package appointment

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-appointment-engine/internal/config"
	"github.com/hackgods/clinic-appointment-engine/internal/db"
	redisclient "github.com/hackgods/clinic-appointment-engine/internal/redis"
)

func newPgRepository(t *testing.T) *PgRepository {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	pool, err := db.ConnectPostgres(ctx, dsn, db.DefaultPoolConfig())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.EnsureSchema(ctx, pool))
	return NewPgRepository(pool)
}

func TestPgRepository_RoundTrip(t *testing.T) {
	repo := newPgRepository(t)
	ctx := context.Background()

	doctorID := "D-" + uuid.NewString()
	patientID := "P-" + uuid.NewString()

	require.NoError(t, repo.CreateDoctor(ctx, Doctor{
		ID:             doctorID,
		Name:           "Dr. Test",
		PhoneNumber:    "9000000000",
		Password:       "secret",
		Specialization: SpecializationGoiter,
		Availability:   DefaultAvailability(),
		Rating:         4.5,
	}))
	assert.ErrorIs(t, repo.CreateDoctor(ctx, Doctor{ID: doctorID}), ErrDuplicateID)

	require.NoError(t, repo.CreatePatient(ctx, Patient{
		ID:             patientID,
		Name:           "Test Patient",
		Password:       "secret",
		Age:            40,
		MedicalHistory: []Specialization{SpecializationGoiter},
	}))

	d, ok, err := repo.GetDoctor(ctx, doctorID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "secret", d.Password)
	assert.Equal(t, DefaultAvailability(), d.Availability)

	_, ok, err = repo.GetPatient(ctx, "P-"+uuid.NewString())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPgRepository_BookAndCancelThroughService(t *testing.T) {
	repo := newPgRepository(t)
	ctx := context.Background()

	doctorID := "D-" + uuid.NewString()
	patientID := "P-" + uuid.NewString()
	require.NoError(t, repo.CreateDoctor(ctx, Doctor{ID: doctorID, Specialization: SpecializationBrain}))
	require.NoError(t, repo.CreatePatient(ctx, Patient{ID: patientID}))

	now := time.Now().UTC().Truncate(time.Second)
	svc := NewService(repo, redisclient.NewLocalLocker(), config.Default(), WithClock(func() time.Time { return now }))

	at := now.Add(48 * time.Hour)
	appt, err := svc.Book(ctx, BookRequest{PatientID: patientID, DoctorID: doctorID, Instant: at})
	require.NoError(t, err)

	_, err = svc.Book(ctx, BookRequest{PatientID: patientID, DoctorID: doctorID, Instant: at.Add(5 * time.Minute)})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Cancel(ctx, appt.ID)
	require.NoError(t, err)

	appts, err := svc.PatientAppointments(ctx, patientID, ViewCancelled)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, appt.ID, appts[0].ID)
	assert.True(t, appts[0].Instant.Equal(at))
}
