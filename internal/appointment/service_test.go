package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-appointment-engine/internal/config"
	redisclient "github.com/hackgods/clinic-appointment-engine/internal/redis"
)

// Monday 2026-03-02 08:00 UTC
var baseNow = time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)

// t0 is two days ahead at 10:00.
var t0 = time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	svc   *Service
	repo  *MemoryRepository
	clock *fakeClock
}

func newFixture(t *testing.T, mutate ...func(*config.Config)) *fixture {
	t.Helper()

	cfg := config.Default()
	for _, m := range mutate {
		m(&cfg)
	}

	repo := NewMemoryRepository()
	require.NoError(t, SeedFixtures(context.Background(), repo))

	clock := &fakeClock{now: baseNow}
	svc := NewService(repo, redisclient.NewLocalLocker(), cfg, WithClock(clock.Now))
	return &fixture{svc: svc, repo: repo, clock: clock}
}

func (f *fixture) book(t *testing.T, patientID, doctorID string, at time.Time) *Appointment {
	t.Helper()
	appt, err := f.svc.Book(context.Background(), BookRequest{PatientID: patientID, DoctorID: doctorID, Instant: at})
	require.NoError(t, err)
	return appt
}

func TestBook_CreatesScheduledAppointment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.svc.Book(ctx, BookRequest{PatientID: "P001", DoctorID: "D001", Instant: t0, Reason: "knee pain"})
	require.NoError(t, err)

	assert.NotEmpty(t, appt.ID)
	assert.Equal(t, "P001", appt.PatientID)
	assert.Equal(t, "D001", appt.DoctorID)
	assert.Equal(t, StatusScheduled, appt.Status)
	assert.True(t, appt.Instant.Equal(t0))
	assert.Equal(t, baseNow, appt.CreatedAt)

	patient, ok, err := f.repo.GetPatient(ctx, "P001")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, patient.Appointments, 1)
	assert.Equal(t, appt.ID, patient.Appointments[0].ID)
}

func TestBook_RejectsNowAndPast(t *testing.T) {
	f := newFixture(t)

	for _, at := range []time.Time{baseNow, baseNow.Add(-time.Minute)} {
		_, err := f.svc.Book(context.Background(), BookRequest{PatientID: "P001", DoctorID: "D001", Instant: at})
		assert.ErrorIs(t, err, ErrInvalidTime)
	}
}

func TestBook_ValidatesRequestFirst(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Book(context.Background(), BookRequest{DoctorID: "D001", Instant: baseNow.Add(-time.Hour)})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestBook_UnknownParties(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Book(ctx, BookRequest{PatientID: "P999", DoctorID: "D001", Instant: t0})
	assert.ErrorIs(t, err, ErrPatientNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Book(ctx, BookRequest{PatientID: "P001", DoctorID: "D999", Instant: t0})
	assert.ErrorIs(t, err, ErrDoctorNotFound)

	// an invalid time is reported before an unknown patient
	_, err = f.svc.Book(ctx, BookRequest{PatientID: "P999", DoctorID: "D001", Instant: baseNow})
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestBook_ConflictWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.book(t, "P001", "D001", t0)

	conflicting := []struct {
		name string
		at   time.Time
	}{
		{"15 minutes later with another doctor", t0.Add(15 * time.Minute)},
		{"just under the window", t0.Add(30*time.Minute - time.Second)},
		{"just under the window before", t0.Add(-30*time.Minute + time.Second)},
		{"same instant", t0},
	}
	for _, tc := range conflicting {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Book(ctx, BookRequest{PatientID: "P001", DoctorID: "D002", Instant: tc.at})
			assert.ErrorIs(t, err, ErrConflict)
		})
	}

	// exactly the window apart is allowed, in both directions
	f.book(t, "P001", "D002", t0.Add(30*time.Minute))
	f.book(t, "P001", "D002", t0.Add(-30*time.Minute))
}

func TestBook_CancelledAppointmentsDoNotConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.book(t, "P001", "D001", t0)
	_, err := f.svc.Cancel(ctx, first.ID)
	require.NoError(t, err)

	f.book(t, "P001", "D001", t0)
}

func TestBook_PatientScopeAllowsSharedDoctorInstant(t *testing.T) {
	f := newFixture(t)

	f.book(t, "P001", "D001", t0)
	f.book(t, "P002", "D001", t0)
}

// Unresolved: whether two patients may hold the same doctor at the same
// instant. The default patient scope allows it (test above); the opt-in
// doctor scope rejects it.
func TestBook_DoctorScopeRejectsSharedDoctorInstant(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.ConflictScope = config.ConflictScopeDoctor })

	f.book(t, "P001", "D001", t0)

	_, err := f.svc.Book(context.Background(), BookRequest{PatientID: "P002", DoctorID: "D001", Instant: t0.Add(10 * time.Minute)})
	assert.ErrorIs(t, err, ErrConflict)

	// another doctor is fine
	f.book(t, "P002", "D002", t0)
}

func TestBook_ConcurrentSameInstantSingleWinner(t *testing.T) {
	f := newFixture(t)

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Book(context.Background(), BookRequest{PatientID: "P003", DoctorID: "D005", Instant: t0})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if assert.ErrorIs(t, err, ErrConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	appts, err := f.svc.PatientAppointments(context.Background(), "P003", ViewAll)
	require.NoError(t, err)
	assert.Len(t, appts, 1)
}

func TestBook_LeavesAvailabilityUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.book(t, "P001", "D001", t0)

	slots, err := f.svc.GetSlots(ctx, "D001", Wednesday)
	require.NoError(t, err)
	assert.Equal(t, []TimeSlot{MorningSlot, AfternoonSlot, EveningSlot}, slots)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt := f.book(t, "P001", "D001", t0)

	f.clock.Set(baseNow.Add(time.Hour))
	cancelled, err := f.svc.Cancel(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, appt.ID, cancelled.ID)
	assert.Equal(t, baseNow.Add(time.Hour), cancelled.UpdatedAt)

	_, err = f.svc.Cancel(ctx, appt.ID)
	assert.ErrorIs(t, err, ErrNotCancellable)
}

func TestCancel_PastAppointment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt := f.book(t, "P001", "D001", t0)
	f.clock.Set(t0.Add(time.Minute))

	_, err := f.svc.Cancel(ctx, appt.ID)
	assert.ErrorIs(t, err, ErrAlreadyPast)

	// the instant itself is no longer cancellable
	f.clock.Set(t0)
	_, err = f.svc.Cancel(ctx, appt.ID)
	assert.ErrorIs(t, err, ErrAlreadyPast)
}

func TestCancel_CompletedIsNotCancellable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt := f.book(t, "P001", "D001", t0)
	_, err := f.svc.UpdateStatus(ctx, appt.ID, StatusCompleted)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, appt.ID)
	assert.ErrorIs(t, err, ErrNotCancellable)
}

func TestCancel_UnknownAppointment(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Cancel(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestReschedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt := f.book(t, "P001", "D001", t0)

	moved, err := f.svc.Reschedule(ctx, appt.ID, t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, appt.ID, moved.ID)
	assert.Equal(t, "D001", moved.DoctorID)
	assert.Equal(t, StatusScheduled, moved.Status)
	assert.True(t, moved.Instant.Equal(t0.Add(2*time.Hour)))

	appts, err := f.svc.PatientAppointments(ctx, "P001", ViewAll)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.True(t, appts[0].Instant.Equal(t0.Add(2*time.Hour)))
}

func TestReschedule_IgnoresItselfForConflicts(t *testing.T) {
	f := newFixture(t)

	appt := f.book(t, "P001", "D001", t0)

	_, err := f.svc.Reschedule(context.Background(), appt.ID, t0.Add(10*time.Minute))
	assert.NoError(t, err)
}

func TestReschedule_ConflictWithAnother(t *testing.T) {
	f := newFixture(t)

	appt := f.book(t, "P001", "D001", t0)
	f.book(t, "P001", "D002", t0.Add(3*time.Hour))

	_, err := f.svc.Reschedule(context.Background(), appt.ID, t0.Add(3*time.Hour+20*time.Minute))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestReschedule_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt := f.book(t, "P001", "D001", t0)

	_, err := f.svc.Reschedule(ctx, appt.ID, baseNow)
	assert.ErrorIs(t, err, ErrInvalidTime)

	_, err = f.svc.Cancel(ctx, appt.ID)
	require.NoError(t, err)

	// status is checked before the new instant
	_, err = f.svc.Reschedule(ctx, appt.ID, baseNow.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrNotReschedulable)

	_, err = f.svc.Reschedule(ctx, "missing", t0)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestUpdateStatus_HasNoTimeRestriction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt := f.book(t, "P001", "D001", t0)
	f.clock.Set(t0.Add(time.Hour))

	_, err := f.svc.Cancel(ctx, appt.ID)
	assert.ErrorIs(t, err, ErrAlreadyPast)

	cancelled, err := f.svc.UpdateStatus(ctx, appt.ID, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
}

func TestUpdateStatus_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt := f.book(t, "P001", "D001", t0)

	_, err := f.svc.UpdateStatus(ctx, appt.ID, StatusScheduled)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.UpdateStatus(ctx, appt.ID, StatusCompleted)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, appt.ID, StatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = f.svc.UpdateStatus(ctx, "missing", StatusCompleted)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt := f.book(t, "P001", "D001", t0)

	_, err := f.svc.Book(ctx, BookRequest{PatientID: "P001", DoctorID: "D002", Instant: t0.Add(15 * time.Minute)})
	require.ErrorIs(t, err, ErrConflict)

	moved, err := f.svc.Reschedule(ctx, appt.ID, t0.Add(2*time.Hour))
	require.NoError(t, err)

	upcoming, err := f.svc.PatientAppointments(ctx, "P001", ViewUpcoming)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, moved.ID, upcoming[0].ID)

	f.clock.Set(t0.Add(3 * time.Hour))
	_, err = f.svc.UpdateStatus(ctx, appt.ID, StatusCompleted)
	require.NoError(t, err)

	past, err := f.svc.PatientAppointments(ctx, "P001", ViewPast)
	require.NoError(t, err)
	require.Len(t, past, 1)
	assert.Equal(t, StatusCompleted, past[0].Status)

	upcoming, err = f.svc.PatientAppointments(ctx, "P001", ViewUpcoming)
	require.NoError(t, err)
	assert.Empty(t, upcoming)

	forDoctor, err := f.svc.DoctorAppointments(ctx, "D001", ViewAll)
	require.NoError(t, err)
	require.Len(t, forDoctor, 1)
	assert.Equal(t, "P001", forDoctor[0].PatientID)
}

func TestDoctorAppointments_UnknownDoctor(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.DoctorAppointments(context.Background(), "D999", ViewAll)
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestPatientAppointments_UnknownPatient(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PatientAppointments(context.Background(), "P999", ViewAll)
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestEventsAreRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt := f.book(t, "P001", "D001", t0)
	_, err := f.svc.Reschedule(ctx, appt.ID, t0.Add(time.Hour))
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, appt.ID)
	require.NoError(t, err)

	// failures record nothing
	_, err = f.svc.Cancel(ctx, appt.ID)
	require.Error(t, err)

	events := f.repo.Events()
	require.Len(t, events, 3)
	assert.Equal(t, EventAppointmentBooked, events[0].EventType)
	assert.Equal(t, EventAppointmentRescheduled, events[1].EventType)
	assert.Equal(t, EventAppointmentCancelled, events[2].EventType)
	require.NotNil(t, events[0].AppointmentID)
	assert.Equal(t, appt.ID, *events[0].AppointmentID)
	assert.JSONEq(t, `{"patient_id":"P001","doctor_id":"D001","instant":"2026-03-04T10:00:00Z"}`, string(events[0].Payload))
}

func TestMetricsCountOutcomes(t *testing.T) {
	repo := NewMemoryRepository()
	require.NoError(t, SeedFixtures(context.Background(), repo))

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	clock := &fakeClock{now: baseNow}
	svc := NewService(repo, redisclient.NewLocalLocker(), config.Default(), WithClock(clock.Now), WithMetrics(metrics))

	ctx := context.Background()
	_, err := svc.Book(ctx, BookRequest{PatientID: "P001", DoctorID: "D001", Instant: t0})
	require.NoError(t, err)
	_, err = svc.Book(ctx, BookRequest{PatientID: "P001", DoctorID: "D001", Instant: t0})
	require.ErrorIs(t, err, ErrConflict)
	_, err = svc.Cancel(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("book", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("book", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("cancel", "not_found")))
}
