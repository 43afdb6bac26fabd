package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a1 := f.book(t, "P003", "D005", baseNow.Add(2*time.Hour))
	f.book(t, "P003", "D005", t0)
	f.book(t, "P001", "D005", t0)
	f.book(t, "P004", "D005", t0.Add(24*time.Hour))

	_, err := f.svc.UpdateStatus(ctx, a1.ID, StatusCompleted)
	require.NoError(t, err)

	stats, err := f.svc.DoctorStats(ctx, "D005")
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalAppointments)
	assert.Equal(t, 1, stats.CompletedAppointments)
	assert.Equal(t, 25, stats.CompletionRate)
	assert.Equal(t, 3, stats.UpcomingAppointments)
	assert.Equal(t, 1, stats.TodayAppointments)

	require.Len(t, stats.PatientsByCondition, 4)
	for _, c := range stats.PatientsByCondition {
		assert.Equal(t, 1, c.Count)
	}

	assert.Equal(t, []AgeGroupCount{
		{Range: "0-18", Count: 0},
		{Range: "19-30", Count: 1},
		{Range: "31-50", Count: 1},
		{Range: "51+", Count: 1},
	}, stats.PatientAgeGroups)
}

func TestDoctorStats_NoAppointments(t *testing.T) {
	f := newFixture(t)

	stats, err := f.svc.DoctorStats(context.Background(), "D010")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalAppointments)
	assert.Zero(t, stats.CompletionRate)
	assert.Empty(t, stats.PatientsByCondition)

	_, err = f.svc.DoctorStats(context.Background(), "D999")
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestPatientsForDoctor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.book(t, "P001", "D001", t0)
	f.book(t, "P004", "D001", t0)
	f.book(t, "P002", "D003", t0)

	got, err := f.svc.PatientsForDoctor(ctx, "D001", "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "P001", got[0].ID)
	assert.Equal(t, "P004", got[1].ID)

	got, err = f.svc.PatientsForDoctor(ctx, "D001", "retino")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "P004", got[0].ID)

	got, err = f.svc.PatientsForDoctor(ctx, "D001", "raj")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "P001", got[0].ID)
}

func TestPatientSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.book(t, "P001", "D001", baseNow.Add(time.Hour))
	f.book(t, "P001", "D001", t0)
	f.book(t, "P001", "D002", t0.Add(4*time.Hour))

	f.clock.Set(baseNow.Add(2 * time.Hour))
	_, err := f.svc.UpdateStatus(ctx, first.ID, StatusCompleted)
	require.NoError(t, err)

	summary, err := f.svc.PatientSummary(ctx, "D001", "P001")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.AppointmentCount)
	require.NotNil(t, summary.LastVisit)
	assert.True(t, summary.LastVisit.Equal(baseNow.Add(time.Hour)))
	require.NotNil(t, summary.NextAppointment)
	assert.True(t, summary.NextAppointment.Equal(t0))

	empty, err := f.svc.PatientSummary(ctx, "D009", "P001")
	require.NoError(t, err)
	assert.Zero(t, empty.AppointmentCount)
	assert.Nil(t, empty.LastVisit)
	assert.Nil(t, empty.NextAppointment)

	_, err = f.svc.PatientSummary(ctx, "D001", "P999")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestPatientForAppointment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt := f.book(t, "P005", "D009", t0)

	p, err := f.svc.PatientForAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, "P005", p.ID)

	_, err = f.svc.PatientForAppointment(ctx, "missing")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestOverdueAppointments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	early := f.book(t, "P001", "D001", baseNow.Add(time.Hour))
	done := f.book(t, "P002", "D003", baseNow.Add(2*time.Hour))
	f.book(t, "P003", "D005", t0)

	_, err := f.svc.UpdateStatus(ctx, done.ID, StatusCompleted)
	require.NoError(t, err)

	f.clock.Set(baseNow.Add(3 * time.Hour))
	overdue, err := f.svc.OverdueAppointments(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, early.ID, overdue[0].ID)
	assert.Equal(t, StatusScheduled, overdue[0].Status)
}
