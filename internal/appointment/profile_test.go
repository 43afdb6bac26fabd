package appointment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateDoctorProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d, err := f.svc.UpdateDoctorProfile(ctx, "D001", ProfileUpdate{
		Name:        "Dr. Rahul S. Sharma",
		Email:       "rahul@clinic.example",
		PhoneNumber: "9000000001",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Rahul S. Sharma", d.Name)
	assert.Equal(t, SpecializationArthritis, d.Specialization)
	assert.Len(t, d.Availability, 6)

	stored, _, err := f.repo.GetDoctor(ctx, "D001")
	require.NoError(t, err)
	assert.Equal(t, "9000000001", stored.PhoneNumber)
	assert.Equal(t, "doctor123", stored.Password)
}

func TestUpdateDoctorProfile_Invalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []ProfileUpdate{
		{Name: "", Email: "a@b.c", PhoneNumber: "9000000001"},
		{Name: "X", Email: "not-an-email", PhoneNumber: "9000000001"},
		{Name: "X", Email: "a@b.c", PhoneNumber: "12345"},
		{Name: "X", Email: "a@b.c", PhoneNumber: "90000000ab"},
	}
	for _, upd := range cases {
		_, err := f.svc.UpdateDoctorProfile(ctx, "D001", upd)
		assert.ErrorIs(t, err, ErrInvalidProfile)
	}

	_, err := f.svc.UpdateDoctorProfile(ctx, "D999", ProfileUpdate{Name: "X", Email: "a@b.c", PhoneNumber: "9000000001"})
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestUpdatePatientProfile_KeepsAppointments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt := f.book(t, "P002", "D003", t0)

	p, err := f.svc.UpdatePatientProfile(ctx, "P002", PatientProfileUpdate{
		ProfileUpdate: ProfileUpdate{Name: "Anita R. Shah", Email: "anita@mail.example", PhoneNumber: "9898989899"},
		Age:           36,
	})
	require.NoError(t, err)
	assert.Equal(t, 36, p.Age)
	require.Len(t, p.Appointments, 1)
	assert.Equal(t, appt.ID, p.Appointments[0].ID)
	assert.Equal(t, []Specialization{SpecializationBrain}, p.MedicalHistory)

	_, err = f.svc.UpdatePatientProfile(ctx, "P002", PatientProfileUpdate{
		ProfileUpdate: ProfileUpdate{Name: "Anita", Email: "anita@mail.example", PhoneNumber: "9898989899"},
		Age:           -1,
	})
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestListDoctors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	all, err := f.svc.ListDoctors(ctx, DoctorFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 10)

	tumor, err := f.svc.ListDoctors(ctx, DoctorFilter{Specialization: SpecializationTumor})
	require.NoError(t, err)
	assert.Equal(t, []string{"D005", "D006"}, doctorIDs(tumor))

	// query ranks by rating, stable among equals
	byQuery, err := f.svc.ListDoctors(ctx, DoctorFilter{Query: "lung"})
	require.NoError(t, err)
	assert.Equal(t, []string{"D007", "D008"}, doctorIDs(byQuery))

	byName, err := f.svc.ListDoctors(ctx, DoctorFilter{Query: "MEERA"})
	require.NoError(t, err)
	assert.Equal(t, []string{"D006"}, doctorIDs(byName))
}

func TestRecommendedDoctors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// P003 has tumor and lung cancer: D007 5.0, then D005 4.9, then D008 4.8
	got, err := f.svc.RecommendedDoctors(ctx, "P003")
	require.NoError(t, err)
	assert.Equal(t, []string{"D007", "D005", "D008"}, doctorIDs(got))

	// nobody treats goiter
	got, err = f.svc.RecommendedDoctors(ctx, "P005")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = f.svc.RecommendedDoctors(ctx, "P999")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func doctorIDs(doctors []Doctor) []string {
	out := make([]string, 0, len(doctors))
	for _, d := range doctors {
		out = append(out, d.ID)
	}
	return out
}
