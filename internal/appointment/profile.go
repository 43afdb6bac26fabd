package appointment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrInvalidProfile = errors.New("invalid profile")

type ProfileUpdate struct {
	Name        string `validate:"required"`
	Email       string `validate:"required,contains=@,contains=."`
	PhoneNumber string `validate:"required,len=10,number"`
}

type PatientProfileUpdate struct {
	ProfileUpdate
	Age int `validate:"gte=0,lte=150"`
}

// UpdateDoctorProfile replaces the doctor's contact fields, leaving
// specialization, availability and credentials untouched.
func (s *Service) UpdateDoctorProfile(ctx context.Context, doctorID string, upd ProfileUpdate) (_ *Doctor, err error) {
	defer func() { s.metrics.observe("update_doctor_profile", err) }()

	if err := s.validate.Struct(upd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	var updated Doctor
	err = s.critical(ctx, "doctor:"+doctorID, func(ctx context.Context, repo Repository) error {
		doctor, ok, err := repo.GetDoctor(ctx, doctorID)
		if err != nil {
			return fmt.Errorf("load doctor: %w", err)
		}
		if !ok {
			return ErrDoctorNotFound
		}

		doctor.Name = upd.Name
		doctor.Email = upd.Email
		doctor.PhoneNumber = upd.PhoneNumber

		if err := repo.ReplaceDoctor(ctx, doctor); err != nil {
			return fmt.Errorf("replace doctor: %w", err)
		}
		updated = doctor
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, nil, EventProfileUpdated, map[string]any{"doctor_id": doctorID})
	return &updated, nil
}

// UpdatePatientProfile runs under the same lock as bookings for the patient,
// so the whole-record replace cannot drop an appointment written meanwhile.
func (s *Service) UpdatePatientProfile(ctx context.Context, patientID string, upd PatientProfileUpdate) (_ *Patient, err error) {
	defer func() { s.metrics.observe("update_patient_profile", err) }()

	if err := s.validate.Struct(upd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	var updated Patient
	err = s.critical(ctx, s.patientKey(patientID), func(ctx context.Context, repo Repository) error {
		patient, ok, err := repo.GetPatient(ctx, patientID)
		if err != nil {
			return fmt.Errorf("load patient: %w", err)
		}
		if !ok {
			return ErrPatientNotFound
		}

		patient.Name = upd.Name
		patient.Email = upd.Email
		patient.PhoneNumber = upd.PhoneNumber
		patient.Age = upd.Age

		if err := repo.ReplacePatient(ctx, patient); err != nil {
			return fmt.Errorf("replace patient: %w", err)
		}
		updated = patient
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, nil, EventProfileUpdated, map[string]any{"patient_id": patientID})
	return &updated, nil
}

type DoctorFilter struct {
	Specialization Specialization // empty matches all
	Query          string         // case-insensitive match on name or specialization
}

// ListDoctors keeps insertion order unless a query is given, in which case
// matches are ranked by rating, best first.
func (s *Service) ListDoctors(ctx context.Context, f DoctorFilter) ([]Doctor, error) {
	var (
		doctors []Doctor
		err     error
	)
	if f.Specialization != "" {
		doctors, err = s.repo.ListDoctorsBySpecialization(ctx, f.Specialization)
	} else {
		doctors, err = s.repo.ListDoctors(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}

	q := strings.TrimSpace(f.Query)
	if q == "" {
		return doctors, nil
	}

	matched := []Doctor{}
	for _, d := range doctors {
		if containsFold(d.Name, q) || containsFold(string(d.Specialization), q) {
			matched = append(matched, d)
		}
	}
	sortByRating(matched)
	return matched, nil
}

const maxRecommendations = 3

// RecommendedDoctors returns up to three doctors whose specialization appears
// in the patient's medical history, best rated first.
func (s *Service) RecommendedDoctors(ctx context.Context, patientID string) ([]Doctor, error) {
	patient, ok, err := s.repo.GetPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}
	if !ok {
		return nil, ErrPatientNotFound
	}

	wanted := make(map[Specialization]bool, len(patient.MedicalHistory))
	for _, spec := range patient.MedicalHistory {
		wanted[spec] = true
	}

	doctors, err := s.repo.ListDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}

	out := []Doctor{}
	for _, d := range doctors {
		if wanted[d.Specialization] {
			out = append(out, d)
		}
	}
	sortByRating(out)
	if len(out) > maxRecommendations {
		out = out[:maxRecommendations]
	}
	return out, nil
}

func sortByRating(doctors []Doctor) {
	sort.SliceStable(doctors, func(i, j int) bool {
		return doctors[i].Rating > doctors[j].Rating
	})
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
