package appointment

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrPatientNotFound     = fmt.Errorf("patient %w", ErrNotFound)
	ErrDoctorNotFound      = fmt.Errorf("doctor %w", ErrNotFound)
	ErrAppointmentNotFound = fmt.Errorf("appointment %w", ErrNotFound)
	ErrDuplicateID         = errors.New("id already exists")
)

// Repository is the directory store: the system of record for doctors and
// patients. Lookups report absence through the bool, not an error. Replace
// calls overwrite the whole record and are a silent no-op for unknown ids.
type Repository interface {
	GetDoctor(ctx context.Context, id string) (Doctor, bool, error)
	GetPatient(ctx context.Context, id string) (Patient, bool, error)

	// Insertion order
	ListDoctors(ctx context.Context) ([]Doctor, error)
	ListDoctorsBySpecialization(ctx context.Context, spec Specialization) ([]Doctor, error)
	ListPatients(ctx context.Context) ([]Patient, error)

	// Seeding
	CreateDoctor(ctx context.Context, d Doctor) error
	CreatePatient(ctx context.Context, p Patient) error

	ReplaceDoctor(ctx context.Context, d Doctor) error
	ReplacePatient(ctx context.Context, p Patient) error

	// WithinTx runs fn against a repository view whose writes commit together.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
