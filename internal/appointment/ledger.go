package appointment

import (
	"context"
	"fmt"
	"sort"
	"time"
)

type View string

const (
	ViewAll       View = ""
	ViewUpcoming  View = "upcoming"
	ViewPast      View = "past"
	ViewCancelled View = "cancelled"
	ViewToday     View = "today"
)

func ParseView(raw string) (View, bool) {
	switch v := View(raw); v {
	case ViewAll, ViewUpcoming, ViewPast, ViewCancelled, ViewToday:
		return v, true
	case "all":
		return ViewAll, true
	}
	return "", false
}

// Ledger exposes appointments per patient and derives the per-doctor view by
// scanning every patient. Nothing is indexed or cached.
type Ledger struct {
	repo Repository
}

func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

func (l *Ledger) AppointmentsForPatient(ctx context.Context, patientID string) ([]Appointment, error) {
	patient, ok, err := l.repo.GetPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}
	if !ok {
		return nil, ErrPatientNotFound
	}
	return patient.Appointments, nil
}

func (l *Ledger) AppointmentsForDoctor(ctx context.Context, doctorID string) ([]Appointment, error) {
	return appointmentsForDoctor(ctx, l.repo, doctorID)
}

func appointmentsForDoctor(ctx context.Context, repo Repository, doctorID string) ([]Appointment, error) {
	patients, err := repo.ListPatients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}

	var result []Appointment
	for _, p := range patients {
		for _, a := range p.Appointments {
			if a.DoctorID == doctorID {
				result = append(result, a)
			}
		}
	}
	return result, nil
}

// findOwner locates the patient holding the appointment.
func findOwner(ctx context.Context, repo Repository, appointmentID string) (Patient, int, error) {
	patients, err := repo.ListPatients(ctx)
	if err != nil {
		return Patient{}, -1, fmt.Errorf("list patients: %w", err)
	}
	for _, p := range patients {
		if i, ok := p.findAppointment(appointmentID); ok {
			return p, i, nil
		}
	}
	return Patient{}, -1, ErrAppointmentNotFound
}

// Upcoming: scheduled and strictly after now, earliest first.
func Upcoming(appts []Appointment, now time.Time) []Appointment {
	out := filter(appts, func(a Appointment) bool {
		return a.Status == StatusScheduled && a.Instant.After(now)
	})
	sortAscending(out)
	return out
}

// Past: completed, or any status with an instant before now, latest first.
func Past(appts []Appointment, now time.Time) []Appointment {
	out := filter(appts, func(a Appointment) bool {
		return a.Status == StatusCompleted || a.Instant.Before(now)
	})
	sortDescending(out)
	return out
}

func Cancelled(appts []Appointment) []Appointment {
	out := filter(appts, func(a Appointment) bool {
		return a.Status == StatusCancelled
	})
	sortDescending(out)
	return out
}

// Today: same calendar day as now in now's location, earliest first.
func Today(appts []Appointment, now time.Time) []Appointment {
	y, m, d := now.Date()
	loc := now.Location()
	out := filter(appts, func(a Appointment) bool {
		ay, am, ad := a.Instant.In(loc).Date()
		return ay == y && am == m && ad == d
	})
	sortAscending(out)
	return out
}

func ApplyView(view View, appts []Appointment, now time.Time) []Appointment {
	switch view {
	case ViewUpcoming:
		return Upcoming(appts, now)
	case ViewPast:
		return Past(appts, now)
	case ViewCancelled:
		return Cancelled(appts)
	case ViewToday:
		return Today(appts, now)
	}
	return append([]Appointment{}, appts...)
}

func filter(appts []Appointment, keep func(Appointment) bool) []Appointment {
	out := []Appointment{}
	for _, a := range appts {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func sortAscending(appts []Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		return appts[i].Instant.Before(appts[j].Instant)
	})
}

func sortDescending(appts []Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		return appts[i].Instant.After(appts[j].Instant)
	})
}
