package appointment

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

type ConditionCount struct {
	Condition Specialization `json:"condition"`
	Count     int            `json:"count"`
}

type AgeGroupCount struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

type DoctorStats struct {
	TotalAppointments     int              `json:"total_appointments"`
	CompletedAppointments int              `json:"completed_appointments"`
	UpcomingAppointments  int              `json:"upcoming_appointments"`
	TodayAppointments     int              `json:"today_appointments"`
	CompletionRate        int              `json:"completion_rate"`
	PatientsByCondition   []ConditionCount `json:"patients_by_condition"`
	PatientAgeGroups      []AgeGroupCount  `json:"patient_age_groups"`
}

var ageGroups = []struct {
	label    string
	min, max int
}{
	{"0-18", 0, 18},
	{"19-30", 19, 30},
	{"31-50", 31, 50},
	{"51+", 51, 1 << 30},
}

// DoctorStats summarizes the doctor's appointments and the patients who hold
// them. The completion rate is an integer percentage, 0 without appointments.
func (s *Service) DoctorStats(ctx context.Context, doctorID string) (*DoctorStats, error) {
	appts, err := s.DoctorAppointments(ctx, doctorID, ViewAll)
	if err != nil {
		return nil, err
	}
	patients, err := s.PatientsForDoctor(ctx, doctorID, "")
	if err != nil {
		return nil, err
	}

	now := s.now()
	stats := &DoctorStats{
		TotalAppointments:    len(appts),
		UpcomingAppointments: len(Upcoming(appts, now)),
		TodayAppointments:    len(Today(appts, now)),
	}
	for _, a := range appts {
		if a.Status == StatusCompleted {
			stats.CompletedAppointments++
		}
	}
	if stats.TotalAppointments > 0 {
		stats.CompletionRate = stats.CompletedAppointments * 100 / stats.TotalAppointments
	}

	byCondition := make(map[Specialization]int)
	for _, p := range patients {
		for _, c := range p.MedicalHistory {
			byCondition[c]++
		}
	}
	stats.PatientsByCondition = []ConditionCount{}
	for c, n := range byCondition {
		stats.PatientsByCondition = append(stats.PatientsByCondition, ConditionCount{Condition: c, Count: n})
	}
	sort.Slice(stats.PatientsByCondition, func(i, j int) bool {
		a, b := stats.PatientsByCondition[i], stats.PatientsByCondition[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Condition < b.Condition
	})

	for _, g := range ageGroups {
		count := 0
		for _, p := range patients {
			if p.Age >= g.min && p.Age <= g.max {
				count++
			}
		}
		stats.PatientAgeGroups = append(stats.PatientAgeGroups, AgeGroupCount{Range: g.label, Count: count})
	}

	return stats, nil
}

// PatientsForDoctor lists patients holding at least one appointment with the
// doctor, optionally narrowed by a case-insensitive query on name or medical
// history.
func (s *Service) PatientsForDoctor(ctx context.Context, doctorID, query string) ([]Patient, error) {
	patients, err := s.repo.ListPatients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}

	q := strings.TrimSpace(query)
	out := []Patient{}
	for _, p := range patients {
		if !hasAppointmentWith(p, doctorID) {
			continue
		}
		if q != "" && !matchesPatient(p, q) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func hasAppointmentWith(p Patient, doctorID string) bool {
	for _, a := range p.Appointments {
		if a.DoctorID == doctorID {
			return true
		}
	}
	return false
}

func matchesPatient(p Patient, q string) bool {
	if containsFold(p.Name, q) {
		return true
	}
	for _, c := range p.MedicalHistory {
		if containsFold(string(c), q) {
			return true
		}
	}
	return false
}

type PatientSummary struct {
	PatientID        string     `json:"patient_id"`
	AppointmentCount int        `json:"appointment_count"`
	LastVisit        *time.Time `json:"last_visit,omitempty"`
	NextAppointment  *time.Time `json:"next_appointment,omitempty"`
}

// PatientSummary describes one patient's history with one doctor: how many
// appointments, the latest completed visit and the next upcoming one.
func (s *Service) PatientSummary(ctx context.Context, doctorID, patientID string) (*PatientSummary, error) {
	patient, ok, err := s.repo.GetPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}
	if !ok {
		return nil, ErrPatientNotFound
	}

	var withDoctor []Appointment
	for _, a := range patient.Appointments {
		if a.DoctorID == doctorID {
			withDoctor = append(withDoctor, a)
		}
	}

	summary := &PatientSummary{
		PatientID:        patient.ID,
		AppointmentCount: len(withDoctor),
	}

	completed := filter(withDoctor, func(a Appointment) bool { return a.Status == StatusCompleted })
	sortDescending(completed)
	if len(completed) > 0 {
		t := completed[0].Instant
		summary.LastVisit = &t
	}

	if next := Upcoming(withDoctor, s.now()); len(next) > 0 {
		t := next[0].Instant
		summary.NextAppointment = &t
	}

	return summary, nil
}

// PatientForAppointment returns the patient owning the appointment.
func (s *Service) PatientForAppointment(ctx context.Context, appointmentID string) (Patient, error) {
	patient, _, err := findOwner(ctx, s.repo, appointmentID)
	return patient, err
}

// OverdueAppointments lists appointments still scheduled although their
// instant has passed, oldest first. Nothing is transitioned.
func (s *Service) OverdueAppointments(ctx context.Context) ([]Appointment, error) {
	patients, err := s.repo.ListPatients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}

	now := s.now()
	out := []Appointment{}
	for _, p := range patients {
		for _, a := range p.Appointments {
			if a.Status == StatusScheduled && !a.Instant.After(now) {
				out = append(out, a)
			}
		}
	}
	sortAscending(out)
	return out, nil
}
