package appointment

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// IsTerminal reports whether no further transition may leave the status.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func ParseStatus(raw string) (AppointmentStatus, bool) {
	switch AppointmentStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusScheduled:
		return StatusScheduled, true
	case StatusCompleted:
		return StatusCompleted, true
	case StatusCancelled:
		return StatusCancelled, true
	}
	return "", false
}

type Specialization string

const (
	SpecializationArthritis           Specialization = "Arthritis"
	SpecializationBrain               Specialization = "Brain"
	SpecializationTumor               Specialization = "Tumor"
	SpecializationLungCancer          Specialization = "Lung Cancer"
	SpecializationDiabeticRetinopathy Specialization = "Diabetic Retinopathy"
	SpecializationGoiter              Specialization = "Goiter"
)

var Specializations = []Specialization{
	SpecializationArthritis,
	SpecializationBrain,
	SpecializationTumor,
	SpecializationLungCancer,
	SpecializationDiabeticRetinopathy,
	SpecializationGoiter,
}

// ParseSpecialization matches case-insensitively and accepts "lung_cancer"
// style spellings.
func ParseSpecialization(raw string) (Specialization, bool) {
	norm := strings.ReplaceAll(strings.TrimSpace(raw), "_", " ")
	for _, s := range Specializations {
		if strings.EqualFold(string(s), norm) {
			return s, true
		}
	}
	return "", false
}

type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
)

// Weekdays are the days a doctor can be configured for. Sunday is not one.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

func ParseWeekday(raw string) (Weekday, bool) {
	for _, d := range Weekdays {
		if strings.EqualFold(string(d), strings.TrimSpace(raw)) {
			return d, true
		}
	}
	return "", false
}

// WeekdayOf maps t onto the configured weekdays; ok is false on Sunday.
func WeekdayOf(t time.Time) (Weekday, bool) {
	if t.Weekday() == time.Sunday {
		return "", false
	}
	return Weekdays[int(t.Weekday())-1], true
}

var ErrInvalidTimeSlot = errors.New("invalid time slot")

const clockLayout = "15:04"

// TimeSlot is a time-of-day window such as 09:00-12:00. It carries no date.
type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (ts TimeSlot) Validate() error {
	start, err := time.Parse(clockLayout, ts.Start)
	if err != nil {
		return fmt.Errorf("%w: start %q is not HH:MM", ErrInvalidTimeSlot, ts.Start)
	}
	end, err := time.Parse(clockLayout, ts.End)
	if err != nil {
		return fmt.Errorf("%w: end %q is not HH:MM", ErrInvalidTimeSlot, ts.End)
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: start %s is not before end %s", ErrInvalidTimeSlot, ts.Start, ts.End)
	}
	return nil
}

func (ts TimeSlot) String() string {
	return ts.Start + "-" + ts.End
}

type Availability map[Weekday][]TimeSlot

func (a Availability) clone() Availability {
	if a == nil {
		return nil
	}
	out := make(Availability, len(a))
	for day, slots := range a {
		out[day] = append([]TimeSlot(nil), slots...)
	}
	return out
}

type Doctor struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	PhoneNumber    string         `json:"phone_number"`
	Email          string         `json:"email"`
	Password       string         `json:"-"`
	Specialization Specialization `json:"specialization"`
	Experience     int            `json:"experience"`
	Availability   Availability   `json:"availability"`
	Rating         float64        `json:"rating"`
}

// clone returns a copy that shares no mutable state with d.
func (d Doctor) clone() Doctor {
	d.Availability = d.Availability.clone()
	return d
}

type Patient struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	PhoneNumber    string           `json:"phone_number"`
	Email          string           `json:"email"`
	Password       string           `json:"-"`
	Age            int              `json:"age"`
	MedicalHistory []Specialization `json:"medical_history"`
	Appointments   []Appointment    `json:"appointments"`
}

func (p Patient) clone() Patient {
	p.MedicalHistory = append([]Specialization(nil), p.MedicalHistory...)
	p.Appointments = append([]Appointment(nil), p.Appointments...)
	return p
}

func (p Patient) findAppointment(id string) (int, bool) {
	for i, a := range p.Appointments {
		if a.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Appointment is owned by exactly one patient and refers to its doctor by id.
type Appointment struct {
	ID        string            `json:"id"`
	PatientID string            `json:"patient_id"`
	DoctorID  string            `json:"doctor_id"`
	Instant   time.Time         `json:"instant"`
	Status    AppointmentStatus `json:"status"`
	Reason    string            `json:"reason,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *string
	Payload       []byte
	CreatedAt     time.Time
}
