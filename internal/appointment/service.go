package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-appointment-engine/internal/config"
	redisclient "github.com/hackgods/clinic-appointment-engine/internal/redis"
)

const (
	EventAppointmentBooked        = "APPOINTMENT_BOOKED"
	EventAppointmentCancelled     = "APPOINTMENT_CANCELLED"
	EventAppointmentRescheduled   = "APPOINTMENT_RESCHEDULED"
	EventAppointmentStatusUpdated = "APPOINTMENT_STATUS_UPDATED"
	EventAvailabilityUpdated      = "AVAILABILITY_UPDATED"
	EventProfileUpdated           = "PROFILE_UPDATED"
)

var (
	ErrInvalidTime             = errors.New("appointment time must be in the future")
	ErrConflict                = errors.New("an appointment already exists within the conflict window")
	ErrNotCancellable          = errors.New("appointment cannot be cancelled")
	ErrNotReschedulable        = errors.New("appointment cannot be rescheduled")
	ErrAlreadyPast             = errors.New("past appointments cannot be cancelled")
	ErrInvalidStatus           = errors.New("status must be completed or cancelled")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInvalidRequest          = errors.New("invalid request")
	ErrScheduleBusy            = errors.New("schedule is being updated, please retry")
)

// globalLockKey is used for every appointment write when conflicts are
// checked across the doctor's schedule, since one booking then reads the
// appointments of many patients.
const globalLockKey = "schedule"

type Option func(*Service)

// WithClock replaces time.Now as the source of "now".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.log = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

type Service struct {
	repo         Repository
	locker       redisclient.Locker
	calendar     *Calendar
	ledger       *Ledger
	window       time.Duration
	doctorScoped bool
	now          func() time.Time
	log          zerolog.Logger
	metrics      *Metrics
	validate     *validator.Validate
}

func NewService(repo Repository, locker redisclient.Locker, cfg config.Config, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		locker:       locker,
		calendar:     NewCalendar(repo),
		ledger:       NewLedger(repo),
		window:       cfg.ConflictWindow,
		doctorScoped: cfg.ConflictScope == config.ConflictScopeDoctor,
		now:          time.Now,
		log:          zerolog.Nop(),
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}
	if s.window <= 0 {
		s.window = 30 * time.Minute
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type BookRequest struct {
	PatientID string `validate:"required"`
	DoctorID  string `validate:"required"`
	Instant   time.Time
	Reason    string `validate:"max=500"`
}

// Book creates a scheduled appointment for the patient. The instant must be
// strictly in the future and at least the conflict window away from every
// other scheduled appointment of the same patient. The doctor's availability
// calendar is neither consulted nor changed.
func (s *Service) Book(ctx context.Context, req BookRequest) (_ *Appointment, err error) {
	defer func() { s.metrics.observe("book", err) }()

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if !req.Instant.After(s.now()) {
		return nil, ErrInvalidTime
	}

	var created Appointment

	err = s.critical(ctx, s.patientKey(req.PatientID), func(ctx context.Context, repo Repository) error {
		patient, ok, err := repo.GetPatient(ctx, req.PatientID)
		if err != nil {
			return fmt.Errorf("load patient: %w", err)
		}
		if !ok {
			return ErrPatientNotFound
		}

		_, ok, err = repo.GetDoctor(ctx, req.DoctorID)
		if err != nil {
			return fmt.Errorf("load doctor: %w", err)
		}
		if !ok {
			return ErrDoctorNotFound
		}

		if err := s.checkConflict(ctx, repo, patient, req.DoctorID, req.Instant, ""); err != nil {
			return err
		}

		now := s.now()
		appt := Appointment{
			ID:        uuid.NewString(),
			PatientID: patient.ID,
			DoctorID:  req.DoctorID,
			Instant:   req.Instant,
			Status:    StatusScheduled,
			Reason:    req.Reason,
			CreatedAt: now,
			UpdatedAt: now,
		}

		patient.Appointments = append(patient.Appointments, appt)
		if err := repo.ReplacePatient(ctx, patient); err != nil {
			return fmt.Errorf("replace patient: %w", err)
		}

		created = appt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, created.ID, EventAppointmentBooked, map[string]any{
		"patient_id": created.PatientID,
		"doctor_id":  created.DoctorID,
		"instant":    created.Instant,
	})

	return &created, nil
}

// Cancel is the patient-initiated cancellation: only scheduled appointments
// whose instant is still in the future can be cancelled.
func (s *Service) Cancel(ctx context.Context, appointmentID string) (_ *Appointment, err error) {
	defer func() { s.metrics.observe("cancel", err) }()

	updated, err := s.updateAppointment(ctx, appointmentID, func(_ context.Context, _ Repository, _ Patient, appt *Appointment) error {
		if appt.Status != StatusScheduled {
			return ErrNotCancellable
		}
		if !appt.Instant.After(s.now()) {
			return ErrAlreadyPast
		}
		appt.Status = StatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, updated.ID, EventAppointmentCancelled, map[string]any{
		"initiator": "patient",
	})

	return updated, nil
}

// Reschedule moves a scheduled appointment to a new future instant. The id,
// doctor and status are kept.
func (s *Service) Reschedule(ctx context.Context, appointmentID string, newInstant time.Time) (_ *Appointment, err error) {
	defer func() { s.metrics.observe("reschedule", err) }()

	var previous time.Time

	updated, err := s.updateAppointment(ctx, appointmentID, func(ctx context.Context, repo Repository, patient Patient, appt *Appointment) error {
		if appt.Status != StatusScheduled {
			return ErrNotReschedulable
		}
		if !newInstant.After(s.now()) {
			return ErrInvalidTime
		}
		if err := s.checkConflict(ctx, repo, patient, appt.DoctorID, newInstant, appt.ID); err != nil {
			return err
		}
		previous = appt.Instant
		appt.Instant = newInstant
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, updated.ID, EventAppointmentRescheduled, map[string]any{
		"from": previous,
		"to":   updated.Instant,
	})

	return updated, nil
}

// UpdateStatus is the doctor-initiated transition to completed or cancelled.
// Unlike Cancel it has no time restriction.
func (s *Service) UpdateStatus(ctx context.Context, appointmentID string, status AppointmentStatus) (_ *Appointment, err error) {
	defer func() { s.metrics.observe("update_status", err) }()

	if !status.IsTerminal() {
		return nil, ErrInvalidStatus
	}

	updated, err := s.updateAppointment(ctx, appointmentID, func(_ context.Context, _ Repository, _ Patient, appt *Appointment) error {
		if appt.Status != StatusScheduled {
			return ErrInvalidStatusTransition
		}
		appt.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, updated.ID, EventAppointmentStatusUpdated, map[string]any{
		"initiator": "doctor",
		"status":    updated.Status,
	})

	return updated, nil
}

// UpdateAvailability replaces the doctor's windows for one weekday. It is a
// no-op for an unknown doctor.
func (s *Service) UpdateAvailability(ctx context.Context, doctorID string, day Weekday, slots []TimeSlot) (err error) {
	defer func() { s.metrics.observe("update_availability", err) }()

	var applied bool
	err = s.critical(ctx, "doctor:"+doctorID, func(ctx context.Context, repo Repository) error {
		var err error
		applied, err = setSlots(ctx, repo, doctorID, day, slots)
		return err
	})
	if err != nil {
		return err
	}

	if applied {
		s.log.Info().
			Str("doctor_id", doctorID).
			Str("weekday", string(day)).
			Int("slots", len(slots)).
			Msg("availability updated")
		s.recordEvent(ctx, nil, EventAvailabilityUpdated, map[string]any{
			"doctor_id": doctorID,
			"weekday":   day,
			"slots":     slots,
		})
	}
	return nil
}

func (s *Service) GetSlots(ctx context.Context, doctorID string, day Weekday) ([]TimeSlot, error) {
	return s.calendar.GetSlots(ctx, doctorID, day)
}

func (s *Service) GetDoctor(ctx context.Context, id string) (Doctor, bool, error) {
	return s.repo.GetDoctor(ctx, id)
}

func (s *Service) GetPatient(ctx context.Context, id string) (Patient, bool, error) {
	return s.repo.GetPatient(ctx, id)
}

func (s *Service) ListDoctorsBySpecialization(ctx context.Context, spec Specialization) ([]Doctor, error) {
	return s.repo.ListDoctorsBySpecialization(ctx, spec)
}

// PatientAppointments returns the patient's appointments filtered by view.
// Views are recomputed against the clock on every call.
func (s *Service) PatientAppointments(ctx context.Context, patientID string, view View) ([]Appointment, error) {
	appts, err := s.ledger.AppointmentsForPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return ApplyView(view, appts, s.now()), nil
}

func (s *Service) DoctorAppointments(ctx context.Context, doctorID string, view View) ([]Appointment, error) {
	if _, ok, err := s.repo.GetDoctor(ctx, doctorID); err != nil {
		return nil, fmt.Errorf("load doctor: %w", err)
	} else if !ok {
		return nil, ErrDoctorNotFound
	}

	appts, err := s.ledger.AppointmentsForDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return ApplyView(view, appts, s.now()), nil
}

// updateAppointment locates the owning patient, then re-reads it inside the
// critical section and lets apply mutate the appointment before a single
// patient replace.
func (s *Service) updateAppointment(
	ctx context.Context,
	appointmentID string,
	apply func(ctx context.Context, repo Repository, patient Patient, appt *Appointment) error,
) (*Appointment, error) {
	owner, _, err := findOwner(ctx, s.repo, appointmentID)
	if err != nil {
		return nil, err
	}

	var updated Appointment

	err = s.critical(ctx, s.patientKey(owner.ID), func(ctx context.Context, repo Repository) error {
		patient, ok, err := repo.GetPatient(ctx, owner.ID)
		if err != nil {
			return fmt.Errorf("load patient: %w", err)
		}
		if !ok {
			return ErrAppointmentNotFound
		}
		i, ok := patient.findAppointment(appointmentID)
		if !ok {
			return ErrAppointmentNotFound
		}

		appt := patient.Appointments[i]
		if err := apply(ctx, repo, patient, &appt); err != nil {
			return err
		}
		appt.UpdatedAt = s.now()

		patient.Appointments[i] = appt
		if err := repo.ReplacePatient(ctx, patient); err != nil {
			return fmt.Errorf("replace patient: %w", err)
		}

		updated = appt
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// checkConflict applies the conflict window to the patient's own scheduled
// appointments and, in doctor scope, to the doctor's as well.
func (s *Service) checkConflict(ctx context.Context, repo Repository, patient Patient, doctorID string, instant time.Time, excludeID string) error {
	if hasConflict(patient.Appointments, instant, excludeID, s.window) {
		return ErrConflict
	}
	if !s.doctorScoped {
		return nil
	}

	appts, err := appointmentsForDoctor(ctx, repo, doctorID)
	if err != nil {
		return err
	}
	if hasConflict(appts, instant, excludeID, s.window) {
		return ErrConflict
	}
	return nil
}

func hasConflict(appts []Appointment, instant time.Time, excludeID string, window time.Duration) bool {
	for _, a := range appts {
		if a.Status != StatusScheduled || a.ID == excludeID {
			continue
		}
		if absDuration(a.Instant.Sub(instant)) < window {
			return true
		}
	}
	return false
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func (s *Service) patientKey(patientID string) string {
	if s.doctorScoped {
		return globalLockKey
	}
	return "patient:" + patientID
}

// critical runs fn under the scheduling lock for key and inside one
// repository transaction.
func (s *Service) critical(ctx context.Context, key string, fn func(ctx context.Context, repo Repository) error) error {
	err := s.locker.WithLock(ctx, key, func(lockCtx context.Context) error {
		return s.repo.WithinTx(lockCtx, fn)
	})
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		return ErrScheduleBusy
	}
	return err
}

func (s *Service) logEvent(ctx context.Context, appointmentID string, eventType string, payload map[string]any) {
	s.log.Info().
		Str("event", eventType).
		Str("appointment_id", appointmentID).
		Msg("appointment event")

	apptID := appointmentID
	s.recordEvent(ctx, &apptID, eventType, payload)
}

// recordEvent persists an event log entry; failures are logged and dropped.
func (s *Service) recordEvent(ctx context.Context, appointmentID *string, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Msg("failed to marshal event payload")
		data = nil
	}

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: appointmentID,
		Payload:       data,
		CreatedAt:     s.now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.log.Error().Err(err).Str("event", eventType).Msg("failed to insert event log")
	}
}
