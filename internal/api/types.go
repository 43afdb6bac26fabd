package api

import (
	"time"

	"github.com/hackgods/clinic-appointment-engine/internal/appointment"
)

type LoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

type LoginResponse struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

type CreateAppointmentRequest struct {
	PatientID string    `json:"patient_id"`
	DoctorID  string    `json:"doctor_id"`
	Instant   time.Time `json:"instant"`
	Reason    string    `json:"reason"`
}

type RescheduleRequest struct {
	Instant time.Time `json:"instant"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type AvailabilityRequest struct {
	Slots []appointment.TimeSlot `json:"slots"`
}

type AvailabilityResponse struct {
	DoctorID string                 `json:"doctor_id"`
	Weekday  string                 `json:"weekday"`
	Slots    []appointment.TimeSlot `json:"slots"`
}

type DoctorProfileRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

type PatientProfileRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Age         int    `json:"age"`
}

type AppointmentResponse struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patient_id"`
	DoctorID  string    `json:"doctor_id"`
	Instant   time.Time `json:"instant"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DoctorResponse struct {
	ID             string                   `json:"id"`
	Name           string                   `json:"name"`
	PhoneNumber    string                   `json:"phone_number"`
	Email          string                   `json:"email"`
	Specialization string                   `json:"specialization"`
	Experience     int                      `json:"experience"`
	Rating         float64                  `json:"rating"`
	Availability   appointment.Availability `json:"availability"`
}

type PatientResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	PhoneNumber    string   `json:"phone_number"`
	Email          string   `json:"email"`
	Age            int      `json:"age"`
	MedicalHistory []string `json:"medical_history"`
}

type PatientDetailResponse struct {
	Patient PatientResponse             `json:"patient"`
	Summary *appointment.PatientSummary `json:"summary"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toAppointmentResponse(a appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		PatientID: a.PatientID,
		DoctorID:  a.DoctorID,
		Instant:   a.Instant,
		Status:    string(a.Status),
		Reason:    a.Reason,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toAppointmentResponses(appts []appointment.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentResponse(a))
	}
	return out
}

func toDoctorResponse(d appointment.Doctor) DoctorResponse {
	return DoctorResponse{
		ID:             d.ID,
		Name:           d.Name,
		PhoneNumber:    d.PhoneNumber,
		Email:          d.Email,
		Specialization: string(d.Specialization),
		Experience:     d.Experience,
		Rating:         d.Rating,
		Availability:   d.Availability,
	}
}

func toDoctorResponses(doctors []appointment.Doctor) []DoctorResponse {
	out := make([]DoctorResponse, 0, len(doctors))
	for _, d := range doctors {
		out = append(out, toDoctorResponse(d))
	}
	return out
}

func toPatientResponse(p appointment.Patient) PatientResponse {
	history := make([]string, 0, len(p.MedicalHistory))
	for _, s := range p.MedicalHistory {
		history = append(history, string(s))
	}
	return PatientResponse{
		ID:             p.ID,
		Name:           p.Name,
		PhoneNumber:    p.PhoneNumber,
		Email:          p.Email,
		Age:            p.Age,
		MedicalHistory: history,
	}
}

func toPatientResponses(patients []appointment.Patient) []PatientResponse {
	out := make([]PatientResponse, 0, len(patients))
	for _, p := range patients {
		out = append(out, toPatientResponse(p))
	}
	return out
}
