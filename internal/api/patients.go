package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/clinic-appointment-engine/internal/appointment"
	"github.com/hackgods/clinic-appointment-engine/internal/records"
)

func getPatientHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patient, ok, err := svc.GetPatient(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err)
			return
		}
		if !ok {
			handleServiceError(w, appointment.ErrPatientNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toPatientResponse(patient))
	}
}

func updatePatientProfileHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PatientProfileRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		patient, err := svc.UpdatePatientProfile(r.Context(), chi.URLParam(r, "id"), appointment.PatientProfileUpdate{
			ProfileUpdate: appointment.ProfileUpdate{
				Name:        req.Name,
				Email:       req.Email,
				PhoneNumber: req.PhoneNumber,
			},
			Age: req.Age,
		})
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPatientResponse(*patient))
	}
}

func patientAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, ok := viewParam(w, r)
		if !ok {
			return
		}

		appts, err := svc.PatientAppointments(r.Context(), chi.URLParam(r, "id"), view)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponses(appts))
	}
}

func recommendedDoctorsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctors, err := svc.RecommendedDoctors(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toDoctorResponses(doctors))
	}
}

// healthRecordsHandler serves the patient's read-only health records of one
// kind: lab-results, vaccinations, prescriptions or medical-bills.
func healthRecordsHandler(svc *appointment.Service, store *records.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := records.ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			handleServiceError(w, err)
			return
		}

		patient, ok, err := svc.GetPatient(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err)
			return
		}
		if !ok {
			handleServiceError(w, appointment.ErrPatientNotFound)
			return
		}

		out, err := store.Get(patient, kind)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
