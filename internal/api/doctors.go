package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/clinic-appointment-engine/internal/appointment"
)

func listDoctorsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter appointment.DoctorFilter

		if raw := r.URL.Query().Get("specialization"); raw != "" {
			spec, ok := appointment.ParseSpecialization(raw)
			if !ok {
				writeError(w, http.StatusBadRequest, "invalid_specialization", "unknown specialization "+raw)
				return
			}
			filter.Specialization = spec
		}
		filter.Query = r.URL.Query().Get("q")

		doctors, err := svc.ListDoctors(r.Context(), filter)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toDoctorResponses(doctors))
	}
}

func getDoctorHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctor, ok, err := svc.GetDoctor(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err)
			return
		}
		if !ok {
			handleServiceError(w, appointment.ErrDoctorNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toDoctorResponse(doctor))
	}
}

func updateDoctorProfileHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DoctorProfileRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		doctor, err := svc.UpdateDoctorProfile(r.Context(), chi.URLParam(r, "id"), appointment.ProfileUpdate{
			Name:        req.Name,
			Email:       req.Email,
			PhoneNumber: req.PhoneNumber,
		})
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toDoctorResponse(*doctor))
	}
}

func weekdayParam(w http.ResponseWriter, r *http.Request) (appointment.Weekday, bool) {
	raw := chi.URLParam(r, "weekday")
	day, ok := appointment.ParseWeekday(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_weekday", "weekday must be Monday through Saturday")
		return "", false
	}
	return day, true
}

func getAvailabilityHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, ok := weekdayParam(w, r)
		if !ok {
			return
		}

		doctorID := chi.URLParam(r, "id")
		slots, err := svc.GetSlots(r.Context(), doctorID, day)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, AvailabilityResponse{DoctorID: doctorID, Weekday: string(day), Slots: slots})
	}
}

// updateAvailabilityHandler answers 204 even for an unknown doctor, matching
// the calendar's silent no-op.
func updateAvailabilityHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, ok := weekdayParam(w, r)
		if !ok {
			return
		}

		var req AvailabilityRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		for _, slot := range req.Slots {
			if err := slot.Validate(); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_time_slot", err.Error())
				return
			}
		}

		if err := svc.UpdateAvailability(r.Context(), chi.URLParam(r, "id"), day, req.Slots); err != nil {
			handleServiceError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func doctorAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, ok := viewParam(w, r)
		if !ok {
			return
		}

		appts, err := svc.DoctorAppointments(r.Context(), chi.URLParam(r, "id"), view)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponses(appts))
	}
}

func doctorStatsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.DoctorStats(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, stats)
	}
}

func doctorPatientsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patients, err := svc.PatientsForDoctor(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("q"))
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPatientResponses(patients))
	}
}

func doctorPatientDetailHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID := chi.URLParam(r, "id")
		patientID := chi.URLParam(r, "patientID")

		patient, ok, err := svc.GetPatient(r.Context(), patientID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		if !ok {
			handleServiceError(w, appointment.ErrPatientNotFound)
			return
		}

		summary, err := svc.PatientSummary(r.Context(), doctorID, patientID)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, PatientDetailResponse{
			Patient: toPatientResponse(patient),
			Summary: summary,
		})
	}
}
