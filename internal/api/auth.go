package api

import (
	"net/http"

	"github.com/hackgods/clinic-appointment-engine/internal/auth"
)

// loginHandler resolves credentials to an id. No session or token is issued.
func loginHandler(a auth.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		role, err := auth.ParseRole(req.Role)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		id, err := a.Authenticate(r.Context(), req.PhoneNumber, req.Password, role)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{ID: id, Role: string(role)})
	}
}
