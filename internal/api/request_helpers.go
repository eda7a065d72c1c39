package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sessionsdev/user-auth-microservice/internal/api/shared"
)

// userIDParam is the chi path parameter naming a user.
const userIDParam = "id"

// pathUserID parses the {id} path parameter. On failure it writes a 404
// naming the raw value, since no user can match it, and returns false.
func pathUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, userIDParam)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		shared.RespondWithError(w, r, http.StatusNotFound, userNotFoundMessage(raw))
		return 0, false
	}
	return id, true
}

func userNotFoundMessage(id any) string {
	return fmt.Sprintf("User %v does not exist", id)
}

// decodeAndValidate decodes the JSON body into v and validates it. On failure
// it writes the validation response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgValidationFailed, err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgValidationFailed, err)
		return false
	}
	return true
}
