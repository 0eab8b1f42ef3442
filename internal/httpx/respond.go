package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Khoi123345/bookstore-platform/internal/domain"
)

const timeLayout = time.RFC3339

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}

// writeDomainError maps a domain error kind to its HTTP status. Unknown
// errors become 500 with a generic body; the message is not leaked.
func writeDomainError(w http.ResponseWriter, err error) {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case domain.KindBadRequest:
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
	case domain.KindInvalidState:
		writeError(w, http.StatusBadRequest, "invalid_state", err.Error())
	case domain.KindForbidden:
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
