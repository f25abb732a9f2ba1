package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Status names the outcome of a request inside the envelope.
type Status string

const (
	StatusOK           Status = "ok"
	StatusBadRequest   Status = "bad_request"
	StatusUnauthorized Status = "unauthorized"
	StatusForbidden    Status = "forbidden"
	StatusNotFound     Status = "not_found"
	StatusConflict     Status = "conflict"
	StatusError        Status = "error"
)

// Envelope is the standard API response wrapper used across handlers.
type Envelope struct {
	Status Status `json:"status"`
	Body   any    `json:"body"`
}

// Message is the body of rejections and plain informational responses.
type Message struct {
	Message string `json:"message"`
}

// JSON writes body inside the common envelope.
func JSON(w http.ResponseWriter, code int, body any) {
	write(w, code, Envelope{Status: statusFor(code), Body: body})
}

// Error writes a {"message": ...} body with the shared envelope structure.
func Error(w http.ResponseWriter, code int, message string) {
	write(w, code, Envelope{Status: statusFor(code), Body: Message{Message: message}})
}

func statusFor(code int) Status {
	switch code {
	case http.StatusBadRequest:
		return StatusBadRequest
	case http.StatusUnauthorized:
		return StatusUnauthorized
	case http.StatusForbidden:
		return StatusForbidden
	case http.StatusNotFound:
		return StatusNotFound
	case http.StatusConflict:
		return StatusConflict
	}
	if code >= http.StatusInternalServerError {
		return StatusError
	}
	return StatusOK
}

func write(w http.ResponseWriter, code int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("respond: encode payload failed")
	}
}
