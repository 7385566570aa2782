package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/plate-notify/internal/auth"
	"github.com/plate-notify/internal/middleware"
	"github.com/plate-notify/internal/model"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

// statusFor maps the error taxonomy onto HTTP status codes. Conflict and
// InvalidCredentials deliberately share 400 with BadRequest.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrBadRequest),
		errors.Is(err, model.ErrInvalidCredentials),
		errors.Is(err, model.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, model.MessageResponse{Message: message})
}

// fail writes err as a JSON message. Server-side failures are logged with
// the underlying cause, which never reaches the client.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.WithFields(logrus.Fields{
			"request_id": middleware.GetRequestID(r),
			"path":       r.URL.Path,
		}).WithError(err).Error(message)
	}
	respondError(w, status, message)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Join(model.ErrBadRequest, err)
	}
	return nil
}
