package api

import (
	"net/http"

	"turfdesk/internal/backend"
	"turfdesk/internal/service"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// statusFor maps service and data service errors onto HTTP codes. Order
// matters: a 409 from the data service is also a remote error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrCartEmpty):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound), errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSlotBlocked), errors.Is(err, backend.ErrSlotUnavailable):
		return http.StatusConflict
	case errors.Is(err, backend.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, backend.ErrRemote):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": msg}. Data service failures carry the
// server's own text; unexpected errors are logged and hidden.
func respondError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch {
	case status == http.StatusInternalServerError:
		logger.Error().Err(err).Msg("request failed")
		msg = "internal error"
	case errors.Is(err, backend.ErrRemote):
		msg = backend.Message(err)
	}
	writeError(w, status, msg)
}
