package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/team3/iot-shop/internal/pkg/application/apperrors"
	"github.com/team3/iot-shop/pkg/types"
)

var errInvalidBody = apperrors.Validation("Invalid request body")

func writeResponse(w http.ResponseWriter, statusCode int, message string, data any) {
	env := types.Envelope{
		Message: message,
		Status:  types.StatusSuccess,
		Data:    data,
	}

	b, err := json.Marshal(env)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(b)
}

// writeError maps err onto a status code and writes a failure envelope.
// Unexpected errors are logged and hidden from the client.
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	statusCode := http.StatusInternalServerError

	switch {
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrConflict):
		statusCode = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrAuth):
		statusCode = http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrPermission):
		statusCode = http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, apperrors.ErrExternalService):
		statusCode = http.StatusInternalServerError
	}

	message := apperrors.Message(err, "Internal server error")

	if statusCode == http.StatusInternalServerError {
		logger.Error().Err(err).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", statusCode).Msg("request rejected")
	}

	b, _ := json.Marshal(types.Envelope{Message: message, Status: types.StatusFailure})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(b)
}

func decodeBody(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return errInvalidBody
	}
	return nil
}
