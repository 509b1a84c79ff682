package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/adminbank/backend/internal/logger"
	"github.com/adminbank/backend/internal/services"
	"go.uber.org/zap"
)

const maxBodyBytes = 1_048_576 // 1 MB

var errMultipleObjects = errors.New("request body must only contain a single JSON object")

type envelope struct {
	Data any `json:"data"`
}

var messages = map[error]string{
	services.ErrAdminNotFound:      "Admin not found",
	services.ErrUserNotFound:       "User not found",
	services.ErrSenderNotFound:     "Sender not found",
	services.ErrReceiverNotFound:   "Receiver not found",
	services.ErrSameUser:           "Sender and receiver must not be the same user",
	services.ErrInsufficientAmount: "Insufficient amount",
	services.ErrAccessDenied:       "User is not authorized to perform this action.",
	services.ErrAlreadyActivated:   "Admin is already activated",
	services.ErrAlreadyDeactivated: "Admin is already deactivated",
	services.ErrUserAlreadyCreated: "User is already created.",
	services.ErrInvalidRole:        "Invalid admin role",
	services.ErrUnknownProcess:     "Invalid transfer type name",
	services.ErrInvalidPayload:     "Invalid request body",
	services.ErrNonPositive:        "Amount must be greater than 0.",
	services.ErrAmountOutOfRange:   "Amount has too many digits.",
}

// StatusFor maps an engine error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrAccessDenied):
		return http.StatusForbidden
	case services.IsBusinessError(err),
		errors.Is(err, services.ErrUnknownProcess),
		errors.Is(err, services.ErrInvalidPayload),
		errors.Is(err, services.ErrNonPositive):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error) string {
	for target, msg := range messages {
		if errors.Is(err, target) {
			return msg
		}
	}
	return err.Error()
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Data: data}); err != nil {
		logger.Log.Error("failed to encode response", zap.Error(err))
	}
}

// writeError answers business failures with {message} and anything else
// with an empty 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.Log.Error("request failed",
			zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		w.WriteHeader(status)
		return
	}
	services.SendErrorResponse(w, messageFor(err), status, nil)
}

// decodeJSON reads exactly one JSON object into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errMultipleObjects
	}
	return nil
}

func badRequest(w http.ResponseWriter, err error) {
	if errors.Is(err, errMultipleObjects) {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}
	services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
}
