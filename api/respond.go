package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/log"
)

type errorPayload struct {
	Error string `json:"error"`
}

// writeJSON encodes data onto the response with the given status
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Errorf(log.APIServerMgr, "response encode: %v", err)
	}
}

// writeError maps a domain error onto its HTTP status and serves the message
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Errorf(log.APIServerMgr, "request failed: %v", err)
	}
	writeJSON(w, status, errorPayload{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound),
		errors.Is(err, common.ErrRateUnavailable):
		return http.StatusNotFound
	case errors.Is(err, common.ErrInvalidInput),
		errors.Is(err, common.ErrInvalidTransition),
		errors.Is(err, common.ErrInsufficientFunds),
		errors.Is(err, common.ErrPaymentMethodMismatch):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(err, common.ErrConflict):
		return http.StatusServiceUnavailable
	case errors.Is(err, common.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
