package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pquerna/otp/totp"

	"github.com/rhinoxpay/rhinoxcore/common"
)

// Authentication headers set by the edge gateway after session validation
const (
	userHeader = "X-Rhinox-User"
	totpHeader = "X-Rhinox-Admin-OTP"
)

// principal extracts the authenticated user id from the request
func principal(r *http.Request) (int64, error) {
	raw := r.Header.Get(userHeader)
	if raw == "" {
		return 0, fmt.Errorf("%w: missing %s header", common.ErrUnauthenticated, userHeader)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: malformed %s header", common.ErrUnauthenticated, userHeader)
	}
	return id, nil
}

// requireAdminOTP validates the one-time password presented for privileged
// operations against the configured admin secret
func (s *Server) requireAdminOTP(r *http.Request) error {
	secret := s.cfg.Auth.AdminTOTPSecret
	if secret == "" {
		return fmt.Errorf("%w: admin operations are not enabled", common.ErrForbidden)
	}
	code := r.Header.Get(totpHeader)
	if code == "" {
		return fmt.Errorf("%w: missing %s header", common.ErrUnauthenticated, totpHeader)
	}
	if !totp.Validate(code, secret) {
		return fmt.Errorf("%w: invalid one-time password", common.ErrForbidden)
	}
	return nil
}

// pathID parses the {id} route variable
func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: malformed id %q", common.ErrInvalidInput, raw)
	}
	return id, nil
}
