package webhookauth

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured means the server-side secret is missing. Handlers must
// map this to a 500, not a 401: callers should not be told "unauthorized"
// when the real cause is a deployment error.
var ErrNotConfigured = errors.New("webhook secret is not configured")

// ErrUnauthorized covers missing, malformed or mismatched credentials.
var ErrUnauthorized = errors.New("unauthorized")

// CheckBearer verifies an Authorization: Bearer <token> header against the
// configured secret. Comparison is plain string equality; the providers
// deliver the token over TLS and retry on rejection.
func CheckBearer(authorizationHeader, secret string) error {
	if strings.TrimSpace(secret) == "" {
		return ErrNotConfigured
	}

	auth := strings.TrimSpace(authorizationHeader)
	if auth == "" {
		return fmt.Errorf("%w: missing authorization header", ErrUnauthorized)
	}
	if !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return fmt.Errorf("%w: authorization header is not a bearer token", ErrUnauthorized)
	}
	token := strings.TrimSpace(auth[7:])
	if token == "" {
		return fmt.Errorf("%w: empty bearer token", ErrUnauthorized)
	}
	if token != strings.TrimSpace(secret) {
		return fmt.Errorf("%w: bearer token mismatch", ErrUnauthorized)
	}
	return nil
}
