package webhookauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signHex(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyHMACSignature(t *testing.T) {
	payload := []byte(`{"task_id":"t-1"}`)
	secret := "signing-secret"
	valid := signHex(payload, secret)

	tests := []struct {
		name        string
		sigHeader   string
		authHeader  string
		secret      string
		expectedErr error
	}{
		{"dedicated header", valid, "", secret, nil},
		{"sha256 prefix stripped", "sha256=" + valid, "", secret, nil},
		{"uppercase prefix stripped", "SHA256=" + valid, "", secret, nil},
		{"authorization fallback", "", "sha256=" + valid, secret, nil},
		{"missing secret fails closed", valid, "", "", ErrNotConfigured},
		{"missing signature", "", "", secret, ErrUnauthorized},
		{"authorization without scheme ignored", "", valid, secret, ErrUnauthorized},
		{"not hex", "zz-not-hex", "", secret, ErrUnauthorized},
		{"wrong secret", signHex(payload, "other"), "", secret, ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyHMACSignature(payload, tt.sigHeader, tt.authHeader, tt.secret)
			if tt.expectedErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.expectedErr)
			}
		})
	}
}

func TestVerifyHMACSignature_TamperedBody(t *testing.T) {
	secret := "signing-secret"
	sig := signHex([]byte(`{"task_id":"t-1"}`), secret)

	err := VerifyHMACSignature([]byte(`{"task_id":"t-2"}`), sig, "", secret)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
