package webhookauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckBearer(t *testing.T) {
	tests := []struct {
		name        string
		header      string
		secret      string
		expectedErr error
	}{
		{"valid token", "Bearer topsecret", "topsecret", nil},
		{"case-insensitive scheme", "bearer topsecret", "topsecret", nil},
		{"surrounding whitespace", "  Bearer topsecret  ", " topsecret ", nil},
		{"missing secret fails closed", "Bearer topsecret", "", ErrNotConfigured},
		{"blank secret fails closed", "Bearer topsecret", "   ", ErrNotConfigured},
		{"missing header", "", "topsecret", ErrUnauthorized},
		{"wrong scheme", "Basic topsecret", "topsecret", ErrUnauthorized},
		{"empty token", "Bearer ", "topsecret", ErrUnauthorized},
		{"token mismatch", "Bearer wrong", "topsecret", ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBearer(tt.header, tt.secret)
			if tt.expectedErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.expectedErr)
			}
		})
	}
}
