package webhookauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Identity provider webhooks carry an id, a unix timestamp and one or more
// versioned signatures over "id.timestamp.body". The timestamp bounds the
// replay window.
const identityTimestampTolerance = 5 * time.Minute

// VerifyIdentitySignature verifies an identity-provider webhook delivery.
// The secret is the provider's whsec_-prefixed base64 signing key. Any one
// matching v1 signature accepts the delivery.
func VerifyIdentitySignature(payload []byte, msgID, msgTimestamp, signatureHeader, secret string, now time.Time) error {
	if strings.TrimSpace(secret) == "" {
		return ErrNotConfigured
	}
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(strings.TrimSpace(secret), "whsec_"))
	if err != nil {
		return fmt.Errorf("%w: signing key is not valid base64", ErrNotConfigured)
	}

	if strings.TrimSpace(msgID) == "" || strings.TrimSpace(msgTimestamp) == "" {
		return fmt.Errorf("%w: missing webhook id or timestamp header", ErrUnauthorized)
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(msgTimestamp), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: malformed timestamp header", ErrUnauthorized)
	}
	delta := now.Sub(time.Unix(ts, 0))
	if delta > identityTimestampTolerance || delta < -identityTimestampTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance window", ErrUnauthorized)
	}

	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.", strings.TrimSpace(msgID), strings.TrimSpace(msgTimestamp))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, part := range strings.Fields(signatureHeader) {
		version, sig, found := strings.Cut(part, ",")
		if !found || version != "v1" {
			continue
		}
		got, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(expected, got) {
			return nil
		}
	}
	return fmt.Errorf("%w: no matching signature", ErrUnauthorized)
}
