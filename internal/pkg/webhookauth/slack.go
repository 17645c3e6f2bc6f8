package webhookauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Slack signs requests as v0=hex(hmac_sha256("v0:<timestamp>:<body>")).
// The timestamp bounds the replay window.
const slackTimestampTolerance = 5 * time.Minute

// VerifySlackSignature verifies a Slack interactivity request.
func VerifySlackSignature(payload []byte, timestampHeader, signatureHeader, secret string, now time.Time) error {
	if strings.TrimSpace(secret) == "" {
		return ErrNotConfigured
	}

	tsRaw := strings.TrimSpace(timestampHeader)
	if tsRaw == "" {
		return fmt.Errorf("%w: missing slack timestamp header", ErrUnauthorized)
	}
	ts, err := strconv.ParseInt(tsRaw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: malformed slack timestamp header", ErrUnauthorized)
	}
	delta := now.Sub(time.Unix(ts, 0))
	if delta > slackTimestampTolerance || delta < -slackTimestampTolerance {
		return fmt.Errorf("%w: slack timestamp outside tolerance window", ErrUnauthorized)
	}

	sig := strings.TrimSpace(signatureHeader)
	if !strings.HasPrefix(sig, "v0=") {
		return fmt.Errorf("%w: missing or malformed slack signature header", ErrUnauthorized)
	}
	got, err := hex.DecodeString(strings.TrimPrefix(sig, "v0="))
	if err != nil {
		return fmt.Errorf("%w: slack signature is not valid hex", ErrUnauthorized)
	}

	mac := hmac.New(sha256.New, []byte(strings.TrimSpace(secret)))
	fmt.Fprintf(mac, "v0:%s:", tsRaw)
	mac.Write(payload)
	if !hmac.Equal(mac.Sum(nil), got) {
		return fmt.Errorf("%w: slack signature mismatch", ErrUnauthorized)
	}
	return nil
}
