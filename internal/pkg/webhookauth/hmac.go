package webhookauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// VerifyHMACSignature checks an HMAC-SHA256 hex signature computed over
// the raw, unparsed request body. The signature comes from the dedicated
// header or, as a fallback, from Authorization: sha256=<sig>. The body
// must be captured once and reused for both verification and JSON parsing.
func VerifyHMACSignature(payload []byte, signatureHeader, authorizationHeader, secret string) error {
	if strings.TrimSpace(secret) == "" {
		return ErrNotConfigured
	}

	sig := strings.TrimSpace(signatureHeader)
	if sig == "" {
		auth := strings.TrimSpace(authorizationHeader)
		if strings.HasPrefix(strings.ToLower(auth), "sha256=") {
			sig = strings.TrimSpace(auth[7:])
		}
	}
	sig = strings.TrimPrefix(strings.TrimPrefix(sig, "sha256="), "SHA256=")
	if sig == "" {
		return fmt.Errorf("%w: missing signature header", ErrUnauthorized)
	}

	decoded, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return fmt.Errorf("%w: signature is not valid hex", ErrUnauthorized)
	}

	mac := hmac.New(sha256.New, []byte(strings.TrimSpace(secret)))
	mac.Write(payload)
	if !hmac.Equal(mac.Sum(nil), decoded) {
		return fmt.Errorf("%w: signature mismatch", ErrUnauthorized)
	}
	return nil
}
