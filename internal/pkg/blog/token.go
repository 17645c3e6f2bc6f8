package blog

import (
	"crypto/rand"
	"fmt"
)

const tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// PreviewTokenLength is the length of single-use draft preview tokens.
const PreviewTokenLength = 32

// NewPreviewToken creates a cryptographically secure random Base62 token.
func NewPreviewToken() (string, error) {
	return generateSecureToken(PreviewTokenLength)
}

func generateSecureToken(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid token length: %d", length)
	}

	// Rejection sampling to avoid modulo bias.
	// 248 is the largest multiple of 62 below 256.
	const maxRandomByte = 248

	token := make([]byte, length)
	buf := make([]byte, length*2)
	written := 0

	for written < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read secure random bytes: %w", err)
		}

		for _, b := range buf {
			if b >= maxRandomByte {
				continue
			}
			token[written] = tokenAlphabet[int(b)%len(tokenAlphabet)]
			written++
			if written == length {
				break
			}
		}
	}

	return string(token), nil
}
