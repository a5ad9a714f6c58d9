// Package webpush implements the Web Push protocol pieces the delivery
// service needs: VAPID authentication (RFC 8292) and aes128gcm message
// encryption (RFC 8291, RFC 8188).
package webpush

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Encode returns the unpadded base64url form used by push-service APIs
// and stored subscription keys.
func Encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// Decode accepts base64url with or without padding. Browsers are not
// consistent about padding subscription keys, so stored values may carry
// either form.
func Decode(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, fmt.Errorf("webpush: invalid base64url: %w", err)
	}
	return b, nil
}
