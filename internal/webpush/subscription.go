package webpush

import (
	"encoding/base64"
	"strings"
)

// Subscription mirrors the PushSubscription JSON a browser hands out.
//
// Endpoint is only required for delivery; Encrypt needs just the keys.
type Subscription struct {
	Endpoint string           `json:"endpoint"`
	Keys     SubscriptionKeys `json:"keys"`
}

type SubscriptionKeys struct {
	P256dh string `json:"p256dh"` // base64url, 65-byte uncompressed P-256 point
	Auth   string `json:"auth"`   // base64url, 16-byte shared auth secret
}

// decodeKey decodes url-safe base64 with or without padding characters.
func decodeKey(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}

// encodeKey is the wire encoding for header values: url-safe base64, no padding.
func encodeKey(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}
