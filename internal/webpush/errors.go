package webpush

import "errors"

// Validation errors are detected synchronously, before any I/O, and are never
// retried. Wrap sites add detail with fmt.Errorf("%w: ..."); callers match
// with errors.Is.
var (
	ErrMissingMessage         = errors.New("message is required")
	ErrPayloadTooLarge        = errors.New("payload too large")
	ErrMissingEncryptionKeys  = errors.New("subscription has no p256dh/auth encryption keys")
	ErrInvalidAuthTokenLength = errors.New("subscription auth secret must be 16 bytes")
	ErrInvalidClientKey       = errors.New("subscription p256dh key is not a valid P-256 point")
	ErrInvalidPeerKey         = errors.New("peer public key is not a valid uncompressed P-256 point")
	ErrInvalidKeyLength       = errors.New("public key must be 65 bytes uncompressed")
	ErrInvalidContextLength   = errors.New("key context must be 135 bytes")
	ErrMissingEndpoint        = errors.New("subscription endpoint is required")
	ErrMissingAuthToken       = errors.New("no auth token registered for GCM endpoint")
)
