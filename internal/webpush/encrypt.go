package webpush

import (
	"crypto/rand"
	"fmt"
)

const (
	// MaxPayloadLength bounds message plus requested padding. The mandatory
	// 2-byte padding prefix is on top, so the plaintext record is at most
	// 4080 bytes.
	MaxPayloadLength = 4078

	paddingPrefixLength = 2
	saltLength          = 16
	authSecretLength    = 16
)

// EncryptionResult carries everything the delivery headers need. One result
// per Encrypt call; the salt and server key pair are fresh every time and
// must never be reused.
type EncryptionResult struct {
	Ciphertext      []byte
	Salt            []byte // 16 bytes
	ServerPublicKey []byte // 65 bytes, uncompressed P-256 point
}

// Encrypt runs the full aesgcm pipeline for one message: ephemeral P-256 key
// agreement against the subscription's p256dh key, HKDF-SHA256 derivation
// keyed by the auth secret, then AES-128-GCM over the padded record.
//
// padding adds that many zero bytes inside the encrypted record to obscure
// the message length; pass 0 for none. The call performs no I/O and fails
// fast on the first invalid input.
func Encrypt(message []byte, sub *Subscription, padding int) (*EncryptionResult, error) {
	if len(message) == 0 {
		return nil, ErrMissingMessage
	}
	if padding < 0 {
		return nil, fmt.Errorf("padding must not be negative, got %d", padding)
	}
	if len(message)+padding > MaxPayloadLength {
		return nil, fmt.Errorf("%w: max %d bytes, got %d message + %d padding",
			ErrPayloadTooLarge, MaxPayloadLength, len(message), padding)
	}
	if sub == nil || sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		return nil, ErrMissingEncryptionKeys
	}

	authSecret, err := decodeKey(sub.Keys.Auth)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64", ErrInvalidAuthTokenLength)
	}
	if len(authSecret) != authSecretLength {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidAuthTokenLength, len(authSecret))
	}

	clientPublicKey, err := decodeKey(sub.Keys.P256dh)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64", ErrInvalidClientKey)
	}
	clientPub, err := parsePeerKey(clientPublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClientKey, err)
	}

	serverPriv, serverPublicKey, err := generateKeyPair()
	if err != nil {
		return nil, err
	}
	sharedSecret, err := computeSharedSecret(serverPriv, clientPub)
	if err != nil {
		return nil, err
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("rand salt: %w", err)
	}

	keys, err := deriveMessageKeys(authSecret, sharedSecret, clientPublicKey, serverPublicKey, salt)
	if err != nil {
		return nil, err
	}

	ciphertext, err := sealPayload(message, padding, keys.cek, keys.nonce)
	if err != nil {
		return nil, err
	}

	return &EncryptionResult{
		Ciphertext:      ciphertext,
		Salt:            salt,
		ServerPublicKey: serverPublicKey,
	}, nil
}
