package webpush

import (
	"crypto/ecdh"
	"crypto/rand"
	"fmt"
)

// publicKeyLength is the size of an uncompressed P-256 point: 0x04 || X(32) || Y(32).
const publicKeyLength = 65

// generateKeyPair creates a fresh ephemeral P-256 key pair. One pair per
// encryption; reusing a pair across messages would break the scheme.
func generateKeyPair() (*ecdh.PrivateKey, []byte, error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("p256 keygen: %w", err)
	}
	return priv, priv.PublicKey().Bytes(), nil
}

// parsePeerKey validates and parses a raw uncompressed P-256 public key.
func parsePeerKey(raw []byte) (*ecdh.PublicKey, error) {
	if len(raw) != publicKeyLength {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidPeerKey, len(raw))
	}
	pub, err := ecdh.P256().NewPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeerKey, err)
	}
	return pub, nil
}

func computeSharedSecret(priv *ecdh.PrivateKey, peer *ecdh.PublicKey) ([]byte, error) {
	shared, err := priv.ECDH(peer)
	if err != nil {
		return nil, fmt.Errorf("p256 ecdh: %w", err)
	}
	return shared, nil
}
