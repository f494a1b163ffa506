package webpush

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	contentEncryptionKeyLength = 16 // AES-128
	nonceLength                = 12 // GCM standard nonce size
	pseudoRandomKeyLength      = 32
)

// authInfo is the constant info string for the first derivation stage.
var authInfo = []byte("Content-Encoding: auth\x00")

// deriveKey is HKDF-SHA256 restricted to a single expansion round, which is
// all the protocol ever needs (outputs of 32, 16 and 12 bytes).
func deriveKey(salt, ikm, info []byte, length int) ([]byte, error) {
	if length > sha256.Size {
		return nil, fmt.Errorf("hkdf output length %d exceeds a single round", length)
	}
	out := make([]byte, length)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, salt, info), out); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return out, nil
}

type messageKeys struct {
	cek   []byte
	nonce []byte
}

// deriveMessageKeys runs the full derivation chain for one message: the auth
// secret and shared secret yield a pseudo-random key, which the salt and the
// key-agreement context stretch into the content encryption key and nonce.
func deriveMessageKeys(authSecret, sharedSecret, clientPublicKey, serverPublicKey, salt []byte) (*messageKeys, error) {
	prk, err := deriveKey(authSecret, sharedSecret, authInfo, pseudoRandomKeyLength)
	if err != nil {
		return nil, err
	}

	context, err := buildContext(clientPublicKey, serverPublicKey)
	if err != nil {
		return nil, err
	}

	cekInfo, err := buildInfo("aesgcm", context)
	if err != nil {
		return nil, err
	}
	cek, err := deriveKey(salt, prk, cekInfo, contentEncryptionKeyLength)
	if err != nil {
		return nil, err
	}

	nonceInfo, err := buildInfo("nonce", context)
	if err != nil {
		return nil, err
	}
	nonce, err := deriveKey(salt, prk, nonceInfo, nonceLength)
	if err != nil {
		return nil, err
	}

	return &messageKeys{cek: cek, nonce: nonce}, nil
}
