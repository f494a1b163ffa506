package webpush

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
)

// sealPayload encrypts the padded record with AES-128-GCM. The record is a
// 2-byte big-endian padding length, that many zero bytes, then the plaintext;
// the 16-byte authentication tag is appended by Seal.
//
// Output length = 2 + padding + len(plaintext) + 16.
func sealPayload(plaintext []byte, padding int, key, nonce []byte) ([]byte, error) {
	if len(key) != contentEncryptionKeyLength {
		return nil, fmt.Errorf("content encryption key must be %d bytes, got %d", contentEncryptionKeyLength, len(key))
	}
	if len(nonce) != nonceLength {
		return nil, fmt.Errorf("gcm nonce must be %d bytes, got %d", nonceLength, len(nonce))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	record := make([]byte, paddingPrefixLength+padding+len(plaintext))
	binary.BigEndian.PutUint16(record[:paddingPrefixLength], uint16(padding))
	copy(record[paddingPrefixLength+padding:], plaintext)

	return gcm.Seal(nil, nonce, record, nil), nil
}
