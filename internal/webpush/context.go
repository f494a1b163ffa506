package webpush

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// contextLength is the fixed size of the key-agreement context:
// 1 zero byte + (2-byte length + 65-byte key) for each of the two keys.
const contextLength = 1 + 2 + publicKeyLength + 2 + publicKeyLength

// buildContext serializes the two public keys into the layout the derivation
// info strings embed:
//
//	0x00 || uint16be(65) || clientPublicKey || uint16be(65) || serverPublicKey
func buildContext(clientPublicKey, serverPublicKey []byte) ([]byte, error) {
	if len(clientPublicKey) != publicKeyLength {
		return nil, fmt.Errorf("%w: client key is %d bytes", ErrInvalidKeyLength, len(clientPublicKey))
	}
	if len(serverPublicKey) != publicKeyLength {
		return nil, fmt.Errorf("%w: server key is %d bytes", ErrInvalidKeyLength, len(serverPublicKey))
	}

	var keyLen [2]byte
	binary.BigEndian.PutUint16(keyLen[:], publicKeyLength)

	var buf bytes.Buffer
	buf.Grow(contextLength)
	buf.WriteByte(0x00)
	buf.Write(keyLen[:])
	buf.Write(clientPublicKey)
	buf.Write(keyLen[:])
	buf.Write(serverPublicKey)
	return buf.Bytes(), nil
}

// buildInfo constructs the HKDF info string for one derivation label:
//
//	"Content-Encoding: " || label || 0x00 || "P-256" || context
func buildInfo(label string, context []byte) ([]byte, error) {
	if len(context) != contextLength {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidContextLength, len(context))
	}
	var buf bytes.Buffer
	buf.WriteString("Content-Encoding: ")
	buf.WriteString(label)
	buf.WriteByte(0x00)
	buf.WriteString("P-256")
	buf.Write(context)
	return buf.Bytes(), nil
}
