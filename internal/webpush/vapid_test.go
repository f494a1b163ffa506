package webpush

import (
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestVAPIDKeyFromMnemonicDeterministic(t *testing.T) {
	a, err := VAPIDKeyFromMnemonic(testMnemonic)
	require.NoError(t, err)
	b, err := VAPIDKeyFromMnemonic(testMnemonic)
	require.NoError(t, err)
	require.Zero(t, a.D.Cmp(b.D), "same mnemonic must derive the same key")

	_, err = VAPIDKeyFromMnemonic("")
	require.Error(t, err)
	_, err = VAPIDKeyFromMnemonic("definitely not a bip39 phrase")
	require.Error(t, err)
}

func TestVAPIDHeaders(t *testing.T) {
	key, err := GenerateVAPIDKey()
	require.NoError(t, err)
	vapid, err := NewVAPID(key, "mailto:ops@example.test")
	require.NoError(t, err)

	authz, cryptoKey, err := vapid.Headers("https://push.example.test/sub/abc123")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(authz, "WebPush "))
	tokenString := strings.TrimPrefix(authz, "WebPush ")

	tok, err := jwt.Parse(tokenString, func(*jwt.Token) (any, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"ES256"}))
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims, ok := tok.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, "https://push.example.test", claims["aud"])
	require.Equal(t, "mailto:ops@example.test", claims["sub"])

	require.True(t, strings.HasPrefix(cryptoKey, "p256ecdsa="))
	pub, err := decodeKey(strings.TrimPrefix(cryptoKey, "p256ecdsa="))
	require.NoError(t, err)
	require.Len(t, pub, 65)
}

func TestVAPIDTokenCachedPerAudience(t *testing.T) {
	key, err := GenerateVAPIDKey()
	require.NoError(t, err)
	vapid, err := NewVAPID(key, "")
	require.NoError(t, err)

	a, _, err := vapid.Headers("https://push.example.test/sub/one")
	require.NoError(t, err)
	b, _, err := vapid.Headers("https://push.example.test/sub/two")
	require.NoError(t, err)
	require.Equal(t, a, b, "same audience must reuse the cached token")

	c, _, err := vapid.Headers("https://other.example.test/sub/three")
	require.NoError(t, err)
	require.NotEqual(t, a, c, "different audiences must not share tokens")
}

func TestNewVAPIDRejectsNilKey(t *testing.T) {
	_, err := NewVAPID(nil, "")
	require.Error(t, err)
}
