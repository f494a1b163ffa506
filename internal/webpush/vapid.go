package webpush

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/hkdf"
)

const (
	vapidKeyInfo = "push-agent/vapid-sig/v1"

	// Push services accept VAPID tokens valid for at most 24h; stay well under.
	vapidTokenTTL = 12 * time.Hour

	// Refresh cached tokens a minute before they expire.
	vapidTokenSlack = time.Minute
)

// VAPID signs self-identification tokens for push endpoints that speak the
// standard Web Push protocol. Tokens are ES256 JWTs over the endpoint origin
// and are cached per origin until shortly before expiry.
type VAPID struct {
	key     *ecdsa.PrivateKey
	subject string

	mu    sync.Mutex
	cache map[string]vapidToken
}

type vapidToken struct {
	token     string
	expiresAt time.Time
}

// NewVAPID wraps an ES256 signing key. subject is the contact URI claim
// (typically a mailto: address) and may be empty.
func NewVAPID(key *ecdsa.PrivateKey, subject string) (*VAPID, error) {
	if key == nil {
		return nil, fmt.Errorf("nil VAPID signing key")
	}
	if key.Curve != elliptic.P256() {
		return nil, fmt.Errorf("VAPID signing key must be on P-256")
	}
	return &VAPID{
		key:     key,
		subject: subject,
		cache:   make(map[string]vapidToken),
	}, nil
}

// GenerateVAPIDKey creates a random ES256 signing key.
func GenerateVAPIDKey() (*ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("p256 keygen: %w", err)
	}
	return key, nil
}

// VAPIDKeyFromMnemonic deterministically derives the signing key from a
// BIP-39 mnemonic, so an agent keeps its public identity across restarts
// without persisting key files.
func VAPIDKeyFromMnemonic(mnemonic string) (*ecdsa.PrivateKey, error) {
	mnemonic = strings.TrimSpace(mnemonic)
	if mnemonic == "" {
		return nil, fmt.Errorf("mnemonic is required")
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("not a valid BIP-39 mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, "")

	var raw [32]byte
	rd := hkdf.New(sha256.New, seed, nil, []byte(vapidKeyInfo)) // salt=nil; domain separation via info
	if _, err := io.ReadFull(rd, raw[:]); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}

	// Map the 32 bytes into [1, N-1] so the scalar is always a valid key.
	params := elliptic.P256().Params()
	d := new(big.Int).SetBytes(raw[:])
	d.Mod(d, new(big.Int).Sub(params.N, big.NewInt(1)))
	d.Add(d, big.NewInt(1))

	key := new(ecdsa.PrivateKey)
	key.Curve = elliptic.P256()
	key.D = d
	key.X, key.Y = key.Curve.ScalarBaseMult(d.Bytes())
	return key, nil
}

// PublicKey returns the url-safe base64 encoding of the uncompressed public
// point, the value browsers pass as applicationServerKey.
func (v *VAPID) PublicKey() (string, error) {
	pub, err := v.key.PublicKey.ECDH()
	if err != nil {
		return "", fmt.Errorf("vapid public key: %w", err)
	}
	return encodeKey(pub.Bytes()), nil
}

// Headers returns the Authorization value and the p256ecdsa Crypto-Key
// fragment for the given endpoint.
func (v *VAPID) Headers(endpoint string) (authorization, cryptoKey string, err error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", "", fmt.Errorf("endpoint parse: %w", err)
	}
	audience := u.Scheme + "://" + u.Host

	token, err := v.tokenFor(audience, time.Now())
	if err != nil {
		return "", "", err
	}
	pub, err := v.PublicKey()
	if err != nil {
		return "", "", err
	}
	return "WebPush " + token, "p256ecdsa=" + pub, nil
}

func (v *VAPID) tokenFor(audience string, now time.Time) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if t, ok := v.cache[audience]; ok && now.Before(t.expiresAt.Add(-vapidTokenSlack)) {
		return t.token, nil
	}

	expiresAt := now.Add(vapidTokenTTL)
	claims := jwt.MapClaims{
		"aud": audience,
		"exp": expiresAt.Unix(),
	}
	if v.subject != "" {
		claims["sub"] = v.subject
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(v.key)
	if err != nil {
		return "", fmt.Errorf("vapid sign: %w", err)
	}

	v.cache[audience] = vapidToken{token: token, expiresAt: expiresAt}
	return token, nil
}
