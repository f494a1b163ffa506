package webpush

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

const (
	// Legacy GCM subscriptions carry this endpoint; such gateways do not speak
	// the standard Web Push wire format yet and are rewritten to the
	// transitional gateway below, path suffix (registration id) preserved.
	gcmEndpointPrefix             = "https://android.googleapis.com/gcm/send"
	transitionalGCMEndpointPrefix = "https://gcm-http.googleapis.com/gcm"

	// DefaultTTL is four weeks, the longest retention push services honour.
	DefaultTTL = 2419200

	maxResponseBodyBytes = 1 << 20 // 1 MiB
)

// Doer is the single HTTP capability the sender needs. *http.Client
// satisfies it; tests inject fakes.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// DeliveryResult is the outcome of one delivery attempt. Expired marks 4xx
// responses: by protocol convention the subscription is no longer valid and
// the caller should drop it. All other non-2xx statuses are returned as-is
// for the caller to interpret.
type DeliveryResult struct {
	StatusCode int
	Status     string
	Body       []byte
	Expired    bool
}

// Sender delivers encrypted payloads to push endpoints. It performs exactly
// one POST per Send and never retries; callers that need bounded latency
// pass a context with a deadline.
type Sender struct {
	client Doer
	tokens *AuthTokenRegistry
	vapid  *VAPID
	ttl    int
}

type SenderOption func(*Sender)

// WithHTTPClient replaces the transport used for delivery.
func WithHTTPClient(client Doer) SenderOption {
	return func(s *Sender) { s.client = client }
}

// WithTokenRegistry shares a registry between senders.
func WithTokenRegistry(r *AuthTokenRegistry) SenderOption {
	return func(s *Sender) { s.tokens = r }
}

// WithTTL sets the TTL header value in seconds.
func WithTTL(seconds int) SenderOption {
	return func(s *Sender) { s.ttl = seconds }
}

// WithVAPID enables VAPID self-identification for endpoints that have no
// registry token. Legacy GCM endpoints never get VAPID headers.
func WithVAPID(v *VAPID) SenderOption {
	return func(s *Sender) { s.vapid = v }
}

func NewSender(opts ...SenderOption) *Sender {
	s := &Sender{
		client: &http.Client{},
		tokens: NewAuthTokenRegistry(),
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterAuthToken adds a pattern/token pair to the sender's registry.
func (s *Sender) RegisterAuthToken(pattern, token string) {
	s.tokens.Register(pattern, token)
}

// Send encrypts message for the subscription and POSTs it to the endpoint.
// An empty message performs a header-only push: no body, no encryption
// headers. Validation and encryption failures are returned before any I/O;
// transport errors are surfaced unchanged.
func (s *Sender) Send(ctx context.Context, sub *Subscription, message []byte) (*DeliveryResult, error) {
	if sub == nil || strings.TrimSpace(sub.Endpoint) == "" {
		return nil, ErrMissingEndpoint
	}
	endpoint := rewriteEndpoint(sub.Endpoint)

	headers := http.Header{}
	headers.Set("TTL", strconv.Itoa(s.ttl))

	var body []byte
	var cryptoKey string
	if len(message) > 0 {
		res, err := Encrypt(message, sub, 0)
		if err != nil {
			return nil, err
		}
		body = res.Ciphertext
		cryptoKey = "dh=" + encodeKey(res.ServerPublicKey)
		headers.Set("Content-Encoding", "aesgcm")
		headers.Set("Encryption", "salt="+encodeKey(res.Salt))
	}

	isGCM := strings.HasPrefix(sub.Endpoint, gcmEndpointPrefix)
	token, found := s.tokens.Resolve(sub.Endpoint)
	if !found {
		token, found = s.tokens.Resolve(endpoint)
	}
	switch {
	case found:
		headers.Set("Authorization", "key="+token)
	case isGCM:
		return nil, ErrMissingAuthToken
	case s.vapid != nil:
		authz, vapidKey, err := s.vapid.Headers(endpoint)
		if err != nil {
			return nil, err
		}
		headers.Set("Authorization", authz)
		if cryptoKey != "" {
			cryptoKey += ";" + vapidKey
		} else {
			cryptoKey = vapidKey
		}
	}
	if cryptoKey != "" {
		headers.Set("Crypto-Key", cryptoKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build push request: %w", err)
	}
	for k, vs := range headers {
		req.Header[k] = vs
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push delivery: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read push response: %w", err)
	}

	return &DeliveryResult{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       respBody,
		Expired:    resp.StatusCode >= 400 && resp.StatusCode < 500,
	}, nil
}

func rewriteEndpoint(endpoint string) string {
	if strings.HasPrefix(endpoint, gcmEndpointPrefix) {
		return transitionalGCMEndpointPrefix + strings.TrimPrefix(endpoint, gcmEndpointPrefix)
	}
	return endpoint
}
