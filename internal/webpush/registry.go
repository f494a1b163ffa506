package webpush

import (
	"strings"
	"sync"
)

// AuthTokenRegistry maps endpoint URL patterns to gateway bearer tokens.
// Matching is case-sensitive plain substring containment over an ordered
// list; the first registered match wins, so earlier registrations take
// precedence. Duplicate patterns are retained.
type AuthTokenRegistry struct {
	mu      sync.RWMutex
	entries []authTokenEntry
}

type authTokenEntry struct {
	pattern string
	token   string
}

func NewAuthTokenRegistry() *AuthTokenRegistry {
	return &AuthTokenRegistry{}
}

// Register appends a pattern/token pair. Entries live for the process; there
// is no expiry or removal.
func (r *AuthTokenRegistry) Register(pattern, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, authTokenEntry{pattern: pattern, token: token})
}

// Resolve scans in registration order and returns the token of the first
// entry whose pattern is a substring of endpoint.
func (r *AuthTokenRegistry) Resolve(endpoint string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if strings.Contains(endpoint, e.pattern) {
			return e.token, true
		}
	}
	return "", false
}
