// Package account describes what the compliance gate needs from the host's
// login subsystem: the current access token and its granted scopes.
package account

import (
	"context"
	"slices"
	"sync"

	"playgate/internal/signer"
)

// Scopes that let the gate fetch verification by account token.
const (
	ScopeCompliance      = "compliance"
	ScopeComplianceBasic = "compliance_basic"
)

// AccessToken is the account access token handed over by the login
// subsystem.
type AccessToken struct {
	KID          string
	MACKey       string
	MACAlgorithm string
	Scopes       []string
}

// HasScope reports whether scope was granted.
func (t *AccessToken) HasScope(scope string) bool {
	return t != nil && slices.Contains(t.Scopes, scope)
}

// AllowsCompliance reports whether the token may be exchanged for a
// compliance token. With age ranges enabled only the full compliance scope
// qualifies.
func (t *AccessToken) AllowsCompliance(useAgeRange bool) bool {
	if t == nil {
		return false
	}
	if useAgeRange {
		return t.HasScope(ScopeCompliance)
	}
	return t.HasScope(ScopeCompliance) || t.HasScope(ScopeComplianceBasic)
}

// MACCredentials returns the key material used to sign Authorization headers.
func (t *AccessToken) MACCredentials() signer.MACCredentials {
	return signer.MACCredentials{KID: t.KID, MACKey: t.MACKey, Algorithm: t.MACAlgorithm}
}

// TokenSource yields the current account access token. A nil token with a
// nil error means nobody is logged in to the account subsystem.
type TokenSource interface {
	CurrentToken(ctx context.Context) (*AccessToken, error)
}

// StaticSource is a TokenSource holding a token set by the host.
type StaticSource struct {
	mu    sync.RWMutex
	token *AccessToken
}

func NewStaticSource(token *AccessToken) *StaticSource {
	return &StaticSource{token: token}
}

func (s *StaticSource) CurrentToken(_ context.Context) (*AccessToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

// Set replaces the current token; nil logs the account out.
func (s *StaticSource) Set(token *AccessToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}
