package auth

import (
	"maps"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/aelexs/dictsmoke/internal/domain"
)

// Session holds the Authorization header shared by every REST call.
//
// It starts empty. TokenProvider.RefreshSession is the only writer and
// must complete before the first request that needs authentication;
// readers are safe to run concurrently with later refreshes.
type Session struct {
	mu        sync.RWMutex
	header    map[string]string
	token     string
	expiresAt time.Time
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{header: map[string]string{}}
}

// SetToken replaces the session's header map with a single
// Authorization entry for token. Earlier entries are discarded.
func (s *Session) SetToken(token string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.header = map[string]string{
		domain.AuthorizationHeader: domain.BearerPrefix + token,
	}
	s.token = token
	s.expiresAt = expiresAt
}

// Header returns a copy of the current header map.
func (s *Session) Header() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.header)
}

// Authorization returns the Authorization header value, or "" when empty.
func (s *Session) Authorization() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.header[domain.AuthorizationHeader]
}

// ExpiresAt returns the current token's expiry, zero when empty.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Empty reports whether no token has been set.
func (s *Session) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token == ""
}

// Token implements oauth2.TokenSource so the session can feed an
// oauth2.Transport. It never refreshes; an empty session is an error.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return nil, domain.ErrUnauthorized
	}
	return &oauth2.Token{
		AccessToken: s.token,
		TokenType:   "Bearer",
		Expiry:      s.expiresAt,
	}, nil
}

// Transport wraps base so that each request carries the session's current
// Authorization header. Requests made while the session is empty go out
// without one.
func (s *Session) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &sessionTransport{
		session: s,
		base:    base,
		bearer:  &oauth2.Transport{Source: s, Base: base},
	}
}

type sessionTransport struct {
	session *Session
	base    http.RoundTripper
	bearer  *oauth2.Transport
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.session.Empty() {
		return t.base.RoundTrip(req)
	}
	return t.bearer.RoundTrip(req)
}

var _ oauth2.TokenSource = (*Session)(nil)
