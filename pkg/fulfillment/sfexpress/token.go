package sfexpress

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// expirySafetyBuffer is subtracted from the provider-declared expiry so a
// token is never used right at the edge of expiry.
const expirySafetyBuffer = 60 * time.Second

// credential is a bearer token together with its expiry. Owned exclusively
// by tokenManager and replaced wholesale on refresh.
type credential struct {
	token     string
	expiresAt time.Time
}

// tokenManager owns the lifecycle of the carrier bearer credential:
// acquisition, expiry tracking, caching, single-flight refresh under
// concurrency, and invalidation on rejection. Each client instance owns
// its own tokenManager; there is no cross-process shared state.
type tokenManager struct {
	mu     sync.RWMutex
	cached *credential

	group  singleflight.Group
	buffer time.Duration

	// fetch performs one token acquisition against the carrier.
	fetch func(ctx context.Context) (*credential, error)

	// now is replaceable for expiry tests.
	now func() time.Time
}

func newTokenManager(fetch func(ctx context.Context) (*credential, error)) *tokenManager {
	return &tokenManager{
		buffer: expirySafetyBuffer,
		fetch:  fetch,
		now:    time.Now,
	}
}

// Token returns a currently valid bearer token, transparently refreshing if
// absent or expired. Concurrent callers awaiting a refresh share the one
// in-flight acquisition and receive its result, success or failure.
func (m *tokenManager) Token(ctx context.Context) (string, error) {
	if tok, ok := m.valid(); ok {
		return tok, nil
	}

	v, err, _ := m.group.Do("token", func() (any, error) {
		// A refresh that completed while this caller was queued wins.
		if tok, ok := m.valid(); ok {
			return tok, nil
		}

		fresh, err := m.fetch(ctx)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.cached = fresh
		m.mu.Unlock()
		return fresh.token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate clears the cached credential, forcing the next Token call to
// perform a fresh acquisition.
func (m *tokenManager) Invalidate() {
	m.mu.Lock()
	m.cached = nil
	m.mu.Unlock()
}

// valid returns the cached token when it is still inside the safety buffer.
func (m *tokenManager) valid() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cached == nil {
		return "", false
	}
	if !m.now().Before(m.cached.expiresAt.Add(-m.buffer)) {
		return "", false
	}
	return m.cached.token, true
}
