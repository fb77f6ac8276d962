package sfexpress

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_CachesValidToken(t *testing.T) {
	var calls int32
	m := newTokenManager(func(ctx context.Context) (*credential, error) {
		atomic.AddInt32(&calls, 1)
		return &credential{token: "tok-1", expiresAt: time.Now().Add(2 * time.Hour)}, nil
	})

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		tok, err := m.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, "tok-1", tok)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "a valid cached token must not trigger new acquisitions")
}

func TestTokenManager_RefreshesInsideSafetyBuffer(t *testing.T) {
	var calls int32
	m := newTokenManager(func(ctx context.Context) (*credential, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			// Declared expiry is 30s away: inside the 60s safety buffer on
			// the next read.
			return &credential{token: "tok-short", expiresAt: time.Now().Add(30 * time.Second)}, nil
		}
		return &credential{token: "tok-fresh", expiresAt: time.Now().Add(2 * time.Hour)}, nil
	})

	ctx := context.Background()
	tok, err := m.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-short", tok, "first acquisition returns the fetched token")

	tok, err = m.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-fresh", tok, "a token inside the safety buffer is never returned")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTokenManager_SingleFlight(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	m := newTokenManager(func(ctx context.Context) (*credential, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return &credential{token: "tok-shared", expiresAt: time.Now().Add(2 * time.Hour)}, nil
	})

	ctx := context.Background()
	const waiters = 16

	var wg sync.WaitGroup
	tokens := make([]string, waiters)
	errs := make([]error, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = m.Token(ctx)
		}(i)
	}

	// Let the waiters pile up on the in-flight acquisition before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < waiters; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "tok-shared", tokens[i], "all concurrent callers observe the same token")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "exactly one acquisition request is sent")
}

func TestTokenManager_SingleFlight_SharedFailure(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	fetchErr := errors.New("carrier unavailable")
	m := newTokenManager(func(ctx context.Context) (*credential, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return nil, fetchErr
	})

	ctx := context.Background()
	const waiters = 8

	var wg sync.WaitGroup
	errs := make([]error, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.Token(ctx)
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < waiters; i++ {
		assert.ErrorIs(t, errs[i], fetchErr, "all waiters observe the shared failure")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTokenManager_Invalidate(t *testing.T) {
	var calls int32
	m := newTokenManager(func(ctx context.Context) (*credential, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			return &credential{token: "tok-1", expiresAt: time.Now().Add(2 * time.Hour)}, nil
		}
		return &credential{token: "tok-2", expiresAt: time.Now().Add(2 * time.Hour)}, nil
	})

	ctx := context.Background()
	tok, err := m.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	m.Invalidate()

	tok, err = m.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok, "invalidate forces a fresh acquisition")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTokenManager_ExpiryEdge(t *testing.T) {
	now := time.Now()
	m := newTokenManager(func(ctx context.Context) (*credential, error) {
		return &credential{token: "tok-next", expiresAt: now.Add(2 * time.Hour)}, nil
	})
	m.now = func() time.Time { return now }

	// Cached token expiring exactly at the buffer edge is treated as expired.
	m.cached = &credential{token: "tok-edge", expiresAt: now.Add(expirySafetyBuffer)}

	tok, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-next", tok)
}
