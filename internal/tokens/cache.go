package tokens

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Source yields bearer tokens.
type Source interface {
	Token(ctx context.Context) (*Token, error)
}

// CachedSource reuses an unexpired token and refreshes it through a
// singleflight group, so concurrent requests trigger at most one exchange
// per credential at a time.
type CachedSource struct {
	source Source
	skew   time.Duration

	mu    sync.RWMutex
	token *Token

	group singleflight.Group
}

// NewCachedSource wraps source with a cache. skew is subtracted from the
// token expiry so a token nearing expiration is refreshed before it lapses
// mid-insert.
func NewCachedSource(source Source, skew time.Duration) *CachedSource {
	return &CachedSource{
		source: source,
		skew:   skew,
	}
}

// Token returns the cached token when still valid, otherwise refreshes.
func (s *CachedSource) Token(ctx context.Context) (*Token, error) {
	if token := s.cached(); token != nil {
		return token, nil
	}

	result, err, _ := s.group.Do("token", func() (any, error) {
		// Another caller may have refreshed while this one waited.
		if token := s.cached(); token != nil {
			return token, nil
		}
		token, err := s.source.Token(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.token = token
		s.mu.Unlock()
		return token, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Token), nil
}

func (s *CachedSource) cached() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil || time.Now().After(s.token.Expiry.Add(-s.skew)) {
		return nil
	}
	return s.token
}
