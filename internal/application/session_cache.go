package application

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultSessionCacheSize = 64
	defaultSessionCacheTTL  = 5 * time.Minute
)

// sessionCache remembers which user a token resolved to so repeated restores
// skip scanning the user table. Only successful resolutions are stored.
type sessionCache struct {
	entries *expirable.LRU[string, User]
}

func newSessionCache(size int, ttl time.Duration) *sessionCache {
	if size <= 0 {
		size = defaultSessionCacheSize
	}
	if ttl <= 0 {
		ttl = defaultSessionCacheTTL
	}
	return &sessionCache{entries: expirable.NewLRU[string, User](size, nil, ttl)}
}

func (c *sessionCache) Get(token string) (User, bool) {
	if c == nil || token == "" {
		return User{}, false
	}
	return c.entries.Get(token)
}

func (c *sessionCache) Set(token string, user User) {
	if c == nil || token == "" {
		return
	}
	c.entries.Add(token, user)
}

func (c *sessionCache) Invalidate(token string) {
	if c == nil || token == "" {
		return
	}
	c.entries.Remove(token)
}

func (c *sessionCache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
