package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	cacheport "github.com/MavisVermie/TBR3-sub000/internal/infrastructure/cache/port"
)

const directoryTTL = 10 * time.Minute

// CachedDirectory caches username lookups so the contact list, which
// clients poll on a timer, does not hit the users table once per
// partner per refresh. Cache failures fall through to the inner
// directory; stale names for up to the TTL are acceptable.
type CachedDirectory struct {
	inner Directory
	cache cacheport.Cache
	ttl   time.Duration
}

var _ Directory = (*CachedDirectory)(nil)

func NewCachedDirectory(inner Directory, cache cacheport.Cache) *CachedDirectory {
	return &CachedDirectory{inner: inner, cache: cache, ttl: directoryTTL}
}

func directoryKey(id string) string {
	return fmt.Sprintf("directory:username:%s", id)
}

func (d *CachedDirectory) GetUser(ctx context.Context, id string) (User, error) {
	if name, err := d.cache.Get(ctx, directoryKey(id)); err == nil {
		return User{ID: id, Username: name}, nil
	} else if !errors.Is(err, cacheport.ErrMiss) {
		// transport failure: skip the cache for this lookup
		_ = err
	}

	u, err := d.inner.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}

	_ = d.cache.Set(ctx, directoryKey(id), u.Username, d.ttl)
	return u, nil
}
