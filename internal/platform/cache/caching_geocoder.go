// Package cache provides caching decorators for external collaborators.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"places_backend/internal/feature/places/domain/entity"
	"places_backend/internal/feature/places/usecase"
)

// DefaultGeocodeTTL is used when no positive TTL is configured.
const DefaultGeocodeTTL = 24 * time.Hour

// CachingGeocoder decorates a Geocoder with Redis caching.
// Only successful lookups are cached; failures always reach the provider again.
type CachingGeocoder struct {
	inner     usecase.Geocoder
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.Geocoder = (*CachingGeocoder)(nil)

// NewCachingGeocoder decorates a Geocoder with Redis caching.
// If ttl is 0, it defaults to 24 hours. If namespace is empty, it uses "geocode".
func NewCachingGeocoder(rdb *redis.Client, ttl time.Duration, inner usecase.Geocoder, namespace string) *CachingGeocoder {
	if ttl <= 0 {
		ttl = DefaultGeocodeTTL
	}
	if namespace == "" {
		namespace = "geocode"
	}
	return &CachingGeocoder{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Geocode resolves an address, checking the cache first then falling back to the provider.
func (c *CachingGeocoder) Geocode(ctx context.Context, address string) (entity.Location, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.Geocode(ctx, address)
	}

	key := c.cacheKey(address)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var loc entity.Location
		if err := json.Unmarshal(b, &loc); err == nil {
			return loc, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the provider
	loc, err := c.inner.Geocode(ctx, address)
	if err != nil {
		return entity.Location{}, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(loc); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return loc, nil
}

// cacheKey normalizes the address so that spacing and case variants share an entry.
func (c *CachingGeocoder) cacheKey(address string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(address)), " ")
	return c.namespace + ":" + safe(normalized)
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
