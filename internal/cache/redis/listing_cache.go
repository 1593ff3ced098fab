package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sellside/marketd/internal/domain"
)

// ListingCache implements domain.ListingCache using Redis string keys with
// JSON-serialized listings.
//
// Key schema:
//
//	listing:{id} - JSON-encoded listing
type ListingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ domain.ListingCache = (*ListingCache)(nil)

// NewListingCache creates a ListingCache backed by the given Client. A zero
// ttl falls back to 10 minutes.
func NewListingCache(c *Client, ttl time.Duration) *ListingCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ListingCache{rdb: c.rdb, ttl: ttl}
}

func listingKey(id string) string { return "listing:" + id }

// Set stores a listing in the cache with the configured TTL.
func (lc *ListingCache) Set(ctx context.Context, listing domain.Listing) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("redis: marshal listing %s: %w", listing.ID, err)
	}

	if err := lc.rdb.Set(ctx, listingKey(listing.ID), data, lc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set listing %s: %w", listing.ID, err)
	}
	return nil
}

// Get retrieves a listing by ID. It returns domain.ErrNotFound when the key
// does not exist.
func (lc *ListingCache) Get(ctx context.Context, id string) (domain.Listing, error) {
	data, err := lc.rdb.Get(ctx, listingKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Listing{}, domain.ErrNotFound
		}
		return domain.Listing{}, fmt.Errorf("redis: get listing %s: %w", id, err)
	}

	var listing domain.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return domain.Listing{}, fmt.Errorf("redis: unmarshal listing %s: %w", id, err)
	}
	return listing, nil
}

// Invalidate removes a listing from the cache.
func (lc *ListingCache) Invalidate(ctx context.Context, id string) error {
	if err := lc.rdb.Del(ctx, listingKey(id)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate listing %s: %w", id, err)
	}
	return nil
}
