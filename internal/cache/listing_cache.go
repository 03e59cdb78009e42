package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	listingDomain "github.com/staynest/service-booking/internal/domain/listing"
)

const keyPrefix = "booking:listing:"

// Client is the subset of *redis.Client the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

type cachedListing struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	MaxStayers  int             `json:"max_stayers"`
	NightlyRate decimal.Decimal `json:"nightly_rate"`
	IsActive    bool            `json:"is_active"`
	Version     int64           `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ListingCache is a read-through cache in front of a listing Lookup.
// Only active listings are cached; Redis failures fall back to the source.
type ListingCache struct {
	client Client
	source listingDomain.Lookup
	ttl    time.Duration
	logger *zap.Logger
}

// NewListingCache creates a ListingCache.
func NewListingCache(client Client, source listingDomain.Lookup, ttl time.Duration, logger *zap.Logger) *ListingCache {
	return &ListingCache{client: client, source: source, ttl: ttl, logger: logger}
}

// GetActiveListing implements listing.Lookup.
// Entries are keyed by the listing's generation, so a fill that races an
// Invalidate lands on a key no reader uses.
func (c *ListingCache) GetActiveListing(ctx context.Context, id uuid.UUID) (*listingDomain.Listing, error) {
	gen, err := c.client.Get(ctx, generationKey(id)).Result()
	switch {
	case err == nil:
	case errors.Is(err, redis.Nil):
		gen = "0"
	default:
		c.logger.Warn("listing cache read failed", zap.String("listing_id", id.String()), zap.Error(err))
		return c.source.GetActiveListing(ctx, id)
	}
	key := entryKey(id, gen)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached cachedListing
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached.toDomain(), nil
		}
		c.logger.Warn("discarding corrupt listing cache entry", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("listing cache read failed", zap.String("key", key), zap.Error(err))
	}

	found, err := c.source.GetActiveListing(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(fromDomain(found))
	if err != nil {
		return found, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("listing cache write failed", zap.String("key", key), zap.Error(err))
	}
	return found, nil
}

// Invalidate bumps the listing's generation. Older entries expire by TTL.
func (c *ListingCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Incr(ctx, generationKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate listing %s: %w", id, err)
	}
	return nil
}

func generationKey(id uuid.UUID) string {
	return keyPrefix + id.String() + ":gen"
}

func entryKey(id uuid.UUID, gen string) string {
	return keyPrefix + id.String() + ":" + gen
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: 10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func fromDomain(l *listingDomain.Listing) cachedListing {
	return cachedListing{
		ID:          l.ID(),
		OwnerID:     l.OwnerID(),
		Title:       l.Title(),
		Description: l.Description(),
		MaxStayers:  l.MaxStayers(),
		NightlyRate: l.NightlyRate(),
		IsActive:    l.IsActive(),
		Version:     l.Version(),
		CreatedAt:   l.CreatedAt(),
		UpdatedAt:   l.UpdatedAt(),
	}
}

func (c cachedListing) toDomain() *listingDomain.Listing {
	return listingDomain.Reconstruct(
		c.ID, c.OwnerID,
		c.Title, c.Description,
		c.MaxStayers,
		c.NightlyRate,
		c.IsActive,
		c.Version,
		c.CreatedAt, c.UpdatedAt,
	)
}
