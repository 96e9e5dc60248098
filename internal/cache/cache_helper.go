package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/robotics-academy/grading-service/internal/gradebook"
)

// Cache errors
var (
	ErrCacheNotAvailable = errors.New("cache not available")
	ErrCacheNotFound     = errors.New("cache not found")
)

// CacheHelper stores JSON values under a key prefix. A helper without a
// client degrades to a no-op cache.
type CacheHelper struct {
	client *redis.Client
	prefix string
}

// NewCacheHelper creates a new cache helper instance
func NewCacheHelper(client *redis.Client, prefix string) *CacheHelper {
	return &CacheHelper{
		client: client,
		prefix: prefix,
	}
}

// CacheConfig defines cache configuration for different data types
type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

var (
	// Course gradebooks, invalidated on quiz submission
	GradebookCacheConfig = CacheConfig{
		TTL:    5 * time.Minute,
		Prefix: "gradebook:",
	}

	// Casdoor profiles
	UserCacheConfig = CacheConfig{
		TTL:    15 * time.Minute,
		Prefix: "user:",
	}

	// Short lived lookups such as quiz definitions
	FastCacheConfig = CacheConfig{
		TTL:    2 * time.Minute,
		Prefix: "fast:",
	}
)

// GetCacheKey generates a cache key with prefix
func (c *CacheHelper) GetCacheKey(key string) string {
	return c.prefix + key
}

func (c *CacheHelper) Available() bool {
	return c != nil && c.client != nil
}

// Get retrieves and unmarshals data from cache
func (c *CacheHelper) Get(ctx context.Context, key string, dest any) error {
	if !c.Available() {
		return ErrCacheNotAvailable
	}

	data, err := c.client.Get(ctx, c.GetCacheKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheNotFound
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}
	return nil
}

// Set marshals and stores data in cache
func (c *CacheHelper) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.Available() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	return c.client.Set(ctx, c.GetCacheKey(key), data, ttl).Err()
}

// Delete removes keys in a single round trip
func (c *CacheHelper) Delete(ctx context.Context, keys ...string) error {
	if !c.Available() || len(keys) == 0 {
		return nil
	}

	cacheKeys := make([]string, len(keys))
	for i, key := range keys {
		cacheKeys[i] = c.GetCacheKey(key)
	}
	return c.client.Del(ctx, cacheKeys...).Err()
}

// Counter reads an integer counter, zero when it was never incremented
func (c *CacheHelper) Counter(ctx context.Context, key string) (int64, error) {
	if !c.Available() {
		return 0, ErrCacheNotAvailable
	}

	n, err := c.client.Get(ctx, c.GetCacheKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache get error: %w", err)
	}
	return n, nil
}

// Incr increments a counter without expiry and returns its new value
func (c *CacheHelper) Incr(ctx context.Context, key string) (int64, error) {
	if !c.Available() {
		return 0, ErrCacheNotAvailable
	}

	n, err := c.client.Incr(ctx, c.GetCacheKey(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("cache incr error: %w", err)
	}
	return n, nil
}

// GetOrLoad implements cache-aside: it returns the cached value when present,
// otherwise calls load and stores the result in the background. The boolean
// reports a cache hit.
func GetOrLoad[T any](ctx context.Context, c *CacheHelper, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, bool, error) {
	var cached T
	err := c.Get(ctx, key, &cached)
	if err == nil {
		return cached, true, nil
	}
	if !errors.Is(err, ErrCacheNotFound) && !errors.Is(err, ErrCacheNotAvailable) {
		slog.WarnContext(ctx, "Cache get error, proceeding to load", "error", err, "key", c.GetCacheKey(key))
	}

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}

	if c.Available() {
		// The request context ends with the response; keep its values only.
		setCtx := context.WithoutCancel(ctx)
		go func() {
			setCtx, cancel := context.WithTimeout(setCtx, 5*time.Second)
			defer cancel()
			if err := c.Set(setCtx, key, value, ttl); err != nil {
				slog.ErrorContext(setCtx, "Cache set error", "error", err, "key", c.GetCacheKey(key))
			}
		}()
	}

	return value, false, nil
}

// CacheManager manages the cache helpers of the service
type CacheManager struct {
	client    *redis.Client
	Gradebook *CacheHelper
	User      *CacheHelper
	Fast      *CacheHelper
}

// NewCacheManager creates cache manager with all cache helpers. A nil client
// yields helpers that never hit.
func NewCacheManager(client *redis.Client) *CacheManager {
	return &CacheManager{
		client:    client,
		Gradebook: NewCacheHelper(client, GradebookCacheConfig.Prefix),
		User:      NewCacheHelper(client, UserCacheConfig.Prefix),
		Fast:      NewCacheHelper(client, FastCacheConfig.Prefix),
	}
}

// HealthCheck verifies cache connectivity
func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.client == nil {
		return ErrCacheNotAvailable
	}
	if err := cm.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}
	return nil
}

// GradebookKey is the cache key of a course gradebook built with one empty
// grade policy while the course was at the given invalidation generation
func GradebookKey(courseID uint, generation int64, policy gradebook.EmptyGradePolicy) string {
	return fmt.Sprintf("course:%d:g%d:%s", courseID, generation, policy)
}

func gradebookGenerationKey(courseID uint) string {
	return fmt.Sprintf("course:%d:gen", courseID)
}

// GradebookGeneration returns how many times the gradebooks of a course were
// invalidated. Read it before loading a gradebook and key the result with it:
// a load that overlaps an invalidation then lands on a key nobody reads.
func (cm *CacheManager) GradebookGeneration(ctx context.Context, courseID uint) (int64, error) {
	return cm.Gradebook.Counter(ctx, gradebookGenerationKey(courseID))
}
