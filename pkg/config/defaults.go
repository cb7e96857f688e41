package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "fixwell"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr    = "localhost:6379"
	DefaultRedisDB      = 0
	DefaultCacheBackend = CacheBackendMemory

	DefaultPort = "8080"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultTimeZone = "UTC"

	// Derived slot lists go stale quickly on purpose; admission never
	// trusts them, so a short TTL only trades recompute cost.
	DefaultSlotCacheTTL = 2 * time.Minute

	// Advisory slot locks auto-expire so a crashed request cannot wedge
	// a slot for longer than this.
	DefaultSlotLockTTL = 10 * time.Second

	// A booking that loses the lock race is retried this many times
	// before the conflict is surfaced to the caller.
	DefaultBookingConflictRetry = 1

	DefaultSlotDurationMin = 60

	// Per-rule cap applied when a rule is created without one.
	DefaultMaxBookingsPerDay = 20

	// How many days ahead the conflict-suggestion scan may look.
	DefaultSuggestionScanDays = 14

	DefaultPaginationLimit = 100
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)
