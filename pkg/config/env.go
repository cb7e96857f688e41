package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"
	EnvCacheBackend  = "CACHE_BACKEND"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvTimeZone              = "BOOKING_TIMEZONE"
	EnvSlotCacheTTL          = "SLOT_CACHE_TTL"
	EnvSlotLockTTL           = "SLOT_LOCK_TTL"
	EnvBookingConflictRetry  = "BOOKING_CONFLICT_RETRY"
	EnvDefaultSlotDuration   = "DEFAULT_SLOT_DURATION_MIN"
	EnvSuggestionScanDays    = "SUGGESTION_SCAN_DAYS"
	EnvMaxBookingsPerDay     = "DEFAULT_MAX_BOOKINGS_PER_DAY"
	EnvConfirmationSealerKey = "CONFIRMATION_SEALER_KEY"
)
