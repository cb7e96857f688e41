// Package cache holds the short-TTL slot listing cache. Entries are
// serialized slot slices keyed by date and service type; invalidation
// happens per date, because a booking on one date can only change that
// date's listings.
package cache

import (
	"context"
	"time"
)

const keyPrefix = "slots:"

// SlotCache is the storage behind slot listings. Implementations are
// best-effort: a miss or a failed write degrades to recomputation,
// never to an error surfaced to the caller.
type SlotCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	InvalidateDate(ctx context.Context, date string)
	Stop()
}

// Key builds the cache key for one date and service type.
func Key(date string, serviceTypeID string) string {
	if serviceTypeID == "" {
		serviceTypeID = "any"
	}
	return keyPrefix + date + ":" + serviceTypeID
}

func datePrefix(date string) string {
	return keyPrefix + date + ":"
}
