// Package ratelimiter throttles credential endpoints with a token bucket.
//
// A Bucket holds Capacity tokens and gains RefillRate tokens every
// RefillInterval. Each request consumes one token; once the bucket is empty
// requests are denied until the next refill. State lives in a Store:
// MemoryStore for a single instance, RedisStore when several instances must
// share limits.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//	bucket, err := ratelimiter.NewBucket(store, cfg)
//	if err != nil {
//		return err
//	}
//	r.With(ratelimiter.Middleware(bucket,
//		ratelimiter.Composite(ratelimiter.ClientIP, ratelimiter.Route), log),
//	).Post("/login", login)
package ratelimiter
