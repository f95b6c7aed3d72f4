// Package ratelimit paces requests to Pinterest and its CDN.
//
// TokenBucket starts full, so a short batch runs at full speed, and then
// refills continuously at capacity tokens per period. Wait honours context
// cancellation so an interrupted batch stops promptly.
//
//	limiter := ratelimit.PerMinute(cfg.HTTP.RequestsPerMinute)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
package ratelimit
