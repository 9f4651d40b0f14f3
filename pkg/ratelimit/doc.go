// Package ratelimit throttles outgoing Graph API requests.
//
// Three implementations share the Limiter interface, selected by New:
//
//   - Rate ("smooth"): token bucket over golang.org/x/time/rate (default)
//   - TokenBucket ("fixed"): fixed capacity refilled once per period
//   - SlidingWindow ("sliding"): at most N requests in any moving window
//
// Usage:
//
//	limiter, err := ratelimit.New("sliding", 200, 0)
//	if err != nil {
//	    return err
//	}
//	if err := limiter.Wait(ctx); err != nil {
//	    return err // ctx cancelled while throttled
//	}
package ratelimit
