package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter tracks per-client request rates and upload volume over
// sliding periods.
type RateLimiter struct {
	mu sync.Mutex

	perMinute      int
	perHour        int
	uploadBytesDay int64

	clients map[string]*clientUsage
}

type clientUsage struct {
	minuteCount int
	minuteStart time.Time

	hourCount int
	hourStart time.Time

	uploadBytes int64
	dayStart    time.Time
}

// NewRateLimiter creates a rate limiter. A zero limit disables that check.
func NewRateLimiter(perMinute, perHour int, uploadBytesDay int64) *RateLimiter {
	return &RateLimiter{
		perMinute:      perMinute,
		perHour:        perHour,
		uploadBytesDay: uploadBytesDay,
		clients:        make(map[string]*clientUsage),
	}
}

// CheckRequest records a request for the client and returns a
// *RateLimitError when any limit is exceeded.
func (rl *RateLimiter) CheckRequest(clientID string, uploadSize int64) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	usage, ok := rl.clients[clientID]
	if !ok {
		usage = &clientUsage{minuteStart: now, hourStart: now, dayStart: now}
		rl.clients[clientID] = usage
	}

	if now.Sub(usage.minuteStart) >= time.Minute {
		usage.minuteCount = 0
		usage.minuteStart = now
	}
	if now.Sub(usage.hourStart) >= time.Hour {
		usage.hourCount = 0
		usage.hourStart = now
	}
	if now.Sub(usage.dayStart) >= 24*time.Hour {
		usage.uploadBytes = 0
		usage.dayStart = now
	}

	if rl.perMinute > 0 && usage.minuteCount >= rl.perMinute {
		return &RateLimitError{
			Scope:      "minute",
			Limit:      int64(rl.perMinute),
			RetryAfter: time.Minute - now.Sub(usage.minuteStart),
		}
	}
	if rl.perHour > 0 && usage.hourCount >= rl.perHour {
		return &RateLimitError{
			Scope:      "hour",
			Limit:      int64(rl.perHour),
			RetryAfter: time.Hour - now.Sub(usage.hourStart),
		}
	}
	if rl.uploadBytesDay > 0 && usage.uploadBytes+uploadSize > rl.uploadBytesDay {
		return &RateLimitError{
			Scope:      "upload_bytes",
			Limit:      rl.uploadBytesDay,
			RetryAfter: 24*time.Hour - now.Sub(usage.dayStart),
		}
	}

	usage.minuteCount++
	usage.hourCount++
	usage.uploadBytes += uploadSize
	return nil
}

// RateLimitError reports which limit was exceeded and when to retry.
type RateLimitError struct {
	Scope      string
	Limit      int64
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (limit: %d, retry after: %v)", e.Scope, e.Limit, e.RetryAfter)
}
