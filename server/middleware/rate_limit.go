package middleware

import (
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultPerMinute is the inbound message allowance per chat.
const DefaultPerMinute = 30

// RateLimiter limits inbound messages per chat.
type RateLimiter struct {
	mu     sync.Mutex
	limits map[string]*rate.Limiter
	every  time.Duration
	burst  int
}

// NewRateLimiter creates a rate limiter allowing perMinute messages per key,
// with bursts up to perMinute/3 (at least 1). perMinute <= 0 uses DefaultPerMinute.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = DefaultPerMinute
	}
	burst := perMinute / 3
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limits: make(map[string]*rate.Limiter),
		every:  time.Minute / time.Duration(perMinute),
		burst:  burst,
	}
}

// ChatKey returns the limiter key for a Telegram chat.
func ChatKey(chatID int64) string {
	return "chat:" + strconv.FormatInt(chatID, 10)
}

// getLimiter gets or creates a limiter for the given key.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, ok := rl.limits[key]; ok {
		return limiter
	}

	limiter := rate.NewLimiter(rate.Every(rl.every), rl.burst)
	rl.limits[key] = limiter
	return limiter
}

// AllowAt checks if a request arriving at t is allowed for the given key.
func (rl *RateLimiter) AllowAt(key string, t time.Time) bool {
	return rl.getLimiter(key).AllowN(t, 1)
}

// Keys returns the number of tracked keys.
func (rl *RateLimiter) Keys() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limits)
}
