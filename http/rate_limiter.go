package http

import (
	"sync"
	"time"
)

const (
	bucketIdleThreshold = 1 * time.Hour
	cleanupInterval     = 30 * time.Minute
)

type clientBucket struct {
	tokens     int
	lastRefill time.Time
}

// Quota is the limiter's answer for one request.
type Quota struct {
	Allowed bool
	// Remaining is the number of tokens left in the window after this request.
	Remaining int
	// RetryAfter is set for rejected requests: the time until the bucket refills.
	RetryAfter time.Duration
}

// RateLimiter hands each client a bucket of capacity tokens that is refilled
// in full once window has passed since the last refill. Requests cost one or
// more tokens depending on how much computation they trigger.
type RateLimiter struct {
	mu          sync.Mutex
	capacity    int
	window      time.Duration
	idleAfter   time.Duration
	clients     map[string]*clientBucket
	now         func() time.Time
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

func NewRateLimiter(capacity int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		capacity: max(capacity, 1),
		window:   window,
		// Evicting a bucket inside its window would hand the client a fresh one.
		idleAfter:   max(bucketIdleThreshold, window),
		clients:     make(map[string]*clientBucket),
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Capacity is the number of tokens a client gets per window.
func (rl *RateLimiter) Capacity() int {
	return rl.capacity
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanup forgets clients whose last refill is older than both the window and
// bucketIdleThreshold.
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for client, bucket := range rl.clients {
		if now.Sub(bucket.lastRefill) > rl.idleAfter {
			delete(rl.clients, client)
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

// Take charges cost tokens to the client's bucket. Costs below one count as one
// and costs above the capacity are capped, so every request can eventually pass.
// A rejected request leaves the bucket untouched.
func (rl *RateLimiter) Take(client string, cost int) Quota {
	cost = min(max(cost, 1), rl.capacity)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	bucket, exists := rl.clients[client]
	switch {
	case !exists:
		bucket = &clientBucket{tokens: rl.capacity, lastRefill: now}
		rl.clients[client] = bucket
	case now.Sub(bucket.lastRefill) >= rl.window:
		bucket.tokens = rl.capacity
		bucket.lastRefill = now
	}

	if bucket.tokens < cost {
		return Quota{
			Remaining:  bucket.tokens,
			RetryAfter: bucket.lastRefill.Add(rl.window).Sub(now),
		}
	}

	bucket.tokens -= cost
	return Quota{Allowed: true, Remaining: bucket.tokens}
}

func (rl *RateLimiter) clientCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}
