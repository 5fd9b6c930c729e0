// ABOUTME: Request pacing for Admin API calls
// ABOUTME: Sliding one-second window plus minimum inter-request interval

package shopify

import (
	"sync"
	"time"
)

// Rate limiter defaults matching the Admin API's standard allowance.
const (
	DefaultRequestsPerSecond = 2.0
	DefaultBurstSize         = 40
)

// RateLimiter paces outbound API calls to avoid 429 responses. It tracks a
// sliding one-second window of request timestamps plus a minimum interval
// between consecutive requests, and blocks the calling thread until a slot
// is available. Admission decisions are serialized: the lock is held across
// the wait so concurrent callers are admitted in arrival order.
type RateLimiter struct {
	mu          sync.Mutex
	burst       int
	minInterval time.Duration
	lastRequest time.Time
	window      []time.Time
}

// NewRateLimiter creates a rate limiter allowing requestsPerSecond steady
// throughput with bursts up to burst requests inside one second. Non-positive
// arguments fall back to the defaults.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultRequestsPerSecond
	}
	if burst <= 0 {
		burst = DefaultBurstSize
	}
	return &RateLimiter{
		burst:       burst,
		minInterval: time.Duration(float64(time.Second) / requestsPerSecond),
	}
}

// Admit blocks until one more request may be issued and returns how long the
// caller waited. Call it before every outbound API request.
func (rl *RateLimiter) Admit() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	var waited time.Duration
	now := time.Now()

	// Drop requests older than the one-second window.
	kept := rl.window[:0]
	for _, t := range rl.window {
		if now.Sub(t) < time.Second {
			kept = append(kept, t)
		}
	}
	rl.window = kept

	// At the burst limit: wait until the oldest request ages out.
	if len(rl.window) >= rl.burst {
		oldest := rl.window[0]
		if wait := time.Second - now.Sub(oldest); wait > 0 {
			time.Sleep(wait)
			waited += wait
			now = time.Now()
		}
	}

	// Enforce the minimum interval between consecutive requests.
	if !rl.lastRequest.IsZero() {
		if since := now.Sub(rl.lastRequest); since < rl.minInterval {
			time.Sleep(rl.minInterval - since)
			waited += rl.minInterval - since
		}
	}

	rl.lastRequest = time.Now()
	rl.window = append(rl.window, rl.lastRequest)
	return waited
}

// Reset clears the limiter's state.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.lastRequest = time.Time{}
	rl.window = nil
}
