package server

import (
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	limiter := newRateLimiter(2, time.Minute)

	if !limiter.Allow("203.0.113.1") {
		t.Error("first request denied")
	}
	if !limiter.Allow("203.0.113.1") {
		t.Error("second request denied")
	}
	if limiter.Allow("203.0.113.1") {
		t.Error("third request allowed over the limit")
	}

	// Separate key, separate window.
	if !limiter.Allow("203.0.113.2") {
		t.Error("other key denied")
	}

	if limiter.Allow("") {
		t.Error("empty key allowed")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	limiter := newRateLimiter(1, 10*time.Millisecond)

	if !limiter.Allow("k") {
		t.Fatal("first request denied")
	}
	if limiter.Allow("k") {
		t.Fatal("second request allowed inside the window")
	}

	time.Sleep(20 * time.Millisecond)
	if !limiter.Allow("k") {
		t.Error("request denied after the window expired")
	}
}

func TestRateLimiterPrune(t *testing.T) {
	limiter := newRateLimiter(1, 5*time.Millisecond)
	limiter.Allow("a")
	limiter.Allow("b")

	time.Sleep(10 * time.Millisecond)
	limiter.Allow("c")

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if len(limiter.items) != 1 {
		t.Errorf("items = %d after prune, want 1", len(limiter.items))
	}
}
