package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterAllowsWithinBudget(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 3, CleanupInterval: time.Minute})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("request over budget should be rejected")
	}
	// A different client has its own budget.
	if !rl.Allow("10.0.0.2") {
		t.Error("independent client should be allowed")
	}
}

func TestLimiterDefaults(t *testing.T) {
	rl := NewLimiter(Config{})
	defer rl.Stop()

	if rl.requestsPerMinute != 60 {
		t.Errorf("requestsPerMinute = %d, want default 60", rl.requestsPerMinute)
	}
	if rl.cleanupInterval != 5*time.Minute {
		t.Errorf("cleanupInterval = %v, want default 5m", rl.cleanupInterval)
	}
}

func TestLimiterStopTwice(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop() // must not panic
}
