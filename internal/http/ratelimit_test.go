package http

import "testing"

func TestRateLimiterWindowLimit(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()
	metrics := &securityMetrics{}

	for i := 0; i < mutationLimit; i++ {
		if !rl.allow("10.0.0.1", metrics) {
			t.Fatalf("request %d denied, limit is %d", i+1, mutationLimit)
		}
	}
	if rl.allow("10.0.0.1", metrics) {
		t.Error("request over the limit was allowed")
	}
	if metrics.rateLimitHits != 1 {
		t.Errorf("rateLimitHits = %d, want 1", metrics.rateLimitHits)
	}

	// Other clients keep their own window.
	if !rl.allow("10.0.0.2", metrics) {
		t.Error("unrelated client denied")
	}
}
