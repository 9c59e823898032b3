package ratelimit

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// mockClock is a controllable clock for testing.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(clock Clock) *Limiter {
	return New(&Config{
		Rules: map[string]Rule{
			"themes.create": {Limit: 3, Window: time.Hour},
			"themes.delete": {Limit: 1, Window: time.Minute},
		},
		Clock: clock,
	})
}

func TestAllow_SlidingWindow(t *testing.T) {
	clock := newMockClock()
	limiter := newTestLimiter(clock)
	defer limiter.Close()

	for i := 0; i < 3; i++ {
		result := limiter.Allow("user-1", "themes.create")
		if !result.Allowed {
			t.Fatalf("Request %d should be allowed", i+1)
		}
		if result.Remaining != 2-i {
			t.Errorf("Request %d remaining = %d, want %d", i+1, result.Remaining, 2-i)
		}
		clock.Advance(10 * time.Minute)
	}

	// 30 minutes after the first call, the window is still full.
	result := limiter.Allow("user-1", "themes.create")
	if result.Allowed {
		t.Fatal("Fourth request within the window should be blocked")
	}
	if result.RetryAfter != 30*time.Minute {
		t.Errorf("Expected RetryAfter 30m, got %v", result.RetryAfter)
	}

	// Once the first call leaves the window a single slot frees up.
	clock.Advance(30 * time.Minute)
	if !limiter.Allow("user-1", "themes.create").Allowed {
		t.Fatal("Request after the oldest call expired should be allowed")
	}
	if limiter.Allow("user-1", "themes.create").Allowed {
		t.Fatal("Only one slot should have been freed")
	}
}

func TestAllow_BlockedCallsAreNotRecorded(t *testing.T) {
	clock := newMockClock()
	limiter := newTestLimiter(clock)
	defer limiter.Close()

	if !limiter.Allow("user-1", "themes.delete").Allowed {
		t.Fatal("First delete should be allowed")
	}
	for i := 0; i < 5; i++ {
		clock.Advance(5 * time.Second)
		if limiter.Allow("user-1", "themes.delete").Allowed {
			t.Fatal("Delete within the window should be blocked")
		}
	}

	clock.Advance(35 * time.Second)
	if !limiter.Allow("user-1", "themes.delete").Allowed {
		t.Fatal("Rejected calls must not extend the window")
	}
}

func TestAllow_IsolatedByUserAndOperation(t *testing.T) {
	limiter := newTestLimiter(newMockClock())
	defer limiter.Close()

	if !limiter.Allow("user-1", "themes.delete").Allowed {
		t.Fatal("user-1 delete should be allowed")
	}
	if !limiter.Allow("user-2", "themes.delete").Allowed {
		t.Fatal("user-2 has its own quota")
	}
	if !limiter.Allow("user-1", "themes.create").Allowed {
		t.Fatal("create has its own quota")
	}
	if limiter.Allow("USER-1 ", "themes.delete").Allowed {
		t.Fatal("identifier should be normalized")
	}
	if !limiter.Allow("user-1", "themes.list").Allowed {
		t.Fatal("operations without a rule are unlimited")
	}
}

func TestAllow_ConcurrentCallersShareQuota(t *testing.T) {
	limiter := newTestLimiter(newMockClock())
	defer limiter.Close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("user-1", "themes.create").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 3 {
		t.Fatalf("allowed = %d, want 3", allowed)
	}
}

func TestAllow_UserIDsAreCaseSensitive(t *testing.T) {
	limiter := newTestLimiter(newMockClock())
	defer limiter.Close()

	if !limiter.Allow("UserA", "themes.delete").Allowed {
		t.Fatal("first call for UserA should be allowed")
	}
	if !limiter.Allow("usera", "themes.delete").Allowed {
		t.Fatal("usera is a different user and should have its own quota")
	}
	if limiter.Allow("UserA", "themes.delete").Allowed {
		t.Fatal("second call for UserA should be rejected")
	}
}

func TestCleanup(t *testing.T) {
	clock := newMockClock()
	limiter := newTestLimiter(clock)
	defer limiter.Close()

	limiter.Allow("user-1", "themes.create")
	limiter.Allow("user-2", "themes.delete")

	clock.Advance(2 * time.Minute)
	limiter.cleanup()
	if got := limiter.size(); got != 1 {
		t.Fatalf("entries after delete window = %d, want 1", got)
	}

	clock.Advance(time.Hour)
	limiter.cleanup()
	if got := limiter.size(); got != 0 {
		t.Fatalf("entries after create window = %d, want 0", got)
	}
}

func TestCloseStopsCleanupGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t)

	limiter := New(&Config{
		Rules:           map[string]Rule{"themes.create": {Limit: 1, Window: time.Hour}},
		CleanupInterval: time.Millisecond,
	})
	limiter.Allow("user-1", "themes.create")
	time.Sleep(5 * time.Millisecond)
	limiter.Close()
}

func TestHashKey_DoesNotContainIdentifier(t *testing.T) {
	key := hashKey("themes.create:", "user-1")
	if len(key) != len("themes.create:")+16 {
		t.Fatalf("unexpected key length: %q", key)
	}
	if key == "themes.create:user-1" {
		t.Fatal("identifier must be hashed")
	}
}

func TestIPLimiter(t *testing.T) {
	clock := newMockClock()
	limiter := NewIPLimiter(60, 2, clock)

	if !limiter.Allow("203.0.113.5").Allowed || !limiter.Allow("203.0.113.5").Allowed {
		t.Fatal("burst of 2 should be allowed")
	}
	result := limiter.Allow("203.0.113.5")
	if result.Allowed {
		t.Fatal("third immediate request should be blocked")
	}
	if result.RetryAfter != time.Second {
		t.Errorf("RetryAfter = %v, want 1s", result.RetryAfter)
	}
	if !limiter.Allow("198.51.100.7").Allowed {
		t.Fatal("other IPs have their own bucket")
	}

	clock.Advance(time.Second)
	if !limiter.Allow("203.0.113.5").Allowed {
		t.Fatal("token should refill after one second")
	}
}

func TestIPLimiterPrune(t *testing.T) {
	clock := newMockClock()
	limiter := NewIPLimiter(60, 2, clock)

	limiter.Allow("203.0.113.5")
	clock.Advance(20 * time.Minute)
	limiter.Allow("198.51.100.7")

	if removed := limiter.Prune(10 * time.Minute); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if limiter.Len() != 1 {
		t.Fatalf("len = %d, want 1", limiter.Len())
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		trustProxy bool
		want       string
	}{
		{name: "remote_addr", remoteAddr: "203.0.113.5:1234", want: "203.0.113.5"},
		{name: "ignores_xff_untrusted", remoteAddr: "10.0.0.1:1234", xff: "198.51.100.7", want: "10.0.0.1"},
		{name: "rightmost_public", remoteAddr: "10.0.0.1:1234", xff: "1.1.1.1, 198.51.100.7, 10.0.0.2", trustProxy: true, want: "198.51.100.7"},
		{name: "all_private", remoteAddr: "10.0.0.1:1234", xff: "10.0.0.3, 192.168.1.1", trustProxy: true, want: "192.168.1.1"},
		{name: "no_port", remoteAddr: "203.0.113.5", want: "203.0.113.5"},
		{name: "unparsable", remoteAddr: "not-an-address", want: "not-an-address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &http.Request{RemoteAddr: tt.remoteAddr, Header: http.Header{}}
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := GetClientIP(req, tt.trustProxy); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	if got := SanitizeIdentifier("user-12345"); got != "***2345" {
		t.Errorf("SanitizeIdentifier = %q", got)
	}
	if got := SanitizeIdentifier("abc"); got != "***" {
		t.Errorf("SanitizeIdentifier short = %q", got)
	}
}
