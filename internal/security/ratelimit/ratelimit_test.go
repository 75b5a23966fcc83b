package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterWindow(t *testing.T) {
	l := NewLimiter(2, time.Minute)
	defer l.Stop()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("client_001") || !l.Allow("client_001") {
		t.Fatalf("first two requests should pass")
	}
	if l.Allow("client_001") {
		t.Fatalf("third request inside the window should be limited")
	}
	if !l.Allow("client_002") {
		t.Fatalf("other tenants have their own bucket")
	}

	now = now.Add(61 * time.Second)
	if !l.Allow("client_001") {
		t.Fatalf("window should have slid")
	}
}

func TestLimiterAnonymous(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()
	for i := 0; i < 5; i++ {
		if !l.Allow("") {
			t.Fatalf("anonymous requests are not limited")
		}
	}
}

func TestLoginGuard(t *testing.T) {
	g := NewLoginGuard(3)
	for i := 0; i < 3; i++ {
		if !g.Allow("Recruiter@Arbeit.com") {
			t.Fatalf("attempt %d should pass", i+1)
		}
	}
	if g.Allow("recruiter@arbeit.com") {
		t.Fatalf("fourth attempt should be throttled (emails are case-insensitive)")
	}
	g.Reset("recruiter@arbeit.com")
	if !g.Allow("recruiter@arbeit.com") {
		t.Fatalf("reset should clear the bucket")
	}

	open := NewLoginGuard(0)
	for i := 0; i < 100; i++ {
		if !open.Allow("x@y.z") {
			t.Fatalf("disabled guard must not throttle")
		}
	}
}
