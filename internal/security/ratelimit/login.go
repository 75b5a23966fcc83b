package ratelimit

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginGuard throttles login attempts per email with a token bucket
type LoginGuard struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewLoginGuard allows attemptsPerMinute attempts per email, with bursts of the same size.
// A non-positive value disables throttling.
func NewLoginGuard(attemptsPerMinute int) *LoginGuard {
	g := &LoginGuard{limiters: make(map[string]*rate.Limiter), burst: attemptsPerMinute}
	if attemptsPerMinute > 0 {
		g.limit = rate.Every(time.Minute / time.Duration(attemptsPerMinute))
	} else {
		g.limit = rate.Inf
	}
	return g
}

// Allow consumes one attempt for email
func (g *LoginGuard) Allow(email string) bool {
	if g.limit == rate.Inf {
		return true
	}
	key := strings.ToLower(strings.TrimSpace(email))
	g.mu.Lock()
	l, ok := g.limiters[key]
	if !ok {
		l = rate.NewLimiter(g.limit, g.burst)
		g.limiters[key] = l
	}
	g.mu.Unlock()
	return l.Allow()
}

// Reset forgets the bucket for email, used after a successful login
func (g *LoginGuard) Reset(email string) {
	g.mu.Lock()
	delete(g.limiters, strings.ToLower(strings.TrimSpace(email)))
	g.mu.Unlock()
}
