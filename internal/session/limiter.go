package session

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// loginLimiter throttles login attempts per client.
type loginLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	byClient map[string]*rate.Limiter
}

func newLoginLimiter(perSecond float64, burst int) *loginLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &loginLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		byClient: make(map[string]*rate.Limiter),
	}
}

// sweepAt is the map size above which refilled limiters are dropped.
const sweepAt = 1024

// Allow on a nil limiter always succeeds.
func (l *loginLimiter) Allow(clientID string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	lim, ok := l.byClient[clientID]
	if !ok {
		if len(l.byClient) >= sweepAt {
			l.sweep(time.Now())
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.byClient[clientID] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// sweep drops limiters whose bucket has refilled; they behave exactly
// like a new one. Callers hold l.mu.
func (l *loginLimiter) sweep(now time.Time) {
	for id, lim := range l.byClient {
		if lim.TokensAt(now) >= float64(l.burst) {
			delete(l.byClient, id)
		}
	}
}

func (l *loginLimiter) Forget(clientID string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	delete(l.byClient, clientID)
	l.mu.Unlock()
}

func (l *loginLimiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byClient)
}
