package folio

import (
	"sync"
	"time"
)

// LoginLimiter rate-limits failed login attempts per client IP.
type LoginLimiter struct {
	mu       sync.Mutex
	failures map[string][]time.Time
	max      int
	window   time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

// NewLoginLimiter allows max failed attempts per IP within window. A
// background sweep drops expired entries until Stop is called.
func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	l := &LoginLimiter{
		failures: make(map[string][]time.Time),
		max:      max,
		window:   window,
		done:     make(chan struct{}),
	}
	go l.sweep()
	return l
}

func (l *LoginLimiter) sweep() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.mu.Lock()
			for ip := range l.failures {
				if len(l.recent(ip)) == 0 {
					delete(l.failures, ip)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop ends the background sweep.
func (l *LoginLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

// recent prunes and returns the failures of ip inside the window; callers
// hold mu.
func (l *LoginLimiter) recent(ip string) []time.Time {
	cutoff := time.Now().Add(-l.window)
	hits := l.failures[ip]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.failures[ip] = kept
	return kept
}

// Check reports whether ip may try to log in. It does not count as an
// attempt; call Record after a failure.
func (l *LoginLimiter) Check(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.recent(ip)) < l.max
}

// Record registers a failed login for ip.
func (l *LoginLimiter) Record(ip string) {
	l.mu.Lock()
	l.failures[ip] = append(l.failures[ip], time.Now())
	l.mu.Unlock()
}

// Reset forgets the failures of ip, after a successful login.
func (l *LoginLimiter) Reset(ip string) {
	l.mu.Lock()
	delete(l.failures, ip)
	l.mu.Unlock()
}
