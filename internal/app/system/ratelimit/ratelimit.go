// Package ratelimit throttles public submissions and login attempts with
// fixed per-key windows held in memory.
//
// Keys are client IPs or normalized emails. The client IP is always taken
// from RemoteAddr; when the server runs behind a trusted proxy the router
// mounts chi's RealIP middleware, which rewrites RemoteAddr before any
// limiter sees the request.
package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/blend/internal/app/system/respond"
)

// Limits configures every limiter the API mounts.
type Limits struct {
	Form       int // public form submissions per IP
	FormWindow time.Duration

	LoginIP       int // login attempts per IP
	LoginIPWindow time.Duration

	LoginEmail       int // login attempts per account
	LoginEmailWindow time.Duration
}

// DefaultLimits returns the limits used when nothing is configured.
func DefaultLimits() Limits {
	return Limits{
		Form:             20,
		FormWindow:       10 * time.Minute,
		LoginIP:          10,
		LoginIPWindow:    time.Minute,
		LoginEmail:       5,
		LoginEmailWindow: 5 * time.Minute,
	}
}

// Decision is the outcome of one Take.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration // time until the window resets
}

// Limiter counts hits per key in fixed windows. Safe for concurrent use.
type Limiter struct {
	mu     sync.Mutex
	hits   map[string]*bucket
	max    int
	window time.Duration
	sweep  time.Time // next time expired buckets are dropped
	now    func() time.Time
}

type bucket struct {
	n       int
	resetAt time.Time
}

// New returns a limiter allowing max hits per key per window.
func New(max int, window time.Duration) *Limiter {
	return &Limiter{
		hits:   make(map[string]*bucket),
		max:    max,
		window: window,
		now:    time.Now,
	}
}

// Take records a hit for key and reports whether it fits the window.
// Rejected hits are not counted.
func (l *Limiter) Take(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.sweep) {
		for k, b := range l.hits {
			if !now.Before(b.resetAt) {
				delete(l.hits, k)
			}
		}
		l.sweep = now.Add(l.window)
	}

	b, ok := l.hits[key]
	if !ok || !now.Before(b.resetAt) {
		b = &bucket{resetAt: now.Add(l.window)}
		l.hits[key] = b
	}

	d := Decision{Limit: l.max, RetryAfter: b.resetAt.Sub(now)}
	if b.n >= l.max {
		return d
	}
	b.n++
	d.Allowed = true
	d.Remaining = l.max - b.n
	return d
}

// Allow is Take without the details.
func (l *Limiter) Allow(key string) bool {
	return l.Take(key).Allowed
}

// Forget drops any count held for key.
func (l *Limiter) Forget(key string) {
	l.mu.Lock()
	delete(l.hits, key)
	l.mu.Unlock()
}

// ClientIP returns the host part of RemoteAddr. Forwarding headers are
// never read here.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// PerIP rejects requests with 429 once the client IP has used up l's
// window. Every response carries X-RateLimit-Limit and
// X-RateLimit-Remaining; rejections also carry Retry-After.
func PerIP(l *Limiter, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := l.Take(ClientIP(r))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.Allowed {
				w.Header().Set("Retry-After", seconds(d.RetryAfter))
				respond.Error(w, http.StatusTooManyRequests, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewFormLimiter returns the limiter shared by the public form routes.
func NewFormLimiter(lim Limits) *Limiter {
	return New(lim.Form, lim.FormWindow)
}

func seconds(d time.Duration) string {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		s = 1
	}
	return strconv.Itoa(s)
}

// LoginLimiter guards the login route on two axes: the caller's IP and
// the targeted account.
type LoginLimiter struct {
	byIP    *Limiter
	byEmail *Limiter
}

// NewLoginLimiter builds a LoginLimiter from lim.
func NewLoginLimiter(lim Limits) *LoginLimiter {
	return &LoginLimiter{
		byIP:    New(lim.LoginIP, lim.LoginIPWindow),
		byEmail: New(lim.LoginEmail, lim.LoginEmailWindow),
	}
}

// Check counts one attempt. When it is refused, reason is the message to
// show the client.
func (ll *LoginLimiter) Check(r *http.Request, email string) (ok bool, reason string) {
	if !ll.byIP.Allow(ClientIP(r)) {
		return false, "Too many login attempts. Please wait a minute before trying again."
	}
	if key := emailKey(email); key != "" && !ll.byEmail.Allow(key) {
		return false, "Too many login attempts for this account. Please wait a few minutes."
	}
	return true, ""
}

// ResetEmail clears the account counter after a successful login.
func (ll *LoginLimiter) ResetEmail(email string) {
	if key := emailKey(email); key != "" {
		ll.byEmail.Forget(key)
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
