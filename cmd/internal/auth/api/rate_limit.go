package authapi

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/httpx"
)

type lockoutTier struct {
	Threshold int
	Duration  time.Duration
}

// evaluateWindowThrottle blocks once max failures fall inside window. The
// retry hint is when the oldest counted failure leaves the window.
func evaluateWindowThrottle(now time.Time, failures []time.Time, max int, window time.Duration) (bool, time.Duration) {
	if max <= 0 || window <= 0 {
		return false, 0
	}
	cut := now.Add(-window)
	var recent []time.Time
	for _, f := range failures {
		if f.After(cut) {
			recent = append(recent, f)
		}
	}
	if len(recent) < max {
		return false, 0
	}
	oldest := recent[0]
	for _, f := range recent[1:] {
		if f.Before(oldest) {
			oldest = f
		}
	}
	return true, oldest.Add(window).Sub(now)
}

// evaluateProgressiveLockout applies the first tier whose threshold is met
// within its own duration, measured from the latest failure.
func evaluateProgressiveLockout(now time.Time, failures []time.Time, tiers []lockoutTier) (bool, time.Duration) {
	if len(failures) == 0 {
		return false, 0
	}
	latest := failures[0]
	for _, f := range failures[1:] {
		if f.After(latest) {
			latest = f
		}
	}
	for _, tier := range tiers {
		if tier.Threshold <= 0 || tier.Duration <= 0 {
			continue
		}
		cut := now.Add(-tier.Duration)
		n := 0
		for _, f := range failures {
			if f.After(cut) {
				n++
			}
		}
		if n < tier.Threshold {
			continue
		}
		until := latest.Add(tier.Duration)
		if until.After(now) {
			return true, until.Sub(now)
		}
	}
	return false, 0
}

// loginThrottle remembers recent login failures per client IP and per email.
type loginThrottle struct {
	cfg Config

	mu      sync.Mutex
	byIP    map[string][]time.Time
	byEmail map[string][]time.Time
}

func newLoginThrottle(cfg Config) *loginThrottle {
	return &loginThrottle{
		cfg:     cfg,
		byIP:    make(map[string][]time.Time),
		byEmail: make(map[string][]time.Time),
	}
}

// horizon is the longest period any rule looks back.
func (t *loginThrottle) horizon() time.Duration {
	h := t.cfg.LoginIPWindow
	for _, tier := range t.cfg.lockoutTiers() {
		if tier.Duration > h {
			h = tier.Duration
		}
	}
	return h
}

// check reports whether a login attempt should be refused.
func (t *loginThrottle) check(now time.Time, ip, email string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ip != "" {
		if blocked, retry := evaluateWindowThrottle(now, t.byIP[ip], t.cfg.LoginIPMax, t.cfg.LoginIPWindow); blocked {
			return true, retry
		}
	}
	if email != "" {
		if blocked, retry := evaluateProgressiveLockout(now, t.byEmail[email], t.cfg.lockoutTiers()); blocked {
			return true, retry
		}
	}
	return false, 0
}

func (t *loginThrottle) fail(now time.Time, ip, email string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cut := now.Add(-t.horizon())
	if ip != "" {
		t.byIP[ip] = append(prune(t.byIP[ip], cut), now)
	}
	if email != "" {
		t.byEmail[email] = append(prune(t.byEmail[email], cut), now)
	}
}

func (t *loginThrottle) succeed(email string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byEmail, email)
}

func prune(ts []time.Time, cut time.Time) []time.Time {
	kept := ts[:0]
	for _, x := range ts {
		if x.After(cut) {
			kept = append(kept, x)
		}
	}
	return kept
}

func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	if retryAfter > 0 {
		secs := int64(retryAfter.Round(time.Second).Seconds())
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
	}
	httpx.WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many attempts")
}
