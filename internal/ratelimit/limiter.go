// Package ratelimit provides an in-process sliding-window rate limiter.
//
// Each caller key tracks the timestamps of its admitted requests within the
// trailing window. Admission prunes stale timestamps, then admits while the
// count is below the limit. Denial is a normal return value, never an error.
//
// State is local to the process. Deployments running multiple instances get
// one independent quota per instance; there is no cross-process coordination.
package ratelimit

import (
	"sync"
	"time"
)

// Default limiter settings.
const (
	DefaultWindow = 60 * time.Second
	DefaultLimit  = 10
)

// Rule is a named admission quota: at most Limit admissions per Window.
type Rule struct {
	Window time.Duration
	Limit  int
}

// DefaultRule returns the standard quota of 10 admissions per minute.
func DefaultRule() Rule {
	return Rule{Window: DefaultWindow, Limit: DefaultLimit}
}

// WithLimit returns a copy of the rule with a different admission limit.
func (r Rule) WithLimit(n int) Rule {
	r.Limit = n
	return r
}

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed   bool
	Remaining int
	// RetryAfter is how long the caller must wait before the oldest tracked
	// admission leaves the window. Zero when allowed.
	RetryAfter time.Duration
}

// Limiter admission-controls requests per caller key over a sliding window.
// The zero value is not usable; construct with New. Safe for concurrent use.
type Limiter struct {
	rule Rule

	mu      sync.Mutex
	records map[string][]time.Time
}

// New creates a Limiter enforcing the given rule.
func New(rule Rule) *Limiter {
	return &Limiter{
		rule:    rule,
		records: make(map[string][]time.Time),
	}
}

// Rule returns the rule the limiter enforces.
func (l *Limiter) Rule() Rule {
	return l.rule
}

// Admit checks whether the caller identified by key may proceed at now.
// Timestamps exactly at the window's lower bound still count against the
// quota. On admission, now is appended to the caller's record; on denial the
// record is left as pruned.
func (l *Limiter) Admit(key string, now time.Time) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	record := l.pruneLocked(key, now)

	if len(record) >= l.rule.Limit {
		oldest := record[0]
		return Decision{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: oldest.Add(l.rule.Window).Sub(now),
		}
	}

	record = append(record, now)
	l.records[key] = record
	return Decision{
		Allowed:   true,
		Remaining: l.rule.Limit - len(record),
	}
}

// Keys returns the number of caller records currently held, including any
// whose timestamps have all aged out but have not been pruned or swept.
func (l *Limiter) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Sweep drops caller records whose every timestamp has aged out of the
// window at now. Purely a memory bound; Admit prunes lazily regardless.
func (l *Limiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	cutoff := now.Add(-l.rule.Window)
	for key, record := range l.records {
		// Inclusive lower bound: a timestamp exactly at the cutoff is still
		// inside the window, so only strictly older records go.
		if len(record) == 0 || record[len(record)-1].Before(cutoff) {
			delete(l.records, key)
			removed++
		}
	}
	return removed
}

// pruneLocked drops timestamps older than the window from key's record and
// returns the pruned record. An empty record is removed from the map.
// Callers must hold l.mu.
func (l *Limiter) pruneLocked(key string, now time.Time) []time.Time {
	record := l.records[key]
	cutoff := now.Add(-l.rule.Window)

	keep := 0
	for keep < len(record) && record[keep].Before(cutoff) {
		keep++
	}
	record = record[keep:]

	if len(record) == 0 {
		delete(l.records, key)
		return nil
	}
	l.records[key] = record
	return record
}
