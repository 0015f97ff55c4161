package storage

import "time"

// Lifetime controls how long persisted records are kept alive. A write bumps
// a record's expiry to now+Bump once less than Threshold remains.
type Lifetime struct {
	Threshold time.Duration
	Bump      time.Duration
}

const day = 24 * time.Hour

// DefaultLifetime keeps records for 30 days and refreshes them when less
// than 29 days remain.
var DefaultLifetime = Lifetime{Threshold: 29 * day, Bump: 30 * day}

// Extend returns the expiry a record written at now should carry.
func (l Lifetime) Extend(current, now time.Time) time.Time {
	if l.Bump <= 0 {
		return current
	}
	if current.IsZero() || current.Sub(now) < l.Threshold {
		return now.Add(l.Bump)
	}
	return current
}
