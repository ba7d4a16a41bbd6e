// Package guest models the rolling analysis allowance of unauthenticated users.
package guest

import (
	"time"

	"mediguard/internal/domain"
)

// Defaults for the guest allowance.
const (
	DefaultLimit  = 3
	DefaultWindow = 24 * time.Hour
)

// Counter is the number of analyses a guest used in the window that began at
// WindowStart. The zero Counter has no window and no usage.
type Counter struct {
	Used        int
	WindowStart time.Time
}

// Policy decides how many analyses fit in one window and how long a window lasts.
type Policy struct {
	Limit  int
	Window time.Duration
}

// DefaultPolicy allows 3 analyses per rolling 24 hours.
func DefaultPolicy() Policy {
	return Policy{Limit: DefaultLimit, Window: DefaultWindow}
}

// NewPolicy builds a policy, falling back to the defaults for non-positive values.
func NewPolicy(limit int, window time.Duration) Policy {
	p := DefaultPolicy()
	if limit > 0 {
		p.Limit = limit
	}
	if window > 0 {
		p.Window = window
	}
	return p
}

// Expired reports whether the counter's window has ended at now.
func (p Policy) Expired(c Counter, now time.Time) bool {
	return c.WindowStart.IsZero() || !now.Before(c.WindowStart.Add(p.Window))
}

// Current returns the counter as it stands at now: an expired window is reset.
func (p Policy) Current(c Counter, now time.Time) Counter {
	if p.Expired(c, now) {
		return Counter{}
	}
	return c
}

// Remaining is the number of analyses still available at now.
func (p Policy) Remaining(c Counter, now time.Time) int {
	left := p.Limit - p.Current(c, now).Used
	if left < 0 {
		return 0
	}
	return left
}

// ResetsAt is when the current window ends, or the zero time if none is open.
func (p Policy) ResetsAt(c Counter, now time.Time) time.Time {
	cur := p.Current(c, now)
	if cur.WindowStart.IsZero() {
		return time.Time{}
	}
	return cur.WindowStart.Add(p.Window)
}

// Consume records one analysis at now. A new window opens on the first use
// after expiry. Returns domain.ErrGuestLimitReached, and the unchanged
// counter, when the window is full.
func (p Policy) Consume(c Counter, now time.Time) (Counter, error) {
	cur := p.Current(c, now)
	if cur.Used >= p.Limit {
		return cur, domain.ErrGuestLimitReached
	}
	if cur.WindowStart.IsZero() {
		cur.WindowStart = now
	}
	cur.Used++
	return cur, nil
}

// FromUsage converts a persisted row to a Counter. A nil row is a fresh guest.
func FromUsage(u *domain.GuestUsage) Counter {
	if u == nil {
		return Counter{}
	}
	return Counter{Used: u.AnalysesUsed, WindowStart: u.WindowStart}
}

// ToUsage converts a Counter to its persisted row.
func ToUsage(guestID string, c Counter, now time.Time) *domain.GuestUsage {
	return &domain.GuestUsage{
		GuestID:      guestID,
		WindowStart:  c.WindowStart,
		AnalysesUsed: c.Used,
		UpdatedAt:    now,
	}
}
