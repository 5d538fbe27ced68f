// Package status keeps the latest observations of the booking loop for the
// status API and notifications. Entries expire so a stalled loop shows up as
// missing data rather than stale data.
package status

import (
	"time"

	"github.com/patrickmn/go-cache"

	"deskbook-agent/internal/airdesk"
	"deskbook-agent/internal/booking"
)

const (
	keySession   = "session"
	keyLastCycle = "cycle:last"
	weekPrefix   = "week:"
)

// SessionInfo describes the authenticated identity.
type SessionInfo struct {
	UserID          string     `json:"user_id"`
	UserRoleID      string     `json:"user_role_id"`
	AuthenticatedAt time.Time  `json:"authenticated_at"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

// Cycle is one pass of the booking loop.
type Cycle struct {
	ID         string              `json:"id"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
	Monday     time.Time           `json:"monday"`
	Existing   []airdesk.Booking   `json:"existing"`
	FetchError string              `json:"fetch_error,omitempty"`
	Week       *booking.WeekReport `json:"week,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// Failed reports whether the week could not be fully attempted.
func (c *Cycle) Failed() bool {
	return c.Error != ""
}

// Tracker stores observations in an expiring in-memory cache.
type Tracker struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewTracker keeps cycle data for ttl.
func NewTracker(ttl time.Duration) *Tracker {
	return &Tracker{
		cache: cache.New(ttl, ttl),
		ttl:   ttl,
	}
}

// SetSession records the identity the loop is running as. It never expires.
func (t *Tracker) SetSession(info SessionInfo) {
	t.cache.Set(keySession, info, cache.NoExpiration)
}

// Session returns the recorded identity.
func (t *Tracker) Session() (SessionInfo, bool) {
	v, found := t.cache.Get(keySession)
	if !found {
		return SessionInfo{}, false
	}
	return v.(SessionInfo), true
}

// RecordCycle stores c as the latest cycle and its existing bookings under its week.
func (t *Tracker) RecordCycle(c Cycle) {
	t.cache.Set(keyLastCycle, c, cache.DefaultExpiration)
	t.cache.Set(WeekKey(c.Monday), c.Existing, cache.DefaultExpiration)
}

// LastCycle returns the most recent cycle still within its ttl.
func (t *Tracker) LastCycle() (Cycle, bool) {
	v, found := t.cache.Get(keyLastCycle)
	if !found {
		return Cycle{}, false
	}
	return v.(Cycle), true
}

// WeekBookings returns the existing bookings seen for the week starting at monday (YYYY-MM-DD).
func (t *Tracker) WeekBookings(monday string) ([]airdesk.Booking, bool) {
	v, found := t.cache.Get(weekPrefix + monday)
	if !found {
		return nil, false
	}
	return v.([]airdesk.Booking), true
}

// WeekKey is the cache key for the week of monday.
func WeekKey(monday time.Time) string {
	return weekPrefix + monday.Format("2006-01-02")
}
