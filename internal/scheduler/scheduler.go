// Package scheduler runs the booking loop: authenticate once, then book the
// coming work week every interval.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"deskbook-agent/config"
	"deskbook-agent/internal/airdesk"
	"deskbook-agent/internal/booking"
	"deskbook-agent/internal/metrics"
	"deskbook-agent/internal/notification"
	"deskbook-agent/internal/parse"
	"deskbook-agent/internal/status"
)

// Service orchestrates the booking cycle.
type Service struct {
	cfg      *config.Config
	client   *airdesk.Client
	tracker  *status.Tracker
	metrics  *metrics.Metrics
	notifier *notification.WorkerPool
	now      func() time.Time
	loc      *time.Location
}

// Option configures a Service.
type Option func(*Service)

// WithTracker records every cycle in t.
func WithTracker(t *status.Tracker) Option {
	return func(s *Service) { s.tracker = t }
}

// WithMetrics records cycle metrics in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithNotifier pushes cycle reports through wp.
func WithNotifier(wp *notification.WorkerPool) Option {
	return func(s *Service) { s.notifier = wp }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a booking service around an unauthenticated client.
func NewService(cfg *config.Config, client *airdesk.Client, opts ...Option) *Service {
	loc, err := cfg.Schedule.Location()
	if err != nil {
		log.Printf("Warning: unknown timezone %q: %v. Using UTC.", cfg.Schedule.Timezone, err)
		loc = time.UTC
	}

	s := &Service{
		cfg:    cfg,
		client: client,
		now:    time.Now,
		loc:    loc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run authenticates and then books the next week every interval until ctx is done.
// An authentication failure is returned immediately; nothing is retried since
// bad credentials do not fix themselves.
func (s *Service) Run(ctx context.Context) error {
	log.Println("Starting booking service...")

	session, err := s.client.Authenticate(ctx)
	if err != nil {
		s.metrics.IncrementAuth("failed")
		log.Printf("Error trying to authenticate user: %v", err)
		return err
	}
	s.metrics.IncrementAuth("ok")
	s.recordSession(session)

	s.notifier.Start(ctx)

	s.RunOnce(ctx, session)

	timer := time.NewTimer(s.cfg.Schedule.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Booking service shutting down.")
			return nil
		case <-timer.C:
			s.RunOnce(ctx, session)
			timer.Reset(s.cfg.Schedule.Interval)
		}
	}
}

// RunOnce performs a single booking cycle. Errors are logged and recorded, never returned.
func (s *Service) RunOnce(ctx context.Context, session *airdesk.Session) status.Cycle {
	started := s.now()
	cycle := status.Cycle{
		ID:        uuid.NewString()[:8],
		StartedAt: started,
	}
	now := started.In(s.loc)
	monday := booking.NextMonday(now)
	cycle.Monday = monday
	week := monday.Format("2006-01-02")

	log.Printf("[%s] Next week: %s", cycle.ID, week)

	if claims, err := session.Claims(); err == nil && claims.Expired(now) {
		log.Printf("[%s] Warning: session token expired at %s, requests may be rejected", cycle.ID, claims.ExpiresAt.Time.Format(time.RFC3339))
	}

	// Step 1: Existing bookings, for visibility only
	existing, err := session.FetchWeekBookings(ctx, monday)
	if err != nil {
		log.Printf("[%s] Error getting week bookings: %v", cycle.ID, err)
		cycle.FetchError = err.Error()
	} else {
		cycle.Existing = existing
		s.metrics.SetExistingBookings(len(existing))
		log.Printf("[%s] Bookings: %d already in week %s", cycle.ID, len(existing), week)
		for _, b := range existing {
			log.Printf("[%s]   %s %s / %s", cycle.ID, parse.DayLabel(b.Date, s.loc), b.BookingOfficeSectorName, b.BookingWorkplaceName)
		}
	}

	// Step 2: Book every day, already booked or not
	log.Printf("[%s] Booking next week!", cycle.ID)
	report, err := booking.NewWorkflow(session, s.metrics).BookWeek(ctx, monday)
	cycle.Week = report
	outcome := "ok"
	if err != nil {
		outcome = "failed"
		cycle.Error = err.Error()
		log.Printf("[%s] Error booking week (%s): %v", cycle.ID, week, err)
	} else {
		log.Printf("[%s] Booked week (%s): %d booked, %d already booked or rejected", cycle.ID, week,
			report.Count(booking.ResultBooked), report.Count(booking.ResultRejected))
	}

	cycle.FinishedAt = s.now()
	s.metrics.ObserveCycle(outcome, cycle.FinishedAt.Sub(started), cycle.FinishedAt)
	if s.tracker != nil {
		s.tracker.RecordCycle(cycle)
	}
	s.notifier.Dispatch(cycle)

	return cycle
}

func (s *Service) recordSession(session *airdesk.Session) {
	claims, err := session.Claims()
	if err != nil {
		return
	}
	log.Printf("Authenticated as user %s", claims.UserID)
	if s.tracker == nil {
		return
	}

	info := status.SessionInfo{
		UserID:          claims.UserID,
		UserRoleID:      claims.UserRoleID,
		AuthenticatedAt: s.now(),
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Unix() > 0 {
		exp := claims.ExpiresAt.Time
		info.ExpiresAt = &exp
	}
	s.tracker.SetSession(info)
}
