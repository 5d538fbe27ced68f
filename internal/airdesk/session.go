package airdesk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"deskbook-agent/internal/token"
)

// Session is an authenticated client. Token and claims are fixed at creation
// and only ever cleared together by Demote.
type Session struct {
	client *Client

	mu          sync.RWMutex
	bearer      string
	claims      *token.Claims
	workplaceID uint64
}

// Claims returns a copy of the identity claims.
func (s *Session) Claims() (token.Claims, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil {
		return token.Claims{}, ErrNotAuthenticated
	}
	return *s.claims, nil
}

// Demote discards the token and claims and hands back the unauthenticated client.
// Every later call on s fails with ErrNotAuthenticated.
func (s *Session) Demote() *Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bearer = ""
	s.claims = nil
	s.workplaceID = 0
	return s.client
}

func (s *Session) snapshot() (string, *token.Claims, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil {
		return "", nil, 0, ErrNotAuthenticated
	}
	return s.bearer, s.claims, s.workplaceID, nil
}

// FetchWeekBookings lists the caller's bookings for the week starting at weekStart.
// Only transport failures are errors: a body that does not parse as a booking
// list yields an empty list.
func (s *Session) FetchWeekBookings(ctx context.Context, weekStart time.Time) ([]Booking, error) {
	bearer, claims, _, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("userId", claims.UserID)
	query.Set("mondayDateUnixStamp", strconv.FormatInt(weekStart.UnixMilli(), 10))

	resp, err := s.client.do(ctx, http.MethodGet, weekBookingsPath, query, nil, bearer)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read week bookings: %w", ErrTransport, err)
	}

	var bookings []Booking
	if err := json.Unmarshal(raw, &bookings); err != nil {
		log.Printf("Week bookings response (status %d) is not a booking list, treating as empty: %v", resp.StatusCode, err)
		return []Booking{}, nil
	}
	if bookings == nil {
		bookings = []Booking{}
	}
	return bookings, nil
}

// BookDay books the configured workplace for the day at epochMillis.
// A non-2xx answer is returned as a *BookingError.
func (s *Session) BookDay(ctx context.Context, epochMillis int64) error {
	bearer, claims, workplaceID, err := s.snapshot()
	if err != nil {
		return err
	}

	userID, err := claims.NumericUserID()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPayload, err)
	}

	body, err := json.Marshal(BookingRequest{
		ID:          0,
		UserID:      userID,
		Date:        strconv.FormatInt(epochMillis, 10),
		WorkplaceID: workplaceID,
		BookedByID:  userID,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal booking request: %w", ErrPayload, err)
	}

	resp, err := s.client.do(ctx, http.MethodPost, bookingsPath, nil, body, bearer)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &BookingError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	// Read to EOF so the connection goes back to the pool.
	io.Copy(io.Discard, resp.Body)
	return nil
}
