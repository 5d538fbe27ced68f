package airdesk

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig is returned by Authenticate when credentials are incomplete. No request is sent.
	ErrConfig = errors.New("airdesk: configuration error")
	// ErrAuth is returned when the login succeeded on the wire but the token is unusable.
	ErrAuth = errors.New("airdesk: authentication failed")
	// ErrTransport covers requests that could not be sent or responses that could not be read.
	ErrTransport = errors.New("airdesk: transport error")
	// ErrProtocol is returned when a response does not have the expected shape.
	ErrProtocol = errors.New("airdesk: unexpected response")
	// ErrPayload is returned when a request body cannot be built.
	ErrPayload = errors.New("airdesk: cannot build request payload")
	// ErrBooking is returned when the service rejects a booking.
	ErrBooking = errors.New("airdesk: booking rejected")
	// ErrNotAuthenticated is returned by a Session after it has been demoted.
	ErrNotAuthenticated = errors.New("airdesk: session is not authenticated")
)

// BookingError carries the HTTP status of a rejected booking. The service answers
// "already booked" and validation failures alike, so the status is informational.
type BookingError struct {
	StatusCode int
	Body       string
}

func (e *BookingError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("airdesk: booking rejected with status %d", e.StatusCode)
	}
	return fmt.Sprintf("airdesk: booking rejected with status %d: %s", e.StatusCode, e.Body)
}

// Is makes errors.Is(err, ErrBooking) match.
func (e *BookingError) Is(target error) bool {
	return target == ErrBooking
}
