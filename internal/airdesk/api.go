package airdesk

// Endpoint paths, relative to the configured base URL.
const (
	loginPath        = "/Login/LoginWithUsername"
	weekBookingsPath = "/Bookings/GetWeekBookingsForUser"
	bookingsPath     = "/Bookings"
)

// loginRequest is the body sent to the login endpoint.
type loginRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	SaveCredentials bool   `json:"save_credentials"`
}

// loginResponse models the login endpoint's response.
type loginResponse struct {
	Data *struct {
		Token string `json:"token"`
	} `json:"data"`
	Message string `json:"message"`
}

// BookingRequest is the body of a booking creation call. ID is always 0; the server assigns it.
type BookingRequest struct {
	ID          uint64 `json:"id"`
	UserID      uint64 `json:"userId"`
	Date        string `json:"date"` // epoch milliseconds
	WorkplaceID uint64 `json:"workplaceId"`
	BookedByID  uint64 `json:"bookedById"`
}

// Booking is one entry of the existing week bookings.
type Booking struct {
	Date                    string `json:"date"`
	BookingOfficeSectorName string `json:"bookingOfficeSectorName"`
	BookingWorkplaceName    string `json:"bookingWorkplaceName"`
}
