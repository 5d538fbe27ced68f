package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Authenticated bool       `json:"authenticated"`
	UserID        string     `json:"user_id,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	LastCycleAt   *time.Time `json:"last_cycle_at,omitempty"`
	LastCycleOK   *bool      `json:"last_cycle_ok,omitempty"`
}

// GetHealth handles GET /healthz. It answers 503 until the agent has authenticated.
func (h *Handler) GetHealth(c *gin.Context) {
	var resp healthResponse

	session, ok := h.tracker.Session()
	if ok {
		resp.Authenticated = true
		resp.UserID = session.UserID
		resp.ExpiresAt = session.ExpiresAt
	}
	if cycle, found := h.tracker.LastCycle(); found {
		finished := cycle.FinishedAt
		healthy := !cycle.Failed()
		resp.LastCycleAt = &finished
		resp.LastCycleOK = &healthy
	}

	code := http.StatusOK
	if !resp.Authenticated {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

// GetStatus handles GET /api/status and returns the last booking cycle.
func (h *Handler) GetStatus(c *gin.Context) {
	cycle, found := h.tracker.LastCycle()
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no booking cycle recorded yet"})
		return
	}
	c.JSON(http.StatusOK, cycle)
}

// GetBookings handles GET /api/bookings?monday=YYYY-MM-DD.
// Without a monday parameter it answers for the week of the last cycle.
func (h *Handler) GetBookings(c *gin.Context) {
	monday := c.Query("monday")
	if monday == "" {
		cycle, found := h.tracker.LastCycle()
		if !found {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no booking cycle recorded yet"})
			return
		}
		monday = cycle.Monday.Format("2006-01-02")
	}

	day, err := time.Parse("2006-01-02", monday)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid 'monday' format. Use YYYY-MM-DD."})
		return
	}
	if day.Weekday() != time.Monday {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "'monday' is not a Monday"})
		return
	}

	bookings, found := h.tracker.WeekBookings(monday)
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no bookings recorded for week " + monday})
		return
	}
	c.JSON(http.StatusOK, gin.H{"monday": monday, "bookings": bookings})
}
