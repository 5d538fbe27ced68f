package api

import (
	"deskbook-agent/internal/notification"
	"deskbook-agent/internal/status"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	tracker  *status.Tracker
	notifier *notification.WorkerPool
}

// NewHandler creates a new API handler. notifier may be nil when push is disabled.
func NewHandler(tracker *status.Tracker, notifier *notification.WorkerPool) *Handler {
	return &Handler{
		tracker:  tracker,
		notifier: notifier,
	}
}
