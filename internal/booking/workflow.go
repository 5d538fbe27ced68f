// Package booking books a work week one day at a time.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"deskbook-agent/internal/airdesk"
	"deskbook-agent/internal/metrics"
)

// Result is the outcome of booking a single day.
type Result string

const (
	ResultBooked           Result = "booked"
	ResultRejected         Result = "already_booked_or_rejected"
	ResultTransportFailure Result = "transport_failure"
	ResultEncodingFailure  Result = "encoding_failure"
)

// Classify maps a BookDay error to a Result.
func Classify(err error) Result {
	switch {
	case err == nil:
		return ResultBooked
	case errors.Is(err, airdesk.ErrBooking):
		return ResultRejected
	case errors.Is(err, airdesk.ErrPayload):
		return ResultEncodingFailure
	default:
		return ResultTransportFailure
	}
}

// DayBooker books one day given as epoch milliseconds. *airdesk.Session implements it.
type DayBooker interface {
	BookDay(ctx context.Context, epochMillis int64) error
}

// DayResult records what happened to one day of the plan.
type DayResult struct {
	Date   time.Time `json:"date"`
	Result Result    `json:"result"`
	Error  string    `json:"error,omitempty"`
}

// WeekReport holds the results of the days that were attempted, in order.
type WeekReport struct {
	Monday time.Time   `json:"monday"`
	Days   []DayResult `json:"days"`
}

// Count returns how many days ended with res.
func (r *WeekReport) Count(res Result) int {
	n := 0
	for _, d := range r.Days {
		if d.Result == res {
			n++
		}
	}
	return n
}

// Workflow runs the weekly booking.
type Workflow struct {
	booker  DayBooker
	metrics *metrics.Metrics
}

// NewWorkflow creates a workflow. m may be nil.
func NewWorkflow(booker DayBooker, m *metrics.Metrics) *Workflow {
	return &Workflow{booker: booker, metrics: m}
}

// BookWeek books Monday through Friday of monday's week, strictly in order.
// A rejected day is logged and skipped. Any other failure stops the week: the
// remaining days are not attempted and the error is returned with the partial report.
func (w *Workflow) BookWeek(ctx context.Context, monday time.Time) (*WeekReport, error) {
	report := &WeekReport{Monday: monday}

	for _, day := range WeekPlan(monday) {
		label := day.Format("2006-01-02")
		log.Printf("Booking: %s", label)

		err := w.booker.BookDay(ctx, day.UnixMilli())
		result := Classify(err)
		w.metrics.IncrementDayOutcome(string(result))

		entry := DayResult{Date: day, Result: result}
		if err != nil {
			entry.Error = err.Error()
		}
		report.Days = append(report.Days, entry)

		switch result {
		case ResultBooked:
			log.Printf("Booked %s", label)
		case ResultRejected:
			log.Printf("Error booking day %s, it may be already booked: %v", label, err)
		default:
			log.Printf("Error booking day %s (%s): %v", label, result, err)
			return report, fmt.Errorf("booking week of %s stopped at %s: %w", monday.Format("2006-01-02"), label, err)
		}
	}

	return report, nil
}
