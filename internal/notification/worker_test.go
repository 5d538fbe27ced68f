package notification

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"

	"deskbook-agent/config"
	"deskbook-agent/internal/booking"
	"deskbook-agent/internal/status"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

func pushConfig(notifyOn string, endpoints ...string) *config.PushConfig {
	cfg := &config.PushConfig{PublicKey: "pub", PrivateKey: "priv", TTL: 60, NotifyOn: notifyOn}
	for _, e := range endpoints {
		cfg.Subscriptions = append(cfg.Subscriptions, config.PushSubscription{Endpoint: e, P256DH: "p", Auth: "a"})
	}
	return cfg
}

func response(code int) *http.Response {
	return &http.Response{StatusCode: code, Body: io.NopCloser(bytes.NewBufferString(""))}
}

var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestWorkerPool_Dispatch(t *testing.T) {
	wp := NewWorkerPool(1, pushConfig("always", "https://example.com/push"))

	wp.Dispatch(status.Cycle{ID: "c1"})

	select {
	case job := <-wp.jobs:
		assert.Equal(t, "c1", job.ID)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_DispatchOnlyFailures(t *testing.T) {
	wp := NewWorkerPool(1, pushConfig("failure", "https://example.com/push"))

	wp.Dispatch(status.Cycle{ID: "fine"})
	assert.Len(t, wp.jobs, 0)

	wp.Dispatch(status.Cycle{ID: "broken", Error: "transport error"})
	assert.Len(t, wp.jobs, 1)

	// Full queue drops instead of blocking.
	wp.Dispatch(status.Cycle{ID: "broken again", Error: "transport error"})
	assert.Len(t, wp.jobs, 1)
}

func TestWorkerPool_NilIsSafe(t *testing.T) {
	var wp *WorkerPool
	wp.Start(context.Background())
	wp.Dispatch(status.Cycle{Error: "x"})
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	wp := NewWorkerPool(1, pushConfig("always", "https://example.com/push", "https://example.com/expired"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t.Run("sends to every subscription and drops expired ones", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(2)

		var mu sync.Mutex
		var seen []string
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				defer wg.Done()
				mu.Lock()
				seen = append(seen, sub.Endpoint)
				mu.Unlock()
				assert.Equal(t, "Desk booking for week of 2024-01-01 done: 5 booked, 0 already booked or rejected", string(payload))
				assert.Equal(t, "pub", options.VAPIDPublicKey)
				if sub.Endpoint == "https://example.com/expired" {
					return response(http.StatusGone), nil
				}
				return response(http.StatusCreated), nil
			},
		}
		wp.Start(ctx)

		report := &booking.WeekReport{Monday: monday}
		for i := 0; i < 5; i++ {
			report.Days = append(report.Days, booking.DayResult{Result: booking.ResultBooked})
		}
		wp.Dispatch(status.Cycle{ID: "c1", Monday: monday, Week: report})
		wg.Wait()

		assert.ElementsMatch(t, []string{"https://example.com/push", "https://example.com/expired"}, seen)
		assert.Eventually(t, func() bool { return wp.Subscriptions() == 1 }, time.Second, 10*time.Millisecond)
	})

	t.Run("send errors are logged and skipped", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				defer wg.Done()
				return nil, errors.New("push service unreachable")
			},
		}

		wp.Dispatch(status.Cycle{ID: "c2", Monday: monday, Error: "boom"})
		wg.Wait()
		assert.Equal(t, 1, wp.Subscriptions())
	})
}

func TestWorkerPool_SubscribeUnsubscribe(t *testing.T) {
	wp := NewWorkerPool(1, pushConfig("always", "https://example.com/push"))
	assert.Equal(t, "pub", wp.PublicKey())

	wp.Subscribe("https://example.com/push", "p2", "a2")
	assert.Equal(t, 1, wp.Subscriptions())

	wp.Subscribe("https://example.com/other", "p", "a")
	assert.Equal(t, 2, wp.Subscriptions())

	assert.True(t, wp.Unsubscribe("https://example.com/push"))
	assert.False(t, wp.Unsubscribe("https://example.com/push"))
	assert.Equal(t, 1, wp.Subscriptions())
}

func TestMessage(t *testing.T) {
	report := &booking.WeekReport{Monday: monday, Days: []booking.DayResult{
		{Result: booking.ResultBooked},
		{Result: booking.ResultRejected},
		{Result: booking.ResultTransportFailure},
	}}

	assert.Equal(t,
		"Desk booking for week of 2024-01-01 stopped (1 booked, 1 already booked or rejected): connection reset",
		Message(status.Cycle{Monday: monday, Week: report, Error: "connection reset"}))

	assert.Equal(t,
		"Desk booking for week of 2024-01-01 failed: not authenticated",
		Message(status.Cycle{Monday: monday, Error: "not authenticated"}))
}
