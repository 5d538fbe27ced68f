package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/SherClockHolmes/webpush-go"

	"deskbook-agent/config"
	"deskbook-agent/internal/booking"
	"deskbook-agent/internal/status"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool pushes cycle reports to the configured subscriptions.
// A nil *WorkerPool accepts and drops every dispatch.
type WorkerPool struct {
	size          int
	jobs          chan status.Cycle
	webpush       *webpush.Options
	sender        NotificationSender
	onlyFailures  bool
	mu            sync.Mutex
	subscriptions []webpush.Subscription
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, push *config.PushConfig) *WorkerPool {
	subs := make([]webpush.Subscription, 0, len(push.Subscriptions))
	for _, s := range push.Subscriptions {
		subs = append(subs, webpush.Subscription{
			Endpoint: s.Endpoint,
			Keys:     webpush.Keys{P256dh: s.P256DH, Auth: s.Auth},
		})
	}

	return &WorkerPool{
		size: size,
		jobs: make(chan status.Cycle, size), // Buffered channel
		webpush: &webpush.Options{
			VAPIDPublicKey:  push.PublicKey,
			VAPIDPrivateKey: push.PrivateKey,
			Subscriber:      push.Subject,
			TTL:             push.TTL,
		},
		sender:        &WebPushSender{}, // Use the real sender by default
		onlyFailures:  push.NotifyOn != "always",
		subscriptions: subs,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	if wp == nil {
		return
	}
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case cycle := <-wp.jobs:
			wp.notify(cycle)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a cycle report. It never blocks the booking loop: when the
// queue is full the report is dropped.
func (wp *WorkerPool) Dispatch(cycle status.Cycle) {
	if wp == nil {
		return
	}
	if wp.onlyFailures && !cycle.Failed() {
		return
	}
	select {
	case wp.jobs <- cycle:
	default:
		log.Printf("Notification queue full, dropping report for cycle %s", cycle.ID)
	}
}

// notify sends one message to every live subscription.
func (wp *WorkerPool) notify(cycle status.Cycle) {
	wp.mu.Lock()
	subs := append([]webpush.Subscription(nil), wp.subscriptions...)
	wp.mu.Unlock()

	if len(subs) == 0 {
		return
	}

	payload := []byte(Message(cycle))
	for i := range subs {
		wp.sendNotification(&subs[i], payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(sub *webpush.Subscription, payload []byte) {
	resp, err := wp.sender.Send(payload, sub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Removing.", sub.Endpoint)
		wp.remove(sub.Endpoint)
	}
}

func (wp *WorkerPool) remove(endpoint string) {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	kept := wp.subscriptions[:0]
	for _, s := range wp.subscriptions {
		if s.Endpoint != endpoint {
			kept = append(kept, s)
		}
	}
	wp.subscriptions = kept
}

// Subscribe adds a subscription or replaces the keys of an existing endpoint.
func (wp *WorkerPool) Subscribe(endpoint, p256dh, auth string) {
	sub := webpush.Subscription{Endpoint: endpoint, Keys: webpush.Keys{P256dh: p256dh, Auth: auth}}

	wp.mu.Lock()
	defer wp.mu.Unlock()
	for i := range wp.subscriptions {
		if wp.subscriptions[i].Endpoint == endpoint {
			wp.subscriptions[i] = sub
			return
		}
	}
	wp.subscriptions = append(wp.subscriptions, sub)
}

// Unsubscribe removes endpoint and reports whether it was subscribed.
func (wp *WorkerPool) Unsubscribe(endpoint string) bool {
	before := wp.Subscriptions()
	wp.remove(endpoint)
	return wp.Subscriptions() < before
}

// PublicKey returns the VAPID public key clients subscribe with.
func (wp *WorkerPool) PublicKey() string {
	return wp.webpush.VAPIDPublicKey
}

// Subscriptions returns the number of live subscriptions.
func (wp *WorkerPool) Subscriptions() int {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	return len(wp.subscriptions)
}

// Message renders the one-line summary pushed for a cycle.
func Message(c status.Cycle) string {
	week := c.Monday.Format("2006-01-02")
	if c.Week == nil {
		return fmt.Sprintf("Desk booking for week of %s failed: %s", week, c.Error)
	}

	parts := []string{
		fmt.Sprintf("%d booked", c.Week.Count(booking.ResultBooked)),
		fmt.Sprintf("%d already booked or rejected", c.Week.Count(booking.ResultRejected)),
	}
	if c.Failed() {
		return fmt.Sprintf("Desk booking for week of %s stopped (%s): %s", week, strings.Join(parts, ", "), c.Error)
	}
	return fmt.Sprintf("Desk booking for week of %s done: %s", week, strings.Join(parts, ", "))
}
