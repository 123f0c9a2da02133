package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"slotify-backend/internal/mailer"
	"slotify-backend/internal/model"
	"slotify-backend/internal/store"
)

// PushSender defines the interface for sending a web push notification.
type PushSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of PushSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// EmailSender hands a reminder email to the mail API. *mailer.Client
// satisfies it; a nil sender disables the email channel.
type EmailSender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// pushPayload is the JSON document handed to the service worker on the
// client side.
type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// WorkerPool manages a pool of workers delivering booking reminders over
// web push and email. Each delivered channel is recorded so a booking is
// reminded at most once per channel.
type WorkerPool struct {
	size    int
	jobs    chan store.DueReminder
	store   store.Store
	webpush *webpush.Options
	sender  PushSender
	mail    EmailSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options, mail EmailSender) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan store.DueReminder, size), // Buffered channel
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
		mail:    mail,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			log.Printf("Worker %d processing reminder for booking %s", id, job.BookingUUID)
			wp.deliver(ctx, job)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a job to the worker pool.
func (wp *WorkerPool) Dispatch(job store.DueReminder) {
	wp.jobs <- job
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan store.DueReminder {
	return wp.jobs
}

// deliver pushes the reminder out on every channel not yet logged for this
// booking. A channel is marked only after an actual delivery, so a failed
// send is retried on the next scan while the window is still open.
func (wp *WorkerPool) deliver(ctx context.Context, job store.DueReminder) {
	if !job.PushSent && wp.pushEnabled() {
		if wp.sendPush(ctx, job) {
			wp.mark(ctx, job, model.ChannelPush)
		}
	}
	if !job.EmailSent && wp.mail != nil {
		if wp.sendEmail(ctx, job) {
			wp.mark(ctx, job, model.ChannelEmail)
		}
	}
}

func (wp *WorkerPool) pushEnabled() bool {
	return wp.webpush != nil && wp.webpush.VAPIDPublicKey != "" && wp.webpush.VAPIDPrivateKey != ""
}

// sendPush fans the reminder out to every subscription the booker has.
// Returns true when the channel is settled: at least one push went through,
// or there was nothing to push to.
func (wp *WorkerPool) sendPush(ctx context.Context, job store.DueReminder) bool {
	subscriptions, err := wp.store.SubscriptionsForUser(ctx, job.UserID)
	if err != nil {
		log.Printf("Error fetching subscriptions for user %s: %v", job.UserUUID, err)
		return false
	}
	if len(subscriptions) == 0 {
		return true
	}

	payload, err := json.Marshal(pushPayload{
		Title: "Washing machine reminder",
		Body:  fmt.Sprintf("%s in %s, %s on %s", job.Machine, job.Building, job.TimeRange, job.Date),
	})
	if err != nil {
		log.Printf("Error building push payload for booking %s: %v", job.BookingUUID, err)
		return false
	}

	delivered := false
	for _, sub := range subscriptions {
		if wp.sendNotification(ctx, sub, payload) {
			delivered = true
		}
	}
	return delivered
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) bool {
	// Manually construct the webpush.Subscription object
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return false
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint, sub.UserID); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
		return false
	}
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (wp *WorkerPool) sendEmail(ctx context.Context, job store.DueReminder) bool {
	msg := mailer.Message{
		To:       []string{job.Email},
		Subject:  fmt.Sprintf("Reminder: your washing machine booking on %s", job.StartsAt.Format("02 Jan")),
		HTMLText: reminderHTML(job),
	}
	if err := wp.mail.Send(ctx, msg); err != nil {
		log.Printf("Error sending reminder email for booking %s: %v", job.BookingUUID, err)
		return false
	}
	return true
}

func (wp *WorkerPool) mark(ctx context.Context, job store.DueReminder, channel string) {
	if _, err := wp.store.MarkReminded(ctx, job.BookingID, job.UserID, channel, time.Now()); err != nil {
		log.Printf("Failed to record %s reminder for booking %s: %v", channel, job.BookingUUID, err)
	}
}

func reminderHTML(job store.DueReminder) string {
	name := job.FirstName
	if name == "" {
		name = "there"
	}
	when := job.StartsAt.Format("Monday, 02 January 2006 at 03:04 PM")
	return fmt.Sprintf(`<html><body>`+
		`<p>Hi <strong>%s</strong>,</p>`+
		`<p>This is a friendly reminder that you have a washing machine booking scheduled for:</p>`+
		`<ul>`+
		`<li><strong>Date &amp; Time:</strong> %s</li>`+
		`<li><strong>Location:</strong> %s in %s</li>`+
		`</ul>`+
		`<p>Please be on time. If you no longer need the slot, feel free to ignore this reminder.</p>`+
		`<p>Regards,<br><em>Slotify Bot</em></p>`+
		`</body></html>`,
		name, when, job.Machine, job.Building)
}
