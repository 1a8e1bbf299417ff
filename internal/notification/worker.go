package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"society-booking-backend/internal/model"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real implementation backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool delivers booking-decision notices to the booking owner's push
// subscriptions without holding up the request that triggered them.
type WorkerPool struct {
	size    int
	jobs    chan string
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// SetSender overrides the push transport, for tests.
func (wp *WorkerPool) SetSender(s Sender) { wp.sender = s }

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	for {
		select {
		case bookingID := <-wp.jobs:
			wp.notifyDecision(ctx, bookingID)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch enqueues a decided booking for notification. It never blocks the
// caller beyond the channel buffer.
func (wp *WorkerPool) Dispatch(bookingID string) {
	wp.jobs <- bookingID
}

// Jobs returns the jobs channel, for tests.
func (wp *WorkerPool) Jobs() chan string { return wp.jobs }

// notifyDecision loads the booking and pushes a notice to every
// subscription of its owner.
func (wp *WorkerPool) notifyDecision(ctx context.Context, bookingID string) {
	var b model.Booking
	if err := wp.db.WithContext(ctx).Take(&b, "id = ?", bookingID).Error; err != nil {
		log.Printf("notification: booking %s not found: %v", bookingID, err)
		return
	}

	var subs []model.PushSubscription
	if err := wp.db.WithContext(ctx).Where("user_id = ?", b.BookedBy).Find(&subs).Error; err != nil {
		log.Printf("notification: fetching subscriptions for user %s: %v", b.BookedBy, err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload := []byte(decisionMessage(&b))
	for _, sub := range subs {
		wp.send(ctx, sub, payload)
	}
}

func decisionMessage(b *model.Booking) string {
	return fmt.Sprintf("Your %s booking on %s (%s–%s) was %s.",
		b.AmenityName,
		b.StartTime.Format("Jan 2"),
		b.StartTime.Format("15:04"),
		b.EndTime.Format("15:04"),
		strings.ToLower(string(b.Status)))
}

func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("notification: sending to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// The push service reports 410 Gone for expired subscriptions.
	if resp.StatusCode == http.StatusGone {
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("notification: deleting expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
