package notification

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"slotify-backend/internal/db"
	"slotify-backend/internal/mailer"
	"slotify-backend/internal/model"
	"slotify-backend/internal/store"
)

// mockSender is a mock implementation of the PushSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

// mockMail records the messages handed to the email channel.
type mockMail struct {
	mu       sync.Mutex
	messages []mailer.Message
	err      error
}

func (m *mockMail) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockMail) sent() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.messages...)
}

// A helper to build a store on an in-memory database.
func newTestStore(t *testing.T) store.Store {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	return store.NewGormStore(gormDB, store.Rules{})
}

func pushOptions() *webpush.Options {
	return &webpush.Options{VAPIDPublicKey: "pub", VAPIDPrivateKey: "priv"}
}

func dueJob(bookingID, userID int64) store.DueReminder {
	return store.DueReminder{
		BookingID:   bookingID,
		BookingUUID: fmt.Sprintf("booking-%d", bookingID),
		UserID:      userID,
		UserUUID:    fmt.Sprintf("user-%d", userID),
		Email:       "asha@example.com",
		FirstName:   "Asha",
		Machine:     "Ashoka GF Washer",
		Building:    "Ashoka",
		Date:        "2025-03-13",
		SlotNumber:  1,
		TimeRange:   "07:00-10:00",
		StartsAt:    time.Date(2025, 3, 13, 7, 0, 0, 0, time.UTC),
	}
}

func reminderLogs(t *testing.T, s store.Store, bookingID int64) []model.ReminderLog {
	var logs []model.ReminderLog
	require.NoError(t, s.DB().Where("booking_id = ?", bookingID).Order("channel").Find(&logs).Error)
	return logs
}

func TestWorkerPool_Dispatch(t *testing.T) {
	wp := NewWorkerPool(1, newTestStore(t), pushOptions(), nil)

	// Dispatch a job
	wp.Dispatch(dueJob(123, 7))

	// Check if the job is in the channel
	select {
	case job := <-wp.Jobs():
		assert.Equal(t, int64(123), job.BookingID)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	s := newTestStore(t)
	mail := &mockMail{}
	wp := NewWorkerPool(1, s, pushOptions(), mail)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	t.Run("sends push and email and logs both channels", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		require.NoError(t, s.SaveSubscription(ctx, &model.PushSubscription{
			Endpoint: "https://example.com/push",
			P256DH:   "test_p256dh",
			Auth:     "test_auth",
			UserID:   7,
		}))

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "https://example.com/push", sub.Endpoint)
				assert.Contains(t, string(payload), "Ashoka GF Washer")
				assert.Contains(t, string(payload), "07:00-10:00")
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		wp.Dispatch(dueJob(101, 7))
		wg.Wait()

		// A short sleep to allow the worker to finish the job
		time.Sleep(100 * time.Millisecond)

		logs := reminderLogs(t, s, 101)
		require.Len(t, logs, 2)
		assert.Equal(t, model.ChannelEmail, logs[0].Channel)
		assert.Equal(t, model.ChannelPush, logs[1].Channel)

		messages := mail.sent()
		require.Len(t, messages, 1)
		assert.Equal(t, []string{"asha@example.com"}, messages[0].To)
		assert.Contains(t, messages[0].Subject, "13 Mar")
		assert.Contains(t, messages[0].HTMLText, "Ashoka GF Washer")
	})

	t.Run("deletes expired subscription and leaves push unlogged", func(t *testing.T) {
		require.NoError(t, s.SaveSubscription(ctx, &model.PushSubscription{
			Endpoint: "https://example.com/expired",
			P256DH:   "test_p256dh_expired",
			Auth:     "test_auth_expired",
			UserID:   8,
		}))

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusGone,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		job := dueJob(102, 8)
		job.EmailSent = true
		wp.Dispatch(job)

		time.Sleep(100 * time.Millisecond)

		subs, err := s.SubscriptionsForUser(ctx, 8)
		require.NoError(t, err)
		assert.Empty(t, subs)
		// No delivery happened, so nothing was logged and the next scan
		// while the window is open retries the channel.
		assert.Empty(t, reminderLogs(t, s, 102))
	})

	t.Run("settles push channel when the user has no subscriptions", func(t *testing.T) {
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				t.Error("sender must not be called without subscriptions")
				return nil, fmt.Errorf("unexpected send")
			},
		}

		job := dueJob(103, 9)
		job.EmailSent = true
		wp.Dispatch(job)

		time.Sleep(100 * time.Millisecond)

		logs := reminderLogs(t, s, 103)
		require.Len(t, logs, 1)
		assert.Equal(t, model.ChannelPush, logs[0].Channel)
	})

	t.Run("skips channels already logged", func(t *testing.T) {
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				t.Error("sender must not be called for a sent channel")
				return nil, fmt.Errorf("unexpected send")
			},
		}
		before := len(mail.sent())

		job := dueJob(104, 7)
		job.PushSent = true
		job.EmailSent = true
		wp.Dispatch(job)

		time.Sleep(100 * time.Millisecond)

		assert.Empty(t, reminderLogs(t, s, 104))
		assert.Len(t, mail.sent(), before)
	})
}

func TestWorkerPool_EmailFailureRetries(t *testing.T) {
	s := newTestStore(t)
	mail := &mockMail{err: fmt.Errorf("mail api down")}
	wp := NewWorkerPool(1, s, nil, mail)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	job := dueJob(201, 7)
	wp.Dispatch(job)

	time.Sleep(100 * time.Millisecond)

	// Failed email leaves no log entry; push is disabled without VAPID keys.
	assert.Empty(t, reminderLogs(t, s, 201))
}
