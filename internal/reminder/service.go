package reminder

import (
	"context"
	"log"
	"sync"
	"time"

	"slotify-backend/config"
	"slotify-backend/internal/store"
)

// Dispatcher receives due reminders for delivery. *notification.WorkerPool
// satisfies it.
type Dispatcher interface {
	Dispatch(job store.DueReminder)
}

// Status is the scanner state reported on the admin API.
type Status struct {
	Enabled    bool       `json:"enabled"`
	Paused     bool       `json:"paused"`
	LastScanAt *time.Time `json:"last_scan_at,omitempty"`
	LastCount  int        `json:"last_count"`
}

// Service periodically scans for bookings whose reminder window has opened
// and hands each one to the dispatcher. Scanning never mutates bookings.
type Service struct {
	cfg   *config.ReminderConfig
	store store.Store
	pool  Dispatcher

	mu        sync.Mutex
	paused    bool
	lastScan  time.Time
	lastCount int
}

// NewService creates the reminder scanner.
func NewService(cfg *config.ReminderConfig, s store.Store, pool Dispatcher) *Service {
	return &Service{cfg: cfg, store: s, pool: pool}
}

// Run starts the scanning process in a loop.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Reminder scanner is disabled. Not starting.")
		return
	}
	log.Println("Starting reminder scanner...")

	s.ScanOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Reminder scanner shutting down.")
			return
		case <-timer.C:
			s.ScanOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// ScanOnce performs a single eligibility scan. A paused scanner skips the
// cycle but the loop keeps ticking so Resume takes effect on the next one.
func (s *Service) ScanOnce(ctx context.Context) {
	s.scan(ctx, time.Now())
}

func (s *Service) scan(ctx context.Context, now time.Time) {
	if s.Paused() {
		log.Println("Reminder scanner is paused. Skipping cycle.")
		return
	}

	due, err := s.store.DueReminders(ctx, now, s.cfg.Window)
	if err != nil {
		log.Printf("Error scanning for due reminders: %v", err)
		return
	}

	s.mu.Lock()
	s.lastScan = now
	s.lastCount = len(due)
	s.mu.Unlock()

	if len(due) == 0 {
		return
	}

	log.Printf("Dispatching %d reminders", len(due))
	for _, job := range due {
		s.pool.Dispatch(job)
	}
}

// Pause stops scan cycles from dispatching until Resume is called.
func (s *Service) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
	log.Println("Reminder scanner paused.")
}

// Resume re-enables scan cycles.
func (s *Service) Resume() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
	log.Println("Reminder scanner resumed.")
}

// Paused reports whether scanning is currently paused.
func (s *Service) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Status snapshots the scanner state.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := Status{Enabled: s.cfg.Enabled, Paused: s.paused, LastCount: s.lastCount}
	if !s.lastScan.IsZero() {
		at := s.lastScan
		status.LastScanAt = &at
	}
	return status
}
