package livetrack

import (
	"context"
	"sync"
	"time"
)

// Handle cancels one scheduled recurring job.
type Handle = context.CancelFunc

// Scheduler registers recurring ticks tagged by chat so they can be cancelled
// as a group.
type Scheduler interface {
	// Schedule runs tick immediately and then every interval until cancelled.
	Schedule(chatID int64, interval time.Duration, tick func()) Handle

	// Cancel stops every job tagged with chatID and reports whether any
	// existed. Cancelling is idempotent.
	Cancel(chatID int64) bool
}

// TimerScheduler drives jobs with real timers, one goroutine per job.
type TimerScheduler struct {
	mu   sync.Mutex
	jobs map[int64][]context.CancelFunc
}

// NewTimerScheduler creates an empty scheduler.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{jobs: make(map[int64][]context.CancelFunc)}
}

func (s *TimerScheduler) Schedule(chatID int64, interval time.Duration, tick func()) Handle {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.jobs[chatID] = append(s.jobs[chatID], cancel)
	s.mu.Unlock()

	go func() {
		tick() // first tick immediate

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tick()
			}
		}
	}()

	return cancel
}

func (s *TimerScheduler) Cancel(chatID int64) bool {
	s.mu.Lock()
	cancels := s.jobs[chatID]
	delete(s.jobs, chatID)
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	return len(cancels) > 0
}

// Close cancels every job. Used on shutdown.
func (s *TimerScheduler) Close() {
	s.mu.Lock()
	jobs := s.jobs
	s.jobs = make(map[int64][]context.CancelFunc)
	s.mu.Unlock()

	for _, cancels := range jobs {
		for _, cancel := range cancels {
			cancel()
		}
	}
}
