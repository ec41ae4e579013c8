// Package limit tracks the per-day practice submission allowance. The
// counter is advisory bookkeeping in local state; the backend enforces its
// own limit independently and may still reject with 429.
package limit

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"mentorspractice/internal/models"
	"mentorspractice/internal/storage"
)

// dayLayout renders a whole-day date string in the server's local timezone.
// Crossing midnight resets the allowance in place on the next check.
const dayLayout = "Mon Jan 02 2006"

// DailyLimiter reads and writes SubmissionCounter records in a Store.
type DailyLimiter struct {
	store storage.Store
	max   int
	now   func() time.Time
}

// NewDailyLimiter creates a limiter allowing max submissions per day per
// practice type.
func NewDailyLimiter(store storage.Store, max int) *DailyLimiter {
	return &DailyLimiter{
		store: store,
		max:   max,
		now:   time.Now,
	}
}

// SetClock overrides the limiter's clock. Used in tests.
func (l *DailyLimiter) SetClock(now func() time.Time) {
	l.now = now
}

// Max returns the daily allowance.
func (l *DailyLimiter) Max() int {
	return l.max
}

// Remaining returns how many submissions the visitor has left today for the
// given practice type. A stored record from another day counts as zero used.
// Never negative. Storage failures fall back to the full allowance, matching
// the advisory nature of the counter.
func (l *DailyLimiter) Remaining(visitorID string, practiceType models.PracticeType) int {
	counter, err := l.load(visitorID, practiceType)
	if err != nil {
		log.Printf("Error reading submission counter: %v", err)
		return l.max
	}

	if counter.Date != l.today() {
		return l.max
	}

	remaining := l.max - counter.Count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Record increments today's submission count for the visitor and practice
// type, initializing a fresh counter when none exists for today.
func (l *DailyLimiter) Record(visitorID string, practiceType models.PracticeType) error {
	today := l.today()

	counter, err := l.load(visitorID, practiceType)
	if err != nil {
		return err
	}
	if counter.Date != today {
		counter = models.SubmissionCounter{Date: today}
	}
	counter.Count++

	encoded, err := json.Marshal(counter)
	if err != nil {
		return fmt.Errorf("failed to encode submission counter: %w", err)
	}
	return l.store.Set(l.key(visitorID, practiceType), string(encoded))
}

func (l *DailyLimiter) load(visitorID string, practiceType models.PracticeType) (models.SubmissionCounter, error) {
	var counter models.SubmissionCounter

	raw, ok, err := l.store.Get(l.key(visitorID, practiceType))
	if err != nil {
		return counter, fmt.Errorf("failed to read submission counter: %w", err)
	}
	if !ok {
		return counter, nil
	}

	if err := json.Unmarshal([]byte(raw), &counter); err != nil {
		return models.SubmissionCounter{}, fmt.Errorf("failed to decode submission counter: %w", err)
	}
	return counter, nil
}

func (l *DailyLimiter) key(visitorID string, practiceType models.PracticeType) string {
	return storage.VisitorKey(visitorID, practiceType.CounterKey())
}

func (l *DailyLimiter) today() string {
	return l.now().Format(dayLayout)
}
