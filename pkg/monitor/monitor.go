package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/unisport/coursewatch/pkg/booking"
	"github.com/unisport/coursewatch/pkg/courses"
	"github.com/unisport/coursewatch/pkg/listing"
	"github.com/unisport/coursewatch/pkg/logging"
	"github.com/unisport/coursewatch/pkg/schedule"
)

// DefaultInterval is the polling cadence.
const DefaultInterval = 5 * time.Second

// Roster is the slice of the course store the monitor needs.
type Roster interface {
	Load() ([]courses.Course, error)
	MarkBooked(id string, at time.Time) error
}

// SnapshotFetcher retrieves one listing snapshot per tick.
type SnapshotFetcher interface {
	Fetch(ctx context.Context) (*listing.Snapshot, error)
}

// Booker runs one reservation session for a free course slot.
type Booker interface {
	Book(ctx context.Context, listingURL string, loc courses.Locator) (booking.Result, error)
}

// Reactivator re-arms a booked course for its next weekly occurrence.
type Reactivator interface {
	ScheduleReactivation(course courses.Course)
}

// Monitor is the polling orchestrator: on a fixed cadence it loads the
// roster, fetches one listing snapshot, and evaluates every active course
// against it. A free slot triggers a reservation session, gated by the
// single-flight BookingLock; the session runs in its own goroutine so
// polling continues (and skips) while a booking is in flight.
type Monitor struct {
	Roster     Roster
	Fetcher    SnapshotFetcher
	Evaluator  *listing.Evaluator
	Booker     Booker
	Reactivate Reactivator
	ListingURL string
	Interval   time.Duration
	Log        *logging.Logger

	lock BookingLock
	wg   sync.WaitGroup
	now  func() time.Time
}

// Run polls until ctx is cancelled. The first tick fires immediately. Tick
// errors are logged and never stop the loop. On shutdown an in-flight
// reservation session is not cancelled; Run waits for it to finish.
func (m *Monitor) Run(ctx context.Context) error {
	interval := m.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			m.wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

func (m *Monitor) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.Log.Errorf("tick panicked: %v", r)
		}
	}()

	cs, err := m.Roster.Load()
	if err != nil {
		m.Log.Errorf("failed to load course roster: %v", err)
		return
	}

	snapshot, err := m.Fetcher.Fetch(ctx)
	if err != nil {
		m.Log.Errorf("failed to fetch listing snapshot: %v", err)
		return
	}

	for _, course := range cs {
		m.check(ctx, snapshot, course)
	}
}

// check evaluates one course against the shared snapshot. Evaluation is
// side-effect-free until a reservation is actually triggered.
func (m *Monitor) check(ctx context.Context, snapshot *listing.Snapshot, course courses.Course) {
	if !course.Active {
		return
	}

	availability, state := m.Evaluator.Classify(snapshot, course)
	switch availability {
	case listing.AvailabilityUnknown:
		m.Log.Warnf("availability element not found for course %s", course.ID)
	case listing.AvailabilityFull:
		m.Log.Infof("course %s is currently: %s", course.ID, state)
	case listing.AvailabilityFree:
		m.Log.Infof("course %s is currently: %s", course.ID, state)

		if !m.lock.TryAcquire() {
			m.Log.Infof("booking in progress, skipping course %s", course.ID)
			return
		}

		m.Log.Bookingf("free spot available for course %s", course.ID)
		m.wg.Add(1)
		go m.book(context.WithoutCancel(ctx), course)
	}
}

// book runs the reservation session while holding the booking lock. The
// lock is released on every exit path, a panic included: a permanently held
// lock would silently stop all future bookings.
func (m *Monitor) book(ctx context.Context, course courses.Course) {
	defer m.wg.Done()
	defer m.lock.Release()
	defer logging.SetBookingInProgress(false)
	defer func() {
		if r := recover(); r != nil {
			m.Log.Errorf("reservation session for course %s panicked: %v", course.ID, r)
		}
	}()

	logging.SetBookingInProgress(true)
	m.Log.Bookingf("attempting to book course %s", course.ID)

	result, err := m.Booker.Book(ctx, m.ListingURL, course.Locator)
	if err != nil {
		m.Log.Errorf("booking failed for course %s: %v", course.ID, err)
		return
	}

	bookedAt := m.nowFunc()()
	if result.AlreadyBooked {
		m.Log.Successf("course %s is already booked under this account", course.ID)
	} else {
		m.Log.Successf("booking successful for course %s", course.ID)
	}

	if err := m.Roster.MarkBooked(course.ID, bookedAt); err != nil {
		m.Log.Errorf("failed to record booking for course %s: %v", course.ID, err)
		return
	}
	m.Log.Successf("booked course %s at %s", course.ID, bookedAt.Format(time.RFC3339))

	// A fresh booking needs the course re-armed for next week's session. The
	// already-booked case schedules nothing new: whatever booked the course
	// first already did so.
	if !result.AlreadyBooked {
		m.Reactivate.ScheduleReactivation(course)
	}
}

func (m *Monitor) nowFunc() func() time.Time {
	if m.now != nil {
		return m.now
	}
	return time.Now
}

var _ Reactivator = (*schedule.Scheduler)(nil)
