package schedule

import (
	"sync"
	"time"

	"github.com/unisport/coursewatch/pkg/courses"
	"github.com/unisport/coursewatch/pkg/logging"
)

// ReactivationGrace is how long after a course session begins that the
// course is re-armed for monitoring.
const ReactivationGrace = 2 * time.Minute

// NextOccurrence returns the next instant at or after now that falls on the
// given weekday at the given time of day, in now's location. If today is the
// right weekday but the time has already passed, the occurrence rolls
// forward a full week. The result is deterministic for fixed inputs and
// never before now.
func NextOccurrence(day time.Weekday, at courses.ClockTime, now time.Time) time.Time {
	occurrence := time.Date(now.Year(), now.Month(), now.Day(), at.Hour, at.Minute, 0, 0, now.Location())

	diff := (int(day) - int(now.Weekday()) + 7) % 7
	if diff == 0 && occurrence.Before(now) {
		diff = 7
	}
	return occurrence.AddDate(0, 0, diff)
}

// Roster is the slice of the course store the scheduler needs.
type Roster interface {
	Reactivate(id string) error
}

// Scheduler re-arms booked courses after their session has passed. Each
// successful booking arms a one-shot timer for the course's next weekly
// occurrence plus ReactivationGrace; when it fires, the course is set active
// again and its booking date cleared via the roster's read-modify-write.
type Scheduler struct {
	roster Roster
	log    *logging.Logger

	// test seams
	now   func() time.Time
	after func(d time.Duration, f func()) *time.Timer

	mu     sync.Mutex
	timers []*time.Timer
}

// NewScheduler creates a reactivation scheduler.
func NewScheduler(roster Roster, log *logging.Logger) *Scheduler {
	return &Scheduler{
		roster: roster,
		log:    log,
		now:    time.Now,
		after:  time.AfterFunc,
	}
}

// ScheduleReactivation arms the reactivation timer for a freshly booked
// course. A non-positive delay can only come from stale course data; it is
// skipped with a warning instead of firing immediately, so bad data cannot
// cause a reactivation storm.
func (s *Scheduler) ScheduleReactivation(course courses.Course) {
	occurrence := NextOccurrence(course.CourseDay, course.CourseTime, s.now())
	delay := occurrence.Add(ReactivationGrace).Sub(s.now())

	if delay <= 0 {
		s.log.Warnf("reactivation time for course %s is in the past, skipping", course.ID)
		return
	}

	id := course.ID
	timer := s.after(delay, func() {
		s.reactivate(id)
	})

	s.mu.Lock()
	s.timers = append(s.timers, timer)
	s.mu.Unlock()

	s.log.Infof("scheduled reactivation for course %s in %s", course.ID, delay.Round(time.Second))
}

func (s *Scheduler) reactivate(id string) {
	if err := s.roster.Reactivate(id); err != nil {
		s.log.Errorf("failed to reactivate course %s: %v", id, err)
		return
	}
	s.log.Infof("reactivated course %s", id)
}

// Stop cancels all pending reactivation timers.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}
