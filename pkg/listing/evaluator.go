package listing

import (
	"github.com/unisport/coursewatch/pkg/courses"
)

// Availability classifies a course's slot state on one snapshot.
type Availability int

const (
	// AvailabilityUnknown means the course was not evaluated (inactive) or
	// its locator matched no element. Treated as neither free nor full.
	AvailabilityUnknown Availability = iota

	// AvailabilityFull means the availability state matched a waitlist
	// sentinel and no slot is bookable.
	AvailabilityFull

	// AvailabilityFree means a slot appears to be bookable.
	AvailabilityFree
)

// String returns a log-friendly name.
func (a Availability) String() string {
	switch a {
	case AvailabilityFull:
		return "full"
	case AvailabilityFree:
		return "free"
	default:
		return "unknown"
	}
}

// DefaultSentinels are the verbatim locale strings the booking site shows
// for a course with no bookable slot.
var DefaultSentinels = []string{"Warteliste", "ausgebucht"}

// Evaluator classifies course availability against waitlist sentinels.
// Classification is side-effect-free: it never mutates the course, the
// snapshot, or any shared state.
type Evaluator struct {
	sentinels []string
}

// NewEvaluator creates an evaluator. Empty sentinels fall back to
// DefaultSentinels.
func NewEvaluator(sentinels []string) *Evaluator {
	if len(sentinels) == 0 {
		sentinels = DefaultSentinels
	}
	return &Evaluator{sentinels: sentinels}
}

// Classify inspects one course's locator against the snapshot.
// Inactive courses are never evaluated: the snapshot is not touched and the
// result is AvailabilityUnknown. A locator that matches nothing is also
// AvailabilityUnknown. Otherwise the element state is full when it equals a
// sentinel verbatim, free when it differs.
func (e *Evaluator) Classify(snap *Snapshot, course courses.Course) (Availability, string) {
	if !course.Active {
		return AvailabilityUnknown, ""
	}

	state, ok := snap.Lookup(course.Locator)
	if !ok {
		return AvailabilityUnknown, ""
	}

	for _, sentinel := range e.sentinels {
		if state == sentinel {
			return AvailabilityFull, state
		}
	}
	return AvailabilityFree, state
}
