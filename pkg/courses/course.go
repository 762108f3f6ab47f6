package courses

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Locator identifies the availability element for one course on the listing
// page. It is an opaque value: stored, compared, and handed to the browser,
// but never parsed or inspected by this program.
type Locator string

// String returns the raw locator value.
func (l Locator) String() string { return string(l) }

// ClockTime is a time of day with minute precision, serialized as "HH:MM".
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses a "HH:MM" string.
func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return ClockTime{}, fmt.Errorf("invalid time of day %q: want HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("time of day %q out of range", s)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// String formats the time as "HH:MM".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// MarshalJSON serializes the time as a "HH:MM" string.
func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON parses the "HH:MM" string form.
func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseWeekday parses an English weekday name ("Monday", ...).
func ParseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

// Course is one trackable reservation target.
//
// BookingDate is non-nil only while the course is deactivated because of a
// successful booking; manual deactivation leaves it untouched, and
// reactivation clears it.
type Course struct {
	ID          string
	Locator     Locator
	Active      bool
	BookingDate *time.Time
	CourseDay   time.Weekday
	CourseTime  ClockTime
}

// courseJSON is the wire form of a Course in the roster file.
type courseJSON struct {
	ID          string     `json:"id"`
	CSSSelector string     `json:"cssSelector"`
	Active      bool       `json:"active"`
	BookingDate *time.Time `json:"bookingDate"`
	CourseDay   string     `json:"courseDay"`
	CourseTime  ClockTime  `json:"courseTime"`
}

// MarshalJSON serializes the course in the roster file layout.
func (c Course) MarshalJSON() ([]byte, error) {
	return json.Marshal(courseJSON{
		ID:          c.ID,
		CSSSelector: string(c.Locator),
		Active:      c.Active,
		BookingDate: c.BookingDate,
		CourseDay:   c.CourseDay.String(),
		CourseTime:  c.CourseTime,
	})
}

// UnmarshalJSON parses the roster file layout.
func (c *Course) UnmarshalJSON(data []byte) error {
	var raw courseJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	day, err := ParseWeekday(raw.CourseDay)
	if err != nil {
		return fmt.Errorf("course %q: %w", raw.ID, err)
	}
	c.ID = raw.ID
	c.Locator = Locator(raw.CSSSelector)
	c.Active = raw.Active
	c.BookingDate = raw.BookingDate
	c.CourseDay = day
	c.CourseTime = raw.CourseTime
	return nil
}
