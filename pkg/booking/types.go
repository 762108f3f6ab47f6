package booking

import (
	"strings"
	"time"
)

// Flow selectors for the fixed shape of the booking site's reservation
// pages. Only the course locator on the listing page varies per course;
// everything below is structural and identical for every course.
const (
	selBuchenButton  = `input.inlbutton.buchen[value="buchen"]`
	selLoginLink     = "#bs_pw_anmlink"
	selEmailInput    = "#bs_pw_anm > div:nth-child(2) > div:nth-child(2) > input:nth-child(1)"
	selPasswordInput = "#bs_pw_anm > div:nth-child(3) > div:nth-child(2) > input:nth-child(1)"
	selLoginButton   = "div.bs_form_foot:nth-child(5) > div:nth-child(1) > div:nth-child(2) > input:nth-child(1)"
	selTerms         = "#bs_bed > label:nth-child(1) > input:nth-child(1)"
	selFinalize      = "#bs_submit"
	selSubmit        = "div.bs_right > input:nth-child(1)"
	selNotSuccessful = "#bs_form_main > div > div > div.bs_text_red.bs_text_big"
	selAlreadyBooked = ".bs_meldung > div:nth-child(2)"
)

// alreadyBookedText is the body text confirming that the "not successful"
// banner actually means the account already holds this booking. Matched
// verbatim against the site's German copy.
const alreadyBookedText = "Sie sind für dieses Angebot bereits seit"

// containsAlreadyBookedText reports whether the page body carries the
// already-booked confirmation copy.
func containsAlreadyBookedText(body string) bool {
	return strings.Contains(body, alreadyBookedText)
}

const (
	// DefaultStepTimeout bounds each visibility wait in the flow.
	DefaultStepTimeout = 60 * time.Second

	// DefaultScreenshotDir receives the outcome screenshots.
	DefaultScreenshotDir = "booking-screenshots"

	// slowMoMillis paces every browser action to avoid tripping
	// anti-automation heuristics.
	slowMoMillis = 90

	// typingDelayMillis paces credential keystrokes.
	typingDelayMillis = 10

	// tabGraceDelay is how long the site is given to open the reservation
	// tab before we start checking for it.
	tabGraceDelay = 5 * time.Second

	// tabDeadline bounds the whole new-tab detection, grace included.
	tabDeadline = 15 * time.Second

	// tabPollPeriod is the check interval during new-tab detection.
	tabPollPeriod = 250 * time.Millisecond

	// confirmationSettle lets the confirmation page finish rendering
	// before the success screenshot.
	confirmationSettle = 1500 * time.Millisecond
)

// Result reports the outcome of a reservation attempt that ended in a
// confirmed booking.
type Result struct {
	// AlreadyBooked is true when the site reported the booking as not
	// successful only because this account already holds the slot. The
	// underlying intent is satisfied, so the attempt counts as a success.
	AlreadyBooked bool

	// Screenshot is the path of the persisted outcome screenshot, empty if
	// it could not be captured.
	Screenshot string
}

// Options configures a Runner.
type Options struct {
	// Email and Password are the booking site account credentials.
	Email    string
	Password string

	// Headless controls whether the browser runs without a visible window.
	Headless bool

	// StepTimeout bounds each visibility wait (default DefaultStepTimeout).
	StepTimeout time.Duration

	// ScreenshotDir is where outcome screenshots are written, created
	// lazily (default DefaultScreenshotDir).
	ScreenshotDir string
}

func (o Options) withDefaults() Options {
	if o.StepTimeout <= 0 {
		o.StepTimeout = DefaultStepTimeout
	}
	if o.ScreenshotDir == "" {
		o.ScreenshotDir = DefaultScreenshotDir
	}
	return o
}
