package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"github.com/unisport/coursewatch/pkg/courses"
	"github.com/unisport/coursewatch/pkg/logging"
)

// sameTabScript rewrites the listing page so the reservation flow stays
// observable: target="_blank" links lose their target and window.open
// becomes a same-tab navigation. The site still opens the flow in a new tab
// via the booking button, which is detected explicitly after the click.
const sameTabScript = `() => {
	document.querySelectorAll('a[target="_blank"]').forEach((link) => {
		link.removeAttribute("target");
	});
	window.open = (url) => {
		window.location.href = url;
	};
}`

// ErrNoReservationTab is returned when clicking the booking button never
// produced a second page; the site most likely did not open a reservation
// flow at all.
var ErrNoReservationTab = errors.New("no reservation tab detected after clicking the booking button")

// ErrNotSuccessful is returned when the final confirmation page reports the
// booking as not successful and it is not the already-booked case.
var ErrNotSuccessful = errors.New("booking was not successful")

// Runner drives reservation sessions through a shared Playwright driver.
// The driver process is started once; each Book call launches its own
// isolated browser that is torn down on every exit path.
type Runner struct {
	pw   *playwright.Playwright
	opts Options
	log  *logging.Logger
}

// NewRunner installs (if needed) and starts the Playwright driver.
func NewRunner(opts Options, log *logging.Logger) (*Runner, error) {
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	return &Runner{
		pw:   pw,
		opts: opts.withDefaults(),
		log:  log,
	}, nil
}

// Close stops the Playwright driver.
func (r *Runner) Close() error {
	if err := r.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

func (r *Runner) stepTimeoutMillis() float64 {
	return float64(r.opts.StepTimeout.Milliseconds())
}

// Book runs the full reservation flow for one course: navigate to the
// listing, trigger the course's booking button, switch to the reservation
// tab, confirm, log in, accept terms, finalize, submit, and verify the
// outcome. All browser resources are released on every exit path and no
// error escapes as a panic.
func (r *Runner) Book(ctx context.Context, listingURL string, loc courses.Locator) (Result, error) {
	browser, err := r.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(r.opts.Headless),
		SlowMo:   playwright.Float(slowMoMillis),
		Args: []string{
			"--start-maximized",
			"--disable-popup-blocking",
			"--no-sandbox",
			"--disable-setuid-sandbox",
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer browser.Close()

	// NoViewport lets the window keep the maximized size from the launch args.
	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		NoViewport: playwright.Bool(true),
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to create browser context: %w", err)
	}
	defer browserCtx.Close()

	page, err := browserCtx.NewPage()
	if err != nil {
		return Result{}, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(r.stepTimeoutMillis())
	r.dismissDialogs(page)

	// Step 1: navigate to the course listing.
	if _, err := page.Goto(listingURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(r.stepTimeoutMillis()),
	}); err != nil {
		return Result{}, fmt.Errorf("failed to navigate to %s: %w", listingURL, err)
	}
	r.log.Bookingf("navigated to %s", listingURL)

	// Step 2: force the reservation flow to stay observable.
	if _, err := page.Evaluate(sameTabScript); err != nil {
		return Result{}, fmt.Errorf("failed to rewrite link targets: %w", err)
	}

	// Step 3: trigger the course's booking button.
	if err := r.waitAndClick(page, loc.String()); err != nil {
		return Result{}, fmt.Errorf("booking button %s: %w", loc, err)
	}
	r.log.Bookingf("clicked the booking button")

	// Step 4: the site opens the reservation flow in a new tab.
	reservationPage, err := r.waitForReservationTab(ctx, browserCtx, page)
	if err != nil {
		return Result{}, err
	}
	reservationPage.SetDefaultTimeout(r.stepTimeoutMillis())
	r.dismissDialogs(reservationPage)
	if err := reservationPage.BringToFront(); err != nil {
		return Result{}, fmt.Errorf("failed to switch to the reservation tab: %w", err)
	}
	r.log.Bookingf("switched to the reservation tab")

	// Step 5: confirm intent.
	if err := r.clickThroughNavigation(reservationPage, selBuchenButton); err != nil {
		return Result{}, fmt.Errorf("buchen button: %w", err)
	}
	r.log.Bookingf("confirmed the reservation")

	// Step 6: authenticate.
	if err := r.login(reservationPage); err != nil {
		return Result{}, err
	}
	r.log.Bookingf("logged in")

	// Step 7: accept terms and conditions.
	if err := r.waitAndClick(reservationPage, selTerms); err != nil {
		return Result{}, fmt.Errorf("terms checkbox: %w", err)
	}

	// Step 8: finalize, then submit.
	if err := r.waitAndClick(reservationPage, selFinalize); err != nil {
		return Result{}, fmt.Errorf("finalize button: %w", err)
	}
	if err := r.waitAndClick(reservationPage, selSubmit); err != nil {
		return Result{}, fmt.Errorf("submit button: %w", err)
	}
	r.log.Bookingf("submitted the booking")

	// Step 9: verify the outcome.
	return r.verifyOutcome(reservationPage)
}

// dismissDialogs auto-dismisses native dialogs so an unexpected alert or
// confirm cannot block the flow.
func (r *Runner) dismissDialogs(page playwright.Page) {
	page.OnDialog(func(dialog playwright.Dialog) {
		r.log.Warnf("dismissing dialog: %s", dialog.Message())
		_ = dialog.Dismiss()
	})
}

// waitAndClick waits for the selector to be visible, then clicks it.
func (r *Runner) waitAndClick(page playwright.Page, selector string) error {
	if _, err := page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(r.stepTimeoutMillis()),
	}); err != nil {
		return fmt.Errorf("wait failed: %w", err)
	}
	if err := page.Click(selector); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// clickThroughNavigation clicks a control that triggers a page navigation
// and waits for the navigation to settle.
func (r *Runner) clickThroughNavigation(page playwright.Page, selector string) error {
	if _, err := page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(r.stepTimeoutMillis()),
	}); err != nil {
		return fmt.Errorf("wait failed: %w", err)
	}
	if _, err := page.ExpectNavigation(func() error {
		return page.Click(selector)
	}, playwright.PageExpectNavigationOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(r.stepTimeoutMillis()),
	}); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// waitForReservationTab detects the page the site opened for the reservation
// flow. The site gets a fixed grace period, then the context's page set is
// polled against a deadline; no second page means the flow never opened.
func (r *Runner) waitForReservationTab(ctx context.Context, browserCtx playwright.BrowserContext, original playwright.Page) (playwright.Page, error) {
	var found playwright.Page

	ok, err := pollUntil(ctx, tabGraceDelay, tabDeadline, tabPollPeriod, func() bool {
		for _, p := range browserCtx.Pages() {
			if p != original {
				found = p
				return true
			}
		}
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("reservation tab detection interrupted: %w", err)
	}
	if !ok {
		return nil, ErrNoReservationTab
	}
	return found, nil
}

// login clicks the login affordance, types the credentials character-paced,
// and submits.
func (r *Runner) login(page playwright.Page) error {
	if err := r.waitAndClick(page, selLoginLink); err != nil {
		return fmt.Errorf("login link: %w", err)
	}

	if _, err := page.WaitForSelector(selEmailInput, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(r.stepTimeoutMillis()),
	}); err != nil {
		return fmt.Errorf("email input: wait failed: %w", err)
	}

	typeOpts := playwright.PageTypeOptions{Delay: playwright.Float(typingDelayMillis)}
	if err := page.Type(selEmailInput, r.opts.Email, typeOpts); err != nil {
		return fmt.Errorf("failed to enter email: %w", err)
	}
	if err := page.Type(selPasswordInput, r.opts.Password, typeOpts); err != nil {
		return fmt.Errorf("failed to enter password: %w", err)
	}

	if err := r.clickThroughNavigation(page, selLoginButton); err != nil {
		return fmt.Errorf("login button: %w", err)
	}
	return nil
}

// verifyOutcome inspects the final page. No "not successful" banner means
// the booking went through. With the banner present, the already-booked
// block plus the confirming body text still counts as success because the
// slot is held by this account; anything else is a failure. Each outcome is
// captured as a screenshot for the audit trail.
func (r *Runner) verifyOutcome(page playwright.Page) (Result, error) {
	banner, err := page.QuerySelector(selNotSuccessful)
	if err != nil {
		return Result{}, fmt.Errorf("failed to inspect confirmation page: %w", err)
	}

	if banner == nil {
		time.Sleep(confirmationSettle)
		shot := r.captureScreenshot(page)
		return Result{Screenshot: shot}, nil
	}

	shot := r.captureScreenshot(page)

	alreadyBooked, err := page.QuerySelector(selAlreadyBooked)
	if err == nil && alreadyBooked != nil {
		body, textErr := page.InnerText("body")
		if textErr == nil && containsAlreadyBookedText(body) {
			return Result{AlreadyBooked: true, Screenshot: shot}, nil
		}
	}

	return Result{Screenshot: shot}, ErrNotSuccessful
}

// captureScreenshot persists an outcome screenshot with a
// collision-resistant name. Screenshots are an audit trail only; a capture
// failure is logged but never fails the booking.
func (r *Runner) captureScreenshot(page playwright.Page) string {
	if err := os.MkdirAll(r.opts.ScreenshotDir, 0750); err != nil {
		r.log.Warnf("failed to create screenshot directory: %v", err)
		return ""
	}

	name := screenshotName(time.Now())
	path := filepath.Join(r.opts.ScreenshotDir, name)
	if _, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path: playwright.String(path),
	}); err != nil {
		r.log.Warnf("failed to capture screenshot: %v", err)
		return ""
	}
	return path
}

// screenshotName builds a timestamped file name with a random suffix so two
// captures in the same millisecond cannot collide.
func screenshotName(at time.Time) string {
	return fmt.Sprintf("booking-confirmation-%d-%s.png", at.UnixMilli(), uuid.NewString()[:8])
}
