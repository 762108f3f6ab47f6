// Package main provides the coursewatch daemon: it polls a university
// sports course listing for free slots and books them automatically through
// a browser session, re-arming booked courses after their weekly session
// has passed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unisport/coursewatch/pkg/booking"
	"github.com/unisport/coursewatch/pkg/config"
	"github.com/unisport/coursewatch/pkg/courses"
	"github.com/unisport/coursewatch/pkg/listing"
	"github.com/unisport/coursewatch/pkg/logging"
	"github.com/unisport/coursewatch/pkg/monitor"
	"github.com/unisport/coursewatch/pkg/schedule"
)

const version = "0.1.0"

type cliFlags struct {
	configPath  string
	listingURL  string
	rosterPath  string
	interval    time.Duration
	headless    bool
	headlessSet bool
	showVersion bool
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "path to the settings YAML file")
	flag.StringVar(&f.listingURL, "url", "", "course listing URL to poll (overrides settings)")
	flag.StringVar(&f.rosterPath, "roster", "", "course roster JSON file (overrides settings)")
	flag.DurationVar(&f.interval, "interval", 0, "poll interval (overrides settings)")
	flag.BoolVar(&f.headless, "headless", true, "run the booking browser headless (overrides settings)")
	flag.BoolVar(&f.showVersion, "version", false, "print version and exit")
	flag.Parse()

	flag.Visit(func(fl *flag.Flag) {
		if fl.Name == "headless" {
			f.headlessSet = true
		}
	})
	return f
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		fmt.Printf("coursewatch v%s\n", version)
		return
	}

	if err := run(flags); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(flags cliFlags) error {
	// Missing credentials are fatal before anything else starts.
	creds, err := config.LoadCredentials()
	if err != nil {
		return err
	}

	settings, err := config.LoadSettings(flags.configPath)
	if err != nil {
		return err
	}
	if flags.listingURL != "" {
		settings.ListingURL = flags.listingURL
	}
	if flags.rosterPath != "" {
		settings.RosterPath = flags.rosterPath
	}
	if flags.interval > 0 {
		settings.PollInterval = config.Duration(flags.interval)
	}
	if flags.headlessSet {
		settings.Headless = &flags.headless
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	log, logErr := logging.NewLogger("coursewatch")
	if logErr != nil {
		log.Warnf("file logging unavailable: %v", logErr)
	}
	defer log.Close()

	monitorLog, _ := logging.NewLogger("monitor")
	defer monitorLog.Close()
	bookingLog, _ := logging.NewLogger("booking")
	defer bookingLog.Close()
	scheduleLog, _ := logging.NewLogger("schedule")
	defer scheduleLog.Close()

	store := courses.NewStore(settings.RosterPath)
	fetcher := listing.NewFetcher(settings.ListingURL, listing.DefaultFetchTimeout)
	evaluator := listing.NewEvaluator(settings.Sentinels)

	runner, err := booking.NewRunner(booking.Options{
		Email:         creds.Email,
		Password:      creds.Password,
		Headless:      settings.HeadlessEnabled(),
		StepTimeout:   settings.StepTimeout.Std(),
		ScreenshotDir: settings.ScreenshotDir,
	}, bookingLog)
	if err != nil {
		return err
	}
	defer runner.Close()

	scheduler := schedule.NewScheduler(store, scheduleLog)
	defer scheduler.Stop()

	mon := &monitor.Monitor{
		Roster:     store,
		Fetcher:    fetcher,
		Evaluator:  evaluator,
		Booker:     runner,
		Reactivate: scheduler,
		ListingURL: settings.ListingURL,
		Interval:   settings.PollInterval.Std(),
		Log:        monitorLog,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Infof("coursewatch v%s watching %s every %s", version, settings.ListingURL, settings.PollInterval.Std())

	if err := mon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Warnf("shutting down gracefully")
	return nil
}
