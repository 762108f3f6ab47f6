package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/unisport/coursewatch/pkg/booking"
	"github.com/unisport/coursewatch/pkg/listing"
	"github.com/unisport/coursewatch/pkg/monitor"
)

// Credentials are the booking site account credentials, supplied through
// the process environment. Both values are required; a missing one is a
// fatal startup error, never a runtime-recoverable one.
type Credentials struct {
	Email    string `env:"EMAIL,required"`
	Password string `env:"PASSWORD,required"`
}

// LoadCredentials reads the credentials from the environment.
func LoadCredentials() (Credentials, error) {
	var c Credentials
	if err := env.Parse(&c); err != nil {
		return Credentials{}, fmt.Errorf("failed to load credentials from environment: %w", err)
	}
	return c, nil
}

// Duration is a time.Duration that unmarshals from YAML strings like "5s".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the standard library duration value.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Settings configures the watch loop. All fields except ListingURL are
// optional and fall back to defaults.
type Settings struct {
	// ListingURL is the course listing page to poll.
	ListingURL string `yaml:"listing_url"`

	// PollInterval is the monitoring cadence.
	PollInterval Duration `yaml:"poll_interval"`

	// RosterPath is the JSON course roster file.
	RosterPath string `yaml:"roster_path"`

	// ScreenshotDir receives booking outcome screenshots.
	ScreenshotDir string `yaml:"screenshot_dir"`

	// StepTimeout bounds each reservation flow step.
	StepTimeout Duration `yaml:"step_timeout"`

	// Headless controls the booking browser (default true).
	Headless *bool `yaml:"headless"`

	// Sentinels are the verbatim waitlist strings marking a course as full.
	Sentinels []string `yaml:"sentinels"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	headless := true
	return Settings{
		PollInterval:  Duration(monitor.DefaultInterval),
		RosterPath:    "courses.json",
		ScreenshotDir: booking.DefaultScreenshotDir,
		StepTimeout:   Duration(booking.DefaultStepTimeout),
		Headless:      &headless,
		Sentinels:     listing.DefaultSentinels,
	}
}

// LoadSettings reads the settings YAML file at path, applying defaults for
// anything left unset. An empty path returns the defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	s.applyDefaults()
	return s, nil
}

func (s *Settings) applyDefaults() {
	defaults := DefaultSettings()
	if s.PollInterval <= 0 {
		s.PollInterval = defaults.PollInterval
	}
	if s.RosterPath == "" {
		s.RosterPath = defaults.RosterPath
	}
	if s.ScreenshotDir == "" {
		s.ScreenshotDir = defaults.ScreenshotDir
	}
	if s.StepTimeout <= 0 {
		s.StepTimeout = defaults.StepTimeout
	}
	if s.Headless == nil {
		s.Headless = defaults.Headless
	}
	if len(s.Sentinels) == 0 {
		s.Sentinels = defaults.Sentinels
	}
}

// Validate checks the settings after flag overrides have been applied.
func (s Settings) Validate() error {
	if s.ListingURL == "" {
		return errors.New("listing_url is required")
	}
	return nil
}

// HeadlessEnabled resolves the headless flag (default true).
func (s Settings) HeadlessEnabled() bool {
	if s.Headless == nil {
		return true
	}
	return *s.Headless
}
