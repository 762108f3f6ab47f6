package logging

import (
	"os"
	"strings"
	"sync"
	"testing"
)

// setupTestDir points the logger at a temporary directory and resets global
// state, restoring everything on cleanup.
func setupTestDir(t *testing.T) {
	t.Helper()

	tempDir := t.TempDir()

	origLogDir := logDir
	origInitErr := initErr
	origInitOnce := initOnce
	origRunID := runID
	origRunIDOnce := runIDOnce

	logDir = tempDir
	initErr = nil
	initOnce = sync.Once{}
	initOnce.Do(func() {}) // consume so initLogDirectory keeps tempDir
	runID = ""
	runIDOnce = sync.Once{}

	t.Cleanup(func() {
		logDir = origLogDir
		initErr = origInitErr
		initOnce = origInitOnce
		runID = origRunID
		runIDOnce = origRunIDOnce
		SetBookingInProgress(false)
	})
}

func TestNewLogger(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test-component")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	if logger.component != "test-component" {
		t.Errorf("Expected component 'test-component', got %q", logger.component)
	}

	if logger.runID == "" {
		t.Error("Expected non-empty run ID")
	}

	if _, err := os.Stat(logger.logPath); os.IsNotExist(err) {
		t.Errorf("Log file does not exist at %s", logger.logPath)
	}
}

func TestLoggerLevels(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("levels")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Infof("info %d", 1)
	logger.Warnf("warn %d", 2)
	logger.Errorf("error %d", 3)
	logger.Successf("success %d", 4)
	logger.Bookingf("booking %d", 5)

	data, err := os.ReadFile(logger.logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	content := string(data)
	for _, want := range []string{
		"[INFO] info 1",
		"[WARN] warn 2",
		"[ERROR] error 3",
		"[SUCCESS] success 4",
		"[BOOKING] booking 5",
		"[levels]",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("Log file missing %q:\n%s", want, content)
		}
	}
}

func TestBookingQuietModeSuppressesInfo(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("quiet")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	SetBookingInProgress(true)
	logger.Infof("hidden info")
	logger.Warnf("visible warn")
	logger.Bookingf("visible booking")
	SetBookingInProgress(false)
	logger.Infof("visible info")

	data, err := os.ReadFile(logger.logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	content := string(data)
	if strings.Contains(content, "hidden info") {
		t.Error("Info line was not suppressed during booking")
	}
	for _, want := range []string{"visible warn", "visible booking", "visible info"} {
		if !strings.Contains(content, want) {
			t.Errorf("Log file missing %q", want)
		}
	}
}

func TestSharedLogFileAcrossComponents(t *testing.T) {
	setupTestDir(t)

	first, err := NewLogger("first")
	if err != nil {
		t.Fatalf("Failed to create first logger: %v", err)
	}
	defer first.Close()

	second, err := NewLogger("second")
	if err != nil {
		t.Fatalf("Failed to create second logger: %v", err)
	}
	defer second.Close()

	if first.logPath != second.logPath {
		t.Errorf("Expected shared log file, got %q and %q", first.logPath, second.logPath)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("close")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}
