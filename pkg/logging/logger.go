package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger provides structured debug logging for browserpilot components.
// All logs are written to a run-specific file in ~/.browserpilot/logs/,
// shared by every component of the process. There is no level filtering;
// every method writes unconditionally.
type Logger struct {
	runID     string
	component string
	file      *os.File
	logger    *log.Logger
	mu        sync.Mutex
	logPath   string
	closeOnce sync.Once
}

var (
	runID     string
	runIDOnce sync.Once

	logDir   string
	initOnce sync.Once
	initErr  error
)

// getRunID returns or creates the run ID for this process.
func getRunID() string {
	runIDOnce.Do(func() {
		runID = uuid.New().String()
	})
	return runID
}

func initLogDirectory() error {
	initOnce.Do(func() {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			initErr = fmt.Errorf("failed to get home directory: %w", err)
			return
		}

		logDir = filepath.Join(homeDir, ".browserpilot", "logs")
		if err := os.MkdirAll(logDir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
			return
		}
	})
	return initErr
}

// NewLogger creates a logger for a specific component. The logger writes to
// ~/.browserpilot/logs/<run-id>.log; multiple components append to the same
// file. If the file cannot be opened, a stderr fallback logger is returned
// along with the error so callers can detect degraded mode.
func NewLogger(component string) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newFallbackLogger(component, err), err
	}

	id := getRunID()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s.log", id))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return newFallbackLogger(component, fmt.Errorf("failed to open log file: %w", err)), err
	}

	return &Logger{
		runID:     id,
		component: component,
		file:      file,
		logger:    log.New(file, "", 0), // timestamps are formatted below
		logPath:   logPath,
	}, nil
}

func newFallbackLogger(component string, err error) *Logger {
	logger := log.New(os.Stderr, fmt.Sprintf("[%s] ", component), log.LstdFlags)
	logger.Printf("WARNING: failed to initialize file logging: %v", err)

	return &Logger{
		runID:     getRunID(),
		component: component,
		logger:    logger,
	}
}

func (l *Logger) write(level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	l.logger.Printf("[%s] [%s] [%s] %s", timestamp, l.component, level, fmt.Sprintf(format, v...))
}

// Debugf logs a debug-level message.
func (l *Logger) Debugf(format string, v ...interface{}) { l.write("DEBUG", format, v...) }

// Infof logs an info-level message.
func (l *Logger) Infof(format string, v ...interface{}) { l.write("INFO", format, v...) }

// Warnf logs a warning-level message.
func (l *Logger) Warnf(format string, v ...interface{}) { l.write("WARN", format, v...) }

// Errorf logs an error-level message.
func (l *Logger) Errorf(format string, v ...interface{}) { l.write("ERROR", format, v...) }

// RunID returns the process-wide logging run ID.
func (l *Logger) RunID() string {
	return l.runID
}

// LogPath returns the path of the log file, or "" in fallback mode.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Discard returns a logger that drops everything. Useful in tests and as a
// nil-safe default.
func Discard() *Logger {
	return &Logger{
		runID:     getRunID(),
		component: "discard",
		logger:    log.New(io.Discard, "", 0),
	}
}

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}
