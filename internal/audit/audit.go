package audit

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Trail records one human-readable line per completed operation. Delivery is
// best effort: a failed write never fails the operation that produced it.
type Trail interface {
	Record(message string)
}

// FileTrail appends timestamped lines to a plain text log file.
type FileTrail struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewFileTrail builds a trail writing to path, creating parent directories
// as needed. Write failures are reported to the logger and dropped.
func NewFileTrail(path string, logger *slog.Logger) *FileTrail {
	return &FileTrail{path: path, logger: logger}
}

// Record appends "<timestamp> | <message>" to the log file.
func (t *FileTrail) Record(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.warn(err)
			return
		}
	}

	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.warn(err)
		return
	}
	defer f.Close()

	line := fmt.Sprintf("%s | %s\n", time.Now().Format("2006-01-02 15:04:05"), message)
	if _, err := f.WriteString(line); err != nil {
		t.warn(err)
	}
}

func (t *FileTrail) warn(err error) {
	if t.logger != nil {
		t.logger.Warn("audit write failed", "path", t.path, "error", err)
	}
}

// LoggerTrail routes audit lines to the structured logger instead of a file.
// Used in tests and when no audit path is configured.
type LoggerTrail struct {
	logger *slog.Logger
}

// NewLoggerTrail builds a logging trail.
func NewLoggerTrail(logger *slog.Logger) *LoggerTrail {
	return &LoggerTrail{logger: logger}
}

// Record writes the message at info level.
func (t *LoggerTrail) Record(message string) {
	if t == nil || t.logger == nil {
		return
	}
	t.logger.Info("audit", "message", message)
}
