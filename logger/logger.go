// Package logger provides the engine's leveled file and console loggers,
// following the teacher's shape: a mutex-guarded run log with level
// filtering, plus a TTY-aware console logger for the CLI host.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var levelOrder = map[string]int{
	"trace": 0,
	"debug": 1,
	"info":  2,
	"warn":  3,
	"error": 4,
}

func normalizeLevel(level string) string {
	l := strings.ToLower(strings.TrimSpace(level))
	if _, ok := levelOrder[l]; !ok {
		return "info"
	}
	return l
}

// FileLogger writes timestamped, level-filtered records to a run log file
// under logDir, the way the teacher's FileLogger does for wave/task
// events — here the events are statement executions.
type FileLogger struct {
	mu     sync.Mutex
	file   *os.File
	level  string
	logDir string
}

// NewFileLogger creates a FileLogger writing to logDir/run-<timestamp>.log
// at the given level. A logDir of "" disables file logging: every call
// becomes a no-op.
func NewFileLogger(logDir, level string) (*FileLogger, error) {
	if logDir == "" {
		return &FileLogger{level: normalizeLevel(level)}, nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", timestamp))
	f, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("create run log file: %w", err)
	}

	return &FileLogger{file: f, level: normalizeLevel(level), logDir: logDir}, nil
}

// Close closes the underlying log file, if any.
func (fl *FileLogger) Close() error {
	if fl.file == nil {
		return nil
	}
	return fl.file.Close()
}

func (fl *FileLogger) shouldLog(level string) bool {
	return levelOrder[level] >= levelOrder[fl.level]
}

func (fl *FileLogger) write(level, message string) {
	if fl.file == nil || !fl.shouldLog(level) {
		return
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	line := fmt.Sprintf("[%s] [%s] %s\n", time.Now().Format("15:04:05"), strings.ToUpper(level), message)
	fl.file.WriteString(line)
}

// Debug logs a debug-level message.
func (fl *FileLogger) Debug(format string, args ...interface{}) {
	fl.write("debug", fmt.Sprintf(format, args...))
}

// Info logs an info-level message.
func (fl *FileLogger) Info(format string, args ...interface{}) {
	fl.write("info", fmt.Sprintf(format, args...))
}

// Error logs an error-level message.
func (fl *FileLogger) Error(format string, args ...interface{}) {
	fl.write("error", fmt.Sprintf(format, args...))
}
