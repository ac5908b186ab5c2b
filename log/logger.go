package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go-depsolve/config"
)

// Logger manages the query-serving process's on-disk log files: one
// append-only file per concern, synced after every write, grounded on the
// teacher's multi-file build logger but carrying the query-serving
// equivalents of its success/failure log set.
type Logger struct {
	cfg         *config.Config
	resultsFile  *os.File // one line per completed query
	notFoundFile *os.File // components that resolved to no provider
	debugFile    *os.File
	mu           sync.Mutex
}

// NewLogger creates the logger's files under cfg.LogsPath.
func NewLogger(cfg *config.Config) (*Logger, error) {
	if err := os.MkdirAll(cfg.LogsPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	l := &Logger{cfg: cfg}
	var err error

	l.resultsFile, err = os.Create(filepath.Join(cfg.LogsPath, "00_results.log"))
	if err != nil {
		return nil, err
	}
	l.notFoundFile, err = os.Create(filepath.Join(cfg.LogsPath, "01_not_found.log"))
	if err != nil {
		return nil, err
	}
	l.debugFile, err = os.Create(filepath.Join(cfg.LogsPath, "02_debug.log"))
	if err != nil {
		return nil, err
	}

	l.writeHeaders()
	return l, nil
}

// Close closes all log files.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, f := range []*os.File{l.resultsFile, l.notFoundFile, l.debugFile} {
		if f != nil {
			f.Close()
		}
	}
}

func (l *Logger) writeHeaders() {
	timestamp := time.Now().Format(time.RFC3339)
	fmt.Fprintf(l.resultsFile, "go-depsolve query log - %s\n", timestamp)
	fmt.Fprintf(l.resultsFile, "%s\n\n", strings.Repeat("=", 70))
	fmt.Fprintf(l.notFoundFile, "Unresolved requirement components - %s\n\n", timestamp)
	fmt.Fprintf(l.debugFile, "Debug log - %s\n\n", timestamp)
}

// Result logs one completed query: its mode, inputs, how many nodes came
// back, and how long it took.
func (l *Logger) Result(mode string, inputs []string, nodeCount int, duration time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("15:04:05")
	fmt.Fprintf(l.resultsFile, "[%s] %s %v -> %d nodes (%s)\n", timestamp, mode, inputs, nodeCount, duration)
	l.resultsFile.Sync()
}

// NotFound logs one requirement component that had no provider anywhere in
// the search path, in the context of the query that hit it.
func (l *Logger) NotFound(mode string, inputs []string, component string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.notFoundFile, "%s %v: %s\n", mode, inputs, component)
	l.notFoundFile.Sync()
}

// Debug, Info, Warn, and Error implement LibraryLogger against the debug
// (and, for Error, also the results) log file, so the query-serving
// process's Logger can be handed directly to core packages expecting a
// LibraryLogger.
func (l *Logger) Debug(format string, args ...any) { l.writeDebug("DEBUG", format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.writeDebug("INFO", format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.writeDebug("WARN", format, args...) }

func (l *Logger) Error(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	timestamp := time.Now().Format("15:04:05")
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.debugFile, "[%s] ERROR: %s\n", timestamp, msg)
	fmt.Fprintf(l.resultsFile, "[%s] ERROR: %s\n", timestamp, msg)
	l.debugFile.Sync()
	l.resultsFile.Sync()
}

func (l *Logger) writeDebug(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	timestamp := time.Now().Format("15:04:05")
	fmt.Fprintf(l.debugFile, "[%s] %s: %s\n", timestamp, level, fmt.Sprintf(format, args...))
	l.debugFile.Sync()
}
