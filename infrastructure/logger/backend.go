package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jrick/logrotate/rotator"
	"github.com/pkg/errors"
)

// ErrAlreadyRunning is returned when writers are added to, or Run is called
// on, a backend that was already started.
var ErrAlreadyRunning = errors.New("the logger is already running")

// normalLogSize is the initial capacity of a formatted log line.
const normalLogSize = 512

// Flags to modify Backend's behavior.
const (
	// LogFlagLongFile adds the full path and line number of the logging
	// call, e.g. /a/b/c/main.go:123.
	LogFlagLongFile uint32 = 1 << iota

	// LogFlagShortFile adds the file name and line number of the logging
	// call, e.g. main.go:123. It takes precedence over LogFlagLongFile.
	LogFlagShortFile
)

// defaultFlags is read from the LOGFLAGS environment variable, a comma
// separated list of "longfile" and "shortfile". It is a variable initializer
// rather than init() because BackendLog depends on it.
var defaultFlags = flagsFromEnv(os.Getenv("LOGFLAGS"))

func flagsFromEnv(value string) (flags uint32) {
	for _, flag := range strings.Split(value, ",") {
		switch strings.TrimSpace(flag) {
		case "longfile":
			flags |= LogFlagLongFile
		case "shortfile":
			flags |= LogFlagShortFile
		}
	}
	return flags
}

// Rotation defaults of AddLogFile.
const (
	defaultThresholdKB = 10 * 1000 // 10 MB
	defaultMaxRolls    = 3
)

// levelWriter receives the entries at or above its level.
type levelWriter struct {
	io.WriteCloser
	level Level
}

// Backend serializes the entries of all its subsystem loggers onto its
// writers from a single goroutine.
type Backend struct {
	flag      uint32
	isRunning uint32
	writers   []levelWriter
	writeChan chan logEntry

	// held from Run until every queued entry is written
	syncClose sync.Mutex
	closeOnce sync.Once
}

// NewBackendWithFlags creates a backend with the given LogFlag bits instead
// of the LOGFLAGS defaults.
func NewBackendWithFlags(flags uint32) *Backend {
	return &Backend{flag: flags, writeChan: make(chan logEntry)}
}

// NewBackend creates a new logger backend.
func NewBackend() *Backend {
	return NewBackendWithFlags(defaultFlags)
}

// AddLogWriter adds a writer which receives every log entry at logLevel or
// above. The writer is closed when the backend is closed.
func (b *Backend) AddLogWriter(logWriter io.WriteCloser, logLevel Level) error {
	if b.IsRunning() {
		return errors.WithStack(ErrAlreadyRunning)
	}
	b.writers = append(b.writers, levelWriter{WriteCloser: logWriter, level: logLevel})
	return nil
}

// nopCloser wraps writers such as os.Stdout that must outlive the backend.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// AddStdoutWriter attaches stdout at logLevel. Closing the backend leaves
// stdout open.
func (b *Backend) AddStdoutWriter(logLevel Level) error {
	return b.AddLogWriter(nopCloser{os.Stdout}, logLevel)
}

// AddLogFile adds a rotated log file at logLevel with the default rotation
// settings. The file and its directory are created as needed.
func (b *Backend) AddLogFile(logFile string, logLevel Level) error {
	return b.AddLogFileWithCustomRotator(logFile, logLevel, defaultThresholdKB, defaultMaxRolls)
}

// AddLogFileWithCustomRotator adds a log file at logLevel that rotates once
// it reaches thresholdKB, keeping maxRolls old files.
func (b *Backend) AddLogFileWithCustomRotator(logFile string, logLevel Level, thresholdKB int64, maxRolls int) error {
	if b.IsRunning() {
		return errors.WithStack(ErrAlreadyRunning)
	}
	if logDir := filepath.Dir(logFile); logDir != "." {
		err := os.MkdirAll(logDir, 0700)
		if err != nil {
			return errors.Wrap(err, "failed to create log directory")
		}
	}
	r, err := rotator.New(logFile, thresholdKB, false, maxRolls)
	if err != nil {
		return errors.Wrapf(err, "failed to create file rotator for %s", logFile)
	}
	return b.AddLogWriter(r, logLevel)
}

// Run starts writing entries in a separate goroutine. It may only be called
// once.
func (b *Backend) Run() error {
	if !atomic.CompareAndSwapUint32(&b.isRunning, 0, 1) {
		return errors.WithStack(ErrAlreadyRunning)
	}
	// Taken here rather than in the goroutine so that a Close right after
	// Run waits for the writers.
	b.syncClose.Lock()
	go func() {
		defer func() {
			if err := recover(); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "Fatal error in logger.Backend goroutine: %+v\n", err)
				_, _ = fmt.Fprintf(os.Stderr, "Goroutine stacktrace: %s\n", debug.Stack())
			}
		}()
		b.writeEntries()
	}()
	return nil
}

func (b *Backend) writeEntries() {
	defer atomic.StoreUint32(&b.isRunning, 0)
	defer b.syncClose.Unlock()

	for entry := range b.writeChan {
		for _, writer := range b.writers {
			if entry.level >= writer.level {
				_, _ = writer.Write(entry.log)
			}
		}
	}
}

// IsRunning returns whether Run was called and the backend was not closed
// since.
func (b *Backend) IsRunning() bool {
	return atomic.LoadUint32(&b.isRunning) != 0
}

// Close flushes pending entries and closes every writer of the backend.
// Calling it more than once is a no-op.
func (b *Backend) Close() {
	b.closeOnce.Do(func() {
		close(b.writeChan)
		b.syncClose.Lock()
		defer b.syncClose.Unlock()
		for _, writer := range b.writers {
			_ = writer.Close()
		}
	})
}

// Logger returns a new logger for a particular subsystem that writes to the
// Backend b. A tag describes the subsystem and is included in all log
// messages. The logger is off until a level is set.
func (b *Backend) Logger(subsystemTag string) *Logger {
	return &Logger{LevelOff, subsystemTag, b, b.writeChan}
}
