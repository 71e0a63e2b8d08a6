package panics

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/DaGoOfMaN/solarcoin/infrastructure/logger"
)

const exitHandlerTimeout = 5 * time.Second

// HandlePanic recovers panics, logs them and exits the process. It must be
// deferred directly.
func HandlePanic(log *logger.Logger, goroutineStackTrace []byte) {
	err := recover()
	if err == nil {
		return
	}

	reason := fmt.Sprintf("Fatal error: %+v", err)
	exit(log, reason, debug.Stack(), goroutineStackTrace)
}

// Exit prints the given reason to log and exits.
func Exit(log *logger.Logger, reason string) {
	exit(log, reason, nil, nil)
}

// exit prints the given reason and stack traces (if not nil), waits for the
// log backend to flush them and exits.
func exit(log *logger.Logger, reason string, currentThreadStackTrace []byte, goroutineStackTrace []byte) {
	exitHandlerDone := make(chan struct{})
	go func() {
		if log.Backend().IsRunning() {
			log.Criticalf("Exiting: %s", reason)
			if goroutineStackTrace != nil {
				log.Criticalf("Goroutine stack trace: %s", goroutineStackTrace)
			}
			if currentThreadStackTrace != nil {
				log.Criticalf("Stack trace: %s", currentThreadStackTrace)
			}
			log.Backend().Close()
		} else {
			fmt.Fprintf(os.Stderr, "Exiting: %s\n", reason)
			if currentThreadStackTrace != nil {
				fmt.Fprintf(os.Stderr, "Stack trace: %s\n", currentThreadStackTrace)
			}
		}
		close(exitHandlerDone)
	}()

	select {
	case <-time.After(exitHandlerTimeout):
		fmt.Fprintln(os.Stderr, "Couldn't exit gracefully.")
	case <-exitHandlerDone:
	}
	os.Exit(1)
}
