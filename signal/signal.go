// Package signal turns SIGINT/SIGTERM into a single graceful-shutdown
// channel close, so the process has exactly one exit path regardless of
// how it was asked to stop.
//
// Grounded on the teacher's signal/log.go subsystem tag (the platform
// interrupt-handling logic itself wasn't present in the retrieved pack, so
// this is written fresh in the teacher's idiom: a package-level logger, an
// exported listener constructor, one-shot close-on-signal semantics).
package signal

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/kaspanet/devdag/infrastructure/logger"
)

var log, _ = logger.Get("SGNL")

var (
	once   sync.Once
	ch     chan struct{}
	notify chan os.Signal
)

// InterruptListener starts listening for SIGINT and SIGTERM and returns a
// channel that is closed the first time one arrives. Calling it more than
// once returns the same channel.
func InterruptListener() <-chan struct{} {
	once.Do(func() {
		ch = make(chan struct{})
		notify = make(chan os.Signal, 1)
		signal.Notify(notify, os.Interrupt, syscall.SIGTERM)

		go func() {
			sig := <-notify
			log.Infof("received signal %s, shutting down", sig)
			close(ch)
		}()
	})
	return ch
}
