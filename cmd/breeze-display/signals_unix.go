//go:build unix

package main

import (
	"os"
	"os/signal"

	"github.com/breeze-rmm/displayhost/internal/logging"
	"golang.org/x/sys/unix"
)

// shutdownSignals subscribes to the signals a held session reacts to. The
// returned func unsubscribes.
func shutdownSignals() (<-chan os.Signal, func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGINT, unix.SIGTERM, unix.SIGHUP)
	return sigs, func() { signal.Stop(sigs) }
}

// waitForShutdown blocks until SIGINT or SIGTERM. SIGHUP reopens the log
// file so external rotation is picked up.
func waitForShutdown(rw *logging.RotatingWriter) {
	sigs, stop := shutdownSignals()
	defer stop()

	log.Info("holding capture session", "pid", unix.Getpid())
	if sig, ok := handleSignals(sigs, rw).(unix.Signal); ok {
		log.Debug("shutdown signal received", "signal", unix.SignalName(sig))
	}
}

// handleSignals consumes sigs until a terminating signal arrives and
// returns it.
func handleSignals(sigs <-chan os.Signal, rw *logging.RotatingWriter) os.Signal {
	for sig := range sigs {
		if sig != unix.SIGHUP {
			return sig
		}
		if rw == nil {
			continue
		}
		if err := rw.Reopen(); err != nil {
			log.Warn("failed to reopen log file", logging.KeyError, err)
		}
	}
	return nil
}
