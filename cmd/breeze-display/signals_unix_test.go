//go:build unix

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/breeze-rmm/displayhost/internal/logging"
	"golang.org/x/sys/unix"
)

func TestHandleSignalsReopensLogOnHangup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.log")
	rw, err := logging.NewRotatingWriter(path, 1, 1)
	if err != nil {
		t.Fatalf("NewRotatingWriter: %v", err)
	}
	t.Cleanup(func() { rw.Close() })

	// Simulate external rotation moving the file away.
	if err := os.Rename(path, path+".rotated"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	sigs := make(chan os.Signal, 2)
	sigs <- unix.SIGHUP
	sigs <- unix.SIGTERM
	if got := handleSignals(sigs, rw); got != unix.SIGTERM {
		t.Fatalf("handleSignals returned %v, want SIGTERM", got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("log file not reopened after SIGHUP: %v", err)
	}
}

func TestHandleSignalsHangupWithoutLogFile(t *testing.T) {
	sigs := make(chan os.Signal, 2)
	sigs <- unix.SIGHUP
	sigs <- unix.SIGINT
	if got := handleSignals(sigs, nil); got != unix.SIGINT {
		t.Fatalf("handleSignals returned %v, want SIGINT", got)
	}
}

func TestShutdownSignalsDeliversProcessSignals(t *testing.T) {
	sigs, stop := shutdownSignals()
	defer stop()

	if err := unix.Kill(unix.Getpid(), unix.SIGHUP); err != nil {
		t.Fatalf("kill: %v", err)
	}
	select {
	case sig := <-sigs:
		if sig != unix.SIGHUP {
			t.Fatalf("received %v, want SIGHUP", sig)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("SIGHUP was not delivered")
	}
}
