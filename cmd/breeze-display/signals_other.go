//go:build !unix

package main

import (
	"os"
	"os/signal"

	"github.com/breeze-rmm/displayhost/internal/logging"
)

func waitForShutdown(_ *logging.RotatingWriter) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)
	<-sigs
}
