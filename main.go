// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"wakeup/cmd"
	applog "wakeup/internal/log"
	"wakeup/pkg/build"
)

// main wires the listener and maps its outcome to an exit status:
// 0 after a clean stop (signal or end of input), 1 when startup fails or
// the audio input breaks down.
func main() {
	// Resolve version, commit and build time for --version and metrics.
	if err := build.Initialize(); err != nil {
		applog.Errorf("Build: %v", err)
		os.Exit(1)
	}

	config, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		applog.Errorf("%v", err)
		os.Exit(1)
	}
	if config == nil {
		return
	}

	// Setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, config); err != nil {
		stop()
		applog.Errorf("%v", err)
		os.Exit(1)
	}
}
