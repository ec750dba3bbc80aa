// SPDX-License-Identifier: MIT
// Package dispatch performs the side effects of clap patterns: launching
// the configured apps and opening the configured media.
package dispatch

import (
	"context"
	"errors"
)

// ErrDispatch wraps every failure to launch an app or open media.
var ErrDispatch = errors.New("dispatch failed")

// Call names, matching the activation action names.
const (
	CallLaunchApps = "launch_apps"
	CallPlayMedia  = "play_media"
)

// Dispatcher is the OS side-effect capability. Calls are fire-and-forget:
// they return once work has been started and never block the listener for
// long. Returned errors are reported by the caller, not retried.
type Dispatcher interface {
	LaunchApps(ctx context.Context) error
	PlayMedia(ctx context.Context) error
}
