// SPDX-License-Identifier: MIT
package dispatch

import (
	"context"
	"sync"
)

// Recorder is a Dispatcher that records calls instead of spawning
// processes. Err, when set, is returned from every call.
type Recorder struct {
	mu    sync.Mutex
	calls []string
	Err   error
}

// LaunchApps records a CallLaunchApps.
func (r *Recorder) LaunchApps(context.Context) error {
	return r.record(CallLaunchApps)
}

// PlayMedia records a CallPlayMedia.
func (r *Recorder) PlayMedia(context.Context) error {
	return r.record(CallPlayMedia)
}

func (r *Recorder) record(call string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	return r.Err
}

// Calls returns the recorded calls in order.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

var _ Dispatcher = (*Recorder)(nil)
