// SPDX-License-Identifier: MIT
package dispatch

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"wakeup/internal/config"
	applog "wakeup/internal/log"
)

// ErrorHook is told about failures that happen after a call returned.
type ErrorHook func(call string, err error)

// Exec launches processes with os/exec. App launches run on a background
// goroutine with a gap between them; every started process is reaped.
type Exec struct {
	apps      []config.AppCommand
	mediaURL  string
	opener    []string
	launchGap time.Duration
	onError   ErrorHook

	// start is replaced in tests.
	start func(name string, args ...string) error

	wg sync.WaitGroup
}

// NewExec builds a dispatcher from the actions config. onError may be nil.
func NewExec(cfg config.ActionsConfig, onError ErrorHook) *Exec {
	opener := strings.Fields(cfg.Opener)
	if len(opener) == 0 {
		opener = DefaultOpener(runtime.GOOS)
	}
	e := &Exec{
		apps:      cfg.Apps,
		mediaURL:  cfg.MediaURL,
		opener:    opener,
		launchGap: cfg.LaunchGap,
		onError:   onError,
	}
	e.start = e.startProcess
	return e
}

// DefaultOpener returns the command that opens a URL in the default
// handler on goos.
func DefaultOpener(goos string) []string {
	switch goos {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler"}
	default:
		return []string{"xdg-open"}
	}
}

// LaunchApps starts the configured apps in order on a background goroutine,
// pausing launchGap between them. Cancelling ctx stops launching the rest.
func (e *Exec) LaunchApps(ctx context.Context) error {
	if len(e.apps) == 0 {
		return fmt.Errorf("%w: no apps configured", ErrDispatch)
	}

	applog.Infof("Dispatch: Launching %d app(s)", len(e.apps))
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for i, app := range e.apps {
			if i > 0 && e.launchGap > 0 {
				select {
				case <-ctx.Done():
					applog.Warnf("Dispatch: Launch cancelled before %s", app.Name)
					return
				case <-time.After(e.launchGap):
				}
			}
			if err := e.start(app.Command, app.Args...); err != nil {
				e.report(CallLaunchApps, fmt.Errorf("%w: %s: %w", ErrDispatch, app.Name, err))
				continue
			}
			applog.Infof("Dispatch: Opened %s", app.Name)
		}
	}()
	return nil
}

// PlayMedia opens the configured media URL with the OS opener.
func (e *Exec) PlayMedia(ctx context.Context) error {
	if e.mediaURL == "" {
		return fmt.Errorf("%w: no media URL configured", ErrDispatch)
	}
	args := append(append([]string(nil), e.opener[1:]...), e.mediaURL)
	if err := e.start(e.opener[0], args...); err != nil {
		return fmt.Errorf("%w: open media: %w", ErrDispatch, err)
	}
	applog.Infof("Dispatch: Opened media %s", e.mediaURL)
	return nil
}

// Wait blocks until background launches have finished.
func (e *Exec) Wait() {
	e.wg.Wait()
}

func (e *Exec) report(call string, err error) {
	applog.Errorf("Dispatch: %v", err)
	if e.onError != nil {
		e.onError(call, err)
	}
}

// startProcess starts a detached process and reaps it in the background.
func (e *Exec) startProcess(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			applog.Debugf("Dispatch: %s exited: %v", name, err)
		}
	}()
	return nil
}

var _ Dispatcher = (*Exec)(nil)
