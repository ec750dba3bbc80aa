// SPDX-License-Identifier: MIT
package dispatch

import (
	"context"
	"errors"
	"runtime"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"wakeup/internal/config"
)

type startLog struct {
	mu   sync.Mutex
	cmds []string
	fail map[string]error
}

func (s *startLog) start(name string, args ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := strings.Join(append([]string{name}, args...), " ")
	s.cmds = append(s.cmds, line)
	return s.fail[name]
}

func (s *startLog) lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cmds)
}

func newTestExec(cfg config.ActionsConfig, hook ErrorHook) (*Exec, *startLog) {
	log := &startLog{fail: map[string]error{}}
	e := NewExec(cfg, hook)
	e.start = log.start
	return e, log
}

func TestExecLaunchApps(t *testing.T) {
	cfg := config.ActionsConfig{
		Apps: []config.AppCommand{
			{Name: "Editor", Command: "code", Args: []string{"--new-window"}},
			{Name: "Chat", Command: "discord"},
		},
		LaunchGap: time.Millisecond,
	}
	e, log := newTestExec(cfg, nil)

	if err := e.LaunchApps(context.Background()); err != nil {
		t.Fatalf("LaunchApps: %v", err)
	}
	e.Wait()

	want := []string{"code --new-window", "discord"}
	if got := log.lines(); !slices.Equal(got, want) {
		t.Errorf("started %v, want %v", got, want)
	}
}

func TestExecLaunchAppsFailureIsReported(t *testing.T) {
	cfg := config.ActionsConfig{
		Apps: []config.AppCommand{
			{Name: "Missing", Command: "nope"},
			{Name: "Chat", Command: "discord"},
		},
	}

	var mu sync.Mutex
	var reported []error
	e, log := newTestExec(cfg, func(call string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if call != CallLaunchApps {
			t.Errorf("hook call = %q", call)
		}
		reported = append(reported, err)
	})
	log.fail["nope"] = errors.New("executable file not found")

	if err := e.LaunchApps(context.Background()); err != nil {
		t.Fatalf("LaunchApps returned %v; launch failures are asynchronous", err)
	}
	e.Wait()

	if len(reported) != 1 || !errors.Is(reported[0], ErrDispatch) {
		t.Fatalf("reported = %v, want one ErrDispatch", reported)
	}
	if got := log.lines(); len(got) != 2 {
		t.Errorf("failure stopped later launches: %v", got)
	}
}

func TestExecLaunchAppsCancelled(t *testing.T) {
	cfg := config.ActionsConfig{
		Apps: []config.AppCommand{
			{Name: "First", Command: "one"},
			{Name: "Second", Command: "two"},
		},
		LaunchGap: time.Hour,
	}
	e, log := newTestExec(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := e.LaunchApps(ctx); err != nil {
		t.Fatalf("LaunchApps: %v", err)
	}
	cancel()
	e.Wait()

	if got := log.lines(); !slices.Equal(got, []string{"one"}) {
		t.Errorf("started %v, want only the first app", got)
	}
}

func TestExecNothingConfigured(t *testing.T) {
	e, _ := newTestExec(config.ActionsConfig{}, nil)

	if err := e.LaunchApps(context.Background()); !errors.Is(err, ErrDispatch) {
		t.Errorf("LaunchApps with no apps = %v, want ErrDispatch", err)
	}
	if err := e.PlayMedia(context.Background()); !errors.Is(err, ErrDispatch) {
		t.Errorf("PlayMedia with no URL = %v, want ErrDispatch", err)
	}
}

func TestExecPlayMedia(t *testing.T) {
	tests := []struct {
		name   string
		opener string
		want   string
	}{
		{"Configured opener", "firefox --new-tab", "firefox --new-tab https://example.com/song"},
		{"Host default", "", strings.Join(DefaultOpener(runtime.GOOS), " ") + " https://example.com/song"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, log := newTestExec(config.ActionsConfig{MediaURL: "https://example.com/song", Opener: tt.opener}, nil)
			if err := e.PlayMedia(context.Background()); err != nil {
				t.Fatalf("PlayMedia: %v", err)
			}
			if got := log.lines(); len(got) != 1 || got[0] != tt.want {
				t.Errorf("started %v, want %q", got, tt.want)
			}
		})
	}
}

func TestExecPlayMediaStartFailure(t *testing.T) {
	e, log := newTestExec(config.ActionsConfig{MediaURL: "https://example.com", Opener: "opener"}, nil)
	log.fail["opener"] = errors.New("boom")

	if err := e.PlayMedia(context.Background()); !errors.Is(err, ErrDispatch) {
		t.Errorf("PlayMedia = %v, want ErrDispatch", err)
	}
}

func TestDefaultOpener(t *testing.T) {
	tests := map[string]string{
		"darwin":  "open",
		"windows": "rundll32",
		"linux":   "xdg-open",
		"freebsd": "xdg-open",
	}
	for goos, want := range tests {
		if got := DefaultOpener(goos)[0]; got != want {
			t.Errorf("DefaultOpener(%s) = %s, want %s", goos, got, want)
		}
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	_ = r.LaunchApps(context.Background())
	_ = r.PlayMedia(context.Background())
	if got := r.Calls(); !slices.Equal(got, []string{CallLaunchApps, CallPlayMedia}) {
		t.Errorf("Calls() = %v", got)
	}

	r.Err = ErrDispatch
	if err := r.PlayMedia(context.Background()); !errors.Is(err, ErrDispatch) {
		t.Errorf("Recorder Err not returned: %v", err)
	}
}
