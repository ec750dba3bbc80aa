// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	applog "wakeup/internal/log"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.Detection.ClapThreshold != DefaultClapThreshold {
		t.Errorf("clap threshold = %d, want %d", cfg.Detection.ClapThreshold, DefaultClapThreshold)
	}
	if cfg.Activation.ActiveDuration != DefaultActiveDuration {
		t.Errorf("active duration = %s, want %s", cfg.Activation.ActiveDuration, DefaultActiveDuration)
	}
	if cfg.Activation.TripleWaitDuration != DefaultTripleWaitDuration {
		t.Errorf("triple wait = %s, want %s", cfg.Activation.TripleWaitDuration, DefaultTripleWaitDuration)
	}
	if cfg.Detection.DoubleClapInterval != DefaultDoubleClapInterval {
		t.Errorf("double clap interval = %s, want %s", cfg.Detection.DoubleClapInterval, DefaultDoubleClapInterval)
	}
	if cfg.Wake.Word != DefaultWakeWord {
		t.Errorf("wake word = %q, want %q", cfg.Wake.Word, DefaultWakeWord)
	}
	if len(cfg.Actions.Apps) != len(DefaultApps()) {
		t.Errorf("expected default app set, got %d apps", len(cfg.Actions.Apps))
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("expected unmarshal error, got %v", err)
	}
}

func TestLoadConfig_FileValues(t *testing.T) {
	path := writeTempConfig(t, `
debug: true
wake:
  word: computer
detection:
  clap_threshold: 2400
  double_clap_interval: 600ms
activation:
  active_duration: 8s
  triple_wait_duration: 20s
actions:
  media_url: https://example.com/song
  apps:
    - name: editor
      command: code
      args: ["."]
transport:
  websocket_addr: ":8080"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if !cfg.Debug {
		t.Error("expected debug from file")
	}
	if cfg.Wake.Word != "computer" {
		t.Errorf("wake word = %q", cfg.Wake.Word)
	}
	if cfg.Detection.ClapThreshold != 2400 {
		t.Errorf("threshold = %d", cfg.Detection.ClapThreshold)
	}
	if cfg.Detection.DoubleClapInterval != 600*time.Millisecond {
		t.Errorf("interval = %s", cfg.Detection.DoubleClapInterval)
	}
	// Unset fields keep their defaults.
	if cfg.Detection.Debounce != DefaultDebounce {
		t.Errorf("debounce = %s, want default", cfg.Detection.Debounce)
	}
	if cfg.Activation.ActiveDuration != 8*time.Second || cfg.Activation.TripleWaitDuration != 20*time.Second {
		t.Errorf("activation = %+v", cfg.Activation)
	}
	if len(cfg.Actions.Apps) != 1 || cfg.Actions.Apps[0].Command != "code" {
		t.Errorf("apps = %+v", cfg.Actions.Apps)
	}
	if cfg.Transport.WebSocketAddr != ":8080" {
		t.Errorf("websocket addr = %q", cfg.Transport.WebSocketAddr)
	}
	if cfg.EffectiveLogLevel() != applog.LevelDebug {
		t.Errorf("debug should force LevelDebug, got %s", cfg.EffectiveLogLevel())
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ENV_WAKE_WORD", "bumblebee")
	t.Setenv("ENV_CLAP_THRESHOLD", "3000")
	t.Setenv("ENV_DEBUG", "true")
	t.Setenv("PORCUPINE_ACCESS_KEY", "secret")
	t.Setenv("ENV_MQTT_BROKER", "tcp://broker:1883")

	cfg, err := LoadConfig(writeTempConfig(t, "wake:\n  word: jarvis\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Wake.Word != "bumblebee" {
		t.Errorf("wake word = %q, want env override", cfg.Wake.Word)
	}
	if cfg.Detection.ClapThreshold != 3000 {
		t.Errorf("threshold = %d, want 3000", cfg.Detection.ClapThreshold)
	}
	if !cfg.Debug {
		t.Error("debug should be overridden")
	}
	if cfg.Wake.AccessKey != "secret" {
		t.Error("access key should come from PORCUPINE_ACCESS_KEY")
	}
	if cfg.Transport.MQTT.Broker != "tcp://broker:1883" {
		t.Errorf("broker = %q", cfg.Transport.MQTT.Broker)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"zero threshold", func(c *Config) { c.Detection.ClapThreshold = 0 }, "clap_threshold"},
		{"zero interval", func(c *Config) { c.Detection.DoubleClapInterval = 0 }, "double_clap_interval"},
		{"negative debounce", func(c *Config) { c.Detection.Debounce = -time.Millisecond }, "debounce"},
		{"min history above capacity", func(c *Config) { c.Detection.MinHistory = 11 }, "min_history"},
		{"zero active duration", func(c *Config) { c.Activation.ActiveDuration = 0 }, "active_duration"},
		{"zero triple wait", func(c *Config) { c.Activation.TripleWaitDuration = 0 }, "triple_wait_duration"},
		{"bad device", func(c *Config) { c.Audio.InputDevice = -2 }, "input_device"},
		{"bad sensitivity", func(c *Config) { c.Wake.Sensitivity = 1.5 }, "sensitivity"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/code/tbt", filepath.Join(home, "code", "tbt")},
		{"/opt/project", "/opt/project"},
		{"relative/dir", "relative/dir"},
		{"~other/dir", "~other/dir"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExpandHome(tt.in); got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultAppsOpenProjectFolder(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	code := DefaultApps()[0]
	if code.Name != "Visual Studio Code" {
		t.Fatalf("first default app = %q", code.Name)
	}
	want := filepath.Join(home, "code", "tbt")
	if got := code.Args[len(code.Args)-1]; got != want {
		t.Errorf("VS Code folder = %q, want %q", got, want)
	}
	for _, arg := range code.Args {
		if strings.HasPrefix(arg, "~") {
			t.Errorf("unexpanded argument %q", arg)
		}
	}
}
