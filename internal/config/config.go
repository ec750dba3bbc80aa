// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Core configuration constants that define the defaults for the detector,
// the activation windows and the audio front end. The detection constants
// were tuned empirically against laptop microphones; they are exposed so
// they can be retuned per room without a rebuild.
const (
	// Wake word defaults
	DefaultWakeWord    = "jarvis" // Fallback when the requested keyword is unsupported
	DefaultSensitivity = 0.5      // Keyword spotter sensitivity (0-1)

	// Clap detection defaults
	DefaultClapThreshold      = 1800                   // Peak amplitude a clap must exceed
	DefaultDoubleClapInterval = 700 * time.Millisecond // Max gap between the two claps of a double
	DefaultDebounce           = 100 * time.Millisecond // Ringing guard between registered claps
	DefaultWindowMultiplier   = 2.5                    // Clap retention and triple span, in intervals
	DefaultStaleMultiplier    = 2.0                    // Idle gap (in intervals) that drops partial patterns
	DefaultAttackFraction     = 0.4                    // Jump (fraction of threshold) that counts as sharp
	DefaultSustainFraction    = 0.5                    // Baseline (fraction of threshold) below which noise is not sustained
	DefaultHistorySize        = 10                     // Amplitude history capacity
	DefaultMinHistory         = 3                      // Samples needed before the baseline is trusted
	DefaultVerboseAmplitude   = 500                    // Amplitudes above this are logged in debug mode

	// Activation defaults
	DefaultActiveDuration     = 5 * time.Second
	DefaultTripleWaitDuration = 30 * time.Second
	DefaultSettleDelay        = 1 * time.Second

	// Audio defaults
	DefaultDeviceID   = MinDeviceID // System default input
	DefaultLowLatency = false

	// Action defaults
	DefaultLaunchGap  = 500 * time.Millisecond
	DefaultProjectDir = "~/code/tbt" // Folder opened in VS Code
	DefaultMediaURL   = "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=RDdQw4w9WgXcQ&start_radio=1"

	// Transport defaults
	DefaultMQTTClientID = "wakeup"
	DefaultMQTTTopic    = "wakeup/events"

	// Logging
	DefaultLogLevel  = "info"
	DefaultVerbosity = false

	// Hardware limits
	MinDeviceID = -1 // -1 represents system default device
)

// Config represents the main application configuration structure, loaded from YAML
// and refined by environment variables and command line flags.
type Config struct {
	Debug      bool             `yaml:"debug"`             // Verbose amplitude logging.
	LogLevel   string           `yaml:"log_level"`         // "debug", "info", "warn", "error".
	Command    string           `yaml:"command,omitempty"` // One-off command instead of listening (e.g. "list").
	Wake       WakeConfig       `yaml:"wake"`
	Detection  DetectionConfig  `yaml:"detection"`
	Activation ActivationConfig `yaml:"activation"`
	Audio      AudioConfig      `yaml:"audio"`
	Recording  RecordingConfig  `yaml:"recording"`
	Actions    ActionsConfig    `yaml:"actions"`
	Transport  TransportConfig  `yaml:"transport"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// WakeConfig selects the keyword the classifier listens for.
type WakeConfig struct {
	Word        string  `yaml:"word"`        // Built-in keyword, e.g. "jarvis", "computer".
	AccessKey   string  `yaml:"access_key"`  // Picovoice access key; PORCUPINE_ACCESS_KEY overrides.
	Sensitivity float32 `yaml:"sensitivity"` // 0-1, higher fires more readily.
	ModelPath   string  `yaml:"model_path"`  // Optional custom model file.
}

// DetectionConfig holds the clap detector tuning.
type DetectionConfig struct {
	ClapThreshold      int           `yaml:"clap_threshold"`
	DoubleClapInterval time.Duration `yaml:"double_clap_interval"`
	Debounce           time.Duration `yaml:"debounce"`
	WindowMultiplier   float64       `yaml:"window_multiplier"`
	StaleMultiplier    float64       `yaml:"stale_multiplier"`
	AttackFraction     float64       `yaml:"attack_fraction"`
	SustainFraction    float64       `yaml:"sustain_fraction"`
	HistorySize        int           `yaml:"history_size"`
	MinHistory         int           `yaml:"min_history"`
	VerboseAmplitude   int           `yaml:"verbose_amplitude"`
}

// ActivationConfig holds the mode window durations.
type ActivationConfig struct {
	ActiveDuration     time.Duration `yaml:"active_duration"`      // Clap window after the wake word.
	TripleWaitDuration time.Duration `yaml:"triple_wait_duration"` // Triple-only window after a double clap.
	SettleDelay        time.Duration `yaml:"settle_delay"`         // Pause after a dispatch so launch noise is not detected.
}

// AudioConfig holds settings related to audio input.
type AudioConfig struct {
	InputDevice int    `yaml:"input_device"` // PortAudio device index (-1 for default).
	LowLatency  bool   `yaml:"low_latency"`  // Request low latency settings from PortAudio.
	InputFile   string `yaml:"input_file"`   // Replay a WAV file instead of opening a device.
}

// RecordingConfig holds settings for teeing the input stream into a WAV file.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	OutputFile string `yaml:"output_file"` // Default is recording-DD-MM-YYYY-HHMMSS.wav
}

// AppCommand is one process started on a double clap.
type AppCommand struct {
	Name    string   `yaml:"name"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// ActionsConfig describes what a double and a triple clap do.
type ActionsConfig struct {
	Apps      []AppCommand  `yaml:"apps"`
	MediaURL  string        `yaml:"media_url"`
	Opener    string        `yaml:"opener"`     // URL opener; empty picks one for the host OS.
	LaunchGap time.Duration `yaml:"launch_gap"` // Pause between app launches.
}

// TransportConfig holds settings for publishing detection events.
type TransportConfig struct {
	WebSocketAddr    string     `yaml:"websocket_addr"`     // e.g. ":8080"; empty disables.
	UDPTargetAddress string     `yaml:"udp_target_address"` // e.g. "127.0.0.1:9090"; empty disables.
	MQTT             MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig holds the broker settings for the MQTT event transport.
type MQTTConfig struct {
	Broker   string `yaml:"broker"` // e.g. "tcp://localhost:1883"; empty disables.
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
}

// MetricsConfig holds settings for the Prometheus scrape endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // e.g. ":9464"; empty disables.
}

// NewConfig creates a new Config instance with default values.
// This is the base configuration before a config file, the environment
// or command line flags are applied.
func NewConfig() *Config {
	return &Config{
		Debug:    DefaultVerbosity,
		LogLevel: DefaultLogLevel,
		Wake: WakeConfig{
			Word:        DefaultWakeWord,
			Sensitivity: DefaultSensitivity,
		},
		Detection: DetectionConfig{
			ClapThreshold:      DefaultClapThreshold,
			DoubleClapInterval: DefaultDoubleClapInterval,
			Debounce:           DefaultDebounce,
			WindowMultiplier:   DefaultWindowMultiplier,
			StaleMultiplier:    DefaultStaleMultiplier,
			AttackFraction:     DefaultAttackFraction,
			SustainFraction:    DefaultSustainFraction,
			HistorySize:        DefaultHistorySize,
			MinHistory:         DefaultMinHistory,
			VerboseAmplitude:   DefaultVerboseAmplitude,
		},
		Activation: ActivationConfig{
			ActiveDuration:     DefaultActiveDuration,
			TripleWaitDuration: DefaultTripleWaitDuration,
			SettleDelay:        DefaultSettleDelay,
		},
		Audio: AudioConfig{
			InputDevice: DefaultDeviceID,
			LowLatency:  DefaultLowLatency,
		},
		Actions: ActionsConfig{
			Apps:      DefaultApps(),
			MediaURL:  DefaultMediaURL,
			LaunchGap: DefaultLaunchGap,
		},
		Transport: TransportConfig{
			MQTT: MQTTConfig{
				ClientID: DefaultMQTTClientID,
				Topic:    DefaultMQTTTopic,
			},
		},
	}
}

// DefaultApps returns the macOS launch set used when no apps are configured.
// VS Code opens DefaultProjectDir.
func DefaultApps() []AppCommand {
	return []AppCommand{
		{Name: "Visual Studio Code", Command: "open", Args: []string{"-a", "Visual Studio Code", ExpandHome(DefaultProjectDir)}},
		{Name: "Google Chrome", Command: "open", Args: []string{"-na", "Google Chrome", "--args", "--new-window", "https://claude.ai"}},
		{Name: "Discord", Command: "open", Args: []string{"-a", "Discord"}},
	}
}

// ExpandHome replaces a leading "~" with the user's home directory. The
// path is returned unchanged when it has no "~" prefix or the home
// directory is unknown.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
