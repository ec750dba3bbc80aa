// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"wakeup/internal/config"
	"wakeup/pkg/build"
)

// One-off commands that run instead of the listener.
const (
	CommandList = "list"
	CommandPick = "pick"
)

// flagValues holds raw flag values. They only override the loaded config
// when the flag was set on the command line.
type flagValues struct {
	configPath string
	debug      bool
	logLevel   string
	wake       string
	device     int
	input      string
	record     bool
	output     string
	lowLatency bool
}

// ParseArgs parses args, loads the configuration and applies the flags on
// top of it. It returns a nil config when there is nothing to run, as after
// --help or --version.
func ParseArgs(args []string) (*config.Config, error) {
	buildInfo := build.GetBuildFlags()
	var (
		flags   flagValues
		options *config.Config
	)

	load := func(cmd *cobra.Command) error {
		cfg, err := config.LoadConfig(flags.configPath)
		if err != nil {
			return err
		}
		flags.apply(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid flags: %w", err)
		}
		options = cfg
		return nil
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Wake word plus clap pattern launcher",
		Version:       buildInfo.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return load(cmd)
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// List command
	var pick bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio input devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := load(cmd); err != nil {
				return err
			}
			options.Command = CommandList
			if pick {
				options.Command = CommandPick
			}
			return nil
		},
	}
	listCmd.Flags().BoolVarP(&pick, "pick", "p", false,
		"Choose a device interactively and print the flag to use it")
	rootCmd.AddCommand(listCmd)

	pf := rootCmd.PersistentFlags()

	// Configuration
	pf.StringVar(&flags.configPath, "config", "",
		"Path to a YAML config file. Default is ./config.yaml when present")
	pf.StringVar(&flags.logLevel, "log-level", config.DefaultLogLevel,
		"Log level: debug, info, warn or error")
	pf.BoolVar(&flags.debug, "debug", config.DefaultVerbosity,
		"Show per-frame amplitudes and debug output")

	// Wake word
	pf.StringVarP(&flags.wake, "wake", "w", config.DefaultWakeWord,
		"Built-in wake word to listen for")

	// Audio Device Configuration
	pf.IntVarP(&flags.device, "device", "d", config.DefaultDeviceID,
		"Specify input device ID. Use 'list' command to see available devices.")
	pf.BoolVarP(&flags.lowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Use low latency mode for real-time processing")
	pf.StringVarP(&flags.input, "input", "i", "",
		"Replay a 16-bit WAV file instead of listening to a device")

	// Recording Configuration
	pf.BoolVarP(&flags.record, "record", "r", false,
		"Record the input stream to a WAV file")
	pf.StringVarP(&flags.output, "output", "o", "",
		"Output file name. Default is recording-DD-MM-YYYY-HHMMSS.wav")

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return options, nil
}

func (f *flagValues) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("debug") {
		cfg.Debug = f.debug
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("wake") {
		cfg.Wake.Word = f.wake
	}
	if changed("device") {
		cfg.Audio.InputDevice = f.device
	}
	if changed("low-latency") {
		cfg.Audio.LowLatency = f.lowLatency
	}
	if changed("input") {
		cfg.Audio.InputFile = f.input
	}
	if changed("record") {
		cfg.Recording.Enabled = f.record
	}
	if changed("output") {
		cfg.Recording.OutputFile = f.output
	}

	// Defaults
	if cfg.Recording.Enabled && cfg.Recording.OutputFile == "" {
		cfg.Recording.OutputFile = DefaultRecordingName(time.Now())
	}
}

// DefaultRecordingName names a recording after its start time in UTC.
func DefaultRecordingName(t time.Time) string {
	return "recording-" + t.UTC().Format("02-01-2006-150405") + ".wav"
}
