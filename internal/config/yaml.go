// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	applog "wakeup/internal/log"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("config.yaml"). If no file is found, it uses built-in
// defaults. A ".env" file in the working directory is loaded into the environment
// first, then environment variable overrides are applied and the result validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	// A missing .env is the normal case.
	_ = godotenv.Load()

	if path == "" {
		for _, candidate := range []string{"config.yaml", "wakeup.yaml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate rejects values the detector or the activation windows cannot
// work with. It does not check the wake word; unsupported words fall back
// to DefaultWakeWord once the classifier's keyword set is known.
func (c *Config) Validate() error {
	var errs []error

	d := c.Detection
	if d.ClapThreshold <= 0 {
		errs = append(errs, fmt.Errorf("detection.clap_threshold must be positive, got %d", d.ClapThreshold))
	}
	if d.DoubleClapInterval <= 0 {
		errs = append(errs, fmt.Errorf("detection.double_clap_interval must be positive, got %s", d.DoubleClapInterval))
	}
	if d.Debounce < 0 {
		errs = append(errs, fmt.Errorf("detection.debounce must not be negative, got %s", d.Debounce))
	}
	if d.WindowMultiplier <= 0 || d.StaleMultiplier <= 0 {
		errs = append(errs, errors.New("detection window and stale multipliers must be positive"))
	}
	if d.AttackFraction <= 0 || d.SustainFraction <= 0 {
		errs = append(errs, errors.New("detection attack and sustain fractions must be positive"))
	}
	if d.HistorySize < 1 {
		errs = append(errs, fmt.Errorf("detection.history_size must be at least 1, got %d", d.HistorySize))
	}
	if d.MinHistory < 1 || d.MinHistory > d.HistorySize {
		errs = append(errs, fmt.Errorf("detection.min_history must be in [1, %d], got %d", d.HistorySize, d.MinHistory))
	}

	a := c.Activation
	if a.ActiveDuration <= 0 {
		errs = append(errs, fmt.Errorf("activation.active_duration must be positive, got %s", a.ActiveDuration))
	}
	if a.TripleWaitDuration <= 0 {
		errs = append(errs, fmt.Errorf("activation.triple_wait_duration must be positive, got %s", a.TripleWaitDuration))
	}
	if a.SettleDelay < 0 {
		errs = append(errs, fmt.Errorf("activation.settle_delay must not be negative, got %s", a.SettleDelay))
	}

	if c.Audio.InputDevice < MinDeviceID {
		errs = append(errs, fmt.Errorf("audio.input_device must be >= %d, got %d", MinDeviceID, c.Audio.InputDevice))
	}
	if c.Wake.Sensitivity < 0 || c.Wake.Sensitivity > 1 {
		errs = append(errs, fmt.Errorf("wake.sensitivity must be in [0, 1], got %.2f", c.Wake.Sensitivity))
	}
	if _, ok := applog.ParseLevel(c.LogLevel); !ok && c.LogLevel != "" {
		errs = append(errs, fmt.Errorf("log_level %q is not recognized", c.LogLevel))
	}

	return errors.Join(errs...)
}

// EffectiveLogLevel resolves the log level to use. Debug mode always wins.
func (c *Config) EffectiveLogLevel() applog.LogLevel {
	if c.Debug {
		return applog.LevelDebug
	}
	level, _ := applog.ParseLevel(c.LogLevel)
	return level
}

// applyEnvOverrides applies ENV_* variables (and the Picovoice key) on top of
// the loaded configuration. Unparseable values are ignored.
func (cfg *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
			applog.Infof("Config: Overriding debug from env: %v", bVal)
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		cfg.LogLevel = val
		applog.Infof("Config: Overriding log_level from env: %s", val)
	}
	// ENV_WAKE_WORD
	if val, ok := os.LookupEnv("ENV_WAKE_WORD"); ok && val != "" {
		cfg.Wake.Word = val
		applog.Infof("Config: Overriding wake.word from env: %s", val)
	}
	// PORCUPINE_ACCESS_KEY is never echoed.
	if val, ok := os.LookupEnv("PORCUPINE_ACCESS_KEY"); ok && val != "" {
		cfg.Wake.AccessKey = val
	}
	// ENV_CLAP_THRESHOLD
	if val, ok := os.LookupEnv("ENV_CLAP_THRESHOLD"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			cfg.Detection.ClapThreshold = iVal
			applog.Infof("Config: Overriding detection.clap_threshold from env: %d", iVal)
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
		applog.Infof("Config: Overriding transport.udp_target_address from env: %s", val)
	}
	// ENV_MQTT_BROKER
	if val, ok := os.LookupEnv("ENV_MQTT_BROKER"); ok {
		cfg.Transport.MQTT.Broker = val
		applog.Infof("Config: Overriding transport.mqtt.broker from env: %s", val)
	}
}
