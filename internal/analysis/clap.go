// SPDX-License-Identifier: MIT
package analysis

import (
	"time"

	"wakeup/internal/config"
	applog "wakeup/internal/log"
)

// DetectorConfig holds the clap detector tuning. The zero value is not
// usable; start from DefaultDetectorConfig.
type DetectorConfig struct {
	Threshold        int           // Peak amplitude a clap must exceed.
	Interval         time.Duration // Max gap between the two claps of a double.
	Debounce         time.Duration // Min gap between two registered claps.
	WindowMultiplier float64       // Retention window and triple span, in Intervals.
	StaleMultiplier  float64       // Quiet gap, in Intervals, that drops pending claps.
	AttackFraction   float64       // Jump above Threshold*AttackFraction is a sharp onset.
	SustainFraction  float64       // Baseline below Threshold*SustainFraction is not sustained noise.
	HistorySize      int           // Amplitude history capacity.
	MinHistory       int           // History length before the baseline is used.
	VerboseAmplitude int           // Debug-log amplitudes above this.
}

// DefaultDetectorConfig returns the tuning the detector ships with.
func DefaultDetectorConfig() DetectorConfig {
	return NewDetectorConfig(config.NewConfig().Detection)
}

// NewDetectorConfig maps the detection section of the application config.
func NewDetectorConfig(c config.DetectionConfig) DetectorConfig {
	return DetectorConfig{
		Threshold:        c.ClapThreshold,
		Interval:         c.DoubleClapInterval,
		Debounce:         c.Debounce,
		WindowMultiplier: c.WindowMultiplier,
		StaleMultiplier:  c.StaleMultiplier,
		AttackFraction:   c.AttackFraction,
		SustainFraction:  c.SustainFraction,
		HistorySize:      c.HistorySize,
		MinHistory:       c.MinHistory,
		VerboseAmplitude: c.VerboseAmplitude,
	}
}

// Window is the span within which claps are retained and a triple must fit.
func (c DetectorConfig) Window() time.Duration {
	return time.Duration(float64(c.Interval) * c.WindowMultiplier)
}

// StaleAfter is the quiet gap after the newest clap that discards a partial pattern.
func (c DetectorConfig) StaleAfter() time.Duration {
	return time.Duration(float64(c.Interval) * c.StaleMultiplier)
}

// ClapDetector turns per-frame amplitudes into registered claps and claps
// into double/triple patterns. A frame is a clap when it is loud and either
// has a sharp onset or stands out against a quiet baseline, which tolerates
// varying microphone gain. It is single-owner and not safe for concurrent use.
type ClapDetector struct {
	cfg        DetectorConfig
	history    *History
	previous   int         // Amplitude of the previous frame.
	lastClap   time.Time   // Zero until the first registered clap.
	claps      []time.Time // Registered claps, oldest first.
	tripleOnly bool        // Double matches suppressed.
}

// NewClapDetector creates a detector with the given tuning.
func NewClapDetector(cfg DetectorConfig) *ClapDetector {
	applog.Debugf("ClapDetector: Initializing (Threshold: %d, Interval: %s, Window: %s)",
		cfg.Threshold, cfg.Interval, cfg.Window())
	return &ClapDetector{
		cfg:     cfg,
		history: NewHistory(cfg.HistorySize),
		claps:   make([]time.Time, 0, 8),
	}
}

// Process classifies one frame's amplitude at time now and returns the
// pattern it completes, if any. A matched pattern clears the pending claps.
func (d *ClapDetector) Process(amplitude int, now time.Time) Pattern {
	if amplitude < 0 {
		amplitude = 0
	}

	d.history.Push(amplitude)
	if amplitude > d.cfg.VerboseAmplitude && applog.Enabled(applog.LevelDebug) {
		applog.Debugf("ClapDetector: Amplitude: %d (threshold: %d)", amplitude, d.cfg.Threshold)
	}

	threshold := float64(d.cfg.Threshold)
	sharp := float64(Attack(d.previous, amplitude)) > threshold*d.cfg.AttackFraction
	loud := amplitude > d.cfg.Threshold
	notSustained := true
	if d.history.Len() >= d.cfg.MinHistory {
		notSustained = d.history.Mean() < threshold*d.cfg.SustainFraction
	}

	registered := false
	if loud && (sharp || notSustained) && now.Sub(d.lastClap) > d.cfg.Debounce {
		d.claps = append(d.claps, now)
		d.lastClap = now
		registered = true
		applog.Infof("ClapDetector: Clap #%d detected", len(d.claps))
	}

	d.Prune(now)

	if registered {
		if pattern := d.match(); pattern != PatternNone {
			d.claps = d.claps[:0]
			return pattern
		}
	}

	d.dropStale(now)
	d.previous = amplitude
	return PatternNone
}

// match checks the pending claps, triple before double.
func (d *ClapDetector) match() Pattern {
	n := len(d.claps)
	if n >= 3 && d.claps[n-1].Sub(d.claps[n-3]) < d.cfg.Window() {
		return PatternTriple
	}
	if !d.tripleOnly && n >= 2 && d.claps[n-1].Sub(d.claps[n-2]) < d.cfg.Interval {
		return PatternDouble
	}
	return PatternNone
}

// Prune drops claps older than the retention window relative to now.
// Repeated calls without new claps are no-ops.
func (d *ClapDetector) Prune(now time.Time) {
	window := d.cfg.Window()
	keep := 0
	for keep < len(d.claps) && now.Sub(d.claps[keep]) > window {
		keep++
	}
	if keep > 0 {
		d.claps = append(d.claps[:0], d.claps[keep:]...)
	}
}

// dropStale clears a partial pattern once the newest clap is too old to
// complete one.
func (d *ClapDetector) dropStale(now time.Time) {
	if n := len(d.claps); n > 0 && now.Sub(d.claps[n-1]) > d.cfg.StaleAfter() {
		d.claps = d.claps[:0]
	}
}

// Reset drops pending claps. Amplitude history and the debounce clock are kept.
func (d *ClapDetector) Reset() {
	d.claps = d.claps[:0]
}

// SetTripleOnly gates double-clap matching off while enable is true.
func (d *ClapDetector) SetTripleOnly(enable bool) {
	d.tripleOnly = enable
}

// TripleOnly reports whether double-clap matching is gated off.
func (d *ClapDetector) TripleOnly() bool {
	return d.tripleOnly
}

// LastClap returns the time of the most recently registered clap, or the
// zero time before the first one.
func (d *ClapDetector) LastClap() time.Time {
	return d.lastClap
}

// Claps returns a copy of the pending clap times, oldest first.
func (d *ClapDetector) Claps() []time.Time {
	out := make([]time.Time, len(d.claps))
	copy(out, d.claps)
	return out
}
