// SPDX-License-Identifier: MIT
package activation

import (
	"time"

	"wakeup/internal/config"
)

// Config holds the mode timeouts.
type Config struct {
	ActiveDuration     time.Duration // Active falls back to Idle after this.
	TripleWaitDuration time.Duration // TripleWait falls back to Idle after this.
}

// DefaultConfig returns the shipped timeouts.
func DefaultConfig() Config {
	return NewConfig(config.NewConfig().Activation)
}

// NewConfig maps the activation section of the application config.
func NewConfig(c config.ActivationConfig) Config {
	return Config{
		ActiveDuration:     c.ActiveDuration,
		TripleWaitDuration: c.TripleWaitDuration,
	}
}

// Machine is the Idle -> Active -> TripleWait -> Idle controller. Each
// call performs at most one transition. It is single-owner and not safe for
// concurrent use.
type Machine struct {
	cfg         Config
	mode        Mode
	activeSince time.Time // Valid iff mode == Active.
	tripleSince time.Time // Valid iff mode == TripleWait.
}

// NewMachine returns a machine in Idle.
func NewMachine(cfg Config) *Machine {
	return &Machine{cfg: cfg, mode: Idle}
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode { return m.mode }

// ActiveSince returns when Active was entered. ok is false outside Active.
func (m *Machine) ActiveSince() (since time.Time, ok bool) {
	if m.mode != Active {
		return time.Time{}, false
	}
	return m.activeSince, true
}

// TripleWaitSince returns when TripleWait was entered. ok is false outside
// TripleWait.
func (m *Machine) TripleWaitSince() (since time.Time, ok bool) {
	if m.mode != TripleWait {
		return time.Time{}, false
	}
	return m.tripleSince, true
}

// Fire applies a detection trigger at now. It reports false when the
// trigger does not apply to the current mode, or when the current mode's
// window has already elapsed; Expire must run first in that case.
func (m *Machine) Fire(trigger Trigger, now time.Time) (Transition, bool) {
	if m.expired(now) {
		return Transition{}, false
	}

	switch {
	case m.mode == Idle && trigger == TriggerWake:
		return m.enter(Active, trigger, ActionNone, now), true
	case m.mode == Active && trigger == TriggerDoubleClap:
		return m.enter(TripleWait, trigger, ActionLaunchApps, now), true
	case m.mode == Active && trigger == TriggerTripleClap,
		m.mode == TripleWait && trigger == TriggerTripleClap:
		return m.enter(Idle, trigger, ActionPlayMedia, now), true
	}
	return Transition{}, false
}

// Expire returns the machine to Idle when the current mode's window has
// elapsed at now.
func (m *Machine) Expire(now time.Time) (Transition, bool) {
	if !m.expired(now) {
		return Transition{}, false
	}
	return m.enter(Idle, TriggerTimeout, ActionNone, now), true
}

// Remaining returns the time left in the current mode's window, or zero in
// Idle.
func (m *Machine) Remaining(now time.Time) time.Duration {
	var left time.Duration
	switch m.mode {
	case Active:
		left = m.cfg.ActiveDuration - now.Sub(m.activeSince)
	case TripleWait:
		left = m.cfg.TripleWaitDuration - now.Sub(m.tripleSince)
	}
	return max(left, 0)
}

func (m *Machine) expired(now time.Time) bool {
	switch m.mode {
	case Active:
		return now.Sub(m.activeSince) > m.cfg.ActiveDuration
	case TripleWait:
		return now.Sub(m.tripleSince) > m.cfg.TripleWaitDuration
	}
	return false
}

func (m *Machine) enter(to Mode, trigger Trigger, action Action, now time.Time) Transition {
	t := Transition{From: m.mode, To: to, Trigger: trigger, Action: action, At: now}
	m.mode = to
	m.activeSince = time.Time{}
	m.tripleSince = time.Time{}
	switch to {
	case Active:
		m.activeSince = now
	case TripleWait:
		m.tripleSince = now
	}
	return t
}
