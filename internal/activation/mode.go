// SPDX-License-Identifier: MIT
package activation

import "time"

// Mode is the listener's operating mode. Exactly one is current at a time.
type Mode int

const (
	Idle       Mode = iota // Listening for the wake word only.
	Active                 // Listening for a double or triple clap.
	TripleWait             // Apps launched, listening for a triple clap only.
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case TripleWait:
		return "triple_wait"
	default:
		return "unknown"
	}
}

// Trigger is an input to the machine.
type Trigger int

const (
	TriggerWake Trigger = iota
	TriggerDoubleClap
	TriggerTripleClap
	TriggerTimeout
)

func (t Trigger) String() string {
	switch t {
	case TriggerWake:
		return "wake"
	case TriggerDoubleClap:
		return "double_clap"
	case TriggerTripleClap:
		return "triple_clap"
	case TriggerTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Action is the side effect a transition asks the caller to dispatch.
type Action int

const (
	ActionNone Action = iota
	ActionLaunchApps
	ActionPlayMedia
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionLaunchApps:
		return "launch_apps"
	case ActionPlayMedia:
		return "play_media"
	default:
		return "unknown"
	}
}

// Transition records one mode change.
type Transition struct {
	From    Mode
	To      Mode
	Trigger Trigger
	Action  Action
	At      time.Time
}
