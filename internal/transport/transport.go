// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"time"
)

// ErrClosed is returned by Send after a transport has been closed.
var ErrClosed = errors.New("transport closed")

// EventKind names what happened in the listener.
type EventKind string

const (
	KindWake       EventKind = "wake"       // Wake word fired.
	KindClap       EventKind = "clap"       // A single clap was registered.
	KindPattern    EventKind = "pattern"    // Double or triple clap matched.
	KindTransition EventKind = "transition" // Mode changed.
	KindDispatch   EventKind = "dispatch"   // An action was dispatched.
)

// Event is published by the listener for every observable step. Fields that
// do not apply to the kind are left empty.
type Event struct {
	SessionID string    `json:"session_id"`
	Kind      EventKind `json:"kind"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Pattern   string    `json:"pattern,omitempty"`
	Action    string    `json:"action,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Transport defines a generic interface for publishing listener events.
// Implementations must be safe for concurrent use and must not block the
// caller for longer than a network write.
type Transport interface {
	Send(event Event) error
	Close() error
}

// Multi fans one event out to several transports.
type Multi struct {
	targets []Transport
}

// NewMulti combines the given transports, skipping nil entries.
func NewMulti(targets ...Transport) *Multi {
	m := &Multi{}
	for _, t := range targets {
		if t != nil {
			m.targets = append(m.targets, t)
		}
	}
	return m
}

// Len returns the number of wrapped transports.
func (m *Multi) Len() int { return len(m.targets) }

// Send delivers the event to every transport. A failing transport does not
// stop delivery to the rest.
func (m *Multi) Send(event Event) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.Send(event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every transport and joins their errors.
func (m *Multi) Close() error {
	var errs []error
	for _, t := range m.targets {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Transport = (*Multi)(nil)
