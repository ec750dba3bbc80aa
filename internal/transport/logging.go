// SPDX-License-Identifier: MIT
package transport

import (
	applog "wakeup/internal/log"
)

// LoggingTransport implements the Transport interface by logging events to
// the console at debug level.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Debugf("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the event.
func (lt *LoggingTransport) Send(event Event) error {
	if !applog.Enabled(applog.LevelDebug) {
		return nil
	}
	switch event.Kind {
	case KindTransition:
		applog.Debugf("Transport: %s %s -> %s (action: %s)", event.Kind, event.From, event.To, event.Action)
	case KindPattern:
		applog.Debugf("Transport: %s %s in %s", event.Kind, event.Pattern, event.From)
	case KindDispatch:
		if event.Error != "" {
			applog.Debugf("Transport: %s %s failed: %s", event.Kind, event.Action, event.Error)
			return nil
		}
		applog.Debugf("Transport: %s %s", event.Kind, event.Action)
	default:
		applog.Debugf("Transport: %s", event.Kind)
	}
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	applog.Debugf("Transport: LoggingTransport closed")
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
