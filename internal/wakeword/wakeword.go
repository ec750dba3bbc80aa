// SPDX-License-Identifier: MIT
// Package wakeword defines the keyword-spotting boundary of the listener.
package wakeword

import (
	"errors"
	"slices"
	"strings"
)

// DefaultWord is used when the configured word is not supported.
const DefaultWord = "jarvis"

// ErrNoAccessKey is returned when a classifier needs a vendor key and none
// was configured.
var ErrNoAccessKey = errors.New("wakeword: access key not configured")

// Classifier spots a keyword in fixed-geometry frames. Process returns the
// index of the keyword that fired, or a negative value when none did.
type Classifier interface {
	Process(frame []int16) (int, error)
	SampleRate() int
	FrameLength() int
	Close() error
}

// Fired reports whether a Process result means the keyword was spotted.
func Fired(index int) bool { return index >= 0 }

// Resolve normalizes word and checks it against supported. When the word is
// unsupported it returns DefaultWord and false.
func Resolve(word string, supported []string) (string, bool) {
	word = strings.ToLower(strings.TrimSpace(word))
	if slices.Contains(supported, word) {
		return word, true
	}
	return DefaultWord, false
}
