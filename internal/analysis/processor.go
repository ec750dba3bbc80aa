// SPDX-License-Identifier: MIT
package analysis

import "time"

// Pattern is the clap pattern a detector recognized on the current frame.
type Pattern int

const (
	PatternNone Pattern = iota
	PatternDouble
	PatternTriple
)

// String returns the string representation of the Pattern.
func (p Pattern) String() string {
	switch p {
	case PatternNone:
		return "none"
	case PatternDouble:
		return "double"
	case PatternTriple:
		return "triple"
	default:
		return "unknown"
	}
}

// PatternDetector is the per-frame contract the listener drives. Process is
// called once per captured frame with that frame's peak amplitude and must
// not block; it runs on the capture loop.
type PatternDetector interface {
	Process(amplitude int, now time.Time) Pattern
	Reset()                    // Reset drops pending claps, keeping amplitude history.
	SetTripleOnly(enable bool) // SetTripleOnly suppresses double-clap matches.
}

// Compile-time checks for interface implementations.
var _ PatternDetector = (*ClapDetector)(nil)
