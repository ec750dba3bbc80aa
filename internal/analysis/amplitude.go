// SPDX-License-Identifier: MIT
package analysis

// Analyze returns the peak absolute sample value of one frame. It is pure,
// never negative, and allocation free; nil or empty frames yield 0. The
// full int16 range is representable, so -32768 yields 32768.
//
// The abs/max steps are branchless to keep the per-frame cost flat
// regardless of signal content.
func Analyze(frame []int16) int {
	var peak int32
	for _, s := range frame {
		sample := int32(s)
		mask := sample >> 31
		amplitude := (sample ^ mask) - mask
		diff := amplitude - peak
		peak += diff &^ (diff >> 31)
	}
	return int(peak)
}

// Attack returns the change in amplitude between two consecutive frames.
// A large positive value marks a sharp onset; it may be negative.
func Attack(previous, current int) int {
	return current - previous
}
