// SPDX-License-Identifier: MIT
package analysis

import "gonum.org/v1/gonum/stat"

// History is a fixed-capacity FIFO ring of recent frame amplitudes. Once
// full, each Push evicts the oldest value. It is owned by a single detector
// and is not safe for concurrent use.
type History struct {
	values []float64 // backing ring; only values[:count] is populated
	next   int       // next write position
	count  int       // number of populated slots (<= len(values))
}

// NewHistory creates a History holding at most capacity values. A
// non-positive capacity is treated as 1.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{values: make([]float64, capacity)}
}

// Push records an amplitude, evicting the oldest when full.
func (h *History) Push(amplitude int) {
	h.values[h.next] = float64(amplitude)
	h.next = (h.next + 1) % len(h.values)
	if h.count < len(h.values) {
		h.count++
	}
}

// Len returns the number of stored amplitudes.
func (h *History) Len() int { return h.count }

// Cap returns the ring capacity.
func (h *History) Cap() int { return len(h.values) }

// Mean returns the average of the stored amplitudes, or 0 when empty.
// Slot order does not matter for the mean, so the ring is read in place.
func (h *History) Mean() float64 {
	if h.count == 0 {
		return 0
	}
	return stat.Mean(h.values[:h.count], nil)
}

// Values returns the stored amplitudes oldest first.
func (h *History) Values() []int {
	out := make([]int, 0, h.count)
	start := 0
	if h.count == len(h.values) {
		start = h.next
	}
	for i := 0; i < h.count; i++ {
		out = append(out, int(h.values[(start+i)%len(h.values)]))
	}
	return out
}
