// SPDX-License-Identifier: MIT
package analysis

import (
	"slices"
	"testing"
)

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(3)
	for _, v := range []int{1, 2, 3, 4, 5} {
		h.Push(v)
	}
	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}
	if got := h.Values(); !slices.Equal(got, []int{3, 4, 5}) {
		t.Errorf("Values() = %v, want [3 4 5]", got)
	}
	if got := h.Mean(); got != 4 {
		t.Errorf("Mean() = %f, want 4", got)
	}
}

func TestHistoryPartial(t *testing.T) {
	h := NewHistory(10)
	if h.Mean() != 0 {
		t.Errorf("empty Mean() = %f, want 0", h.Mean())
	}
	h.Push(100)
	h.Push(300)
	if got := h.Values(); !slices.Equal(got, []int{100, 300}) {
		t.Errorf("Values() = %v", got)
	}
	if h.Mean() != 200 {
		t.Errorf("Mean() = %f, want 200", h.Mean())
	}
	if h.Cap() != 10 {
		t.Errorf("Cap() = %d, want 10", h.Cap())
	}
}

func TestHistoryMinimumCapacity(t *testing.T) {
	h := NewHistory(0)
	h.Push(7)
	h.Push(9)
	if h.Cap() != 1 || !slices.Equal(h.Values(), []int{9}) {
		t.Errorf("capacity-0 history = cap %d values %v", h.Cap(), h.Values())
	}
}
