package utils

import (
	"math"
	"sync"

	"wakeup/internal/transport"
)

// MockTransport implements the Transport interface for testing.
type MockTransport struct {
	mu     sync.Mutex
	Events []transport.Event
	Closed bool
}

// Send stores the event for later inspection instead of transmitting.
func (m *MockTransport) Send(event transport.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Kinds returns the kinds of all recorded events in order.
func (m *MockTransport) Kinds() []transport.EventKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	kinds := make([]transport.EventKind, len(m.Events))
	for i, e := range m.Events {
		kinds[i] = e.Kind
	}
	return kinds
}

// GenerateSilence returns a frame of zero samples.
func GenerateSilence(size int) []int16 {
	return make([]int16, size)
}

// GenerateClap returns a frame with a single transient of the given peak,
// decaying over the rest of the frame with alternating sign.
func GenerateClap(size int, peak int16) []int16 {
	buffer := make([]int16, size)
	for i := range buffer {
		decay := math.Exp(-float64(i) / 16)
		v := float64(peak) * decay
		if i%2 == 1 {
			v = -v
		}
		buffer[i] = int16(v)
	}
	return buffer
}

// GenerateSineWave returns a sine tone at frequency with the given peak.
func GenerateSineWave(size int, sampleRate, frequency float64, peak int16) []int16 {
	buffer := make([]int16, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = int16(math.Sin(2*math.Pi*frequency*t) * float64(peak))
	}
	return buffer
}
