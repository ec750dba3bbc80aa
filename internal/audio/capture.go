// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	applog "wakeup/internal/log"
)

// DeviceSource captures mono frames from a PortAudio input device using a
// blocking stream.
type DeviceSource struct {
	DeviceID   int  // config.MinDeviceID selects the system default.
	LowLatency bool // Use the device's low input latency instead of high.
}

// Open initializes PortAudio, opens the input device and starts the
// stream. PortAudio is terminated again when the stream closes or when
// Open fails.
func (s DeviceSource) Open(sampleRate, frameLength int) (stream Stream, err error) {
	if sampleRate <= 0 || frameLength <= 0 {
		return nil, fmt.Errorf("invalid stream geometry: %d Hz, %d samples", sampleRate, frameLength)
	}
	if err := Initialize(); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = Terminate()
		}
	}()

	device, err := InputDevice(s.DeviceID)
	if err != nil {
		return nil, err
	}

	latency := device.DefaultHighInputLatency
	if s.LowLatency {
		latency = device.DefaultLowInputLatency
	}

	buffer := make([]int16, frameLength)
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 1,
			Device:   device,
			Latency:  latency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: frameLength,
		SampleRate:      float64(sampleRate),
	}

	paStream, err := portaudio.OpenStream(params, buffer)
	if err != nil {
		return nil, fmt.Errorf("failed to open input stream on %q: %w", device.Name, err)
	}
	if err := paStream.Start(); err != nil {
		paStream.Close()
		return nil, fmt.Errorf("failed to start input stream on %q: %w", device.Name, err)
	}

	applog.Infof("Capture: Listening on %q (%d Hz, %d samples/frame, latency %s)",
		device.Name, sampleRate, frameLength, latency.Round(time.Microsecond))

	return &deviceStream{stream: paStream, buffer: buffer}, nil
}

type deviceStream struct {
	stream *portaudio.Stream
	buffer []int16

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

// NextFrame blocks for one frame. Input overflow only means frames were
// dropped by the host, so the buffer is still returned.
func (d *deviceStream) NextFrame() ([]int16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrStreamClosed
	}

	if err := d.stream.Read(); err != nil {
		if errors.Is(err, portaudio.InputOverflowed) {
			applog.Debugf("Capture: Input overflowed")
			return d.buffer, nil
		}
		return nil, fmt.Errorf("failed to read input stream: %w", err)
	}
	return d.buffer, nil
}

// Close stops and closes the stream and terminates PortAudio, once.
func (d *deviceStream) Close() error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()

		applog.Infof("Capture: Closing input stream")
		d.closeErr = errors.Join(
			d.stream.Stop(),
			d.stream.Close(),
			Terminate(),
		)
	})
	return d.closeErr
}

var _ Source = DeviceSource{}
var _ Stream = (*deviceStream)(nil)
