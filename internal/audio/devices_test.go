// SPDX-License-Identifier: MIT
package audio

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/gordonklaus/portaudio"
)

func setupPortAudio(t *testing.T) {
	t.Helper()
	if err := Initialize(); err != nil {
		t.Skipf("PortAudio unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := Terminate(); err != nil {
			t.Errorf("Failed to terminate PortAudio: %v", err)
		}
	})
}

func TestHostDevices(t *testing.T) {
	setupPortAudio(t)

	devices, err := HostDevices()
	if err != nil {
		t.Fatalf("HostDevices error: %v", err)
	}
	if len(devices) == 0 {
		t.Skip("No audio devices found on system")
	}
	for i, d := range devices {
		if d.ID != i {
			t.Errorf("Device ID mismatch: got %d, want %d", d.ID, i)
		}
		if d.Name == "" {
			t.Errorf("Device %d has empty name", i)
		}
		if d.DefaultSampleRate <= 0 {
			t.Errorf("Device %d has invalid sample rate: %f", i, d.DefaultSampleRate)
		}
	}
}

func TestHostDevices_paDevicesError(t *testing.T) {
	orig := paDevicesFunc
	defer func() { paDevicesFunc = orig }()
	paDevicesFunc = func() ([]*portaudio.DeviceInfo, error) {
		return nil, fmt.Errorf("mock error")
	}

	if _, err := HostDevices(); err == nil || !strings.Contains(err.Error(), "mock error") {
		t.Errorf("expected mock error, got %v", err)
	}
	if _, err := InputDevice(0); err == nil || !strings.Contains(err.Error(), "mock error") {
		t.Errorf("expected mock error from InputDevice, got %v", err)
	}
}

func TestInputDevice_InvalidIDs(t *testing.T) {
	orig := paDevicesFunc
	defer func() { paDevicesFunc = orig }()
	paDevicesFunc = func() ([]*portaudio.DeviceInfo, error) {
		return []*portaudio.DeviceInfo{
			{Name: "Built-in Microphone", MaxInputChannels: 1},
			{Name: "Built-in Output", MaxOutputChannels: 2},
		}, nil
	}

	tests := []struct {
		name   string
		id     int
		substr string
	}{
		{"Negative ID", -2, "invalid device ID"},
		{"Too high ID", 5, "invalid device ID"},
		{"Non-input device", 1, "no input channels"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InputDevice(tt.id)
			if err == nil {
				t.Fatalf("Expected error for ID %d", tt.id)
			}
			if !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("Error = %q, want substring %q", err.Error(), tt.substr)
			}
		})
	}

	dev, err := InputDevice(0)
	if err != nil || dev.Name != "Built-in Microphone" {
		t.Errorf("InputDevice(0) = %v, %v", dev, err)
	}
}

func TestWriteDevices(t *testing.T) {
	devices := []Device{
		{ID: 0, Name: "USB Mic", MaxInputChannels: 1, DefaultSampleRate: 48000, LowInputLatencyMs: 2.5, HighInputLatencyMs: 10, IsDefaultInputDevice: true},
		{ID: 1, Name: "Speakers", MaxOutputChannels: 2, DefaultSampleRate: 44100},
		{ID: 2, Name: "Interface", MaxInputChannels: 2, MaxOutputChannels: 2, DefaultSampleRate: 96000},
	}

	var buf bytes.Buffer
	if err := WriteDevices(&buf, devices); err != nil {
		t.Fatalf("WriteDevices: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"[0] USB Mic (Input) *default input*",
		"[1] Speakers (Output)",
		"[2] Interface (Input/Output)",
		"Default sample rate: 48000 Hz",
		"Latency: Low=2.50ms, High=10.00ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
