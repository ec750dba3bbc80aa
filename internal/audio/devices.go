// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"io"

	"github.com/gordonklaus/portaudio"

	"wakeup/internal/config"
)

// Device represents an audio device
type Device struct {
	ID                   int
	Name                 string
	MaxInputChannels     int
	MaxOutputChannels    int
	DefaultSampleRate    float64
	LowInputLatencyMs    float64
	HighInputLatencyMs   float64
	IsDefaultInputDevice bool
}

// paDevicesFunc is swapped in tests.
var paDevicesFunc = portaudio.Devices

// Initialize sets up the PortAudio subsystem.
// This must be called before any audio operations and paired with a Terminate() call.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate cleanly shuts down the PortAudio subsystem.
// This should be deferred immediately after Initialize().
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

// HostDevices returns all available audio devices. PortAudio must be
// initialized.
func HostDevices() ([]Device, error) {
	infos, err := paDevicesFunc()
	if err != nil {
		return nil, fmt.Errorf("failed to list audio devices: %w", err)
	}

	var defaultName string
	if def, err := portaudio.DefaultInputDevice(); err == nil && def != nil {
		defaultName = def.Name
	}

	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = Device{
			ID:                   i,
			Name:                 info.Name,
			MaxInputChannels:     info.MaxInputChannels,
			MaxOutputChannels:    info.MaxOutputChannels,
			DefaultSampleRate:    info.DefaultSampleRate,
			LowInputLatencyMs:    info.DefaultLowInputLatency.Seconds() * 1000,
			HighInputLatencyMs:   info.DefaultHighInputLatency.Seconds() * 1000,
			IsDefaultInputDevice: info.Name == defaultName,
		}
	}
	return devices, nil
}

// InputDevice retrieves the audio input device for the given device ID.
// If deviceID is MinDeviceID (-1), returns the system default input device.
// Returns an error if the device ID is invalid or has no input channels.
func InputDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID == config.MinDeviceID {
		device, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("no default input device: %w", err)
		}
		return device, nil
	}

	devices, err := paDevicesFunc()
	if err != nil {
		return nil, err
	}
	if deviceID < 0 || deviceID >= len(devices) {
		return nil, fmt.Errorf("invalid device ID: %d", deviceID)
	}
	if devices[deviceID].MaxInputChannels < 1 {
		return nil, fmt.Errorf("device %d (%s) has no input channels", deviceID, devices[deviceID].Name)
	}
	return devices[deviceID], nil
}

// ListDevices writes information about all available audio devices to w.
// PortAudio must be initialized.
func ListDevices(w io.Writer) error {
	devices, err := HostDevices()
	if err != nil {
		return err
	}
	return WriteDevices(w, devices)
}

// WriteDevices formats the device table, one block per device.
func WriteDevices(w io.Writer, devices []Device) error {
	if _, err := fmt.Fprintf(w, "\nAvailable Audio Devices\n\n"); err != nil {
		return err
	}

	for _, device := range devices {
		deviceType := ""
		switch {
		case device.MaxInputChannels > 0 && device.MaxOutputChannels > 0:
			deviceType = "Input/Output"
		case device.MaxInputChannels > 0:
			deviceType = "Input"
		case device.MaxOutputChannels > 0:
			deviceType = "Output"
		}
		marker := ""
		if device.IsDefaultInputDevice {
			marker = " *default input*"
		}

		_, err := fmt.Fprintf(w, "[%d] %s (%s)%s\n"+
			"    Input channels: %d, Output channels: %d\n"+
			"    Default sample rate: %.0f Hz\n"+
			"    Latency: Low=%.2fms, High=%.2fms\n\n",
			device.ID, device.Name, deviceType, marker,
			device.MaxInputChannels, device.MaxOutputChannels,
			device.DefaultSampleRate,
			device.LowInputLatencyMs, device.HighInputLatencyMs)
		if err != nil {
			return err
		}
	}
	return nil
}
