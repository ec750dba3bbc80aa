// SPDX-License-Identifier: MIT
// Package tui provides the interactive input device picker behind
// `wakeup list --pick`.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wakeup/internal/audio"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)
)

var (
	keyQuit   = key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"))
	keyUp     = key.NewBinding(key.WithKeys("up", "k"))
	keyDown   = key.NewBinding(key.WithKeys("down", "j"))
	keySelect = key.NewBinding(key.WithKeys("enter"))
)

// DevicePickerModel is the Bubble Tea model for choosing an input device.
// Only devices with input channels are offered.
type DevicePickerModel struct {
	devices       []audio.Device
	selectedIndex int
	chosen        bool
	viewport      viewport.Model
	ready         bool
}

// NewDevicePickerModel creates a picker over the input-capable devices,
// starting on the system default input.
func NewDevicePickerModel(devices []audio.Device) DevicePickerModel {
	m := DevicePickerModel{}
	for _, d := range devices {
		if d.MaxInputChannels < 1 {
			continue
		}
		if d.IsDefaultInputDevice {
			m.selectedIndex = len(m.devices)
		}
		m.devices = append(m.devices, d)
	}
	return m
}

// Init initializes the Bubble Tea model
func (m DevicePickerModel) Init() tea.Cmd {
	return nil
}

// Update handles input and updates the model
func (m DevicePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.viewport.SetContent(m.renderDevices())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keyQuit):
			return m, tea.Quit

		case key.Matches(msg, keyUp):
			if m.selectedIndex > 0 {
				m.selectedIndex--
			}

		case key.Matches(msg, keyDown):
			if m.selectedIndex < len(m.devices)-1 {
				m.selectedIndex++
			}

		case key.Matches(msg, keySelect):
			if len(m.devices) > 0 {
				m.chosen = true
				return m, tea.Quit
			}
		}
		m.viewport.SetContent(m.renderDevices())
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the UI
func (m DevicePickerModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	title := titleStyle.Render("Select Input Device")
	help := infoStyle.Render("↑/↓: Navigate • Enter: Select • q: Quit")
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

// Selected returns the chosen device, if the user picked one.
func (m DevicePickerModel) Selected() (audio.Device, bool) {
	if !m.chosen || len(m.devices) == 0 {
		return audio.Device{}, false
	}
	return m.devices[m.selectedIndex], true
}

func (m DevicePickerModel) renderDevices() string {
	if len(m.devices) == 0 {
		return "No audio input devices found."
	}

	var sb strings.Builder
	for i, device := range m.devices {
		marker := "  "
		if i == m.selectedIndex {
			marker = "▶ "
		}
		line := fmt.Sprintf("%s[%d] %s\n", marker, device.ID, device.Name)
		line += fmt.Sprintf("    Input channels: %d, Default sample rate: %.0f Hz, Latency: %.1f-%.1f ms\n",
			device.MaxInputChannels, device.DefaultSampleRate, device.LowInputLatencyMs, device.HighInputLatencyMs)

		if i == m.selectedIndex {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

// PickDevice runs the picker full screen and returns the chosen device.
// ok is false when the user quit without choosing.
func PickDevice(devices []audio.Device) (device audio.Device, ok bool, err error) {
	p := tea.NewProgram(
		NewDevicePickerModel(devices),
		tea.WithAltScreen(),
	)
	final, err := p.Run()
	if err != nil {
		return audio.Device{}, false, err
	}
	device, ok = final.(DevicePickerModel).Selected()
	return device, ok, nil
}
