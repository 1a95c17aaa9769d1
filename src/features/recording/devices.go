package recording

import (
	"fmt"
	"io"

	"github.com/gordonklaus/portaudio"
)

// Device describes an audio input device.
type Device struct {
	Index             int
	Name              string
	MaxInputChannels  int
	DefaultSampleRate float64
	IsDefaultInput    bool
}

// InputDevices lists the available audio input devices.
func InputDevices() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	all, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list audio devices: %w", err)
	}

	defaultInput, err := portaudio.DefaultInputDevice()
	if err != nil {
		defaultInput = nil
	}

	var devices []Device
	for i, d := range all {
		if d.MaxInputChannels == 0 {
			continue
		}
		devices = append(devices, Device{
			Index:             i,
			Name:              d.Name,
			MaxInputChannels:  d.MaxInputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
			IsDefaultInput:    defaultInput != nil && d.Name == defaultInput.Name,
		})
	}
	return devices, nil
}

// RenderDevices writes the device list to w.
func RenderDevices(w io.Writer, devices []Device) {
	if len(devices) == 0 {
		fmt.Fprintln(w, "No audio input devices found.")
		return
	}
	for _, d := range devices {
		marker := ""
		if d.IsDefaultInput {
			marker = " [default]"
		}
		fmt.Fprintf(w, "%d: %s%s\n", d.Index, d.Name, marker)
		fmt.Fprintf(w, "   input channels: %d, default sample rate: %.0f Hz\n", d.MaxInputChannels, d.DefaultSampleRate)
	}
}
