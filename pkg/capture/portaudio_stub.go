//go:build !portaudio

package capture

import (
	"context"
	"fmt"
)

// PortAudioDevice is unavailable unless built with -tags portaudio.
type PortAudioDevice struct{}

func NewPortAudioDevice() *PortAudioDevice {
	return &PortAudioDevice{}
}

func (d *PortAudioDevice) Open(ctx context.Context, cfg Config) (Stream, error) {
	return nil, fmt.Errorf("%w: built without portaudio support (rebuild with -tags portaudio)", ErrDeviceUnavailable)
}
