// Package capture acquires the host audio input device and streams raw PCM16 chunks.
package capture

import (
	"context"
	"errors"

	"github.com/Nephrolytics-ai/voxsyn/pkg/container"
)

const (
	DefaultSampleRate = 16000
	DefaultChannels   = 1
	// DefaultFramesPerBuffer is 100ms of audio at 16kHz.
	DefaultFramesPerBuffer = 1600
)

var (
	ErrDeviceUnavailable = errors.New("audio input device unavailable")
	ErrPermissionDenied  = errors.New("audio input permission denied")
	ErrDeviceBusy        = errors.New("audio input device already in use")
)

// Config describes how the input device should be opened.
type Config struct {
	SampleRate      int
	Channels        int
	FramesPerBuffer int
}

func DefaultConfig() Config {
	return Config{
		SampleRate:      DefaultSampleRate,
		Channels:        DefaultChannels,
		FramesPerBuffer: DefaultFramesPerBuffer,
	}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.Channels <= 0 {
		c.Channels = DefaultChannels
	}
	if c.FramesPerBuffer <= 0 {
		c.FramesPerBuffer = DefaultFramesPerBuffer
	}
	return c
}

func (c Config) Format() container.Format {
	return container.Format{SampleRate: c.SampleRate, Channels: c.Channels}
}

// Device grants exclusive access to an audio input.
type Device interface {
	// Open blocks until access is granted or denied.
	Open(ctx context.Context, cfg Config) (Stream, error)
}

// Stream is a live capture. Chunks is closed after Close returns.
type Stream interface {
	Chunks() <-chan []byte
	// Config reports the format actually delivered, which may differ from the request.
	Config() Config
	Close() error
}
