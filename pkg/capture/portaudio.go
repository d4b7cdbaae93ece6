//go:build portaudio

package capture

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/Nephrolytics-ai/voxsyn/pkg/logging"
	"github.com/gordonklaus/portaudio"
)

// PortAudioDevice captures from the host's default microphone.
type PortAudioDevice struct {
	lock exclusive
}

func NewPortAudioDevice() *PortAudioDevice {
	return &PortAudioDevice{}
}

func (d *PortAudioDevice) Open(ctx context.Context, cfg Config) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := d.lock.acquire(); err != nil {
		return nil, err
	}
	cfg = cfg.WithDefaults()
	log := logging.NewLogger(ctx)

	if err := portaudio.Initialize(); err != nil {
		d.lock.release()
		return nil, fmt.Errorf("%w: initialize portaudio: %v", ErrDeviceUnavailable, err)
	}

	in := make([]int16, cfg.FramesPerBuffer*cfg.Channels)
	paStream, err := portaudio.OpenDefaultStream(cfg.Channels, 0, float64(cfg.SampleRate), cfg.FramesPerBuffer, in)
	if err != nil {
		_ = portaudio.Terminate()
		d.lock.release()
		return nil, fmt.Errorf("%w: open input stream: %v", ErrDeviceUnavailable, err)
	}
	if err := paStream.Start(); err != nil {
		_ = paStream.Close()
		_ = portaudio.Terminate()
		d.lock.release()
		return nil, fmt.Errorf("%w: start input stream: %v", ErrPermissionDenied, err)
	}

	log.Infof(
		"capture.PortAudioDevice.Open sample_rate=%d channels=%d frames_per_buffer=%d",
		cfg.SampleRate, cfg.Channels, cfg.FramesPerBuffer,
	)

	stream := newChunkStream(cfg, func() error {
		defer d.lock.release()
		stopErr := paStream.Stop()
		closeErr := paStream.Close()
		termErr := portaudio.Terminate()
		for _, err := range []error{stopErr, closeErr, termErr} {
			if err != nil {
				return err
			}
		}
		return nil
	})

	go stream.run(func() ([]byte, bool) {
		for {
			if err := paStream.Read(); err != nil {
				if err == portaudio.InputOverflowed {
					log.Warnf("capture.PortAudioDevice input overflowed")
					break
				}
				select {
				case <-stream.done:
					return nil, false
				default:
				}
				time.Sleep(10 * time.Millisecond)
				continue
			}
			break
		}
		return int16ToBytes(in), true
	})
	return stream, nil
}

// int16ToBytes copies samples as little-endian PCM16.
func int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
