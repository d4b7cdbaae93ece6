package capture

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Nephrolytics-ai/voxsyn/pkg/logging"
	"github.com/Nephrolytics-ai/voxsyn/pkg/utils"
	"github.com/go-audio/wav"
)

var ErrUnsupportedWAV = errors.New("only 16-bit PCM WAV input is supported")

// WAVFileDevice replays a WAV file as if it were a microphone.
type WAVFileDevice struct {
	path string
	// Realtime paces chunks at their playback duration.
	realtime bool
	lock     exclusive
}

func NewWAVFileDevice(path string, realtime bool) *WAVFileDevice {
	return &WAVFileDevice{path: path, realtime: realtime}
}

func (d *WAVFileDevice) Open(ctx context.Context, cfg Config) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := d.lock.acquire(); err != nil {
		return nil, err
	}

	pcm, fileCfg, err := readWAV(d.path)
	if err != nil {
		d.lock.release()
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
		}
		return nil, utils.WrapIfNotNil(err)
	}
	cfg = cfg.WithDefaults()
	cfg.SampleRate = fileCfg.SampleRate
	cfg.Channels = fileCfg.Channels

	chunkBytes := cfg.FramesPerBuffer * cfg.Channels * 2
	chunkDuration := time.Duration(cfg.FramesPerBuffer) * time.Second / time.Duration(cfg.SampleRate)

	logging.NewLogger(ctx).Debugf(
		"capture.WAVFileDevice.Open path=%q sample_rate=%d channels=%d pcm_bytes=%d",
		d.path, cfg.SampleRate, cfg.Channels, len(pcm),
	)

	stream := newChunkStream(cfg, func() error {
		d.lock.release()
		return nil
	})
	offset := 0
	go stream.run(func() ([]byte, bool) {
		if offset >= len(pcm) {
			return nil, false
		}
		end := min(offset+chunkBytes, len(pcm))
		chunk := pcm[offset:end]
		offset = end
		if d.realtime {
			time.Sleep(chunkDuration)
		}
		return chunk, true
	})
	return stream, nil
}

func readWAV(path string) ([]byte, Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Config{}, err
	}
	defer func() {
		_ = f.Close()
	}()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, Config{}, fmt.Errorf("%s is not a valid WAV file", path)
	}
	if dec.BitDepth != 16 {
		return nil, Config{}, ErrUnsupportedWAV
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, Config{}, err
	}

	pcm := make([]byte, len(buf.Data)*2)
	for i, sample := range buf.Data {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(sample)))
	}
	return pcm, Config{SampleRate: int(dec.SampleRate), Channels: int(dec.NumChans)}, nil
}
