// Package container wraps captured PCM audio in the fixed upload container.
package container

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/Nephrolytics-ai/voxsyn/pkg/logging"
	"github.com/Nephrolytics-ai/voxsyn/pkg/model"
	"github.com/Nephrolytics-ai/voxsyn/pkg/utils"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	ContentTypeWAV = "audio/wav"
	FileNameWAV    = "audio.wav"

	bitDepth       = 16
	bytesPerSample = bitDepth / 8
	// wavAudioFormatPCM is the RIFF format tag for uncompressed PCM.
	wavAudioFormatPCM = 1
)

// Format describes the PCM16 little-endian samples carried by captured chunks.
type Format struct {
	SampleRate int
	Channels   int
}

// Assemble concatenates chunks in order and wraps them as a WAV payload.
func Assemble(chunks [][]byte, format Format) (model.AudioPayload, error) {
	size := 0
	for _, chunk := range chunks {
		size += len(chunk)
	}
	pcm := make([]byte, 0, size)
	for _, chunk := range chunks {
		pcm = append(pcm, chunk...)
	}

	data, err := EncodeWAV(pcm, format)
	if err != nil {
		return model.AudioPayload{}, utils.WrapIfNotNil(err)
	}
	return model.AudioPayload{
		Data:        data,
		ContentType: ContentTypeWAV,
		FileName:    FileNameWAV,
	}, nil
}

// EncodeWAV writes pcm (PCM16 LE, interleaved) into a WAV container.
// A trailing odd byte cannot form a sample and is dropped.
func EncodeWAV(pcm []byte, format Format) ([]byte, error) {
	if format.SampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}
	if format.Channels <= 0 {
		return nil, errors.New("channel count must be positive")
	}
	if len(pcm)%bytesPerSample != 0 {
		logging.NewLogger(context.Background()).Warnf("container.EncodeWAV dropping trailing byte pcm_bytes=%d", len(pcm))
		pcm = pcm[:len(pcm)-1]
	}

	samples := make([]int, len(pcm)/bytesPerSample)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*bytesPerSample:])))
	}

	out := &seekBuffer{}
	enc := wav.NewEncoder(out, format.SampleRate, bitDepth, format.Channels, wavAudioFormatPCM)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: format.Channels,
			SampleRate:  format.SampleRate,
		},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
