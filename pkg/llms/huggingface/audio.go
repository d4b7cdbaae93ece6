package huggingface

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Nephrolytics-ai/voxsyn/pkg/logging"
	"github.com/Nephrolytics-ai/voxsyn/pkg/model"
	"github.com/Nephrolytics-ai/voxsyn/pkg/utils"
)

var ErrEmptyTranscript = errors.New("transcription response is empty")

// audioTranscriptionGenerator sends audio to a hosted speech recognition model.
// The inference task takes no prompt, so keyword hints and Language are not sent.
type audioTranscriptionGenerator struct {
	client  *apiClient
	payload model.AudioPayload
	opts    model.AudioOptions
}

func NewAudioTranscriptionGenerator(payload model.AudioPayload, opts model.AudioOptions) (model.AudioTranscriptionGenerator, error) {
	if len(payload.Data) == 0 {
		return nil, utils.WrapIfNotNil(errors.New("audio payload is required"))
	}
	if strings.TrimSpace(payload.ContentType) == "" {
		contentType, err := model.ResolveAudioMIMEType(payload.FileName)
		if err != nil {
			return nil, utils.WrapIfNotNil(err)
		}
		payload.ContentType = contentType
	}

	c, err := newAPIClient(opts.URL, opts.AuthToken)
	if err != nil {
		return nil, err
	}
	return &audioTranscriptionGenerator{
		client:  c,
		payload: payload,
		opts:    model.CloneAudioOptions(opts),
	}, nil
}

func (g *audioTranscriptionGenerator) Generate(ctx context.Context) (string, model.GenerationMetadata, error) {
	start := time.Now()
	modelName := resolveModelName(g.opts)
	meta := initMetadata(modelName)
	meta[model.MetadataKeyAudioBytes] = strconv.Itoa(len(g.payload.Data))
	defer setLatencyMetadata(meta, start)

	log := logging.NewLogger(ctx)
	log.Infof("audio_transcription_request model=%q bytes=%d", modelName, len(g.payload.Data))

	response, err := g.client.recognize(ctx, modelName, g.payload)
	if err != nil {
		log.Errorf("error: %v", err)
		return "", meta, err
	}

	transcript := strings.TrimSpace(response.Text)
	if transcript == "" {
		log.Errorf("error: %v", ErrEmptyTranscript)
		return "", meta, ErrEmptyTranscript
	}
	return transcript, meta, nil
}
