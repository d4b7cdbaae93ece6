package dictation

import (
	"context"

	"github.com/Nephrolytics-ai/voxsyn/pkg/model"
	"github.com/Nephrolytics-ai/voxsyn/pkg/utils"
)

// Transcriber submits one assembled recording with the bearer credential.
type Transcriber interface {
	Transcribe(ctx context.Context, payload model.AudioPayload, credential string) (string, model.GenerationMetadata, error)
}

type TranscriberFunc func(ctx context.Context, payload model.AudioPayload, credential string) (string, model.GenerationMetadata, error)

func (f TranscriberFunc) Transcribe(ctx context.Context, payload model.AudioPayload, credential string) (string, model.GenerationMetadata, error) {
	return f(ctx, payload, credential)
}

// ProviderTranscriber adapts a provider factory, building one generator per
// recording with the credential as its auth token.
type ProviderTranscriber struct {
	factory model.NewAudioTranscriptionGeneratorFunc
	opts    model.AudioOptions
}

func NewProviderTranscriber(factory model.NewAudioTranscriptionGeneratorFunc, opts model.AudioOptions) *ProviderTranscriber {
	return &ProviderTranscriber{factory: factory, opts: model.CloneAudioOptions(opts)}
}

func (p *ProviderTranscriber) Transcribe(ctx context.Context, payload model.AudioPayload, credential string) (string, model.GenerationMetadata, error) {
	opts := model.CloneAudioOptions(p.opts)
	opts.AuthToken = credential

	generator, err := p.factory(payload, opts)
	if err != nil {
		return "", nil, utils.WrapIfNotNil(err)
	}
	return generator.Generate(ctx)
}
