// Package llms resolves transcription providers by name.
package llms

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Nephrolytics-ai/voxsyn/pkg/llms/gemini"
	"github.com/Nephrolytics-ai/voxsyn/pkg/llms/huggingface"
	"github.com/Nephrolytics-ai/voxsyn/pkg/llms/openai"
	"github.com/Nephrolytics-ai/voxsyn/pkg/model"
)

const (
	ProviderOpenAI      = "openai"
	ProviderGemini      = "gemini"
	ProviderHuggingFace = "huggingface"
)

var audioTranscriptionFactories = map[string]model.NewAudioTranscriptionGeneratorFunc{
	ProviderOpenAI:      openai.NewAudioTranscriptionGenerator,
	ProviderGemini:      gemini.NewAudioTranscriptionGenerator,
	ProviderHuggingFace: huggingface.NewAudioTranscriptionGenerator,
}

// AudioTranscriptionFactory returns the generator factory for a provider name.
// An empty name selects OpenAI.
func AudioTranscriptionFactory(name string) (model.NewAudioTranscriptionGeneratorFunc, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = ProviderOpenAI
	}
	factory, ok := audioTranscriptionFactories[key]
	if !ok {
		return nil, fmt.Errorf("unknown transcription provider %q (known: %s)", name, strings.Join(Providers(), ", "))
	}
	return factory, nil
}

func Providers() []string {
	names := make([]string, 0, len(audioTranscriptionFactories))
	for name := range audioTranscriptionFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
