package gemini

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Nephrolytics-ai/voxsyn/pkg/logging"
	"github.com/Nephrolytics-ai/voxsyn/pkg/model"
	"github.com/Nephrolytics-ai/voxsyn/pkg/utils"
	"google.golang.org/genai"
)

const baseAudioPrompt = "Transcribe this audio accurately. Return only the transcript text."

var ErrEmptyTranscript = errors.New("transcription response is empty")

type audioTranscriptionGenerator struct {
	payload model.AudioPayload
	opts    model.AudioOptions
}

func NewAudioTranscriptionGenerator(
	payload model.AudioPayload,
	opts model.AudioOptions,
) (model.AudioTranscriptionGenerator, error) {
	if len(payload.Data) == 0 {
		return nil, utils.WrapIfNotNil(errors.New("audio payload is required"))
	}

	return &audioTranscriptionGenerator{
		payload: payload,
		opts:    model.CloneAudioOptions(opts),
	}, nil
}

func (g *audioTranscriptionGenerator) Generate(ctx context.Context) (string, model.GenerationMetadata, error) {
	start := time.Now()
	modelName := resolveAudioTranscriptionModelName(g.opts)
	meta := initMetadata(modelName)
	meta[model.MetadataKeyAudioBytes] = strconv.Itoa(len(g.payload.Data))
	defer setLatencyMetadata(meta, start)

	log := logging.NewLogger(ctx)
	mimeType, err := resolvePayloadMIMEType(g.payload)
	if err != nil {
		log.Errorf("error: %v", err)
		return "", meta, utils.WrapIfNotNil(err)
	}

	client, err := newAPIClient(ctx, g.opts.URL, g.opts.AuthToken)
	if err != nil {
		log.Errorf("error: %v", err)
		return "", meta, utils.WrapIfNotNil(err)
	}

	prompt, err := buildAudioTranscriptionPrompt(g.opts)
	if err != nil {
		log.Errorf("error: %v", err)
		return "", meta, utils.WrapIfNotNil(err)
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(
			[]*genai.Part{
				genai.NewPartFromText(prompt),
				genai.NewPartFromBytes(g.payload.Data, mimeType),
			},
			genai.RoleUser,
		),
	}

	log.Infof("audio_transcription_request model=%q bytes=%d", modelName, len(g.payload.Data))
	response, err := client.Models.GenerateContent(ctx, modelName, contents, &genai.GenerateContentConfig{})
	if err != nil {
		log.Errorf("error: %v", err)
		return "", meta, classifyError(err)
	}

	transcript := strings.TrimSpace(response.Text())
	if transcript == "" {
		log.Errorf("error: %v", ErrEmptyTranscript)
		return "", meta, ErrEmptyTranscript
	}

	applyAudioTranscriptionMetadata(meta, response)
	if language := strings.TrimSpace(g.opts.Language); language != "" {
		meta[model.MetadataKeyLanguage] = language
	}
	return transcript, meta, nil
}

func resolveAudioTranscriptionModelName(opts model.AudioOptions) string {
	if modelName := strings.TrimSpace(opts.Model); modelName != "" {
		return modelName
	}
	return defaultGenerationModelName
}

func resolvePayloadMIMEType(payload model.AudioPayload) (string, error) {
	if contentType := strings.TrimSpace(payload.ContentType); contentType != "" {
		return contentType, nil
	}
	return model.ResolveAudioMIMEType(payload.FileName)
}

func buildAudioTranscriptionPrompt(opts model.AudioOptions) (string, error) {
	if customPrompt := strings.TrimSpace(opts.Prompt); customPrompt != "" {
		return customPrompt, nil
	}

	prompt := baseAudioPrompt
	if language := strings.TrimSpace(opts.Language); language != "" {
		prompt += " The speech is in language " + strconv.Quote(language) + "."
	}
	words, err := model.CommonMissedWordsPrompt(opts.Keywords)
	if err != nil {
		return "", err
	}
	if words != "" {
		prompt += " " + words
	}
	return prompt, nil
}

func applyAudioTranscriptionMetadata(meta model.GenerationMetadata, response *genai.GenerateContentResponse) {
	if meta == nil || response == nil {
		return
	}

	if strings.TrimSpace(response.ResponseID) != "" {
		meta[model.MetadataKeyResponseID] = response.ResponseID
	}
	if len(response.Candidates) > 0 && response.Candidates[0] != nil {
		meta[model.MetadataKeyResponseStatus] = string(response.Candidates[0].FinishReason)
	}
	if response.UsageMetadata == nil {
		return
	}
	meta[model.MetadataKeyInputTokens] = strconv.Itoa(int(response.UsageMetadata.PromptTokenCount))
	meta[model.MetadataKeyOutputTokens] = strconv.Itoa(int(response.UsageMetadata.CandidatesTokenCount))
	meta[model.MetadataKeyTotalTokens] = strconv.Itoa(int(response.UsageMetadata.TotalTokenCount))
}
