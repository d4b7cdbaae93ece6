package openai

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Nephrolytics-ai/voxsyn/pkg/logging"
	"github.com/Nephrolytics-ai/voxsyn/pkg/model"
	"github.com/Nephrolytics-ai/voxsyn/pkg/utils"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/param"
)

const (
	defaultAudioTranscriptionModelName = "whisper-1"
	defaultAudioFileName               = "audio.wav"
	defaultAudioContentType            = "audio/wav"
)

var ErrEmptyTranscript = errors.New("transcription response is empty")

type audioTranscriptionGenerator struct {
	client  *client
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
		client:  newClient(strings.TrimSpace(opts.URL), strings.TrimSpace(opts.AuthToken)),
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

	logging.NewLogger(ctx).Infof(
		"audio_transcription_request model=%q bytes=%d",
		modelName,
		len(g.payload.Data),
	)

	transcript, response, err := g.client.runAudioTranscription(ctx, g.payload, g.opts)
	if err != nil {
		logging.NewLogger(ctx).Errorf("error: %v", err)
		return "", meta, err
	}

	applyOpenAIAudioTranscriptionMetadata(meta, response)
	if language := strings.TrimSpace(g.opts.Language); language != "" {
		meta[model.MetadataKeyLanguage] = language
	}
	return transcript, meta, nil
}

func (c *client) runAudioTranscription(
	ctx context.Context,
	payload model.AudioPayload,
	opts model.AudioOptions,
) (string, *openai.AudioTranscriptionNewResponseUnion, error) {
	if len(payload.Data) == 0 {
		return "", nil, utils.WrapIfNotNil(errors.New("audio payload is required"))
	}

	fileName, contentType := resolvePayloadFile(payload)
	params := openai.AudioTranscriptionNewParams{
		File:           openai.File(bytes.NewReader(payload.Data), fileName, contentType),
		Model:          openai.AudioModel(resolveAudioTranscriptionModelName(opts)),
		ResponseFormat: openai.AudioResponseFormatJSON,
	}
	prompt, err := buildAudioTranscriptionPrompt(opts)
	if err != nil {
		return "", nil, utils.WrapIfNotNil(err)
	}
	if prompt != "" {
		params.Prompt = param.NewOpt(prompt)
	}
	if language := strings.TrimSpace(opts.Language); language != "" {
		params.Language = param.NewOpt(language)
	}

	response, err := c.apiClient.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", nil, classifyError(err)
	}
	if response == nil {
		return "", nil, utils.WrapIfNotNil(errors.New("audio transcriptions API returned nil response"))
	}

	transcript := strings.TrimSpace(response.Text)
	if transcript == "" {
		return "", response, ErrEmptyTranscript
	}

	return transcript, response, nil
}

func resolvePayloadFile(payload model.AudioPayload) (string, string) {
	fileName := strings.TrimSpace(payload.FileName)
	if fileName == "" {
		fileName = defaultAudioFileName
	}
	contentType := strings.TrimSpace(payload.ContentType)
	if contentType == "" {
		if resolved, err := model.ResolveAudioMIMEType(fileName); err == nil {
			contentType = resolved
		} else {
			contentType = defaultAudioContentType
		}
	}
	return fileName, contentType
}

func buildAudioTranscriptionPrompt(opts model.AudioOptions) (string, error) {
	customPrompt := strings.TrimSpace(opts.Prompt)
	if customPrompt != "" {
		return customPrompt, nil
	}

	return model.CommonMissedWordsPrompt(opts.Keywords)
}

func resolveAudioTranscriptionModelName(opts model.AudioOptions) string {
	modelName := strings.TrimSpace(opts.Model)
	if modelName != "" {
		return modelName
	}

	return defaultAudioTranscriptionModelName
}

func applyOpenAIAudioTranscriptionMetadata(
	meta model.GenerationMetadata,
	response *openai.AudioTranscriptionNewResponseUnion,
) {
	if meta == nil || response == nil {
		return
	}

	// whisper-1 bills by duration and reports no token usage
	if response.Usage.Type != "tokens" {
		return
	}
	meta[model.MetadataKeyInputTokens] = strconv.FormatInt(response.Usage.InputTokens, 10)
	meta[model.MetadataKeyOutputTokens] = strconv.FormatInt(response.Usage.OutputTokens, 10)
	meta[model.MetadataKeyTotalTokens] = strconv.FormatInt(response.Usage.TotalTokens, 10)
}
