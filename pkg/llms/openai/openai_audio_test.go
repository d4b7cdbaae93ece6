package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Nephrolytics-ai/voxsyn/pkg/model"
	openai "github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/suite"
)

type AudioTranscriptionGeneratorSuite struct {
	suite.Suite
	ctx      context.Context
	payload  model.AudioPayload
	requests atomic.Int32
}

func TestAudioTranscriptionGeneratorSuite(t *testing.T) {
	suite.Run(t, new(AudioTranscriptionGeneratorSuite))
}

func (s *AudioTranscriptionGeneratorSuite) SetupTest() {
	s.ctx = context.Background()
	s.payload = model.AudioPayload{
		Data:        []byte("RIFF....WAVEfmt fake audio"),
		ContentType: "audio/wav",
		FileName:    "audio.wav",
	}
	s.requests.Store(0)
}

// server captures the multipart form of each transcription request.
func (s *AudioTranscriptionGeneratorSuite) server(status int, body string, form chan<- map[string]string) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		if r.URL.Path == "/audio/transcriptions" && form != nil {
			if err := r.ParseMultipartForm(1 << 20); err == nil {
				fields := map[string]string{"authorization": r.Header.Get("Authorization")}
				for key, values := range r.MultipartForm.Value {
					fields[key] = values[0]
				}
				if files := r.MultipartForm.File["file"]; len(files) > 0 {
					fields["file_name"] = files[0].Filename
					fields["file_type"] = files[0].Header.Get("Content-Type")
					f, err := files[0].Open()
					if err == nil {
						data, _ := io.ReadAll(f)
						_ = f.Close()
						fields["file_data"] = string(data)
					}
				}
				form <- fields
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	s.T().Cleanup(server.Close)
	return server
}

func (s *AudioTranscriptionGeneratorSuite) TestNewAudioTranscriptionGeneratorEmptyPayloadReturnsError() {
	generator, err := NewAudioTranscriptionGenerator(model.AudioPayload{}, model.AudioOptions{})

	s.Require().Error(err)
	s.Nil(generator)
}

func (s *AudioTranscriptionGeneratorSuite) TestGenerateSendsMultipartPayload() {
	form := make(chan map[string]string, 1)
	server := s.server(http.StatusOK, `{"text":"  patient had cabbage  "}`, form)

	generator, err := NewAudioTranscriptionGenerator(s.payload, model.AudioOptions{
		URL:       server.URL + "/",
		AuthToken: "sk-test",
		Language:  "en",
		Keywords: []model.AudioKeyword{
			{Word: "CABG", CommonMistypes: []string{"cabbage"}},
		},
	})
	s.Require().NoError(err)

	text, meta, err := generator.Generate(s.ctx)
	s.Require().NoError(err)
	s.Equal("patient had cabbage", text)

	fields := <-form
	s.Equal("Bearer sk-test", fields["authorization"])
	s.Equal(defaultAudioTranscriptionModelName, fields["model"])
	s.Equal("json", fields["response_format"])
	s.Equal("en", fields["language"])
	s.Equal(`Common missed words: [{"word":"CABG","common_mistypes":["cabbage"]}]`, fields["prompt"])
	s.Equal("audio.wav", fields["file_name"])
	s.Equal("audio/wav", fields["file_type"])
	s.Equal(string(s.payload.Data), fields["file_data"])

	s.Equal(providerName, meta[model.MetadataKeyProvider])
	s.Equal(defaultAudioTranscriptionModelName, meta[model.MetadataKeyModel])
	s.Equal("26", meta[model.MetadataKeyAudioBytes])
	s.Equal("en", meta[model.MetadataKeyLanguage])
	s.NotEmpty(meta[model.MetadataKeyLatencyMs])
}

func (s *AudioTranscriptionGeneratorSuite) TestGenerateClientErrorIsNotRetried() {
	server := s.server(http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`, nil)

	generator, err := NewAudioTranscriptionGenerator(s.payload, model.AudioOptions{
		URL:       server.URL + "/",
		AuthToken: "sk-bad",
	})
	s.Require().NoError(err)

	_, _, err = generator.Generate(s.ctx)
	s.Require().Error(err)

	var serviceErr *model.ServiceError
	s.Require().True(errors.As(err, &serviceErr))
	s.Equal(model.ServiceErrorKindClient, serviceErr.Kind)
	s.Equal(http.StatusUnauthorized, serviceErr.StatusCode)
	s.Contains(serviceErr.Message, "Incorrect API key")
	s.EqualValues(1, s.requests.Load())
}

func (s *AudioTranscriptionGeneratorSuite) TestGenerateServerErrorIsNotRetried() {
	server := s.server(http.StatusServiceUnavailable, `{"error":{"message":"overloaded"}}`, nil)

	generator, err := NewAudioTranscriptionGenerator(s.payload, model.AudioOptions{
		URL:       server.URL + "/",
		AuthToken: "sk-test",
	})
	s.Require().NoError(err)

	_, _, err = generator.Generate(s.ctx)

	var serviceErr *model.ServiceError
	s.Require().True(errors.As(err, &serviceErr))
	s.Equal(model.ServiceErrorKindService, serviceErr.Kind)
	s.EqualValues(1, s.requests.Load())
}

func (s *AudioTranscriptionGeneratorSuite) TestGenerateNetworkError() {
	server := s.server(http.StatusOK, `{}`, nil)
	url := server.URL + "/"
	server.Close()

	generator, err := NewAudioTranscriptionGenerator(s.payload, model.AudioOptions{URL: url, AuthToken: "sk-test"})
	s.Require().NoError(err)

	_, _, err = generator.Generate(s.ctx)

	var serviceErr *model.ServiceError
	s.Require().True(errors.As(err, &serviceErr))
	s.Equal(model.ServiceErrorKindNetwork, serviceErr.Kind)
}

func (s *AudioTranscriptionGeneratorSuite) TestGenerateEmptyTranscript() {
	server := s.server(http.StatusOK, `{"text":"   "}`, nil)

	generator, err := NewAudioTranscriptionGenerator(s.payload, model.AudioOptions{URL: server.URL + "/", AuthToken: "sk-test"})
	s.Require().NoError(err)

	_, _, err = generator.Generate(s.ctx)
	s.ErrorIs(err, ErrEmptyTranscript)
}

func (s *AudioTranscriptionGeneratorSuite) TestCheckConnection() {
	server := s.server(http.StatusOK, `{"object":"list","data":[{"id":"whisper-1","object":"model","created":1,"owned_by":"openai"}]}`, nil)

	s.NoError(CheckConnection(s.ctx, model.AudioOptions{URL: server.URL + "/", AuthToken: "sk-test"}))
}

func (s *AudioTranscriptionGeneratorSuite) TestCheckConnectionRejectedToken() {
	server := s.server(http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, nil)

	err := CheckConnection(s.ctx, model.AudioOptions{URL: server.URL + "/", AuthToken: "sk-bad"})

	var serviceErr *model.ServiceError
	s.Require().True(errors.As(err, &serviceErr))
	s.Equal(model.ServiceErrorKindClient, serviceErr.Kind)
}

func (s *AudioTranscriptionGeneratorSuite) TestCheckConnectionRequiresToken() {
	s.Error(CheckConnection(s.ctx, model.AudioOptions{}))
}

func (s *AudioTranscriptionGeneratorSuite) TestResolveAudioTranscriptionModelNameUsesDefault() {
	modelName := resolveAudioTranscriptionModelName(model.AudioOptions{})
	s.Equal(defaultAudioTranscriptionModelName, modelName)
}

func (s *AudioTranscriptionGeneratorSuite) TestResolveAudioTranscriptionModelNameUsesConfigValue() {
	resolved := resolveAudioTranscriptionModelName(model.AudioOptions{
		Model: string(openai.AudioModelGPT4oMiniTranscribe),
	})
	s.Equal(string(openai.AudioModelGPT4oMiniTranscribe), resolved)
}

func (s *AudioTranscriptionGeneratorSuite) TestResolvePayloadFileDefaults() {
	name, contentType := resolvePayloadFile(model.AudioPayload{Data: []byte{1}})
	s.Equal("audio.wav", name)
	s.Equal("audio/wav", contentType)

	name, contentType = resolvePayloadFile(model.AudioPayload{Data: []byte{1}, FileName: "note.webm"})
	s.Equal("note.webm", name)
	s.Equal("audio/webm", contentType)
}

func (s *AudioTranscriptionGeneratorSuite) TestBuildAudioTranscriptionPromptUsesCustomPrompt() {
	prompt, err := buildAudioTranscriptionPrompt(model.AudioOptions{
		Prompt: "Use this exact audio prompt.",
		Keywords: []model.AudioKeyword{
			{Word: "should-not-appear"},
		},
	})
	s.Require().NoError(err)
	s.Equal("Use this exact audio prompt.", prompt)
}

func (s *AudioTranscriptionGeneratorSuite) TestBuildAudioTranscriptionPromptSkipsEmptyKeywords() {
	prompt, err := buildAudioTranscriptionPrompt(model.AudioOptions{
		Keywords: []model.AudioKeyword{{}, {Word: " AFib ", CommonMistypes: []string{" ", "a fib"}}},
	})
	s.Require().NoError(err)

	payload := strings.TrimPrefix(prompt, "Common missed words: ")
	var parsed []model.AudioKeyword
	s.Require().NoError(json.Unmarshal([]byte(payload), &parsed))
	s.Require().Len(parsed, 1)
	s.Equal("AFib", parsed[0].Word)
	s.Equal([]string{"a fib"}, parsed[0].CommonMistypes)
}

func (s *AudioTranscriptionGeneratorSuite) TestApplyOpenAIAudioTranscriptionMetadataUsesTokenUsage() {
	meta := model.GenerationMetadata{}
	response := &openai.AudioTranscriptionNewResponseUnion{
		Usage: openai.AudioTranscriptionNewResponseUnionUsage{
			InputTokens:  10,
			OutputTokens: 5,
			TotalTokens:  15,
			Type:         "tokens",
		},
	}

	applyOpenAIAudioTranscriptionMetadata(meta, response)

	s.Equal("10", meta[model.MetadataKeyInputTokens])
	s.Equal("5", meta[model.MetadataKeyOutputTokens])
	s.Equal("15", meta[model.MetadataKeyTotalTokens])
}

func (s *AudioTranscriptionGeneratorSuite) TestApplyOpenAIAudioTranscriptionMetadataSkipsDurationUsage() {
	meta := model.GenerationMetadata{}
	applyOpenAIAudioTranscriptionMetadata(meta, &openai.AudioTranscriptionNewResponseUnion{
		Usage: openai.AudioTranscriptionNewResponseUnionUsage{Type: "duration"},
	})
	s.Empty(meta)
}
