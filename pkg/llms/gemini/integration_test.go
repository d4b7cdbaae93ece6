package gemini

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Nephrolytics-ai/voxsyn/pkg/model"
	"github.com/Nephrolytics-ai/voxsyn/pkg/testutil"
	"github.com/stretchr/testify/suite"
)

type GeminiAudioIntegrationSuite struct {
	testutil.ExternalDependenciesSuite
	opts model.AudioOptions
}

func TestGeminiAudioIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(GeminiAudioIntegrationSuite))
}

func (s *GeminiAudioIntegrationSuite) SetupSuite() {
	s.ExternalDependenciesSuite.SetupSuite()

	s.opts = model.AudioOptions{
		AuthToken: s.RequireEnv("GEMINI_KEY"),
		URL:       strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")),
		Model:     strings.TrimSpace(os.Getenv("GEMINI_AUDIO_MODEL")),
		Keywords: []model.AudioKeyword{
			{Word: "CABG", CommonMistypes: []string{"cabbage"}},
		},
	}
}

func (s *GeminiAudioIntegrationSuite) TestTranscribeFixture() {
	path := s.AudioFixture()
	data, err := os.ReadFile(path)
	s.Require().NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
	defer cancel()

	generator, err := NewAudioTranscriptionGenerator(
		model.AudioPayload{Data: data, FileName: filepath.Base(path)},
		s.opts,
	)
	s.Require().NoError(err)

	transcript, metadata, err := generator.Generate(ctx)
	s.Require().NoError(err)
	s.NotEmpty(strings.TrimSpace(transcript))
	s.Equal(providerName, metadata[model.MetadataKeyProvider])
	s.NotEmpty(metadata[model.MetadataKeyLatencyMs])
}
