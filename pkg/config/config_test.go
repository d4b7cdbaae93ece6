package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Nephrolytics-ai/voxsyn/pkg/capture"
	"github.com/stretchr/testify/suite"
)

var managedEnv = []string{
	"SETTINGS_FILE",
	"OPEN_API_TOKEN", "OPENAI_BASE_URL", "OPENAI_AUDIO_MODEL",
	"GEMINI_KEY", "GEMINI_BASE_URL", "GEMINI_AUDIO_MODEL",
	"HF_TOKEN", "HF_BASE_URL", "HF_MODEL",
	"VOXSYN_PROVIDER", "VOXSYN_LANGUAGE", "VOXSYN_OPENAI_TOKEN", "VOXSYN_TRANSCRIBE_TIMEOUT",
	"VOXSYN_CAPTURE_SAMPLE_RATE", "VOXSYN_LOG_LEVEL",
}

type ConfigSuite struct {
	suite.Suite
	dir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) SetupTest() {
	s.dir = s.T().TempDir()
	// Setenv restores the original value on cleanup; unsetting lets .env files apply.
	for _, name := range managedEnv {
		s.T().Setenv(name, "")
		s.Require().NoError(os.Unsetenv(name))
	}
}

func (s *ConfigSuite) write(name string, content string) string {
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (s *ConfigSuite) TestDefaults() {
	cfg, err := Load()
	s.Require().NoError(err)

	s.Equal("openai", cfg.Provider)
	s.Equal(60*time.Second, cfg.TranscribeTimeout)
	s.Equal(capture.DefaultConfig(), cfg.CaptureConfig())
	s.Equal("info", cfg.Log.Level)
	s.Equal("text", cfg.Log.Format)
	s.NotEmpty(cfg.TokenFile)
	s.Empty(cfg.OpenAI.Token)
}

func (s *ConfigSuite) TestEnvFileUsesIntegrationNames() {
	envFile := s.write("settings.env", "OPEN_API_TOKEN=sk-file\nOPENAI_AUDIO_MODEL=gpt-4o-mini-transcribe\nGEMINI_KEY=g-file\n")

	cfg, err := Load(WithEnvFile(envFile))
	s.Require().NoError(err)

	s.Equal("sk-file", cfg.OpenAI.Token)
	s.Equal("gpt-4o-mini-transcribe", cfg.OpenAI.Model)
	s.Equal("g-file", cfg.Gemini.Token)
	s.Equal("gpt-4o-mini-transcribe", cfg.AudioOptions().Model)
	s.Empty(cfg.AudioOptions().AuthToken)
}

func (s *ConfigSuite) TestSettingsFileVariable() {
	envFile := s.write("custom.env", "OPENAI_BASE_URL=http://localhost:9999/v1/\n")
	s.T().Setenv("SETTINGS_FILE", envFile)

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal("http://localhost:9999/v1/", cfg.AudioOptions().URL)
}

func (s *ConfigSuite) TestProcessEnvWinsOverEnvFile() {
	envFile := s.write("settings.env", "OPEN_API_TOKEN=sk-file\n")
	s.T().Setenv("OPEN_API_TOKEN", "sk-process")

	cfg, err := Load(WithEnvFile(envFile))
	s.Require().NoError(err)
	s.Equal("sk-process", cfg.OpenAI.Token)
}

func (s *ConfigSuite) TestPrefixedVariableWinsOverAlias() {
	s.T().Setenv("OPEN_API_TOKEN", "sk-alias")
	s.T().Setenv("VOXSYN_OPENAI_TOKEN", "sk-prefixed")

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal("sk-prefixed", cfg.OpenAI.Token)
}

func (s *ConfigSuite) TestYAMLFileWithEnvOverride() {
	configFile := s.write("voxsyn.yaml", `
provider: gemini
language: de
rules_file: /etc/voxsyn/rules.yaml
transcribe_timeout: 5s
gemini:
  model: gemini-2.0-flash
capture:
  sample_rate: 8000
log:
  level: debug
  format: json
`)
	s.T().Setenv("VOXSYN_LANGUAGE", "en")

	cfg, err := Load(WithConfigFile(configFile))
	s.Require().NoError(err)

	s.Equal("gemini", cfg.Provider)
	s.Equal("en", cfg.Language)
	s.Equal("/etc/voxsyn/rules.yaml", cfg.RulesFile)
	s.Equal(5*time.Second, cfg.TranscribeTimeout)
	s.Equal("gemini-2.0-flash", cfg.ActiveProvider().Model)
	s.Equal(8000, cfg.CaptureConfig().SampleRate)
	s.Equal(capture.DefaultChannels, cfg.CaptureConfig().Channels)
	s.Equal("debug", cfg.Log.Level)
	s.Equal("json", cfg.Log.Format)
	s.Equal("en", cfg.AudioOptions().Language)
}

func (s *ConfigSuite) TestHuggingFaceProviderSelected() {
	s.T().Setenv("VOXSYN_PROVIDER", "huggingface")
	s.T().Setenv("HF_TOKEN", "hf_env")
	s.T().Setenv("HF_MODEL", "distil-whisper/distil-large-v3")

	cfg, err := Load()
	s.Require().NoError(err)

	s.Equal("hf_env", cfg.ActiveProvider().Token)
	s.Equal("distil-whisper/distil-large-v3", cfg.AudioOptions().Model)
}

func (s *ConfigSuite) TestProviderNameNormalized() {
	s.T().Setenv("VOXSYN_PROVIDER", " Gemini ")
	s.T().Setenv("GEMINI_KEY", "g-env")

	cfg, err := Load()
	s.Require().NoError(err)

	s.Equal("gemini", cfg.Provider)
	s.Equal("g-env", cfg.ActiveProvider().Token)

	cfg.Provider = ""
	cfg.Normalize()
	s.Equal("openai", cfg.Provider)
}

func (s *ConfigSuite) TestTokenPathIsPerProvider() {
	cfg := &Config{TokenFile: filepath.Join(s.dir, "token"), Provider: "openai"}
	s.Equal(filepath.Join(s.dir, "token.openai"), cfg.TokenPath())

	cfg.Provider = "huggingface"
	s.Equal(filepath.Join(s.dir, "token.huggingface"), cfg.TokenPath())

	cfg.TokenFile = ""
	s.Empty(cfg.TokenPath())
}

func (s *ConfigSuite) TestUnknownProviderRejected() {
	s.T().Setenv("VOXSYN_PROVIDER", "bedrock")

	_, err := Load()
	s.Require().Error(err)
	s.Contains(err.Error(), "unknown transcription provider")
}

func (s *ConfigSuite) TestMissingExplicitFilesFail() {
	_, err := Load(WithConfigFile(filepath.Join(s.dir, "missing.yaml")))
	s.Error(err)

	_, err = Load(WithEnvFile(filepath.Join(s.dir, "missing.env")))
	s.Error(err)
}

func (s *ConfigSuite) TestNegativeTimeoutRejected() {
	s.T().Setenv("VOXSYN_TRANSCRIBE_TIMEOUT", "-1s")

	_, err := Load()
	s.Error(err)
}
