// Package config loads VoxSyn settings from defaults, an optional YAML file,
// a .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Nephrolytics-ai/voxsyn/pkg/capture"
	"github.com/Nephrolytics-ai/voxsyn/pkg/credentials"
	"github.com/Nephrolytics-ai/voxsyn/pkg/llms"
	"github.com/Nephrolytics-ai/voxsyn/pkg/model"
	"github.com/Nephrolytics-ai/voxsyn/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix       = "VOXSYN"
	settingsFileEnv = "SETTINGS_FILE"
	defaultEnvFile  = ".env"
)

type ProviderConfig struct {
	Token string `mapstructure:"token"`
	URL   string `mapstructure:"url"`
	Model string `mapstructure:"model"`
}

type CaptureConfig struct {
	SampleRate      int `mapstructure:"sample_rate"`
	Channels        int `mapstructure:"channels"`
	FramesPerBuffer int `mapstructure:"frames_per_buffer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Provider          string         `mapstructure:"provider"`
	Language          string         `mapstructure:"language"`
	RulesFile         string         `mapstructure:"rules_file"`
	TokenFile         string         `mapstructure:"token_file"`
	TranscribeTimeout time.Duration  `mapstructure:"transcribe_timeout"`
	OpenAI            ProviderConfig `mapstructure:"openai"`
	Gemini            ProviderConfig `mapstructure:"gemini"`
	HuggingFace       ProviderConfig `mapstructure:"huggingface"`
	Capture           CaptureConfig  `mapstructure:"capture"`
	Log               LogConfig      `mapstructure:"log"`
}

type loaderConfig struct {
	configFile string
	envFile    string
}

type LoaderOption func(*loaderConfig)

// WithConfigFile reads a YAML file; a missing explicit file is an error.
func WithConfigFile(path string) LoaderOption {
	return func(lc *loaderConfig) { lc.configFile = path }
}

// WithEnvFile overrides SETTINGS_FILE and ./.env.
func WithEnvFile(path string) LoaderOption {
	return func(lc *loaderConfig) { lc.envFile = path }
}

// Provider-specific variables keep the names the integration settings use.
var envAliases = map[string][]string{
	"openai.token": {"VOXSYN_OPENAI_TOKEN", "OPEN_API_TOKEN"},
	"openai.url":   {"VOXSYN_OPENAI_URL", "OPENAI_BASE_URL"},
	"openai.model": {"VOXSYN_OPENAI_MODEL", "OPENAI_AUDIO_MODEL"},
	"gemini.token": {"VOXSYN_GEMINI_TOKEN", "GEMINI_KEY"},
	"gemini.url":   {"VOXSYN_GEMINI_URL", "GEMINI_BASE_URL"},
	"gemini.model": {"VOXSYN_GEMINI_MODEL", "GEMINI_AUDIO_MODEL"},

	"huggingface.token": {"VOXSYN_HUGGINGFACE_TOKEN", "HF_TOKEN"},
	"huggingface.url":   {"VOXSYN_HUGGINGFACE_URL", "HF_BASE_URL"},
	"huggingface.model": {"VOXSYN_HUGGINGFACE_MODEL", "HF_MODEL"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", llms.ProviderOpenAI)
	v.SetDefault("language", "")
	v.SetDefault("rules_file", "")
	v.SetDefault("token_file", credentials.DefaultTokenPath())
	v.SetDefault("transcribe_timeout", 60*time.Second)
	v.SetDefault("capture.sample_rate", capture.DefaultSampleRate)
	v.SetDefault("capture.channels", capture.DefaultChannels)
	v.SetDefault("capture.frames_per_buffer", capture.DefaultFramesPerBuffer)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	for key := range envAliases {
		v.SetDefault(key, "")
	}
}

func Load(opts ...LoaderOption) (*Config, error) {
	var lc loaderConfig
	for _, opt := range opts {
		opt(&lc)
	}

	if err := loadEnvFile(lc.envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if lc.configFile != "" {
		v.SetConfigFile(lc.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, utils.WrapIfNotNil(err, lc.configFile)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, utils.WrapIfNotNil(err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFile never overrides variables already set in the process.
func loadEnvFile(path string) error {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = strings.TrimSpace(os.Getenv(settingsFileEnv))
		explicit = path != ""
	}
	if path == "" {
		path = defaultEnvFile
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return utils.WrapIfNotNil(err)
	}
	return utils.WrapIfNotNil(godotenv.Load(path), path)
}

// Normalize lower-cases the provider name; an empty name selects OpenAI.
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = llms.ProviderOpenAI
	}
}

func (c *Config) Validate() error {
	if _, err := llms.AudioTranscriptionFactory(c.Provider); err != nil {
		return err
	}
	if c.TranscribeTimeout < 0 {
		return errors.New("transcribe_timeout must not be negative")
	}
	if c.Capture.SampleRate < 0 || c.Capture.Channels < 0 || c.Capture.FramesPerBuffer < 0 {
		return errors.New("capture settings must not be negative")
	}
	return nil
}

// ActiveProvider returns the settings of the selected provider.
func (c *Config) ActiveProvider() ProviderConfig {
	switch c.Provider {
	case llms.ProviderGemini:
		return c.Gemini
	case llms.ProviderHuggingFace:
		return c.HuggingFace
	default:
		return c.OpenAI
	}
}

// TokenPath is TokenFile suffixed with the provider name.
func (c *Config) TokenPath() string {
	if strings.TrimSpace(c.TokenFile) == "" {
		return ""
	}
	return c.TokenFile + "." + c.Provider
}

// AudioOptions builds provider options without the credential, which is
// supplied per recording.
func (c *Config) AudioOptions() model.AudioOptions {
	provider := c.ActiveProvider()
	return model.AudioOptions{
		URL:      strings.TrimSpace(provider.URL),
		Model:    strings.TrimSpace(provider.Model),
		Language: strings.TrimSpace(c.Language),
	}
}

func (c *Config) CaptureConfig() capture.Config {
	return capture.Config{
		SampleRate:      c.Capture.SampleRate,
		Channels:        c.Capture.Channels,
		FramesPerBuffer: c.Capture.FramesPerBuffer,
	}.WithDefaults()
}
