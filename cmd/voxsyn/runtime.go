package main

import (
	"strings"

	"github.com/Nephrolytics-ai/voxsyn/pkg/config"
	"github.com/Nephrolytics-ai/voxsyn/pkg/correction"
	"github.com/Nephrolytics-ai/voxsyn/pkg/credentials"
	"github.com/Nephrolytics-ai/voxsyn/pkg/dictation"
	"github.com/Nephrolytics-ai/voxsyn/pkg/llms"
)

func loadRules(cfg *config.Config) (*correction.RuleSet, error) {
	if strings.TrimSpace(cfg.RulesFile) == "" {
		return correction.DefaultMedicalRules(), nil
	}
	return correction.LoadFile(cfg.RulesFile)
}

// credentialStore prefers a token from configuration; otherwise the token
// file backs the cache and receives prompted tokens.
func credentialStore(cfg *config.Config) *credentials.Cache {
	if token := strings.TrimSpace(cfg.ActiveProvider().Token); token != "" {
		return credentials.NewCache(credentials.Static(token))
	}
	return credentials.NewCache(credentials.NewFileStore(cfg.TokenPath()))
}

func newTranscriber(cfg *config.Config, rules *correction.RuleSet) (*dictation.ProviderTranscriber, error) {
	factory, err := llms.AudioTranscriptionFactory(cfg.Provider)
	if err != nil {
		return nil, err
	}
	opts := cfg.AudioOptions()
	opts.Keywords = rules.Keywords()
	return dictation.NewProviderTranscriber(factory, opts), nil
}
