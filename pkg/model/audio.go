package model

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"path/filepath"
	"strings"
)

// NewAudioTranscriptionGeneratorFunc is the factory each transcription provider implements.
type NewAudioTranscriptionGeneratorFunc func(payload AudioPayload, opts AudioOptions) (AudioTranscriptionGenerator, error)

type AudioTranscriptionGenerator interface {
	Generate(ctx context.Context) (string, GenerationMetadata, error)
}

// AudioPayload is a single assembled recording in a fixed container.
type AudioPayload struct {
	Data        []byte
	ContentType string
	FileName    string
}

type AudioKeyword struct {
	Word           string   `json:"word,omitempty"`
	CommonMistypes []string `json:"common_mistypes,omitempty"`
	Definition     string   `json:"definition,omitempty"`
}

type AudioOptions struct {
	URL       string
	AuthToken string
	Model     string
	// Language is an optional ISO-639-1 hint such as "en".
	Language string
	// Prompt optionally overrides the provider's default audio prompt behavior.
	// When Prompt is set, keyword hints are not appended.
	Prompt string
	// Keywords provides domain terms that may be missed in transcription.
	// Providers convert this into "Common missed words: <json>" when Prompt is empty.
	Keywords []AudioKeyword
}

func CloneAudioOptions(opts AudioOptions) AudioOptions {
	cloned := opts
	if len(opts.Keywords) == 0 {
		cloned.Keywords = nil
		return cloned
	}

	cloned.Keywords = make([]AudioKeyword, len(opts.Keywords))
	for i, keyword := range opts.Keywords {
		clonedKeyword := keyword
		if len(keyword.CommonMistypes) > 0 {
			clonedKeyword.CommonMistypes = append([]string(nil), keyword.CommonMistypes...)
		} else {
			clonedKeyword.CommonMistypes = nil
		}
		cloned.Keywords[i] = clonedKeyword
	}

	return cloned
}

// CommonMissedWordsPrompt renders keyword hints as a transcription prompt.
// It returns an empty string when no keyword carries any content.
func CommonMissedWordsPrompt(keywords []AudioKeyword) (string, error) {
	normalizedKeywords := NormalizeAudioKeywords(keywords)
	if len(normalizedKeywords) == 0 {
		return "", nil
	}

	keywordsJSON, err := json.Marshal(normalizedKeywords)
	if err != nil {
		return "", err
	}

	return "Common missed words: " + string(keywordsJSON), nil
}

func NormalizeAudioKeywords(keywords []AudioKeyword) []AudioKeyword {
	if len(keywords) == 0 {
		return nil
	}

	normalized := make([]AudioKeyword, 0, len(keywords))
	for _, keyword := range keywords {
		word := strings.TrimSpace(keyword.Word)
		definition := strings.TrimSpace(keyword.Definition)
		commonMistypes := make([]string, 0, len(keyword.CommonMistypes))
		for _, candidate := range keyword.CommonMistypes {
			candidate = strings.TrimSpace(candidate)
			if candidate == "" {
				continue
			}
			commonMistypes = append(commonMistypes, candidate)
		}

		if word == "" && definition == "" && len(commonMistypes) == 0 {
			continue
		}

		normalized = append(normalized, AudioKeyword{
			Word:           word,
			CommonMistypes: commonMistypes,
			Definition:     definition,
		})
	}

	if len(normalized) == 0 {
		return nil
	}

	return normalized
}

// ResolveAudioMIMEType maps an audio file name to its MIME type.
func ResolveAudioMIMEType(fileName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(fileName)))
	if ext == "" {
		return "", errors.New("audio file extension is required to determine mime type")
	}

	switch ext {
	case ".wav":
		return "audio/wav", nil
	case ".mp3":
		return "audio/mpeg", nil
	case ".m4a", ".mp4":
		return "audio/mp4", nil
	case ".webm":
		return "audio/webm", nil
	case ".ogg", ".oga":
		return "audio/ogg", nil
	case ".flac":
		return "audio/flac", nil
	case ".aac":
		return "audio/aac", nil
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return "", errors.New("unsupported audio file extension: " + ext)
	}

	// Strip parameters such as "; charset=utf-8".
	mimeType = strings.TrimSpace(strings.Split(mimeType, ";")[0])
	if !strings.HasPrefix(mimeType, "audio/") {
		return "", errors.New("unsupported audio mime type: " + mimeType)
	}
	return mimeType, nil
}
