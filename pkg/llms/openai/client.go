package openai

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Nephrolytics-ai/voxsyn/pkg/logging"
	"github.com/Nephrolytics-ai/voxsyn/pkg/model"
	"github.com/Nephrolytics-ai/voxsyn/pkg/utils"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const providerName = "openai"

type client struct {
	apiClient openai.Client
}

// newClient builds an API client with SDK retries disabled; a failed
// transcription is reported, never resubmitted.
func newClient(url string, authToken string) *client {
	requestOpts := make([]option.RequestOption, 0, 3)
	if url != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(url))
	}
	if authToken != "" {
		requestOpts = append(requestOpts, option.WithAPIKey(authToken))
	}
	requestOpts = append(requestOpts, option.WithMaxRetries(0))

	return &client{apiClient: openai.NewClient(requestOpts...)}
}

// CheckConnection verifies the endpoint and token by listing models.
func CheckConnection(ctx context.Context, opts model.AudioOptions) error {
	if strings.TrimSpace(opts.AuthToken) == "" {
		return utils.WrapIfNotNil(errors.New("auth token is required"))
	}

	c := newClient(strings.TrimSpace(opts.URL), strings.TrimSpace(opts.AuthToken))
	if _, err := c.apiClient.Models.List(ctx); err != nil {
		logging.NewLogger(ctx).Warnf("connection check failed: %v", err)
		return classifyError(err)
	}
	return nil
}

func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		message := strings.TrimSpace(apiErr.Message)
		if message == "" {
			message = strings.TrimSpace(apiErr.RawJSON())
		}
		if message == "" {
			message = "request failed"
		}
		return model.NewServiceError(providerName, apiErr.StatusCode, message, err)
	}
	if model.IsNetworkError(err) {
		return model.NewNetworkError(providerName, err)
	}
	return err
}

func initMetadata(modelName string) model.GenerationMetadata {
	if strings.TrimSpace(modelName) == "" {
		modelName = "unknown"
	}

	return model.GenerationMetadata{
		model.MetadataKeyProvider: providerName,
		model.MetadataKeyModel:    modelName,
	}
}

func setLatencyMetadata(meta model.GenerationMetadata, start time.Time) {
	if meta == nil {
		return
	}
	meta[model.MetadataKeyLatencyMs] = strconv.FormatInt(time.Since(start).Milliseconds(), 10)
}
