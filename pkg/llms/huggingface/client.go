package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Nephrolytics-ai/voxsyn/pkg/model"
	"github.com/Nephrolytics-ai/voxsyn/pkg/utils"
)

const (
	providerName       = "huggingface"
	defaultModelName   = "openai/whisper-large-v3"
	defaultBaseURL     = "https://router.huggingface.co/hf-inference"
	defaultHTTPTimeout = 90 * time.Second
	envHFToken         = "HF_TOKEN"
	envHFBaseURL       = "HF_BASE_URL"
	envHFModel         = "HF_MODEL"
)

type apiClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type recognitionResponse struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error any `json:"error"`
}

func newAPIClient(baseURL string, authToken string) (*apiClient, error) {
	apiKey := strings.TrimSpace(authToken)
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv(envHFToken))
	}
	if apiKey == "" {
		return nil, utils.WrapIfNotNil(errors.New("auth token is required (set HF_TOKEN)"))
	}

	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = strings.TrimSpace(os.Getenv(envHFBaseURL))
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &apiClient{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}, nil
}

// recognize posts the raw audio to the automatic-speech-recognition task.
func (c *apiClient) recognize(ctx context.Context, modelName string, payload model.AudioPayload) (*recognitionResponse, error) {
	endpoint := c.baseURL + "/models/" + escapeModelPath(modelName)
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload.Data))
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	httpRequest.Header.Set("Content-Type", payload.ContentType)
	httpRequest.Header.Set("Accept", "application/json")
	httpRequest.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, model.NewNetworkError(providerName, err)
	}
	defer httpResponse.Body.Close()

	responseBits, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, model.NewNetworkError(providerName, err)
	}

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode >= 300 {
		return nil, model.NewServiceError(providerName, httpResponse.StatusCode, errorMessage(responseBits), nil)
	}

	response := recognitionResponse{}
	if err := json.Unmarshal(responseBits, &response); err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return &response, nil
}

func errorMessage(body []byte) string {
	message := strings.TrimSpace(string(body))
	apiErr := errorResponse{}
	if json.Unmarshal(body, &apiErr) == nil {
		switch v := apiErr.Error.(type) {
		case string:
			message = strings.TrimSpace(v)
		case map[string]any:
			if m, ok := v["message"].(string); ok && strings.TrimSpace(m) != "" {
				message = strings.TrimSpace(m)
			}
		}
	}
	if message == "" {
		message = "unknown huggingface error"
	}
	return message
}

// escapeModelPath keeps the owner/name separator of hub model ids.
func escapeModelPath(modelName string) string {
	parts := strings.Split(modelName, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

func resolveModelName(opts model.AudioOptions) string {
	if name := strings.TrimSpace(opts.Model); name != "" {
		return name
	}
	if fromEnv := strings.TrimSpace(os.Getenv(envHFModel)); fromEnv != "" {
		return fromEnv
	}
	return defaultModelName
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
