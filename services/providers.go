package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
)

// Provider ids accepted in a company's ai-models config
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderCustom    = "custom"
	ProviderFallback  = "llama"
)

// providerOrder fixes the attempt order for configured providers that are
// not the primary. Iteration must be deterministic.
var providerOrder = []string{ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderCustom}

// ProviderChainService calls configured AI providers in priority order,
// one attempt each, then a keyless hosted fallback. The first reply whose
// envelope yields non-empty text wins.
type ProviderChainService struct {
	client           *http.Client
	fallbackEndpoint string
	fallbackModel    string
}

func NewProviderChainService(config AIConfig) *ProviderChainService {
	timeout := time.Duration(config.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ProviderChainService{
		client:           &http.Client{Timeout: timeout},
		fallbackEndpoint: config.FallbackEndpoint,
		fallbackModel:    config.FallbackModel,
	}
}

// Generate walks the chain and returns the raw reply text plus the id of
// the provider that produced it. ErrAllProvidersFailed is returned only
// after every candidate, including the fallback, has been tried once.
func (s *ProviderChainService) Generate(ctx context.Context, aiModels *models.AIModelsConfig, prompt string) (string, string, error) {
	for _, id := range s.orderedProviders(aiModels) {
		config := aiModels.Configs[id]
		content, err := s.callProvider(ctx, id, config, prompt)
		if err != nil {
			slog.Warn("Provider attempt failed", "provider", id, "error", err)
			continue
		}
		slog.Info("Provider produced reply", "provider", id, "reply_length", len(content))
		return content, id, nil
	}

	content, err := s.callFallback(ctx, prompt)
	if err != nil {
		slog.Error("Fallback provider failed", "endpoint", s.fallbackEndpoint, "error", err)
		return "", "", ErrAllProvidersFailed
	}
	slog.Info("Fallback provider produced reply", "reply_length", len(content))
	return content, ProviderFallback, nil
}

// orderedProviders returns configured provider ids, primary first, the
// rest in fixed order. Providers without an API key are skipped; custom
// additionally needs an endpoint.
func (s *ProviderChainService) orderedProviders(aiModels *models.AIModelsConfig) []string {
	usable := func(id string) bool {
		config, ok := aiModels.Configs[id]
		if !ok || config.APIKey == "" {
			return false
		}
		if id == ProviderCustom && config.Endpoint == "" {
			return false
		}
		return true
	}

	var ordered []string
	if usable(aiModels.Primary) {
		ordered = append(ordered, aiModels.Primary)
	}
	for _, id := range providerOrder {
		if id != aiModels.Primary && usable(id) {
			ordered = append(ordered, id)
		}
	}
	return ordered
}

func (s *ProviderChainService) callProvider(ctx context.Context, id string, config models.ProviderConfig, prompt string) (string, error) {
	switch id {
	case ProviderOpenAI:
		endpoint := config.Endpoint
		if endpoint == "" {
			endpoint = "https://api.openai.com/v1/chat/completions"
		}
		model := config.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		headers := map[string]string{"Authorization": "Bearer " + config.APIKey}
		return s.chatCompletions(ctx, endpoint, model, prompt, headers)

	case ProviderAnthropic:
		return s.callAnthropic(ctx, config, prompt)

	case ProviderGemini:
		return s.callGemini(ctx, config, prompt)

	case ProviderCustom:
		model := config.Model
		headers := map[string]string{}
		if config.APIKey != "" {
			headers["Authorization"] = "Bearer " + config.APIKey
		}
		return s.chatCompletions(ctx, config.Endpoint, model, prompt, headers)

	default:
		return "", fmt.Errorf("%w: unknown provider %s", ErrProviderRequest, id)
	}
}

func (s *ProviderChainService) callFallback(ctx context.Context, prompt string) (string, error) {
	return s.chatCompletions(ctx, s.fallbackEndpoint, s.fallbackModel, prompt, nil)
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// chatCompletions handles every provider that speaks the OpenAI wire
// format: openai itself, custom endpoints and the hosted fallback
func (s *ProviderChainService) chatCompletions(ctx context.Context, endpoint, model, prompt string, headers map[string]string) (string, error) {
	request := chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   2000,
		Temperature: 0.7,
	}

	body, err := s.post(ctx, endpoint, request, headers)
	if err != nil {
		return "", err
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("%w: decode reply: %v", ErrProviderRequest, err)
	}
	if len(response.Choices) == 0 || response.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty reply", ErrProviderRequest)
	}
	return response.Choices[0].Message.Content, nil
}

func (s *ProviderChainService) callAnthropic(ctx context.Context, config models.ProviderConfig, prompt string) (string, error) {
	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = "https://api.anthropic.com/v1/messages"
	}
	model := config.Model
	if model == "" {
		model = "claude-3-sonnet-20240229"
	}

	request := map[string]any{
		"model":      model,
		"messages":   []chatMessage{{Role: "user", Content: prompt}},
		"max_tokens": 2000,
	}
	headers := map[string]string{
		"x-api-key":         config.APIKey,
		"anthropic-version": "2023-06-01",
	}

	body, err := s.post(ctx, endpoint, request, headers)
	if err != nil {
		return "", err
	}

	var response struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("%w: decode reply: %v", ErrProviderRequest, err)
	}
	if len(response.Content) == 0 || response.Content[0].Text == "" {
		return "", fmt.Errorf("%w: empty reply", ErrProviderRequest)
	}
	return response.Content[0].Text, nil
}

func (s *ProviderChainService) callGemini(ctx context.Context, config models.ProviderConfig, prompt string) (string, error) {
	model := config.Model
	if model == "" {
		model = "gemini-pro"
	}
	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent", model)
	}
	endpoint += "?key=" + config.APIKey

	request := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}

	body, err := s.post(ctx, endpoint, request, nil)
	if err != nil {
		return "", err
	}

	var response struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("%w: decode reply: %v", ErrProviderRequest, err)
	}
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty reply", ErrProviderRequest)
	}
	return response.Candidates[0].Content.Parts[0].Text, nil
}

func (s *ProviderChainService) post(ctx context.Context, endpoint string, payload any, headers map[string]string) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read reply: %v", ErrProviderRequest, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d - %s", ErrProviderRequest, resp.StatusCode, string(body))
	}
	return body, nil
}
