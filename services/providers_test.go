package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
)

func chainService(fallbackEndpoint string) *ProviderChainService {
	return NewProviderChainService(AIConfig{
		FallbackEndpoint: fallbackEndpoint,
		FallbackModel:    "llama3.2:1b",
		TimeoutSeconds:   5,
	})
}

func openAIReply(content string) string {
	return `{"choices": [{"message": {"content": ` + mustJSON(content) + `}}]}`
}

func mustJSON(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

func TestProviderChainPrimaryFirst(t *testing.T) {
	var order []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, r.URL.Path)
		if r.URL.Path == "/primary" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(openAIReply("from secondary")))
	}))
	defer server.Close()

	aiModels := &models.AIModelsConfig{
		Primary: ProviderCustom,
		Configs: map[string]models.ProviderConfig{
			ProviderCustom: {APIKey: "key", Endpoint: server.URL + "/primary"},
			ProviderOpenAI: {APIKey: "key", Endpoint: server.URL + "/secondary"},
		},
	}

	content, providerID, err := chainService(server.URL + "/fallback").Generate(context.Background(), aiModels, "prompt")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if content != "from secondary" {
		t.Errorf("content = %q", content)
	}
	if providerID != ProviderOpenAI {
		t.Errorf("providerID = %s, expected %s", providerID, ProviderOpenAI)
	}
	if len(order) != 2 || order[0] != "/primary" || order[1] != "/secondary" {
		t.Errorf("call order = %v, expected primary then secondary", order)
	}
}

func TestProviderChainSingleAttemptEach(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	aiModels := &models.AIModelsConfig{
		Primary: ProviderOpenAI,
		Configs: map[string]models.ProviderConfig{
			ProviderOpenAI: {APIKey: "key", Endpoint: server.URL},
		},
	}

	_, _, err := chainService(server.URL).Generate(context.Background(), aiModels, "prompt")
	if !errors.Is(err, ErrAllProvidersFailed) {
		t.Fatalf("Generate returned %v, expected ErrAllProvidersFailed", err)
	}
	// One attempt for openai, one for the fallback
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("server saw %d calls, expected 2", got)
	}
}

func TestProviderChainKeylessFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("fallback request must carry no credentials")
		}
		var request chatRequest
		json.NewDecoder(r.Body).Decode(&request)
		if request.Model != "llama3.2:1b" {
			t.Errorf("fallback model = %q", request.Model)
		}
		w.Write([]byte(openAIReply("fallback content")))
	}))
	defer server.Close()

	// No providers configured at all
	aiModels := &models.AIModelsConfig{Configs: map[string]models.ProviderConfig{}}

	content, providerID, err := chainService(server.URL).Generate(context.Background(), aiModels, "prompt")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if providerID != ProviderFallback {
		t.Errorf("providerID = %s, expected %s", providerID, ProviderFallback)
	}
	if content != "fallback content" {
		t.Errorf("content = %q", content)
	}
}

func TestProviderChainSkipsUnusableProviders(t *testing.T) {
	ordered := (&ProviderChainService{}).orderedProviders(&models.AIModelsConfig{
		Primary: ProviderGemini,
		Configs: map[string]models.ProviderConfig{
			ProviderGemini:    {APIKey: "g-key"},
			ProviderAnthropic: {APIKey: "a-key"},
			ProviderOpenAI:    {}, // no key
			ProviderCustom:    {APIKey: "c-key"}, // no endpoint
		},
	})

	want := []string{ProviderGemini, ProviderAnthropic}
	if len(ordered) != len(want) {
		t.Fatalf("ordered = %v, expected %v", ordered, want)
	}
	for i := range want {
		if ordered[i] != want[i] {
			t.Fatalf("ordered = %v, expected %v", ordered, want)
		}
	}
}

func TestAnthropicEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "a-key" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("anthropic-version = %q", r.Header.Get("anthropic-version"))
		}
		w.Write([]byte(`{"content": [{"type": "text", "text": "anthropic reply"}]}`))
	}))
	defer server.Close()

	service := chainService("")
	content, err := service.callAnthropic(context.Background(), models.ProviderConfig{
		APIKey:   "a-key",
		Endpoint: server.URL,
	}, "prompt")
	if err != nil {
		t.Fatalf("callAnthropic failed: %v", err)
	}
	if content != "anthropic reply" {
		t.Errorf("content = %q", content)
	}
}

func TestGeminiEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "g-key" {
			t.Errorf("key query parameter = %q", r.URL.Query().Get("key"))
		}
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "gemini reply"}]}}]}`))
	}))
	defer server.Close()

	service := chainService("")
	content, err := service.callGemini(context.Background(), models.ProviderConfig{
		APIKey:   "g-key",
		Endpoint: server.URL,
	}, "prompt")
	if err != nil {
		t.Fatalf("callGemini failed: %v", err)
	}
	if content != "gemini reply" {
		t.Errorf("content = %q", content)
	}
}

func TestChatCompletionsRejectsEmptyReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	service := chainService("")
	if _, err := service.chatCompletions(context.Background(), server.URL, "m", "prompt", nil); !errors.Is(err, ErrProviderRequest) {
		t.Errorf("chatCompletions returned %v, expected ErrProviderRequest", err)
	}
}
