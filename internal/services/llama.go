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
)

const (
	llamaBaseURL = "https://api.llama.com/v1"

	DefaultLlamaModel = "Llama-4-Maverick-17B-128E-Instruct-FP8"
)

// LlamaService implements LLMService for the Llama API.
type LlamaService struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type llamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type llamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []llamaMessage `json:"messages"`
}

// llamaChatResponse mirrors the Llama API chat completion shape: the reply
// text lives under completion_message.content.text.
type llamaChatResponse struct {
	CompletionMessage struct {
		Role    string `json:"role"`
		Content struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"completion_message"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewLlamaService creates a new Llama API service instance.
func NewLlamaService(apiKey string, modelName string, logger *slog.Logger) *LlamaService {
	if modelName == "" {
		modelName = DefaultLlamaModel
	}
	return &LlamaService{
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   llamaBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

// SetBaseURL overrides the API endpoint (used in tests).
func (s *LlamaService) SetBaseURL(url string) {
	s.baseURL = url
}

func (s *LlamaService) InitModel(ctx context.Context, modelName string) error {
	if s.apiKey == "" {
		return fmt.Errorf("llama api key is not set")
	}
	if modelName != "" {
		s.modelName = modelName
	}
	s.logger.Info("Llama service configured", "model", s.modelName)
	return nil
}

// Complete sends the composed prompt as a single user message and returns
// the raw reply text.
func (s *LlamaService) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(llamaChatRequest{
		Model: s.modelName,
		Messages: []llamaMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := s.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	s.logger.Debug("Making Llama chat request", "url", url, "model", s.modelName, "prompt_chars", len(prompt))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("Llama API returned error",
			"status_code", resp.StatusCode,
			"response_body", string(body))
		return "", fmt.Errorf("llama api error: status %d", resp.StatusCode)
	}

	var chatResp llamaChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("llama api error: %s", chatResp.Error.Message)
	}
	if chatResp.CompletionMessage.Content.Text == "" {
		return "", fmt.Errorf("llama api returned empty completion")
	}
	return chatResp.CompletionMessage.Content.Text, nil
}
