package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/storyloom/storyloom/internal/handlers"
	"github.com/storyloom/storyloom/pkg/chat"
	"github.com/storyloom/storyloom/pkg/world"
)

// apiClient wraps the HTTP calls the console makes against the API.
type apiClient struct {
	client  *http.Client
	baseURL string
}

func newAPIClient(client *http.Client, baseURL string) *apiClient {
	return &apiClient{client: client, baseURL: baseURL}
}

func (a *apiClient) getJSON(path string, out interface{}) error {
	resp, err := a.client.Get(a.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return apiError(resp.StatusCode, body)
	}
	return json.Unmarshal(body, out)
}

func (a *apiClient) postJSON(path string, in, out interface{}, wantStatus int) error {
	jsonData, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := a.client.Post(a.baseURL+path, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != wantStatus {
		return apiError(resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

func apiError(status int, body []byte) error {
	var errorResp handlers.ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
		return fmt.Errorf("API returned status %d: %s", status, string(body))
	}
	return fmt.Errorf("%s", errorResp.Error)
}

func (a *apiClient) getSetupStatus() (*handlers.SetupStatus, error) {
	var status handlers.SetupStatus
	if err := a.getJSON("/v1/setup", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (a *apiClient) listCharacters() ([]handlers.CharacterSummary, error) {
	var characters []handlers.CharacterSummary
	if err := a.getJSON("/v1/characters", &characters); err != nil {
		return nil, err
	}
	return characters, nil
}

func (a *apiClient) selectCharacter(name, language string) (*world.DynamicWorld, error) {
	var doc world.DynamicWorld
	req := handlers.SelectCharacterRequest{Character: name, Language: language}
	if err := a.postJSON("/v1/characters/select", req, &doc, http.StatusCreated); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (a *apiClient) getWorld() (*world.DynamicWorld, error) {
	var doc world.DynamicWorld
	if err := a.getJSON("/v1/world", &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (a *apiClient) getProgress() (*handlers.ProgressReport, error) {
	var report handlers.ProgressReport
	if err := a.getJSON("/v1/progress", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (a *apiClient) sendChat(req chat.ChatRequest) (*chat.ChatResponse, error) {
	var resp chat.ChatResponse
	if err := a.postJSON("/v1/chat", req, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *apiClient) resetWorld() error {
	req, err := http.NewRequest(http.MethodDelete, a.baseURL+"/v1/world", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return apiError(resp.StatusCode, body)
	}
	return nil
}
