package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaService implements Gateway using a local Ollama instance.
type OllamaService struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaService creates a new Ollama service
func NewOllamaService(baseURL, model string) *OllamaService {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3"
	}
	return &OllamaService{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{},
	}
}

// CategorizeEmail implements Gateway
func (o *OllamaService) CategorizeEmail(ctx context.Context, subject, body string) (string, error) {
	text, err := o.generate(ctx, CategorizePrompt(subject, body), 10)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// GenerateReply implements Gateway
func (o *OllamaService) GenerateReply(ctx context.Context, subject, body string, contexts []string) (string, error) {
	text, err := o.generate(ctx, ReplyPrompt(subject, body, contexts), 150)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (o *OllamaService) generate(ctx context.Context, prompt string, numPredict int) (string, error) {
	url := o.baseURL + "/api/generate"

	payload := map[string]interface{}{
		"model":  o.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": 0.3,
			"num_predict": numPredict,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return result.Response, nil
}
