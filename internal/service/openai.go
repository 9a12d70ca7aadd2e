package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"core/internal/config"
)

const fallbackSystemPrompt = `你是质检数据平台的智能助手。用户的问题没有命中任何预置查询规则，` +
	`请基于常识简要回答，或者引导用户换一种与库存、检测、生产跟踪相关的问法。回答保持简短。`

// OpenAIClient talks to an OpenAI-compatible chat completion endpoint. It
// is only used as the fallback answer path; the rule engine never depends
// on it.
type OpenAIClient struct {
	config     *config.OpenAIConfig
	httpClient *http.Client
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(cfg *config.OpenAIConfig) *OpenAIClient {
	return &OpenAIClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *OpenAIClient) IsEnabled() bool {
	return c != nil && c.config != nil && c.config.Enabled && c.config.APIKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Answer asks the model for a free-text reply to an unmatched question.
func (c *OpenAIClient) Answer(ctx context.Context, question string, sessionContext map[string]interface{}) (string, error) {
	if !c.IsEnabled() {
		return "", fmt.Errorf("OpenAI client is not enabled")
	}

	userContent := question
	if len(sessionContext) > 0 {
		if ctxJSON, err := json.Marshal(sessionContext); err == nil {
			userContent = fmt.Sprintf("%s\n\n[会话上下文] %s", question, ctxJSON)
		}
	}

	reqBody := chatCompletionRequest{
		Model: c.config.ChatModel,
		Messages: []chatMessage{
			{Role: "system", Content: fallbackSystemPrompt},
			{Role: "user", Content: userContent},
		},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimRight(c.config.APIBase, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("OpenAI API returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
		return "", fmt.Errorf("chat completion returned status %d", resp.StatusCode)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("chat completion error: %s", completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	answer := strings.TrimSpace(completion.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("chat completion returned empty content")
	}
	return answer, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
