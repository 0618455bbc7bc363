package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	config "github.com/forepost/api/configs"
)

const openAIResponsesURL = "https://api.openai.com/v1/responses"

// DefaultAISystemPrompt seeds content generation until the operator overrides
// it through settings.
const DefaultAISystemPrompt = "You are a social media expert who writes engaging, factual posts for X. Keep it under 280 characters. Avoid exclamation marks."

const fallbackAIText = "Breaking news in AI: revolutionary breakthroughs in neural net efficiency have emerged. Stay tuned for more updates."

type AIService interface {
	GeneratePostContent(ctx context.Context, input string) (string, error)
}

type aiService struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
	settings   SettingsService
}

func NewAIService(cfg *config.Config, settings SettingsService) AIService {
	return &aiService{
		apiKey:     cfg.OpenAIAPIKey,
		apiURL:     openAIResponsesURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		settings:   settings,
	}
}

// GeneratePostContent produces draft post text through the OpenAI responses
// API, honoring the prompt/temperature/web-search settings. Without an API
// key it returns a fixed fallback so the endpoint stays usable in development.
func (s *aiService) GeneratePostContent(ctx context.Context, input string) (string, error) {
	if input == "" {
		return "", errors.New("input prompt is required")
	}

	if s.apiKey == "" {
		slog.Warn("AI service not configured, using fallback response")
		return fallbackAIText, nil
	}

	systemPrompt := DefaultAISystemPrompt
	if v, ok := s.settings.Get(ctx, SettingAISystemPrompt, systemPrompt).(string); ok {
		systemPrompt = v
	}

	payload := map[string]any{
		"model": "gpt-4o",
		"input": systemPrompt + "\n\n" + input,
	}
	if v, ok := s.settings.Get(ctx, SettingAITemperature, DefaultAITemperature).(float64); ok {
		payload["temperature"] = v
	}
	webSearch := DefaultAIWebSearch
	if v, ok := s.settings.Get(ctx, SettingAIWebSearch, webSearch).(bool); ok {
		webSearch = v
	}
	if webSearch {
		payload["tools"] = []map[string]string{{"type": "web_search_preview"}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Error(err.Error())
		return "", fmt.Errorf("AI request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		slog.Error("AI request returned non-200 status", "status", resp.StatusCode)
		return "", fmt.Errorf("AI request failed with status %d: %s", resp.StatusCode, respBody)
	}

	var result struct {
		Output []struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode AI response: %w", err)
	}

	for _, message := range result.Output {
		for _, content := range message.Content {
			if content.Text != "" {
				return content.Text, nil
			}
		}
	}

	return "", errors.New("AI response contained no text")
}
