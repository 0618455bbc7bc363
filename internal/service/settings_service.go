package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/forepost/api/internal/repository"
	"github.com/forepost/api/internal/transfer"
)

// Setting keys currently in use.
const (
	SettingAISystemPrompt = "ai_system_prompt"
	SettingAITemperature  = "ai_temperature"
	SettingAIWebSearch    = "ai_web_search_enabled"
	DefaultAITemperature  = 0.7
	DefaultAIWebSearch    = true
)

type SettingsService interface {
	Get(ctx context.Context, key string, defaultValue any) any
	Set(ctx context.Context, key string, value any) error
	GetSettings(ctx context.Context) *transfer.SettingsResponse
	UpdateSettings(ctx context.Context, su *transfer.SettingsUpdate) error
}

type settingsService struct {
	sr repository.SettingsRepository
}

func NewSettingsService(sr repository.SettingsRepository) SettingsService {
	return &settingsService{sr: sr}
}

// Get returns the stored value decoded from JSON when possible, the raw
// string otherwise, or the default when the key is absent.
func (s *settingsService) Get(ctx context.Context, key string, defaultValue any) any {
	setting, err := s.sr.Get(ctx, key)
	if err != nil || setting == nil {
		return defaultValue
	}

	var decoded any
	if err := json.Unmarshal([]byte(setting.Value), &decoded); err != nil {
		return setting.Value
	}
	return decoded
}

// Set upserts a value, JSON-encoding anything that is not already a string.
func (s *settingsService) Set(ctx context.Context, key string, value any) error {
	var stored string
	switch v := value.(type) {
	case string:
		stored = v
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			slog.Error(err.Error())
			return fmt.Errorf("encode setting %s: %w", key, err)
		}
		stored = string(encoded)
	}

	return s.sr.Upsert(ctx, key, stored)
}

func (s *settingsService) GetSettings(ctx context.Context) *transfer.SettingsResponse {
	resp := &transfer.SettingsResponse{
		AISystemPrompt:   DefaultAISystemPrompt,
		Temperature:      DefaultAITemperature,
		WebSearchEnabled: DefaultAIWebSearch,
	}

	if v, ok := s.Get(ctx, SettingAISystemPrompt, resp.AISystemPrompt).(string); ok {
		resp.AISystemPrompt = v
	}
	if v, ok := s.Get(ctx, SettingAITemperature, resp.Temperature).(float64); ok {
		resp.Temperature = v
	}
	if v, ok := s.Get(ctx, SettingAIWebSearch, resp.WebSearchEnabled).(bool); ok {
		resp.WebSearchEnabled = v
	}

	return resp
}

func (s *settingsService) UpdateSettings(ctx context.Context, su *transfer.SettingsUpdate) error {
	if su.AISystemPrompt != nil {
		if err := s.Set(ctx, SettingAISystemPrompt, *su.AISystemPrompt); err != nil {
			return err
		}
	}
	if su.Temperature != nil {
		if err := s.Set(ctx, SettingAITemperature, *su.Temperature); err != nil {
			return err
		}
	}
	if su.WebSearchEnabled != nil {
		if err := s.Set(ctx, SettingAIWebSearch, *su.WebSearchEnabled); err != nil {
			return err
		}
	}
	return nil
}
