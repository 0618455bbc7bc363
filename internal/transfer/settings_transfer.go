package transfer

type SettingsResponse struct {
	AISystemPrompt   string  `json:"aiSystemPrompt"`
	Temperature      float64 `json:"temperature"`
	WebSearchEnabled bool    `json:"webSearchEnabled"`
}

type SettingsUpdate struct {
	AISystemPrompt   *string  `json:"aiSystemPrompt"`
	Temperature      *float64 `json:"temperature"`
	WebSearchEnabled *bool    `json:"webSearchEnabled"`
}

type AIGenerateRequest struct {
	Input string `json:"input"`
}
