package llm

import (
	"fmt"
	"strings"

	"support-chat/internal/config"
)

// Factory creates LLM clients from configuration.
type Factory struct {
	OpenaiAPIKey     string
	OpenaiBaseURL    string
	OpenaiModel      string
	Temperature      float32
	MaxTokens        int
	YandexOAuthToken string
	YandexFolderID   string
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		OpenaiAPIKey:     cfg.OpenAIAPIKey,
		OpenaiBaseURL:    cfg.OpenAIBaseURL,
		OpenaiModel:      cfg.OpenAIModel,
		Temperature:      cfg.Temperature,
		MaxTokens:        cfg.MaxTokens,
		YandexOAuthToken: cfg.YandexOAuthToken,
		YandexFolderID:   cfg.YandexFolderID,
	}
}

func (f *Factory) CreateClient(provider string) (Client, error) {
	switch strings.ToLower(provider) {
	case string(config.ProviderOpenAI):
		return NewOpenAI(f.OpenaiAPIKey, f.OpenaiBaseURL, f.OpenaiModel, f.Temperature, f.MaxTokens), nil
	case string(config.ProviderYandex):
		return NewYandex(f.YandexOAuthToken, f.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
