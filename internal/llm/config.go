// internal/llm/config.go
package llm

import (
	"strings"
	"time"

	"support-chatbot/internal/common/config"
)

type Config struct {
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// LoadConfig maps the application llm section onto the gateway config.
func LoadConfig(cfg config.LLMConfig) *Config {
	return &Config{
		BaseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		Model:       cfg.Model,
		Timeout:     config.GetDuration(cfg.Timeout),
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
}
