// internal/chat/config.go
package chat

import "support-chatbot/internal/common/config"

type Config struct {
	// HistoryLimit is the number of recent turns handed to the model and the resolvers.
	HistoryLimit int
}

func LoadConfig(cfg config.ChatConfig) *Config {
	return &Config{HistoryLimit: cfg.HistoryLimit}
}
