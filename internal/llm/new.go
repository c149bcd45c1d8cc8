package llm

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nguyentantai21042004/brief-flow/internal/config"
	"github.com/nguyentantai21042004/brief-flow/internal/logger"
)

// New builds the backend selected by llm.provider.
func New(cfg *config.Config, log logger.Logger) (Backend, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		keys := cfg.Gemini.APIKeys
		if len(keys) == 0 {
			keys = splitKeys(os.Getenv("GEMINI_API_KEYS"))
		}
		return NewGemini(keys, log)
	case "openai":
		key := cfg.OpenAI.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		client := &http.Client{Timeout: time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second}
		return NewOpenAI(cfg.OpenAI.BaseURL, key, client, log), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

func splitKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
