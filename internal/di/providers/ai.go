package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookbuddy/bookbuddy-server/internal/ai"
	"github.com/bookbuddy/bookbuddy-server/internal/config"
	"github.com/bookbuddy/bookbuddy-server/internal/logger"
)

// AIClientHandle wraps the completion client with shutdown capability.
type AIClientHandle struct {
	*ai.Client
}

// Shutdown implements do.Shutdownable.
func (h *AIClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideAIClient provides the rate-limited chat completion client.
func ProvideAIClient(i do.Injector) (*AIClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := ai.NewClient(ai.Config{
		BaseURL:           cfg.AI.BaseURL,
		APIKey:            cfg.AI.APIKey,
		Model:             cfg.AI.Model,
		Timeout:           cfg.AI.Timeout,
		RequestsPerSecond: cfg.AI.RequestsPerSecond,
	}, log.Logger)

	if cfg.AI.APIKey == "" {
		log.Warn("OPENAI_API_KEY not set, chat and recommendations will use fallbacks")
	}
	log.Info("AI client ready", "model", client.Model(), "rps", cfg.AI.RequestsPerSecond)

	return &AIClientHandle{Client: client}, nil
}
