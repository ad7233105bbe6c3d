package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gradecalc/internal/assistant"
	"gradecalc/internal/config"
	"gradecalc/internal/schemes"
	"gradecalc/internal/session"
)

// newRegistry builds the scheme registry, loading and optionally watching a
// scheme file. The returned watcher is nil unless watching is enabled.
func newRegistry(cfg config.Scheme, logger *zap.Logger) (*schemes.Registry, *schemes.Watcher, error) {
	registry := schemes.NewRegistry()

	if cfg.File != "" {
		s, err := registry.LoadFile(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("grading scheme loaded", zap.String("path", cfg.File), zap.String("scheme", s.Name))
	}
	if err := registry.SetActive(cfg.Name); err != nil {
		return nil, nil, err
	}

	if cfg.File == "" || !cfg.Watch {
		return registry, nil, nil
	}
	watcher, err := schemes.NewWatcher(registry, cfg.File, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("watch scheme file: %w", err)
	}
	return registry, watcher, nil
}

func newSessionStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (session.Store, func() error, error) {
	greeting := cfg.Assistant.Greeting

	switch cfg.Session.Backend {
	case "redis":
		client, err := session.NewRedisClient(ctx, cfg.Session.RedisAddr, cfg.Session.RedisPassword, cfg.Session.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("session store ready", zap.String("backend", "redis"), zap.String("addr", cfg.Session.RedisAddr))
		return session.NewRedisStore(client, cfg.Session.TTL, greeting, logger), client.Close, nil
	default:
		logger.Info("session store ready", zap.String("backend", "memory"))
		return session.NewMemoryStore(cfg.Session.TTL, greeting), func() error { return nil }, nil
	}
}

// newProvider picks the assistant backend. Remote providers are rate limited;
// the offline one answers locally and is not.
func newProvider(ctx context.Context, cfg config.Assistant) (assistant.Provider, error) {
	var p assistant.Provider
	switch cfg.Provider {
	case "openai":
		p = assistant.NewOpenAIProvider(assistant.OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	case "gemini":
		gp, err := assistant.NewGeminiProvider(ctx, assistant.GeminiConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		p = gp
	default:
		return assistant.OfflineProvider{}, nil
	}
	return assistant.NewRateLimited(p, cfg.RatePerSecond, cfg.Burst), nil
}
