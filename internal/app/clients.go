package app

import (
	"context"
	"fmt"

	"github.com/yungbote/ssmlcast/internal/clients/feed"
	"github.com/yungbote/ssmlcast/internal/clients/llm"
	"github.com/yungbote/ssmlcast/internal/clients/redis"
	"github.com/yungbote/ssmlcast/internal/clients/weather"
	"github.com/yungbote/ssmlcast/internal/config"
	"github.com/yungbote/ssmlcast/internal/content"
	"github.com/yungbote/ssmlcast/internal/platform/logger"
	"github.com/yungbote/ssmlcast/internal/platform/objstore"
)

type Clients struct {
	LLM      llm.Client
	Weather  *weather.Client
	Cache    *redis.Cache
	Feed     *feed.Client
	Catalog  *content.Catalog
	Archiver *objstore.Archiver
	Store    objstore.Store
}

func wireClients(ctx context.Context, cfg *config.Config, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	model, err := llm.New(cfg.LLMSettings(), log)
	if err != nil {
		return Clients{}, fmt.Errorf("init llm client: %w", err)
	}
	out.LLM = model

	// Redis
	if cfg.RedisAddr != "" {
		cache, err := redis.NewCache(ctx, cfg.RedisAddr, log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis cache: %w", err)
		}
		out.Cache = cache
	}

	// Weather
	if cfg.Weather.Host != "" {
		wcfg := weather.Config{
			Host:     cfg.Weather.Host,
			APIKey:   cfg.Weather.APIKey,
			Location: cfg.Weather.Location,
			BaseURL:  cfg.Weather.BaseURL,
			CacheTTL: cfg.Weather.CacheTTL,
			Timeout:  cfg.Weather.Timeout,
		}
		var cache weather.Cache
		if out.Cache != nil {
			cache = out.Cache
		}
		w, err := weather.New(wcfg, cache, log)
		if err != nil {
			out.Close(log)
			return Clients{}, fmt.Errorf("init weather client: %w", err)
		}
		out.Weather = w
	} else {
		log.Warn("RAPIDAPI_HOST not set; intros will be written without weather")
	}

	out.Feed = feed.New(cfg.Feed.Timeout, log)

	catalog, err := content.Load(cfg.CatalogPath)
	if err != nil {
		out.Close(log)
		return Clients{}, fmt.Errorf("load content catalog: %w", err)
	}
	out.Catalog = catalog

	archiver, store, err := resolveArchiver(ctx, log, cfg.ObjectStore())
	if err != nil {
		out.Close(log)
		return Clients{}, err
	}
	out.Archiver, out.Store = archiver, store

	return out, nil
}

// Close releases network clients. It is safe on a partially wired set.
func (c Clients) Close(log *logger.Logger) {
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			log.Warn("redis close failed", "error", err)
		}
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			log.Warn("storage close failed", "error", err)
		}
	}
}
