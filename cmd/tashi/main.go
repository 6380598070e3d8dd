package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/breathebhutan/tashi/bot"
	"github.com/breathebhutan/tashi/core/bootstrap"
	corecmd "github.com/breathebhutan/tashi/core/cmd"
	"github.com/breathebhutan/tashi/travel/datastore"
)

func main() {
	// Local development reads secrets from .env; a missing file is fine.
	_ = godotenv.Load()

	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return bot.LoadConfig(path)
		},
		Bootstrap: bootstrapApp,
	})
	if err != nil {
		log.Fatalf("tashi: %v", err)
	}
}

func bootstrapApp(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*bot.Config)
	if !ok {
		return nil, fmt.Errorf("unexpected config type %T", carrier)
	}

	infra, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	store := datastore.New(cfg.Data.Dir)
	warm := bootstrap.WarmupFunc(func(ctx context.Context, _ *bootstrap.Result) error {
		if err := store.Load(ctx); err != nil {
			// Degraded mode: the bot starts with empty categories rather
			// than refusing to serve the planning dialogue.
			if errors.Is(err, datastore.ErrIndexUnavailable) {
				return nil
			}
			return err
		}
		if cfg.Data.PreloadEnabled() {
			return store.Preload(ctx)
		}
		return nil
	})
	if err := bootstrap.RunWarmups(context.Background(), infra, warm); err != nil {
		return nil, err
	}

	app, err := bot.New(cfg, infra, store)
	if err != nil {
		return nil, err
	}
	return app, nil
}
