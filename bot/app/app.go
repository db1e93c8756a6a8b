// Package app assembles the bot: configuration, logging, storage, the NASA
// client and the dialog handlers, then runs the Telegram update loop.
package app

import (
	"context"
	"fmt"

	"github.com/kelseyhightower/envconfig"
	tele "gopkg.in/telebot.v4"

	"github.com/astralex/spacebot/bot/handlers"
	"github.com/astralex/spacebot/bot/nasa"
	"github.com/astralex/spacebot/bot/session"
	"github.com/astralex/spacebot/bot/storage"
	coreconfig "github.com/astralex/spacebot/core/config"
	"github.com/astralex/spacebot/core/database"
	"github.com/astralex/spacebot/core/logger"
	"github.com/astralex/spacebot/core/telegram"
)

// Run starts the bot and blocks until ctx is cancelled.
func Run(ctx context.Context, configPath string) error {
	cfg, err := coreconfig.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	var dbCfg database.Config
	if err := envconfig.Process("", &dbCfg); err != nil {
		return fmt.Errorf("db config: %w", err)
	}
	if err := database.Normalize(&dbCfg); err != nil {
		return err
	}
	if err := database.RunMigrations(dbCfg); err != nil {
		return err
	}
	db, err := database.Connect(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer db.Close()

	sessions := session.NewManager()
	client := nasa.NewClient(cfg.Nasa.BaseURL, cfg.Nasa.APIKey, nil)

	reg := telegram.NewRegistry()
	handlers.New(sessions, client, storage.New(db)).Register(reg)

	// A swallowed repeat still answers the callback, or the client keeps
	// its spinner until Telegram times the press out.
	onDebounced := func(c tele.Context) error {
		if c.Callback() != nil {
			return c.Respond(&tele.CallbackResponse{Text: "Не так быстро)"})
		}
		return nil
	}

	return telegram.RunTelegram(ctx, telegram.RunOptions{
		Config:      cfg,
		Registry:    reg,
		Middlewares: telegram.DefaultMiddlewares(cfg, onDebounced),
	})
}
