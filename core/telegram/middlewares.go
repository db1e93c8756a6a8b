package telegram

import (
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/astralex/spacebot/core/config"
	"github.com/astralex/spacebot/core/telegram/middleware"
)

// DefaultMiddlewares builds the shared middleware chain for the bot.
func DefaultMiddlewares(cfg *coreconfig.Config, onDebounced func(tele.Context) error) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}

	if cfg != nil {
		interval := time.Duration(cfg.Debounce.IntervalMS) * time.Millisecond
		if interval > 0 {
			ex := make(map[string]struct{}, len(cfg.Debounce.ExcludeUpdates))
			for _, t := range cfg.Debounce.ExcludeUpdates {
				ex[strings.ToLower(t)] = struct{}{}
			}
			opts := middleware.DebounceOptions{
				Interval: interval,
				Exclude:  ex,
			}
			if onDebounced != nil {
				opts.OnDebounced = onDebounced
			}
			mws = append(mws, Middleware{
				Name: "debounce",
				Use:  middleware.DebounceMiddleware(opts),
			})
		}
	}

	mws = append(mws, Middleware{Name: "logger", Use: middleware.LoggerMiddleware})
	return mws
}
