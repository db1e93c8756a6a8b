package middleware

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/astralex/spacebot/core/logger"
)

// DebounceOptions configures behaviour of the debounce middleware.
type DebounceOptions struct {
	Interval    time.Duration
	Exclude     map[string]struct{}
	OnDebounced tele.HandlerFunc
}

type debounceKey struct {
	userID int64
	action string
}

// DebounceMiddleware returns a middleware that suppresses rapid repeats of
// the same control by the same user. Unlike a flat per-user rate limit, the
// timestamp is tracked per (user, action) pair, so a user quickly pressing
// two different buttons is not penalized.
func DebounceMiddleware(opts DebounceOptions) tele.MiddlewareFunc {
	var (
		lastSeen   = make(map[debounceKey]time.Time)
		lastSeenMu sync.Mutex
	)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}

			upd := c.Update()
			kind := "other"
			action := ""
			switch {
			case upd.Callback != nil:
				kind = "callback"
				key, payload := parseCallback(upd.Callback)
				action = key
				if payload != "" {
					action += "|" + payload
				}
			case upd.Message != nil:
				kind = "message"
				action = strings.TrimSpace(c.Text())
			}
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}
			if action == "" {
				return next(c)
			}

			k := debounceKey{userID: user.ID, action: action}
			now := time.Now()

			lastSeenMu.Lock()
			if last, ok := lastSeen[k]; ok && now.Sub(last) < opts.Interval {
				lastSeenMu.Unlock()
				logger.TG.Warn("debounced",
					slog.String("event", "tg.debounce"),
					slog.String("status", "debounced"),
					slog.Int64("user_id", user.ID),
					slog.String("cb_key", logger.SanitizeLimit(action, 128)),
				)
				if opts.OnDebounced != nil {
					_ = opts.OnDebounced(c)
				}
				return nil
			}
			lastSeen[k] = now
			if len(lastSeen) > 4096 {
				for key, ts := range lastSeen {
					if now.Sub(ts) > opts.Interval {
						delete(lastSeen, key)
					}
				}
			}
			lastSeenMu.Unlock()
			return next(c)
		}
	}
}
