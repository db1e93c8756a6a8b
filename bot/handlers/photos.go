package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/astralex/spacebot/bot/calendar"
	"github.com/astralex/spacebot/bot/nasa"
	"github.com/astralex/spacebot/bot/session"
	"github.com/astralex/spacebot/core/logger"
	"github.com/astralex/spacebot/core/telegram/callbacks"
	"github.com/astralex/spacebot/core/telegram/helpers"
)

// historyBatchSize is how many photos go into one history album. Telegram
// caps media groups at ten entries; the journey ships nine per stop.
const historyBatchSize = 9

// onCalendar interprets one calendar button press. Only a day press commits
// a date; year and month presses re-render the control in place.
func (h *Handlers) onCalendar(c tele.Context) error {
	if !h.expect(c, session.StateDatePick) {
		return h.stale(c)
	}
	ev, err := calendar.ParseEvent(callbacks.CallbackPayload(c))
	if err != nil {
		h.ack(c)
		return nil
	}
	res := calendar.Handle(ev)
	switch {
	case res.Ack:
		h.ack(c)
		return nil
	case res.Selected:
		h.ack(c)
		_ = c.Delete()
		return h.startPhotoFlow(c, res.Date)
	case res.Markup != nil:
		h.ack(c)
		return c.Edit(res.Markup)
	default:
		h.ack(c)
		return nil
	}
}

// startPhotoFlow commits the chosen date and shows the first photo.
func (h *Handlers) startPhotoFlow(c tele.Context, date time.Time) error {
	uid := userID(c)
	h.sessions.Mutate(uid, func(s *session.Session) {
		s.Date = date
		s.DateSet = true
		s.Candidates = nil
		s.CandidatesLoaded = false
		s.LastShownURL = ""
	})
	if err := c.Send(fmt.Sprintf(textDateChosen, date.Format("02.01.2006"))); err != nil {
		return err
	}
	return h.showNext(c)
}

// showNext draws the next photo for the session's place and date. Candidates
// are fetched once per date and drained one by one; a drained list ends in
// the new-date / new-planet recovery prompt.
func (h *Handlers) showNext(c tele.Context) error {
	ctx := helpers.WithHandler(c, "photo.show")
	uid := userID(c)
	sess := h.sessions.Get(uid)
	src, ok := h.sources.Source(sess.Place)
	if !ok {
		return h.showDestinations(c)
	}
	q := nasa.Query{Date: sess.Date}
	if sess.ColorOnly != nil {
		q.ColorOnly = *sess.ColorOnly
	}
	// Keep the user company while a flaky call is being retried.
	ctx = nasa.WithRetryNotify(ctx, func(int) {
		_ = c.Send(textRetrying)
	})

	gif := h.sendSearching(c)
	defer h.deleteSearching(c, gif)

	refs := sess.Candidates
	if !sess.CandidatesLoaded {
		var err error
		refs, err = src.FetchCandidates(ctx, q)
		if err != nil {
			return h.photoOutcome(c, err)
		}
		h.sessions.Mutate(uid, func(s *session.Session) {
			s.Candidates = refs
			s.CandidatesLoaded = true
		})
		logger.TG.LogAttrs(ctx, slog.LevelDebug, "candidates fetched",
			slog.String("event", "photo.candidates"),
			slog.String("place", string(sess.Place)),
			slog.Int("candidates", len(refs)),
		)
	}
	if len(refs) == 0 {
		return h.photoOutcome(c, nasa.ErrNoMatch)
	}

	photo, rest, err := src.FetchOne(ctx, q, refs)
	h.sessions.Mutate(uid, func(s *session.Session) {
		s.Candidates = rest
	})
	if err != nil {
		return h.photoOutcome(c, err)
	}

	if err := h.sendPhoto(c, photo); err != nil {
		return h.photoOutcome(c, nasa.ErrNoMatch)
	}
	h.sessions.Mutate(uid, func(s *session.Session) {
		s.LastShownURL = photo.URL
		s.State = session.StateShowingPhoto
	})
	if h.store != nil {
		_ = h.store.RecordViewedPhoto(ctx, uid, photo.URL)
	}
	logger.TG.LogAttrs(ctx, slog.LevelInfo, "photo shown",
		slog.String("event", "photo.shown"),
		slog.String("status", "ok"),
		slog.String("place", string(sess.Place)),
		slog.String("date", sess.Date.Format("2006-01-02")),
		slog.Int("candidates", len(rest)),
	)
	return c.Send(textMorePrompt, moreKeyboard(sess.Place))
}

func (h *Handlers) sendPhoto(c tele.Context, photo nasa.Photo) error {
	p := &tele.Photo{Caption: textPhotoCaption}
	if len(photo.Bytes) > 0 {
		p.File = tele.FromReader(bytes.NewReader(photo.Bytes))
	} else {
		p.File = tele.FromURL(photo.URL)
	}
	return c.Send(p)
}

// photoOutcome turns an adapter sentinel into the matching dialog reply.
func (h *Handlers) photoOutcome(c tele.Context, err error) error {
	ctx := helpers.BuildContext(c)
	uid := userID(c)
	switch {
	case errors.Is(err, nasa.ErrQuotaExhausted):
		logger.TG.LogAttrs(ctx, slog.LevelWarn, "photo flow stopped",
			slog.String("event", "photo.outcome"),
			slog.String("outcome", "quota_exhausted"),
		)
		h.sessions.Reset(uid, session.StateIdle)
		return c.Send(textQuotaExhausted)
	case errors.Is(err, nasa.ErrNoPhotos), errors.Is(err, nasa.ErrNoMatch):
		logger.TG.LogAttrs(ctx, slog.LevelInfo, "no photo for the date",
			slog.String("event", "photo.outcome"),
			slog.String("outcome", "no_match"),
		)
		h.sessions.SetState(uid, session.StateDateOrDestination)
		return c.Send(textNoPhotos, recoveryKeyboard())
	default:
		logger.TG.LogAttrs(ctx, slog.LevelWarn, "photo flow degraded",
			slog.String("event", "photo.outcome"),
			slog.String("outcome", "unavailable"),
			slog.String("err", err.Error()),
		)
		h.sessions.SetState(uid, session.StateDateOrDestination)
		return c.Send(textUnavailable, recoveryKeyboard())
	}
}

func (h *Handlers) onContinue(c tele.Context) error {
	if !h.expect(c, session.StateShowingPhoto) {
		return h.stale(c)
	}
	h.ack(c)
	var msg string
	switch h.sessions.Get(userID(c)).Place {
	case nasa.PlaceMars:
		msg = textContinueMars
	case nasa.PlaceEarth:
		msg = textContinueEarth
	default:
		msg = textContinueSpace
	}
	if err := c.Send(msg); err != nil {
		return err
	}
	return h.showNext(c)
}

func (h *Handlers) onStop(c tele.Context) error {
	if !h.expect(c, session.StateShowingPhoto) {
		return h.stale(c)
	}
	h.ack(c)
	var msg string
	switch h.sessions.Get(userID(c)).Place {
	case nasa.PlaceMars:
		msg = textStopMars
	case nasa.PlaceEarth:
		msg = textStopEarth
	default:
		msg = textStopSpace
	}
	if err := c.Send(msg); err != nil {
		return err
	}
	return h.showDestinations(c)
}

// onNewDate keeps the place (and Mars color choice) but restarts the date
// sub-dialog with a fresh calendar.
func (h *Handlers) onNewDate(c tele.Context) error {
	if !h.expect(c, session.StateDateOrDestination) {
		return h.stale(c)
	}
	h.ack(c)
	uid := userID(c)
	h.sessions.ClearTrip(uid)
	h.sessions.SetState(uid, session.StateDatePick)
	if err := c.Send(textNewDate); err != nil {
		return err
	}
	return c.Send(textPickDate, calendar.Markup(h.now().Year()))
}

func (h *Handlers) onNewPlanet(c tele.Context) error {
	if !h.expect(c, session.StateDateOrDestination) {
		return h.stale(c)
	}
	h.ack(c)
	if err := c.Send(textNewPlanet); err != nil {
		return err
	}
	return h.showDestinations(c)
}

// onHistory replays every photo the user has seen, nine per album.
func (h *Handlers) onHistory(c tele.Context) error {
	if !h.expect(c, session.StateDestination) {
		return h.stale(c)
	}
	h.ack(c)
	ctx := helpers.WithHandler(c, "history")
	uid := userID(c)
	if h.store == nil {
		return c.Send(textHistoryDone, destinationKeyboard())
	}
	urls, err := h.store.ListViewedPhotos(ctx, uid)
	if err != nil {
		return c.Send(textUnavailable, destinationKeyboard())
	}
	if len(urls) > 0 {
		if err := c.Send(textHistoryIntro); err != nil {
			return err
		}
		for _, batch := range chunkStrings(urls, historyBatchSize) {
			album := make(tele.Album, 0, len(batch))
			for _, u := range batch {
				album = append(album, &tele.Photo{File: tele.FromURL(u)})
			}
			if err := c.SendAlbum(album); err != nil {
				logger.TG.LogAttrs(ctx, slog.LevelWarn, "history album failed",
					slog.String("event", "history.album"),
					slog.String("err", err.Error()),
				)
				continue
			}
			if err := c.Send(textHistoryBatch); err != nil {
				return err
			}
		}
	}
	return c.Send(textHistoryDone, destinationKeyboard())
}

// sendSearching shows the searching animation while an adapter call runs.
// Best effort: a missing bot or a failed send just skips the animation.
func (h *Handlers) sendSearching(c tele.Context) *tele.Message {
	b := c.Bot()
	if b == nil || c.Chat() == nil {
		return nil
	}
	msg, err := b.Send(c.Chat(), &tele.Animation{File: tele.FromURL(searchingGIF)})
	if err != nil {
		return nil
	}
	return msg
}

func (h *Handlers) deleteSearching(c tele.Context, msg *tele.Message) {
	if msg == nil {
		return
	}
	if b := c.Bot(); b != nil {
		_ = b.Delete(msg)
	}
}

// chunkStrings splits items into consecutive groups of at most size.
func chunkStrings(items []string, size int) [][]string {
	if size <= 0 {
		return [][]string{items}
	}
	var out [][]string
	for len(items) > size {
		out = append(out, items[:size])
		items = items[size:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
