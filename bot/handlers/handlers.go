// Package handlers implements the journey dialog: the /start greeting, the
// launch sequence, destination choice, the calendar sub-dialog, photo
// delivery and the viewed-photo history. Each handler validates the user's
// conversation state before acting; input that does not fit the current state
// re-prompts without changing it.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/astralex/spacebot/bot/calendar"
	"github.com/astralex/spacebot/bot/nasa"
	"github.com/astralex/spacebot/bot/session"
	"github.com/astralex/spacebot/core/logger"
	"github.com/astralex/spacebot/core/telegram"
	"github.com/astralex/spacebot/core/telegram/commands"
	"github.com/astralex/spacebot/core/telegram/helpers"
	"github.com/astralex/spacebot/core/telegram/keyboard"
)

// Recorder is the persistence surface the dialog needs.
type Recorder interface {
	EnsureUser(ctx context.Context, userID int64, userName string) error
	RecordViewedPhoto(ctx context.Context, userID int64, url string) error
	ListViewedPhotos(ctx context.Context, userID int64) ([]string, error)
}

// SourceSet resolves the photo adapter for a destination.
type SourceSet interface {
	Source(p nasa.Place) (nasa.Source, bool)
}

// Handlers carries the dialog dependencies.
type Handlers struct {
	sessions *session.Manager
	sources  SourceSet
	store    Recorder
	now      func() time.Time
}

// New builds the handler set. store may be nil, which disables persistence
// (first-contact registration, photo history).
func New(sessions *session.Manager, sources SourceSet, store Recorder) *Handlers {
	return &Handlers{
		sessions: sessions,
		sources:  sources,
		store:    store,
		now:      time.Now,
	}
}

// Register binds every command and callback of the dialog to the registry.
func (h *Handlers) Register(reg *telegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.Start,
		Description: "Начать путешествие",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     h.Help,
		Description: "Показать мои возможности",
		Aliases:     []string{"menu"},
	})

	for key, fn := range map[string]tele.HandlerFunc{
		cbYes:           h.onYes,
		cbNo:            h.onNo,
		cbGo:            h.onGo,
		cbMars:          h.onMars,
		cbEarth:         h.onEarth,
		cbSpace:         h.onSpace,
		cbHistory:       h.onHistory,
		cbFinishWork:    h.onFinish,
		cbColor:         h.onColor,
		cbBlackWhite:    h.onBlackWhite,
		cbMarsContinue:  h.onContinue,
		cbEarthContinue: h.onContinue,
		cbSpaceContinue: h.onContinue,
		cbMarsStop:      h.onStop,
		cbEarthStop:     h.onStop,
		cbSpaceStop:     h.onStop,
		cbNewDate:       h.onNewDate,
		cbNewPlanet:     h.onNewPlanet,
		calendar.Unique: h.onCalendar,
	} {
		_ = reg.RegisterCallback(key, fn)
	}

	reg.SetTextFallback(h.OnText)
}

// Start greets the user, registers them and opens the trip question.
// Works from any state and resets the whole journey.
func (h *Handlers) Start(c tele.Context) error {
	ctx := helpers.WithHandler(c, "start")
	u := c.Sender()
	if u == nil {
		return nil
	}
	if h.store != nil {
		name := u.Username
		if name == "" {
			name = strings.TrimSpace(u.FirstName + " " + u.LastName)
		}
		// Persistence failures must not block the greeting.
		_ = h.store.EnsureUser(ctx, u.ID, name)
	}
	h.sessions.Reset(u.ID, session.StateTripConfirm)
	logger.TG.LogAttrs(ctx, slog.LevelInfo, "journey started",
		slog.String("event", "fsm.start"),
		slog.String("state", string(session.StateTripConfirm)),
	)
	return c.Send(fmt.Sprintf(textGreeting, u.FirstName), tripKeyboard())
}

// Help opens the destination menu from any state.
func (h *Handlers) Help(c tele.Context) error {
	helpers.WithHandler(c, "help")
	return h.showDestinations(c)
}

func (h *Handlers) onYes(c tele.Context) error {
	if !h.expect(c, session.StateTripConfirm) {
		return h.stale(c)
	}
	h.ack(c)
	if err := c.Send(textTripAccepted); err != nil {
		return err
	}
	return h.sendLaunch(c)
}

func (h *Handlers) onNo(c tele.Context) error {
	if !h.expect(c, session.StateTripConfirm) {
		return h.stale(c)
	}
	h.ack(c)
	h.sessions.Reset(userID(c), session.StateIdle)
	return c.Send(textFarewellNo, keyboard.RemoveKeyboard())
}

func (h *Handlers) sendLaunch(c tele.Context) error {
	h.transition(c, session.StateLaunch)
	return c.Send(textCountdown, launchKeyboard())
}

func (h *Handlers) onGo(c tele.Context) error {
	if !h.expect(c, session.StateLaunch) {
		return h.stale(c)
	}
	h.ack(c)
	if err := c.Send(textInFlight); err != nil {
		return err
	}
	h.transition(c, session.StateMenuAck)
	return c.Send(textMenuHint, menuKeyboard())
}

// showDestinations resets the journey data and presents the destination menu.
func (h *Handlers) showDestinations(c tele.Context) error {
	uid := userID(c)
	if uid == 0 {
		return nil
	}
	h.sessions.Reset(uid, session.StateDestination)
	return c.Send(textChoosePlace, destinationKeyboard())
}

func (h *Handlers) onMars(c tele.Context) error {
	if !h.expect(c, session.StateDestination) {
		return h.stale(c)
	}
	h.ack(c)
	h.sessions.Mutate(userID(c), func(s *session.Session) {
		s.Place = nasa.PlaceMars
		s.State = session.StateMarsColor
	})
	if err := c.Send(textMarsChosen); err != nil {
		return err
	}
	return c.Send(textMarsColorHint, marsColorKeyboard())
}

func (h *Handlers) onEarth(c tele.Context) error {
	return h.pickDate(c, nasa.PlaceEarth, textEarthChosen)
}

func (h *Handlers) onSpace(c tele.Context) error {
	return h.pickDate(c, nasa.PlaceSpace, textSpaceChosen)
}

func (h *Handlers) pickDate(c tele.Context, place nasa.Place, chosen string) error {
	if !h.expect(c, session.StateDestination) {
		return h.stale(c)
	}
	h.ack(c)
	h.sessions.Mutate(userID(c), func(s *session.Session) {
		s.Place = place
		s.State = session.StateDatePick
	})
	if err := c.Send(chosen); err != nil {
		return err
	}
	return c.Send(textPickDate, calendar.Markup(h.now().Year()))
}

func (h *Handlers) onColor(c tele.Context) error {
	return h.setMarsColor(c, true, textColorChosen)
}

func (h *Handlers) onBlackWhite(c tele.Context) error {
	return h.setMarsColor(c, false, textUncoloredChosen)
}

func (h *Handlers) setMarsColor(c tele.Context, colorOnly bool, chosen string) error {
	if !h.expect(c, session.StateMarsColor) {
		return h.stale(c)
	}
	h.ack(c)
	h.sessions.Mutate(userID(c), func(s *session.Session) {
		s.ColorOnly = &colorOnly
		s.State = session.StateDatePick
	})
	if err := c.Send(chosen); err != nil {
		return err
	}
	return c.Send(textPickDate, calendar.Markup(h.now().Year()))
}

func (h *Handlers) onFinish(c tele.Context) error {
	if !h.expect(c, session.StateDestination) {
		return h.stale(c)
	}
	h.ack(c)
	h.sessions.Reset(userID(c), session.StateIdle)
	if err := c.Send(textFinish); err != nil {
		return err
	}
	return c.Send(textFinishBye, keyboard.RemoveKeyboard())
}

// OnText handles every plain message: the persistent menu button and the
// per-state re-prompt for input the current keyboard does not understand.
func (h *Handlers) OnText(c tele.Context) error {
	if c.Text() == menuButtonText {
		return h.showDestinations(c)
	}
	uid := userID(c)
	if uid == 0 {
		return nil
	}
	st := h.sessions.GetState(uid)
	if st == session.StateIdle {
		return nil
	}
	ctx := helpers.WithHandler(c, "fallback")
	logger.TG.LogAttrs(ctx, slog.LevelDebug, "unrecognized input",
		slog.String("event", "fsm.reprompt"),
		slog.String("state", string(st)),
		slog.String("text", logger.SanitizeLimit(c.Text(), 64)),
	)
	h.deletePrior(c)
	return h.reprompt(c, st)
}

// reprompt re-sends the prompt of the current state without changing it.
func (h *Handlers) reprompt(c tele.Context, st session.State) error {
	switch st {
	case session.StateTripConfirm:
		return c.Send(textTripReprompt, tripKeyboard())
	case session.StateLaunch:
		if err := c.Send(textLaunchReprompt); err != nil {
			return err
		}
		return c.Send(textCountdown, launchKeyboard())
	case session.StateMenuAck:
		if err := c.Send(textMenuReprompt); err != nil {
			return err
		}
		return c.Send(textMenuHint, menuKeyboard())
	case session.StateDestination:
		if err := c.Send(textChoosePlaceReprompt); err != nil {
			return err
		}
		return c.Send(textChoosePlace, destinationKeyboard())
	case session.StateMarsColor:
		return c.Send(textMarsColorReprompt, marsColorKeyboard())
	case session.StateDatePick:
		return c.Send(textCalendarReprompt, calendar.Markup(h.now().Year()))
	case session.StateShowingPhoto:
		return c.Send(textPhotoReprompt, moreKeyboard(h.sessions.Get(userID(c)).Place))
	case session.StateDateOrDestination:
		return c.Send(textRecoveryReprompt, recoveryKeyboard())
	}
	return nil
}

// deletePrior removes the bot's previous prompt so the chat does not pile up
// identical prompts while the user keeps typing free text. Best effort.
func (h *Handlers) deletePrior(c tele.Context) {
	msg := c.Message()
	b := c.Bot()
	if msg == nil || msg.Chat == nil || b == nil {
		return
	}
	_ = b.Delete(&tele.StoredMessage{
		ChatID:    msg.Chat.ID,
		MessageID: strconv.Itoa(msg.ID - 1),
	})
}

// expect reports whether the sender is in one of the given states.
func (h *Handlers) expect(c tele.Context, states ...session.State) bool {
	uid := userID(c)
	if uid == 0 {
		return false
	}
	st := h.sessions.GetState(uid)
	for _, s := range states {
		if st == s {
			return true
		}
	}
	return false
}

// stale answers a button press that no longer fits the conversation state.
func (h *Handlers) stale(c tele.Context) error {
	return c.Respond(&tele.CallbackResponse{Text: "Эта кнопка уже не активна)"})
}

func (h *Handlers) ack(c tele.Context) {
	_ = c.Respond(&tele.CallbackResponse{})
}

// transition updates the state and leaves a trace in the log.
func (h *Handlers) transition(c tele.Context, st session.State) {
	uid := userID(c)
	if uid == 0 {
		return
	}
	h.sessions.SetState(uid, st)
	ctx := helpers.BuildContext(c)
	logger.TG.LogAttrs(ctx, slog.LevelDebug, "state changed",
		slog.String("event", "fsm.transition"),
		slog.String("state", string(st)),
	)
}

func userID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}
