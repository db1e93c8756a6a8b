// Package session keeps the per-user journey state: the conversation FSM
// state plus the turn-scoped data (destination, date, color preference and
// the remaining photo candidates). Sessions are transient; nothing here is
// ever persisted.
package session

import (
	"sync"
	"time"

	"github.com/astralex/spacebot/bot/nasa"
)

// State identifies a conversation stage.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
	// StateTripConfirm awaits the yes/no answer about flying to space.
	StateTripConfirm State = "trip_confirm"
	// StateLaunch awaits the rocket button after the countdown.
	StateLaunch State = "launch"
	// StateMenuAck awaits the first acknowledgement of the menu button.
	StateMenuAck State = "menu_ack"
	// StateDestination awaits a destination choice from the menu keyboard.
	StateDestination State = "destination"
	// StateMarsColor awaits the color/black-and-white choice for Mars.
	StateMarsColor State = "mars_color"
	// StateDatePick awaits a terminal calendar selection.
	StateDatePick State = "date_pick"
	// StateShowingPhoto awaits continue/stop under a shown photo.
	StateShowingPhoto State = "showing_photo"
	// StateDateOrDestination awaits the new-date / new-planet recovery choice.
	StateDateOrDestination State = "date_or_destination"
)

// Session stores the journey data of one user between turns.
type Session struct {
	State State

	// Place is the chosen destination; empty until picked.
	Place nasa.Place
	// Date is the chosen calendar date; valid only when DateSet.
	Date    time.Time
	DateSet bool
	// ColorOnly is set only after the Mars color sub-choice was made.
	ColorOnly *bool
	// Candidates holds the photo references remaining for (Place, Date).
	// Drained one by one, never refetched until empty or the user picks a
	// new date or destination.
	Candidates []nasa.PhotoRef
	// CandidatesLoaded distinguishes a drained list from a never-fetched one.
	CandidatesLoaded bool
	// LastShownURL is the most recently shown photo, kept for persistence.
	LastShownURL string
}

// Manager owns all sessions, keyed by user id. Turns of one user are strictly
// sequential, so the lock only guards cross-user map access.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewManager constructs an empty in-memory session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[int64]*Session)}
}

// Get returns a copy of the user's session, or an idle one if none exists.
func (m *Manager) Get(userID int64) Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[userID]; ok {
		return *s
	}
	return Session{State: StateIdle}
}

// GetState returns the user's current conversation state.
func (m *Manager) GetState(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[userID]; ok {
		return s.State
	}
	return StateIdle
}

// SetState updates only the conversation state, creating the session if needed.
func (m *Manager) SetState(userID int64, st State) {
	m.Mutate(userID, func(s *Session) {
		s.State = st
	})
}

// Mutate applies fn to the user's session under the lock, creating an idle
// session first if the user has none.
func (m *Manager) Mutate(userID int64, fn func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		s = &Session{State: StateIdle}
		m.sessions[userID] = s
	}
	fn(s)
}

// Reset drops all journey data of the user and returns the state to st.
func (m *Manager) Reset(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = &Session{State: st}
}

// ClearTrip drops the photo-flow data (date, candidates, last URL) while
// keeping the chosen destination and color preference. Used when the user
// asks for a new date of the same place.
func (m *Manager) ClearTrip(userID int64) {
	m.Mutate(userID, func(s *Session) {
		s.Date = time.Time{}
		s.DateSet = false
		s.Candidates = nil
		s.CandidatesLoaded = false
		s.LastShownURL = ""
	})
}
