package session

import (
	"testing"
	"time"

	"github.com/astralex/spacebot/bot/nasa"
)

func TestGetDefaultsToIdle(t *testing.T) {
	m := NewManager()
	if got := m.GetState(42); got != StateIdle {
		t.Fatalf("new user state = %q, want %q", got, StateIdle)
	}
	s := m.Get(42)
	if s.Place != "" || s.DateSet || s.Candidates != nil {
		t.Fatalf("new session not empty: %+v", s)
	}
}

func TestMutateCreatesAndUpdates(t *testing.T) {
	m := NewManager()
	yes := true
	m.Mutate(7, func(s *Session) {
		s.State = StateDatePick
		s.Place = nasa.PlaceMars
		s.ColorOnly = &yes
	})
	s := m.Get(7)
	if s.State != StateDatePick || s.Place != nasa.PlaceMars {
		t.Fatalf("mutation lost: %+v", s)
	}
	if s.ColorOnly == nil || !*s.ColorOnly {
		t.Fatal("color preference lost")
	}
}

func TestResetDropsEverything(t *testing.T) {
	m := NewManager()
	m.Mutate(7, func(s *Session) {
		s.State = StateShowingPhoto
		s.Place = nasa.PlaceEarth
		s.Date = time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC)
		s.DateSet = true
		s.Candidates = []nasa.PhotoRef{{URL: "u"}}
		s.CandidatesLoaded = true
		s.LastShownURL = "u"
	})
	m.Reset(7, StateDestination)
	s := m.Get(7)
	if s.State != StateDestination {
		t.Fatalf("state = %q, want %q", s.State, StateDestination)
	}
	if s.Place != "" || s.DateSet || s.CandidatesLoaded || s.LastShownURL != "" || s.Candidates != nil {
		t.Fatalf("reset kept data: %+v", s)
	}
}

func TestClearTripKeepsPlaceAndColor(t *testing.T) {
	m := NewManager()
	no := false
	m.Mutate(7, func(s *Session) {
		s.State = StateDateOrDestination
		s.Place = nasa.PlaceMars
		s.ColorOnly = &no
		s.Date = time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC)
		s.DateSet = true
		s.Candidates = []nasa.PhotoRef{{URL: "u"}}
		s.CandidatesLoaded = true
		s.LastShownURL = "u"
	})
	m.ClearTrip(7)
	s := m.Get(7)
	if s.Place != nasa.PlaceMars || s.ColorOnly == nil {
		t.Fatalf("destination data lost: %+v", s)
	}
	if s.DateSet || s.CandidatesLoaded || len(s.Candidates) != 0 || s.LastShownURL != "" {
		t.Fatalf("trip data kept: %+v", s)
	}
}
