package calendar

import (
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestParseEventRoundTrip(t *testing.T) {
	cases := []Event{
		{Action: ActionSetYear, Year: 2021, Month: -1, Day: -1},
		{Action: ActionSetMonth, Year: 2021, Month: 5, Day: -1},
		{Action: ActionSetDay, Year: 2021, Month: 5, Day: 1},
		{Action: ActionIgnore, Year: -1, Month: -1, Day: -1},
	}
	for _, want := range cases {
		got, err := ParseEvent(want.encode())
		if err != nil {
			t.Fatalf("ParseEvent(%q): %v", want.encode(), err)
		}
		if got != want {
			t.Errorf("roundtrip: got %+v, want %+v", got, want)
		}
	}
}

func TestParseEventRejectsMalformed(t *testing.T) {
	for _, payload := range []string{"", "SET-DAY|2021|5", "SET-DAY|x|5|1", "SET-DAY|2021|y|1", "a|b|c|d|e"} {
		if _, err := ParseEvent(payload); err == nil {
			t.Errorf("ParseEvent(%q) accepted malformed payload", payload)
		}
	}
}

func TestFullSelectionSequence(t *testing.T) {
	r := Handle(Event{Action: ActionSetYear, Year: 2021, Month: -1, Day: -1})
	if r.Selected || r.Markup == nil {
		t.Fatalf("SET-YEAR must re-render without selecting: %+v", r)
	}
	r = Handle(Event{Action: ActionSetMonth, Year: 2021, Month: 5, Day: -1})
	if r.Selected || r.Markup == nil {
		t.Fatalf("SET-MONTH must re-render without selecting: %+v", r)
	}
	r = Handle(Event{Action: ActionSetDay, Year: 2021, Month: 5, Day: 1})
	if !r.Selected {
		t.Fatal("SET-DAY must be terminal")
	}
	want := time.Date(2021, time.May, 1, 0, 0, 0, 0, time.UTC)
	if !r.Date.Equal(want) {
		t.Fatalf("date = %v, want %v", r.Date, want)
	}
	if r.Markup != nil {
		t.Fatal("terminal result must not carry a markup")
	}
}

func TestNoPartialDateEmitted(t *testing.T) {
	nonTerminal := []Event{
		{Action: ActionSetYear, Year: 2021, Month: -1, Day: -1},
		{Action: ActionPrevYears, Year: 2021, Month: -1, Day: -1},
		{Action: ActionNextYears, Year: 2021, Month: -1, Day: -1},
		{Action: ActionStart, Year: 2021, Month: -1, Day: -1},
		{Action: ActionSetMonth, Year: 2021, Month: 5, Day: -1},
		{Action: ActionIgnore, Year: -1, Month: -1, Day: -1},
		{Action: "NONSENSE", Year: 2021, Month: 5, Day: 1},
	}
	for _, e := range nonTerminal {
		if r := Handle(e); r.Selected {
			t.Errorf("event %+v emitted a date", e)
		}
	}
}

func TestSetDayValidatesBounds(t *testing.T) {
	for _, e := range []Event{
		{Action: ActionSetDay, Year: 2021, Month: 2, Day: 29},
		{Action: ActionSetDay, Year: 2021, Month: 13, Day: 1},
		{Action: ActionSetDay, Year: 2021, Month: 5, Day: 0},
	} {
		if r := Handle(e); r.Selected {
			t.Errorf("out-of-range %+v selected", e)
		}
	}
	if r := Handle(Event{Action: ActionSetDay, Year: 2020, Month: 2, Day: 29}); !r.Selected {
		t.Error("leap day 2020-02-29 rejected")
	}
}

func TestYearNavigationShiftsByFive(t *testing.T) {
	r := Handle(Event{Action: ActionPrevYears, Year: 2021, Month: -1, Day: -1})
	if r.Markup == nil {
		t.Fatal("PREV-YEARS must re-render")
	}
	if !markupContainsYear(r, 2016) || markupContainsYear(r, 2021) {
		t.Fatal("PREV-YEARS window not shifted back by 5")
	}
	r = Handle(Event{Action: ActionNextYears, Year: 2021, Month: -1, Day: -1})
	if !markupContainsYear(r, 2026) {
		t.Fatal("NEXT-YEARS window not shifted forward by 5")
	}
}

func markupContainsYear(r Result, year int) bool {
	for _, row := range r.Markup.InlineKeyboard {
		for _, b := range row {
			if strings.Contains(b.Data, "SET-YEAR|"+strconv.Itoa(year)+"|") {
				return true
			}
		}
	}
	return false
}

func TestMarkupOffersThreeYears(t *testing.T) {
	m := Markup(2021)
	if len(m.InlineKeyboard) != 2 {
		t.Fatalf("year control rows = %d, want 2", len(m.InlineKeyboard))
	}
	if got := len(m.InlineKeyboard[0]); got != 3 {
		t.Fatalf("year row has %d buttons, want 3", got)
	}
	if got := len(m.InlineKeyboard[1]); got != 2 {
		t.Fatalf("nav row has %d buttons, want 2", got)
	}
}

func TestMonthGridMondayFirst(t *testing.T) {
	// May 2021 starts on a Saturday: five leading blanks in a Monday-first week.
	grid := monthGrid(2021, time.May)
	first := grid[0]
	for i := 0; i < 5; i++ {
		if first[i] != 0 {
			t.Fatalf("cell %d of first week = %d, want blank", i, first[i])
		}
	}
	if first[5] != 1 || first[6] != 2 {
		t.Fatalf("first week tail = %v, want ... 1 2", first)
	}

	last := grid[len(grid)-1]
	if last[0] != 31 {
		t.Fatalf("May 2021 must end with 31 on Monday, got %v", last)
	}

	// All 31 days present exactly once.
	seen := make(map[int]bool)
	for _, week := range grid {
		for _, d := range week {
			if d == 0 {
				continue
			}
			if seen[d] {
				t.Fatalf("day %d appears twice", d)
			}
			seen[d] = true
		}
	}
	if len(seen) != 31 {
		t.Fatalf("grid holds %d days, want 31", len(seen))
	}
}

func TestDayMarkupBlanksAreIgnoreButtons(t *testing.T) {
	m := dayMarkup(2021, time.May)
	// Row 0: year/month header. Row 1: weekday names. Rows 2+: the grid.
	if len(m.InlineKeyboard) < 3 {
		t.Fatalf("day control rows = %d", len(m.InlineKeyboard))
	}
	for _, b := range m.InlineKeyboard[1] {
		if !strings.Contains(b.Data, string(ActionIgnore)) {
			t.Fatalf("weekday header button %q must be ignore", b.Data)
		}
	}
	firstWeek := m.InlineKeyboard[2]
	for i := 0; i < 5; i++ {
		if !strings.Contains(firstWeek[i].Data, string(ActionIgnore)) {
			t.Fatalf("blank cell %d is %q, want ignore", i, firstWeek[i].Data)
		}
	}
}
