// Package calendar renders the inline year→month→day picker and interprets
// its button presses. The dialog commits nothing until a day is chosen: only
// SET-DAY is terminal, every other action just re-renders the control.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/astralex/spacebot/core/telegram/keyboard"
)

// Unique is the telebot callback key all calendar buttons share.
const Unique = "cal"

// Action names a calendar button press.
type Action string

const (
	ActionSetYear   Action = "SET-YEAR"
	ActionPrevYears Action = "PREV-YEARS"
	ActionNextYears Action = "NEXT-YEARS"
	ActionStart     Action = "START"
	ActionSetMonth  Action = "SET-MONTH"
	ActionSetDay    Action = "SET-DAY"
	ActionIgnore    Action = "IGNORE"
)

// yearSpan is how far the prev/next arrows shift the year selection.
const yearSpan = 5

var monthNames = [...]string{
	"Январь", "Февраль", "Март",
	"Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь",
	"Октябрь", "Ноябрь", "Декабрь",
}

var weekdayNames = [...]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

// Event is one decoded calendar button press.
type Event struct {
	Action Action
	Year   int
	Month  int
	Day    int
}

func (e Event) encode() string {
	return fmt.Sprintf("%s|%d|%d|%d", e.Action, e.Year, e.Month, e.Day)
}

// ParseEvent decodes an act|year|month|day payload.
func ParseEvent(payload string) (Event, error) {
	parts := strings.Split(payload, "|")
	if len(parts) != 4 {
		return Event{}, fmt.Errorf("calendar: malformed payload %q", payload)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return Event{}, fmt.Errorf("calendar: bad year in %q", payload)
	}
	month, err := strconv.Atoi(parts[2])
	if err != nil {
		return Event{}, fmt.Errorf("calendar: bad month in %q", payload)
	}
	day, err := strconv.Atoi(parts[3])
	if err != nil {
		return Event{}, fmt.Errorf("calendar: bad day in %q", payload)
	}
	return Event{Action: Action(parts[0]), Year: year, Month: month, Day: day}, nil
}

// Result describes what a handled event produced.
type Result struct {
	// Selected is true only for a terminal SET-DAY press.
	Selected bool
	// Date is the full selection; valid only when Selected.
	Date time.Time
	// Markup, when non-nil, is the control to re-render in place.
	Markup *tele.ReplyMarkup
	// Ack marks an IGNORE press: acknowledge, change nothing.
	Ack bool
}

// Handle maps a calendar event to its result. Unknown actions yield a zero
// Result, which callers treat as "nothing selected, nothing to render".
func Handle(e Event) Result {
	switch e.Action {
	case ActionIgnore:
		return Result{Ack: true}
	case ActionSetYear:
		return Result{Markup: monthMarkup(e.Year)}
	case ActionPrevYears:
		return Result{Markup: Markup(e.Year - yearSpan)}
	case ActionNextYears:
		return Result{Markup: Markup(e.Year + yearSpan)}
	case ActionStart:
		return Result{Markup: Markup(e.Year)}
	case ActionSetMonth:
		if e.Month < 1 || e.Month > 12 {
			return Result{}
		}
		return Result{Markup: dayMarkup(e.Year, time.Month(e.Month))}
	case ActionSetDay:
		if e.Month < 1 || e.Month > 12 || e.Day < 1 || e.Day > daysIn(e.Year, time.Month(e.Month)) {
			return Result{}
		}
		return Result{
			Selected: true,
			Date:     time.Date(e.Year, time.Month(e.Month), e.Day, 0, 0, 0, 0, time.UTC),
		}
	default:
		return Result{}
	}
}

func btn(text string, e Event) keyboard.InlineBtn {
	return keyboard.InlineBtn{Text: text, Unique: Unique, Data: e.encode()}
}

func ignoreBtn() keyboard.InlineBtn {
	return btn(" ", Event{Action: ActionIgnore, Year: -1, Month: -1, Day: -1})
}

// Markup renders the year-selection control: the three years up to and
// including year, plus arrows shifting the window by five years.
func Markup(year int) *tele.ReplyMarkup {
	years := make([]keyboard.InlineBtn, 0, 3)
	for v := year - 2; v <= year; v++ {
		years = append(years, btn(strconv.Itoa(v), Event{Action: ActionSetYear, Year: v, Month: -1, Day: -1}))
	}
	nav := []keyboard.InlineBtn{
		btn("⬅️", Event{Action: ActionPrevYears, Year: year, Month: -1, Day: -1}),
		btn("➡️", Event{Action: ActionNextYears, Year: year, Month: -1, Day: -1}),
	}
	return keyboard.InlineButtonsRows(years, nav)
}

func monthMarkup(year int) *tele.ReplyMarkup {
	head := []keyboard.InlineBtn{
		ignoreBtn(),
		btn(strconv.Itoa(year), Event{Action: ActionStart, Year: year, Month: -1, Day: -1}),
		ignoreBtn(),
	}
	var firstHalf, secondHalf []keyboard.InlineBtn
	for i, name := range monthNames {
		b := btn(name, Event{Action: ActionSetMonth, Year: year, Month: i + 1, Day: -1})
		if i < 6 {
			firstHalf = append(firstHalf, b)
		} else {
			secondHalf = append(secondHalf, b)
		}
	}
	return keyboard.InlineButtonsRows(head, firstHalf, secondHalf)
}

func dayMarkup(year int, month time.Month) *tele.ReplyMarkup {
	head := []keyboard.InlineBtn{
		btn(strconv.Itoa(year), Event{Action: ActionStart, Year: year, Month: -1, Day: -1}),
		btn(monthNames[month-1], Event{Action: ActionSetYear, Year: year, Month: -1, Day: -1}),
	}
	week := make([]keyboard.InlineBtn, 0, 7)
	for _, name := range weekdayNames {
		week = append(week, keyboard.InlineBtn{Text: name, Unique: Unique, Data: ignoreBtn().Data})
	}

	rows := [][]keyboard.InlineBtn{head, week}
	for _, gridRow := range monthGrid(year, month) {
		row := make([]keyboard.InlineBtn, 0, 7)
		for _, day := range gridRow {
			if day == 0 {
				row = append(row, ignoreBtn())
				continue
			}
			row = append(row, btn(strconv.Itoa(day),
				Event{Action: ActionSetDay, Year: year, Month: int(month), Day: day}))
		}
		rows = append(rows, row)
	}
	return keyboard.InlineButtonsRows(rows...)
}

// monthGrid lays the month out in Monday-first weeks; cells outside the
// month are zero.
func monthGrid(year int, month time.Month) [][7]int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// time.Weekday has Sunday = 0; shift so Monday = 0.
	offset := (int(first.Weekday()) + 6) % 7
	total := daysIn(year, month)

	var grid [][7]int
	day := 1
	for day <= total {
		var week [7]int
		for i := 0; i < 7; i++ {
			if len(grid) == 0 && i < offset {
				continue
			}
			if day > total {
				break
			}
			week[i] = day
			day++
		}
		grid = append(grid, week)
	}
	return grid
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
