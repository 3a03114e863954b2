package core

import (
	"regexp"
	"time"
)

const dateLayout = "2006-01-02"

// generationWeeks is the length of the window generateCalendar fills.
const generationWeeks = 2

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type CalendarView string

const (
	ViewWeek  CalendarView = "week"
	ViewMonth CalendarView = "month"
)

func (v CalendarView) Valid() bool {
	return v == ViewWeek || v == ViewMonth
}

type CalendarSettings struct {
	PostsPerDay int `json:"posts_per_day"` // 1..10
	DaysPerWeek int `json:"days_per_week"` // 5, 6 or 7
}

func DefaultCalendarSettings() CalendarSettings {
	return CalendarSettings{PostsPerDay: 3, DaysPerWeek: 7}
}

func (s CalendarSettings) Valid() bool {
	if s.PostsPerDay < 1 || s.PostsPerDay > 10 {
		return false
	}
	return s.DaysPerWeek >= 5 && s.DaysPerWeek <= 7
}

type SettingsUpdate struct {
	PostsPerDay *int `json:"posts_per_day,omitempty"`
	DaysPerWeek *int `json:"days_per_week,omitempty"`
}

// ViewState is the calendar's shared navigation state.
type ViewState struct {
	View        CalendarView     `json:"view"`
	CurrentDate string           `json:"current_date"` // YYYY-MM-DD
	Settings    CalendarSettings `json:"settings"`
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ValidClock reports whether s is a 24-hour HH:MM time.
func ValidClock(s string) bool {
	return clockPattern.MatchString(s)
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StartOfWeek returns the Monday of t's week.
func StartOfWeek(t time.Time) time.Time {
	t = civilDate(t)
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// WeekDays returns the seven days of t's week, Monday first.
func WeekDays(t time.Time) []time.Time {
	start := StartOfWeek(t)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// WeekRange returns the Monday and Sunday of t's week.
func WeekRange(t time.Time) (time.Time, time.Time) {
	start := StartOfWeek(t)
	return start, start.AddDate(0, 0, 6)
}

// GenerationWindow returns the first and last dates, inclusive, of the
// two-week window generated for a view positioned on t.
func GenerationWindow(t time.Time) (string, string) {
	start := StartOfWeek(t)
	end := start.AddDate(0, 0, 7*generationWeeks-1)
	return FormatDate(start), FormatDate(end)
}

// step moves date one view-length in direction dir (+1 or -1).
func step(view CalendarView, date time.Time, dir int) time.Time {
	if view == ViewMonth {
		return date.AddDate(0, dir, 0)
	}
	return date.AddDate(0, 0, 7*dir)
}
