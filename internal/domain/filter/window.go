package filter

import (
	"strings"
	"time"
)

// Window names a relative time range resolved against the current date
// at evaluation time.
type Window string

// Window values. Unknown tokens degrade to WindowAll rather than failing.
const (
	WindowAll          Window = "all"
	WindowLast5Years   Window = "last5years"
	WindowPast10Years  Window = "past10years"
	WindowLast12Months Window = "last12months"
	WindowCurrentYear  Window = "currentyear"
	WindowPreviousYear Window = "previousyear"
	WindowYearToDate   Window = "ytd"
)

// ParseWindow normalizes a window token. Unknown tokens map to WindowAll.
func ParseWindow(s string) Window {
	switch Window(strings.ToLower(strings.TrimSpace(s))) {
	case WindowLast5Years:
		return WindowLast5Years
	case WindowPast10Years:
		return WindowPast10Years
	case WindowLast12Months:
		return WindowLast12Months
	case WindowCurrentYear:
		return WindowCurrentYear
	case WindowPreviousYear:
		return WindowPreviousYear
	case WindowYearToDate:
		return WindowYearToDate
	default:
		return WindowAll
	}
}

// Range resolves the window to an inclusive [from, to] unix-second range.
// constrained is false for WindowAll: no date filtering at all.
func (w Window) Range(now time.Time) (from, to int64, constrained bool) {
	switch w {
	case WindowLast5Years:
		return now.AddDate(-5, 0, 0).Unix(), now.Unix(), true
	case WindowPast10Years:
		return now.AddDate(-10, 0, 0).Unix(), now.Unix(), true
	case WindowLast12Months:
		return now.AddDate(0, -12, 0).Unix(), now.Unix(), true
	case WindowCurrentYear:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return start.Unix(), start.AddDate(1, 0, 0).Unix() - 1, true
	case WindowPreviousYear:
		start := time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, now.Location())
		return start.Unix(), start.AddDate(1, 0, 0).Unix() - 1, true
	case WindowYearToDate:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return start.Unix(), now.Unix(), true
	default:
		return 0, 0, false
	}
}
