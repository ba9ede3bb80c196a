package reconcile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Times of day applied to the calendar dates of a schedule rule.
const (
	openHour, openMinute = 0, 0
	dueHour, dueMinute   = 23, 59
)

// MonthDay is a calendar date without a year, as written in the rule
// tables ("1/19" means January 19).
type MonthDay struct {
	Month time.Month
	Day   int
}

// ParseMonthDay parses "M/D".
func ParseMonthDay(s string) (MonthDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "/", 2)
	if len(parts) != 2 {
		return MonthDay{}, fmt.Errorf("bad month/day %q", s)
	}
	m, err := strconv.Atoi(parts[0])
	if err != nil || m < 1 || m > 12 {
		return MonthDay{}, fmt.Errorf("bad month in %q", s)
	}
	d, err := strconv.Atoi(parts[1])
	if err != nil || d < 1 || d > 31 {
		return MonthDay{}, fmt.Errorf("bad day in %q", s)
	}
	return MonthDay{Month: time.Month(m), Day: d}, nil
}

// Rule maps a chapter to its availability dates. Close is optional and
// defaults to Due.
type Rule struct {
	Available MonthDay
	Due       MonthDay
	Close     *MonthDay
}

// Resolver turns chapter numbers into absolute availability windows.
// Location must be a civil timezone: each boundary gets the UTC offset in
// force on its own calendar date, so dates on opposite sides of a seasonal
// clock change render with different offsets.
type Resolver struct {
	Year     int
	Location *time.Location
	Rules    map[int]Rule
}

// Resolve returns the window for a chapter, or UnknownChapterError.
func (r Resolver) Resolve(chapter int) (Window, error) {
	rule, ok := r.Rules[chapter]
	if !ok {
		return Window{}, &UnknownChapterError{Chapter: chapter}
	}

	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}

	open := time.Date(r.Year, rule.Available.Month, rule.Available.Day, openHour, openMinute, 0, 0, loc)
	due := time.Date(r.Year, rule.Due.Month, rule.Due.Day, dueHour, dueMinute, 0, 0, loc)

	if due.Before(open) {
		return Window{}, fmt.Errorf("schedule rule for chapter %d has due %s before open %s",
			chapter, due.Format("1/2"), open.Format("1/2"))
	}

	closeAt := due
	if rule.Close != nil {
		closeAt = time.Date(r.Year, rule.Close.Month, rule.Close.Day, dueHour, dueMinute, 0, 0, loc)
	}

	return Window{OpenAt: open, DueAt: due, CloseAt: closeAt}, nil
}

// ISO renders a timestamp as ISO-8601 with an explicit numeric UTC offset,
// the only wire format the remote API accepts without ambiguity.
func ISO(t time.Time) string {
	return t.Format("2006-01-02T15:04:05-07:00")
}

var (
	moduleTitleRe   = regexp.MustCompile(`(?i)module\s+(\d+)`)
	chapterPrefixRe = regexp.MustCompile(`^(\d+)\.`)
)

// ChapterFromTitle extracts the chapter number from entity display names.
// Two conventions exist in course content: "Module 3 - ..." for modules,
// pages and discussions, and a "3.1.2 Lab" numeric prefix for assignments,
// where the chapter is the first number before the first dot.
func ChapterFromTitle(title string) int {
	title = strings.TrimSpace(title)
	if m := moduleTitleRe.FindStringSubmatch(title); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if m := chapterPrefixRe.FindStringSubmatch(title); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 0
}
