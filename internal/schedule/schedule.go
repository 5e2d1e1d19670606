// Package schedule parses per-game weekly hosting schedules.
//
// A schedule is written as hour tokens separated by '#'. A single token
// applies to every day; seven tokens map to Monday through Sunday.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const Delimiter = "#"

type ParseError struct {
	Game   string
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid schedule %q for game %s: %s", e.Text, e.Game, e.Reason)
}

// GameSchedule holds the hosting hour (UTC) for each weekday, indexed by
// time.Weekday.
type GameSchedule struct {
	Name  string
	Hours [7]int
}

// weekOrder is the positional order of the seven-token form.
var weekOrder = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

func Parse(name, text string) (GameSchedule, error) {
	var tokens []string
	for _, tok := range strings.Split(text, Delimiter) {
		if tok = strings.TrimSpace(tok); tok != "" {
			tokens = append(tokens, tok)
		}
	}

	fail := func(reason string) (GameSchedule, error) {
		return GameSchedule{}, &ParseError{Game: name, Text: text, Reason: reason}
	}

	if len(tokens) != 1 && len(tokens) != 7 {
		return fail(fmt.Sprintf("expected 1 or 7 hours, got %d", len(tokens)))
	}

	hours := make([]int, len(tokens))
	for i, tok := range tokens {
		h, err := strconv.Atoi(tok)
		if err != nil {
			return fail(fmt.Sprintf("%q is not an hour", tok))
		}
		if h < 0 || h > 23 {
			return fail(fmt.Sprintf("hour %d out of range 0-23", h))
		}
		hours[i] = h
	}

	s := GameSchedule{Name: name}
	for i, day := range weekOrder {
		if len(hours) == 1 {
			s.Hours[day] = hours[0]
		} else {
			s.Hours[day] = hours[i]
		}
	}

	return s, nil
}

func (s GameSchedule) HourFor(day time.Weekday) int {
	return s.Hours[day]
}

// NeedsHost reports whether the scheduled hour for now's weekday has been
// reached. It stays true for the rest of that UTC day.
func NeedsHost(s GameSchedule, now time.Time) bool {
	now = now.UTC()
	return now.Hour() >= s.Hours[now.Weekday()]
}

// Slot identifies the scheduled hosting slot for now's UTC day.
func Slot(s GameSchedule, now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("%s@%02d", now.Format(time.DateOnly), s.Hours[now.Weekday()])
}

// String renders the schedule in its seven-token form.
func (s GameSchedule) String() string {
	parts := make([]string, len(weekOrder))
	for i, day := range weekOrder {
		parts[i] = strconv.Itoa(s.Hours[day])
	}

	return strings.Join(parts, Delimiter)
}
