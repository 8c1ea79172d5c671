// Package schedule answers when a task is due and whether it is overdue.
// Everything here is pure date arithmetic over model values.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Joseda-hg/kitchencheck/internal/model"
)

// Status is the per-day state of a task. It is derived on every query and
// never stored.
type Status string

const (
	StatusNotDue    Status = "not_due"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
)

var dayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// IsDueToday reports whether the task's schedule includes today's weekday.
func IsDueToday(task model.Task, today time.Time) bool {
	switch s := task.Schedule.(type) {
	case model.Daily:
		return true
	case model.Weekly:
		return s.Days.Has(today.Weekday())
	default:
		return false
	}
}

// ScheduledTimeToday returns today's date at the task's HH:MM in today's
// location. Unparseable hour or minute components read as zero.
func ScheduledTimeToday(task model.Task, today time.Time) time.Time {
	var clock string
	if task.Schedule != nil {
		clock = task.Schedule.Clock()
	}
	hour, minute := lenientClock(clock)
	year, month, day := today.Date()
	return time.Date(year, month, day, hour, minute, 0, 0, today.Location())
}

// IsOverdue reports whether a due, uncompleted task is past its time today.
func IsOverdue(task model.Task, completedToday bool, now time.Time) bool {
	if completedToday {
		return false
	}
	if !IsDueToday(task, now) {
		return false
	}
	return now.After(ScheduledTimeToday(task, now))
}

// StatusOf derives the task's status for the day containing now.
func StatusOf(task model.Task, completedToday bool, now time.Time) Status {
	switch {
	case !IsDueToday(task, now):
		return StatusNotDue
	case completedToday:
		return StatusCompleted
	case IsOverdue(task, completedToday, now):
		return StatusOverdue
	default:
		return StatusPending
	}
}

// DayWindow returns the local calendar day containing t as [start, end).
func DayWindow(t time.Time) (time.Time, time.Time) {
	year, month, day := t.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	return start, time.Date(year, month, day+1, 0, 0, 0, 0, t.Location())
}

// ParseClock parses a strict 24-hour "HH:MM" value.
func ParseClock(value string) (int, int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 || !isTwoDigits(parts[0]) || !isTwoDigits(parts[1]) {
		return 0, 0, fmt.Errorf("invalid time %q: want HH:MM", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour, minute, nil
}

func isTwoDigits(part string) bool {
	return len(part) == 2 && part[0] >= '0' && part[0] <= '9' && part[1] >= '0' && part[1] <= '9'
}

func lenientClock(value string) (int, int) {
	hourPart, minutePart, _ := strings.Cut(value, ":")
	hour, err := strconv.Atoi(strings.TrimSpace(hourPart))
	if err != nil {
		hour = 0
	}
	minute, err := strconv.Atoi(strings.TrimSpace(minutePart))
	if err != nil {
		minute = 0
	}
	return hour, minute
}

// Describe renders a schedule for display, e.g. "Mon, Thu at 08:30".
func Describe(s model.Schedule) string {
	switch v := s.(type) {
	case model.Daily:
		return fmt.Sprintf("Daily at %s", v.Time)
	case model.Weekly:
		days := v.Days.Days()
		names := make([]string, 0, len(days))
		for _, day := range days {
			names = append(names, dayNames[day])
		}
		return fmt.Sprintf("%s at %s", strings.Join(names, ", "), v.Time)
	default:
		return "unscheduled"
	}
}

// DayName returns the short name for a 0 (Sunday) to 6 weekday index.
func DayName(day int) string {
	if day < 0 || day > 6 {
		return ""
	}
	return dayNames[day]
}
