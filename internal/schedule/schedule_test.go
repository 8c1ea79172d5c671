package schedule

import (
	"testing"
	"time"

	"github.com/Joseda-hg/kitchencheck/internal/model"
)

func weekdaysTask(clock string) model.Task {
	return model.Task{Title: "Weekday check", Schedule: model.Weekly{Days: model.NewWeekdaySet(1, 2, 3, 4, 5), Time: clock}}
}

func TestIsDueTodayWeekly(t *testing.T) {
	task := weekdaysTask("09:00")

	tuesday := time.Date(2026, time.October, 13, 8, 0, 0, 0, time.Local)
	if tuesday.Weekday() != time.Tuesday {
		t.Fatalf("fixture is not a Tuesday: %s", tuesday.Weekday())
	}
	if !IsDueToday(task, tuesday) {
		t.Fatalf("expected weekday task to be due on Tuesday")
	}

	sunday := time.Date(2026, time.October, 11, 8, 0, 0, 0, time.Local)
	if IsDueToday(task, sunday) {
		t.Fatalf("expected weekday task not to be due on Sunday")
	}
}

func TestIsDueTodayDaily(t *testing.T) {
	task := model.Task{Schedule: model.Daily{Time: "07:00"}}
	start := time.Date(2026, time.October, 11, 0, 0, 0, 0, time.Local)
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		if !IsDueToday(task, day) {
			t.Fatalf("expected daily task due on %s", day.Weekday())
		}
	}
}

func TestScheduledTimeToday(t *testing.T) {
	loc := time.FixedZone("kitchen", 3600)
	today := time.Date(2026, time.March, 2, 17, 45, 12, 999, loc)

	got := ScheduledTimeToday(model.Task{Schedule: model.Daily{Time: "09:30"}}, today)
	want := time.Date(2026, time.March, 2, 9, 30, 0, 0, loc)
	if !got.Equal(want) || got.Location() != loc {
		t.Fatalf("expected %s, got %s", want, got)
	}

	fallback := ScheduledTimeToday(model.Task{Schedule: model.Daily{Time: "soon"}}, today)
	if fallback.Hour() != 0 || fallback.Minute() != 0 {
		t.Fatalf("expected malformed time to fall back to 00:00, got %s", fallback)
	}
}

func TestIsOverdue(t *testing.T) {
	task := model.Task{Schedule: model.Daily{Time: "09:00"}}
	day := time.Date(2026, time.October, 14, 0, 0, 0, 0, time.Local)

	cases := []struct {
		name      string
		task      model.Task
		completed bool
		now       time.Time
		want      bool
	}{
		{"before deadline", task, false, day.Add(8*time.Hour + 59*time.Minute), false},
		{"exactly at deadline", task, false, day.Add(9 * time.Hour), false},
		{"after deadline", task, false, day.Add(9*time.Hour + time.Second), true},
		{"completed after deadline", task, true, day.Add(23 * time.Hour), false},
		{"not due today", weekdaysTask("09:00"), false, time.Date(2026, time.October, 11, 23, 0, 0, 0, time.Local), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsOverdue(tc.task, tc.completed, tc.now); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestIsOverdueFalseWhenCompleted(t *testing.T) {
	tasks := []model.Task{
		{Schedule: model.Daily{Time: "00:00"}},
		{Schedule: model.Daily{Time: "23:59"}},
		weekdaysTask("06:00"),
	}
	start := time.Date(2026, time.October, 11, 0, 0, 0, 0, time.Local)
	for _, task := range tasks {
		for hour := 0; hour < 24*7; hour += 5 {
			now := start.Add(time.Duration(hour) * time.Hour)
			if IsOverdue(task, true, now) {
				t.Fatalf("completed task reported overdue at %s", now)
			}
		}
	}
}

func TestStatusOf(t *testing.T) {
	task := model.Task{Schedule: model.Daily{Time: "12:00"}}
	morning := time.Date(2026, time.October, 14, 10, 0, 0, 0, time.Local)
	evening := time.Date(2026, time.October, 14, 18, 0, 0, 0, time.Local)

	if got := StatusOf(task, false, morning); got != StatusPending {
		t.Fatalf("expected pending, got %s", got)
	}
	if got := StatusOf(task, false, evening); got != StatusOverdue {
		t.Fatalf("expected overdue, got %s", got)
	}
	if got := StatusOf(task, true, evening); got != StatusCompleted {
		t.Fatalf("expected completed, got %s", got)
	}
	sunday := time.Date(2026, time.October, 11, 18, 0, 0, 0, time.Local)
	if got := StatusOf(weekdaysTask("12:00"), false, sunday); got != StatusNotDue {
		t.Fatalf("expected not_due, got %s", got)
	}
}

func TestDayWindow(t *testing.T) {
	now := time.Date(2026, time.October, 14, 15, 4, 5, 0, time.UTC)
	start, end := DayWindow(now)
	if !start.Equal(time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %s", start)
	}
	if !end.Equal(time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end %s", end)
	}
}

func TestParseClock(t *testing.T) {
	valid := map[string][2]int{"00:00": {0, 0}, "09:05": {9, 5}, "23:59": {23, 59}}
	for value, want := range valid {
		hour, minute, err := ParseClock(value)
		if err != nil {
			t.Fatalf("parse %q: %v", value, err)
		}
		if hour != want[0] || minute != want[1] {
			t.Fatalf("parse %q: got %d:%d", value, hour, minute)
		}
	}

	for _, value := range []string{"", "9:00", "24:00", "12:60", "12-30", "ab:cd", "12:30:00", "+9:00", "-1:30", "09:+5", " 9:00"} {
		if _, _, err := ParseClock(value); err == nil {
			t.Fatalf("expected %q to be rejected", value)
		}
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(model.Daily{Time: "09:00"}); got != "Daily at 09:00" {
		t.Fatalf("unexpected daily description %q", got)
	}
	weekly := model.Weekly{Days: model.NewWeekdaySet(5, 1, 3), Time: "14:30"}
	if got := Describe(weekly); got != "Mon, Wed, Fri at 14:30" {
		t.Fatalf("unexpected weekly description %q", got)
	}
}
