package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type Role string

const (
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

type InputType string

const (
	InputText    InputType = "text"
	InputNumber  InputType = "number"
	InputBoolean InputType = "boolean"
)

type Task struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	InputType    InputType `json:"input_type"`
	Schedule     Schedule  `json:"schedule"`
	RangeMin     *float64  `json:"range_min"`
	RangeMax     *float64  `json:"range_max"`
	AssignedRole Role      `json:"assigned_role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// MarshalJSON writes the schedule in its tagged form.
func (t Task) MarshalJSON() ([]byte, error) {
	type plain Task
	schedule, err := MarshalSchedule(t.Schedule)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		plain
		Schedule json.RawMessage `json:"schedule"`
	}{plain: plain(t), Schedule: schedule})
}

type TaskRecord struct {
	ID           string    `json:"id"`
	TaskID       string    `json:"task_id"`
	CompletedBy  string    `json:"completed_by"`
	CompletedAt  time.Time `json:"completed_at"`
	ValueText    *string   `json:"value_text"`
	ValueNumber  *float64  `json:"value_number"`
	ValueBoolean *bool     `json:"value_boolean"`
	Flagged      bool      `json:"flagged"`
	FlagComment  *string   `json:"flag_comment"`
	CreatedAt    time.Time `json:"created_at"`
}

// RecordWithTask is a record joined with the fields of its task a log needs.
type RecordWithTask struct {
	TaskRecord
	TaskTitle       string    `json:"task_title"`
	TaskInputType   InputType `json:"task_input_type"`
	CompletedByName string    `json:"completed_by_name"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type TaskEvent struct {
	ID        int64     `json:"id"`
	TaskID    string    `json:"task_id"`
	ActorID   string    `json:"actor_id"`
	EventType string    `json:"event_type"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

type LogFilter struct {
	Start       *time.Time `json:"start"`
	End         *time.Time `json:"end"`
	TaskID      string     `json:"task_id"`
	FlaggedOnly bool       `json:"flagged_only"`
}

// Schedule is either Daily or Weekly.
type Schedule interface {
	// Clock returns the "HH:MM" time of day the task is due.
	Clock() string
	isSchedule()
}

type Daily struct {
	Time string
}

func (Daily) isSchedule()      {}
func (d Daily) Clock() string { return d.Time }

type Weekly struct {
	Days WeekdaySet
	Time string
}

func (Weekly) isSchedule()      {}
func (w Weekly) Clock() string { return w.Time }

// WeekdaySet holds weekday indices, 0 = Sunday through 6 = Saturday.
type WeekdaySet uint8

func NewWeekdaySet(days ...int) WeekdaySet {
	var set WeekdaySet
	for _, day := range days {
		if day >= 0 && day <= 6 {
			set |= 1 << uint(day)
		}
	}
	return set
}

func (s WeekdaySet) Has(day time.Weekday) bool {
	if day < time.Sunday || day > time.Saturday {
		return false
	}
	return s&(1<<uint(day)) != 0
}

// Days returns the members in ascending order.
func (s WeekdaySet) Days() []int {
	days := make([]int, 0, 7)
	for day := 0; day <= 6; day++ {
		if s&(1<<uint(day)) != 0 {
			days = append(days, day)
		}
	}
	return days
}

func (s WeekdaySet) Empty() bool {
	return s == 0
}

type scheduleJSON struct {
	Type string `json:"type"`
	Days []int  `json:"days,omitempty"`
	Time string `json:"time"`
}

func MarshalSchedule(schedule Schedule) ([]byte, error) {
	switch s := schedule.(type) {
	case Daily:
		return json.Marshal(scheduleJSON{Type: "daily", Time: s.Time})
	case Weekly:
		return json.Marshal(scheduleJSON{Type: "weekly", Days: s.Days.Days(), Time: s.Time})
	case nil:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("unknown schedule %T", schedule)
	}
}

func UnmarshalSchedule(data []byte) (Schedule, error) {
	var raw scheduleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse schedule: %w", err)
	}
	switch raw.Type {
	case "daily":
		return Daily{Time: raw.Time}, nil
	case "weekly":
		for _, day := range raw.Days {
			if day < 0 || day > 6 {
				return nil, fmt.Errorf("parse schedule: weekday %d out of range", day)
			}
		}
		return Weekly{Days: NewWeekdaySet(raw.Days...), Time: raw.Time}, nil
	default:
		return nil, fmt.Errorf("parse schedule: unknown type %q", raw.Type)
	}
}

// RecordInput is a validated submission ready to be stored.
type RecordInput struct {
	TaskID       string
	CompletedAt  time.Time
	ValueText    *string
	ValueNumber  *float64
	ValueBoolean *bool
	Flagged      bool
	FlagComment  *string
}
