// Package checklist builds today's board from stored tasks and records and
// runs submissions through validation before they are persisted.
package checklist

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Joseda-hg/kitchencheck/internal/auth"
	"github.com/Joseda-hg/kitchencheck/internal/model"
	"github.com/Joseda-hg/kitchencheck/internal/schedule"
	"github.com/Joseda-hg/kitchencheck/internal/submission"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInactiveTask = errors.New("task is no longer active")
)

type TaskRepository interface {
	ListTasks(ctx context.Context, session auth.Session, includeInactive bool) ([]model.Task, error)
	GetTask(ctx context.Context, session auth.Session, taskID string) (model.Task, error)
}

type RecordRepository interface {
	ListRecordsBetween(ctx context.Context, session auth.Session, start, end time.Time) ([]model.TaskRecord, error)
	CreateRecord(ctx context.Context, session auth.Session, input model.RecordInput) (model.TaskRecord, error)
	ListRecords(ctx context.Context, session auth.Session, filter model.LogFilter) ([]model.RecordWithTask, error)
}

// SubmissionError carries the validation result that stopped a submission.
type SubmissionError struct {
	TaskID string
	Result submission.Result
	Err    error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("submit task %s: %v", e.TaskID, e.Err)
	}
	return fmt.Sprintf("submit task %s: %s", e.TaskID, e.Result.Message)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Message is the text to show the person submitting.
func (e *SubmissionError) Message() string {
	if e.Result.Message != "" {
		return e.Result.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "Invalid input"
}

type Item struct {
	Task        model.Task         `json:"task"`
	Status      schedule.Status    `json:"status"`
	ScheduledAt time.Time          `json:"scheduled_at"`
	Records     []model.TaskRecord `json:"records"`
	Range       string             `json:"range,omitempty"`
	Schedule    string             `json:"schedule"`
}

func (i Item) LastRecord() *model.TaskRecord {
	if len(i.Records) == 0 {
		return nil
	}
	return &i.Records[len(i.Records)-1]
}

type Summary struct {
	Due       int `json:"due"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
	Flagged   int `json:"flagged"`
}

type Board struct {
	Date      time.Time `json:"date"`
	Overdue   []Item    `json:"overdue"`
	Pending   []Item    `json:"pending"`
	Completed []Item    `json:"completed"`
	NotDue    []Item    `json:"not_due"`
	Summary   Summary   `json:"summary"`
}

// Due returns overdue then pending items, the order they are worked in.
func (b Board) Due() []Item {
	items := make([]Item, 0, len(b.Overdue)+len(b.Pending))
	items = append(items, b.Overdue...)
	return append(items, b.Pending...)
}

func (b Board) Find(taskID string) (Item, bool) {
	for _, group := range [][]Item{b.Overdue, b.Pending, b.Completed, b.NotDue} {
		for _, item := range group {
			if item.Task.ID == taskID {
				return item, true
			}
		}
	}
	return Item{}, false
}

type Service struct {
	tasks   TaskRepository
	records RecordRepository
	clock   func() time.Time
}

type Option func(*Service)

func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

func NewService(tasks TaskRepository, records RecordRepository, opts ...Option) *Service {
	s := &Service{tasks: tasks, records: records, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Now() time.Time {
	return s.clock()
}

// Board partitions the tasks visible to session by their status at now.
func (s *Service) Board(ctx context.Context, session auth.Session, now time.Time) (Board, error) {
	if session.UserID == "" {
		return Board{}, auth.ErrNoSession
	}

	tasks, err := s.tasks.ListTasks(ctx, session, false)
	if err != nil {
		return Board{}, fmt.Errorf("list tasks: %w", err)
	}

	start, end := schedule.DayWindow(now)
	records, err := s.records.ListRecordsBetween(ctx, session, start, end)
	if err != nil {
		return Board{}, fmt.Errorf("list today's records: %w", err)
	}

	recordsByTask := make(map[string][]model.TaskRecord, len(records))
	for _, record := range records {
		recordsByTask[record.TaskID] = append(recordsByTask[record.TaskID], record)
	}

	board := Board{Date: start}
	for _, task := range tasks {
		if !task.IsActive || !VisibleTo(session, task) {
			continue
		}

		todays := recordsByTask[task.ID]
		sort.Slice(todays, func(i, j int) bool {
			return todays[i].CompletedAt.Before(todays[j].CompletedAt)
		})
		item := Item{
			Task:        task,
			Status:      schedule.StatusOf(task, len(todays) > 0, now),
			ScheduledAt: schedule.ScheduledTimeToday(task, now),
			Records:     todays,
			Schedule:    schedule.Describe(task.Schedule),
		}
		if rangeLabel, ok := submission.FormatRange(task); ok {
			item.Range = rangeLabel
		}

		switch item.Status {
		case schedule.StatusOverdue:
			board.Overdue = append(board.Overdue, item)
		case schedule.StatusPending:
			board.Pending = append(board.Pending, item)
		case schedule.StatusCompleted:
			board.Completed = append(board.Completed, item)
		default:
			board.NotDue = append(board.NotDue, item)
		}

		for _, record := range todays {
			if record.Flagged {
				board.Summary.Flagged++
			}
		}
	}

	for _, group := range [][]Item{board.Overdue, board.Pending, board.Completed, board.NotDue} {
		sortByScheduledTime(group)
	}

	board.Summary.Overdue = len(board.Overdue)
	board.Summary.Pending = len(board.Pending)
	board.Summary.Completed = len(board.Completed)
	board.Summary.Due = board.Summary.Overdue + board.Summary.Pending + board.Summary.Completed
	return board, nil
}

// Check runs validation without persisting anything, for live form feedback.
func (s *Service) Check(ctx context.Context, session auth.Session, taskID string, answer submission.Answer) (submission.Result, error) {
	task, err := s.activeTask(ctx, session, taskID)
	if err != nil {
		return submission.Result{}, err
	}
	return submission.Validate(task, answer), nil
}

// Submit validates answer, applies the comment policy and stores a record.
func (s *Service) Submit(ctx context.Context, session auth.Session, taskID string, answer submission.Answer, comment string) (model.TaskRecord, error) {
	task, err := s.activeTask(ctx, session, taskID)
	if err != nil {
		return model.TaskRecord{}, err
	}
	if err := auth.RequireRole(session, task.AssignedRole); err != nil {
		return model.TaskRecord{}, err
	}

	result := submission.Validate(task, answer)
	if !result.IsValid {
		return model.TaskRecord{}, &SubmissionError{TaskID: task.ID, Result: result}
	}
	if err := submission.RequireComment(result, comment); err != nil {
		return model.TaskRecord{}, &SubmissionError{TaskID: task.ID, Result: result, Err: err}
	}

	input := model.RecordInput{
		TaskID:      task.ID,
		CompletedAt: s.clock(),
		Flagged:     result.ShouldFlag,
	}
	switch task.InputType {
	case model.InputNumber:
		input.ValueNumber = answer.Number
	case model.InputBoolean:
		input.ValueBoolean = answer.Boolean
	case model.InputText:
		input.ValueText = answer.Text
	default:
		return model.TaskRecord{}, fmt.Errorf("submit task %s: unsupported input type %q", task.ID, task.InputType)
	}
	if result.ShouldFlag {
		trimmed := strings.TrimSpace(comment)
		input.FlagComment = &trimmed
	}

	record, err := s.records.CreateRecord(ctx, session, input)
	if err != nil {
		return model.TaskRecord{}, fmt.Errorf("save record: %w", err)
	}
	return record, nil
}

// Log returns stored records matching filter, newest first. Managers only.
func (s *Service) Log(ctx context.Context, session auth.Session, filter model.LogFilter) ([]model.RecordWithTask, error) {
	if err := auth.RequireRole(session, model.RoleManager); err != nil {
		return nil, err
	}
	records, err := s.records.ListRecords(ctx, session, filter)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

func (s *Service) activeTask(ctx context.Context, session auth.Session, taskID string) (model.Task, error) {
	if session.UserID == "" {
		return model.Task{}, auth.ErrNoSession
	}
	task, err := s.tasks.GetTask(ctx, session, taskID)
	if err != nil {
		return model.Task{}, err
	}
	if !task.IsActive {
		return model.Task{}, ErrInactiveTask
	}
	return task, nil
}

// VisibleTo reports whether the session may see task: managers see every
// task, others only tasks assigned to their role.
func VisibleTo(session auth.Session, task model.Task) bool {
	return session.IsManager() || task.AssignedRole == session.Role
}

func sortByScheduledTime(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ScheduledAt.Equal(items[j].ScheduledAt) {
			return items[i].Task.Title < items[j].Task.Title
		}
		return items[i].ScheduledAt.Before(items[j].ScheduledAt)
	})
}
