package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Joseda-hg/kitchencheck/internal/auth"
	"github.com/Joseda-hg/kitchencheck/internal/checklist"
	sqlc "github.com/Joseda-hg/kitchencheck/internal/db/sqlc"
	"github.com/Joseda-hg/kitchencheck/internal/model"
	"github.com/Joseda-hg/kitchencheck/internal/schedule"
	"github.com/Joseda-hg/kitchencheck/internal/submission"
)

var (
	_ checklist.TaskRepository   = (*Store)(nil)
	_ checklist.RecordRepository = (*Store)(nil)
)

type Store struct {
	DB      *sql.DB
	Queries *sqlc.Queries
	loc     *time.Location
}

type StoreOption func(*Store)

// WithLocation sets the zone times are returned in. Storage is always UTC.
func WithLocation(loc *time.Location) StoreOption {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewStore(db *sql.DB, opts ...StoreOption) *Store {
	s := &Store{DB: db, Queries: sqlc.New(db), loc: time.Local}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Location() *time.Location {
	return s.loc
}

func (s *Store) CreateTask(ctx context.Context, session auth.Session, input TaskInput) (model.Task, error) {
	if err := auth.RequireRole(session, model.RoleManager); err != nil {
		return model.Task{}, err
	}
	if err := ValidateTask(input); err != nil {
		return model.Task{}, err
	}
	input = input.normalized()

	var created model.Task
	err := s.inTx(ctx, func(q *sqlc.Queries) error {
		task, err := s.createTask(ctx, q, session, input)
		created = task
		return err
	})
	return created, err
}

func (s *Store) createTask(ctx context.Context, q *sqlc.Queries, session auth.Session, input TaskInput) (model.Task, error) {
	payload, err := model.MarshalSchedule(input.Schedule())
	if err != nil {
		return model.Task{}, err
	}

	row, err := q.CreateTask(ctx, sqlc.CreateTaskParams{
		ID:           uuid.NewString(),
		Title:        input.Title,
		Description:  input.Description,
		InputType:    string(input.InputType),
		Schedule:     string(payload),
		RangeMin:     nullFloat(input.RangeMin),
		RangeMax:     nullFloat(input.RangeMax),
		AssignedRole: string(input.AssignedRole),
	})
	if err != nil {
		return model.Task{}, wrapTaskErr("create", "", err)
	}

	created, err := s.mapTask(row)
	if err != nil {
		return model.Task{}, err
	}

	if _, err := q.AddTaskEvent(ctx, sqlc.AddTaskEventParams{
		TaskID:    created.ID,
		ActorID:   session.UserID,
		EventType: "created",
		Details:   formatCreatedDetails(created),
	}); err != nil {
		return model.Task{}, wrapTaskErr("record event for", created.ID, err)
	}

	return created, nil
}

func (s *Store) UpdateTask(ctx context.Context, session auth.Session, taskID string, input TaskInput) (model.Task, error) {
	if err := auth.RequireRole(session, model.RoleManager); err != nil {
		return model.Task{}, err
	}
	if err := ValidateTask(input); err != nil {
		return model.Task{}, err
	}
	input = input.normalized()

	payload, err := model.MarshalSchedule(input.Schedule())
	if err != nil {
		return model.Task{}, err
	}

	var after model.Task
	err = s.inTx(ctx, func(q *sqlc.Queries) error {
		before, err := s.getTask(ctx, q, taskID)
		if err != nil {
			return err
		}

		row, err := q.UpdateTask(ctx, sqlc.UpdateTaskParams{
			Title:        input.Title,
			Description:  input.Description,
			InputType:    string(input.InputType),
			Schedule:     string(payload),
			RangeMin:     nullFloat(input.RangeMin),
			RangeMax:     nullFloat(input.RangeMax),
			AssignedRole: string(input.AssignedRole),
			IsActive:     before.IsActive,
			ID:           taskID,
		})
		if err != nil {
			return wrapTaskErr("update", taskID, err)
		}
		if after, err = s.mapTask(row); err != nil {
			return err
		}

		if _, err := q.AddTaskEvent(ctx, sqlc.AddTaskEventParams{
			TaskID:    taskID,
			ActorID:   session.UserID,
			EventType: "updated",
			Details:   formatTaskDiff(before, after),
		}); err != nil {
			return wrapTaskErr("record event for", taskID, err)
		}
		return nil
	})
	return after, err
}

// SetTaskActive hides a task from checklists or brings it back. Tasks are
// never deleted so their records stay attached.
func (s *Store) SetTaskActive(ctx context.Context, session auth.Session, taskID string, active bool) (model.Task, error) {
	if err := auth.RequireRole(session, model.RoleManager); err != nil {
		return model.Task{}, err
	}

	var after model.Task
	err := s.inTx(ctx, func(q *sqlc.Queries) error {
		row, err := q.GetTask(ctx, taskID)
		if err != nil {
			return wrapTaskErr("get", taskID, err)
		}
		if row.IsActive == active {
			after, err = s.mapTask(row)
			return err
		}

		row, err = q.UpdateTask(ctx, sqlc.UpdateTaskParams{
			Title:        row.Title,
			Description:  row.Description,
			InputType:    row.InputType,
			Schedule:     row.Schedule,
			RangeMin:     row.RangeMin,
			RangeMax:     row.RangeMax,
			AssignedRole: row.AssignedRole,
			IsActive:     active,
			ID:           taskID,
		})
		if err != nil {
			return wrapTaskErr("update", taskID, err)
		}
		if after, err = s.mapTask(row); err != nil {
			return err
		}

		eventType := "deactivated"
		if active {
			eventType = "reactivated"
		}
		if _, err := q.AddTaskEvent(ctx, sqlc.AddTaskEventParams{
			TaskID:    taskID,
			ActorID:   session.UserID,
			EventType: eventType,
			Details:   fmt.Sprintf("%s: title='%s'", eventType, after.Title),
		}); err != nil {
			return wrapTaskErr("record event for", taskID, err)
		}
		return nil
	})
	return after, err
}

func (s *Store) DeactivateTask(ctx context.Context, session auth.Session, taskID string) (model.Task, error) {
	return s.SetTaskActive(ctx, session, taskID, false)
}

// SeedTasks adds the default kitchen checks, skipping any whose title is
// already present. It returns the tasks it created.
func (s *Store) SeedTasks(ctx context.Context, session auth.Session) ([]model.Task, error) {
	if err := auth.RequireRole(session, model.RoleManager); err != nil {
		return nil, err
	}

	var created []model.Task
	err := s.inTx(ctx, func(q *sqlc.Queries) error {
		rows, err := q.ListTasks(ctx, true)
		if err != nil {
			return wrapTaskErr("list", "", err)
		}
		existing := make(map[string]struct{}, len(rows))
		for _, row := range rows {
			existing[strings.ToLower(row.Title)] = struct{}{}
		}

		for _, input := range DefaultTasks() {
			if _, ok := existing[strings.ToLower(input.Title)]; ok {
				continue
			}
			task, err := s.createTask(ctx, q, session, input.normalized())
			if err != nil {
				return err
			}
			created = append(created, task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) GetTask(ctx context.Context, session auth.Session, taskID string) (model.Task, error) {
	if session.UserID == "" {
		return model.Task{}, auth.ErrNoSession
	}
	return s.getTask(ctx, s.Queries, taskID)
}

func (s *Store) getTask(ctx context.Context, q *sqlc.Queries, taskID string) (model.Task, error) {
	row, err := q.GetTask(ctx, taskID)
	if err != nil {
		return model.Task{}, wrapTaskErr("get", taskID, err)
	}
	return s.mapTask(row)
}

// ListTasks returns active tasks. Only managers may ask for inactive ones.
func (s *Store) ListTasks(ctx context.Context, session auth.Session, includeInactive bool) ([]model.Task, error) {
	if session.UserID == "" {
		return nil, auth.ErrNoSession
	}
	if includeInactive && !session.IsManager() {
		return nil, auth.ErrForbidden
	}

	rows, err := s.Queries.ListTasks(ctx, includeInactive)
	if err != nil {
		return nil, wrapTaskErr("list", "", err)
	}

	tasks := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		task, err := s.mapTask(row)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (s *Store) ListTaskEvents(ctx context.Context, session auth.Session, taskID string) ([]model.TaskEvent, error) {
	if err := auth.RequireRole(session, model.RoleManager); err != nil {
		return nil, err
	}

	rows, err := s.Queries.ListTaskEvents(ctx, taskID)
	if err != nil {
		return nil, wrapTaskErr("list events for", taskID, err)
	}

	events := make([]model.TaskEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, model.TaskEvent{
			ID:        row.ID,
			TaskID:    row.TaskID,
			ActorID:   row.ActorID,
			EventType: row.EventType,
			Details:   row.Details,
			CreatedAt: row.CreatedAt.In(s.loc),
		})
	}
	return events, nil
}

// CreateRecord stores a completion by the session's user. Records cannot be
// changed afterwards.
func (s *Store) CreateRecord(ctx context.Context, session auth.Session, input model.RecordInput) (model.TaskRecord, error) {
	if session.UserID == "" {
		return model.TaskRecord{}, auth.ErrNoSession
	}

	completedAt := input.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}

	row, err := s.Queries.CreateRecord(ctx, sqlc.CreateRecordParams{
		ID:           uuid.NewString(),
		TaskID:       input.TaskID,
		CompletedBy:  session.UserID,
		CompletedAt:  completedAt.UTC(),
		ValueText:    nullString(input.ValueText),
		ValueNumber:  nullFloat(input.ValueNumber),
		ValueBoolean: nullBool(input.ValueBoolean),
		Flagged:      input.Flagged,
		FlagComment:  nullString(input.FlagComment),
	})
	if err != nil {
		return model.TaskRecord{}, wrapRecordErr("create", input.TaskID, err)
	}
	return s.mapRecord(row), nil
}

// ListRecordsBetween returns records completed in [start, end).
func (s *Store) ListRecordsBetween(ctx context.Context, session auth.Session, start, end time.Time) ([]model.TaskRecord, error) {
	if session.UserID == "" {
		return nil, auth.ErrNoSession
	}

	rows, err := s.Queries.ListRecordsBetween(ctx, sqlc.ListRecordsBetweenParams{
		Start: start.UTC(),
		End:   end.UTC(),
	})
	if err != nil {
		return nil, wrapRecordErr("list", "", err)
	}

	records := make([]model.TaskRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, s.mapRecord(row))
	}
	return records, nil
}

// ListRecords returns the compliance log, newest first. Managers only.
func (s *Store) ListRecords(ctx context.Context, session auth.Session, filter model.LogFilter) ([]model.RecordWithTask, error) {
	if err := auth.RequireRole(session, model.RoleManager); err != nil {
		return nil, err
	}

	rows, err := s.Queries.ListRecords(ctx, sqlc.ListRecordsParams{
		Start:       nullTime(filter.Start),
		End:         nullTime(filter.End),
		TaskID:      strings.TrimSpace(filter.TaskID),
		FlaggedOnly: filter.FlaggedOnly,
	})
	if err != nil {
		return nil, wrapRecordErr("list", "", err)
	}

	records := make([]model.RecordWithTask, 0, len(rows))
	for _, row := range rows {
		records = append(records, model.RecordWithTask{
			TaskRecord: s.mapRecord(sqlc.TaskRecord{
				ID:           row.ID,
				TaskID:       row.TaskID,
				CompletedBy:  row.CompletedBy,
				CompletedAt:  row.CompletedAt,
				ValueText:    row.ValueText,
				ValueNumber:  row.ValueNumber,
				ValueBoolean: row.ValueBoolean,
				Flagged:      row.Flagged,
				FlagComment:  row.FlagComment,
				CreatedAt:    row.CreatedAt,
			}),
			TaskTitle:       row.TaskTitle,
			TaskInputType:   model.InputType(row.TaskInputType),
			CompletedByName: row.CompletedByName,
		})
	}
	return records, nil
}

type UserInput struct {
	Email    string     `validate:"required,email"`
	FullName string     `validate:"required,max=200"`
	Role     model.Role `validate:"required,oneof=manager staff"`
	Password string     `validate:"required"`
}

func (s *Store) CreateUser(ctx context.Context, input UserInput) (model.User, error) {
	input.Email = auth.NormalizeEmail(input.Email)
	input.FullName = strings.TrimSpace(input.FullName)
	if err := validate.Struct(input); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			return model.User{}, fmt.Errorf("%w: %s", ErrInvalidUser, describeFieldError(fieldErrs[0]))
		}
		return model.User{}, fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}

	if _, err := s.Queries.GetUserByEmail(ctx, input.Email); err == nil {
		return model.User{}, ErrEmailTaken
	} else if err != sql.ErrNoRows {
		return model.User{}, wrapUserErr("look up", input.Email, err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}

	row, err := s.Queries.CreateUser(ctx, sqlc.CreateUserParams{
		ID:           uuid.NewString(),
		Email:        input.Email,
		FullName:     input.FullName,
		Role:         string(input.Role),
		PasswordHash: hash,
	})
	if err != nil {
		return model.User{}, wrapUserErr("create", input.Email, err)
	}
	return s.mapUser(row), nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (model.User, error) {
	row, err := s.Queries.GetUser(ctx, userID)
	if err != nil {
		return model.User{}, wrapUserErr("get", userID, err)
	}
	return s.mapUser(row), nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	count, err := s.Queries.CountUsers(ctx)
	if err != nil {
		return 0, wrapUserErr("count", "", err)
	}
	return count, nil
}

// Authenticate returns the user for email if password matches. Unknown
// emails and wrong passwords give the same error.
func (s *Store) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	row, err := s.Queries.GetUserByEmail(ctx, auth.NormalizeEmail(email))
	if err == sql.ErrNoRows {
		return model.User{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, wrapUserErr("look up", email, err)
	}
	user := s.mapUser(row)
	if err := auth.CheckPassword(user, password); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (s *Store) inTx(ctx context.Context, fn func(q *sqlc.Queries) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(s.Queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) mapTask(row sqlc.Task) (model.Task, error) {
	sched, err := model.UnmarshalSchedule([]byte(row.Schedule))
	if err != nil {
		return model.Task{}, wrapTaskErr("decode", row.ID, err)
	}
	return model.Task{
		ID:           row.ID,
		Title:        row.Title,
		Description:  row.Description,
		InputType:    model.InputType(row.InputType),
		Schedule:     sched,
		RangeMin:     floatPtr(row.RangeMin),
		RangeMax:     floatPtr(row.RangeMax),
		AssignedRole: model.Role(row.AssignedRole),
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt.In(s.loc),
	}, nil
}

func (s *Store) mapRecord(row sqlc.TaskRecord) model.TaskRecord {
	record := model.TaskRecord{
		ID:          row.ID,
		TaskID:      row.TaskID,
		CompletedBy: row.CompletedBy,
		CompletedAt: row.CompletedAt.In(s.loc),
		ValueNumber: floatPtr(row.ValueNumber),
		Flagged:     row.Flagged,
		CreatedAt:   row.CreatedAt.In(s.loc),
	}
	if row.ValueText.Valid {
		value := row.ValueText.String
		record.ValueText = &value
	}
	if row.ValueBoolean.Valid {
		value := row.ValueBoolean.Bool
		record.ValueBoolean = &value
	}
	if row.FlagComment.Valid {
		value := row.FlagComment.String
		record.FlagComment = &value
	}
	return record
}

func (s *Store) mapUser(row sqlc.User) model.User {
	return model.User{
		ID:           row.ID,
		Email:        row.Email,
		FullName:     row.FullName,
		Role:         model.Role(row.Role),
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.In(s.loc),
	}
}

func nullFloat(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *value, Valid: true}
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func nullBool(value *bool) sql.NullBool {
	if value == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *value, Valid: true}
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: value.UTC(), Valid: true}
}

func floatPtr(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	v := value.Float64
	return &v
}

func formatCreatedDetails(task model.Task) string {
	return fmt.Sprintf("created: title='%s' input=%s schedule='%s' range=%s role=%s", task.Title, task.InputType, schedule.Describe(task.Schedule), formatRange(task), task.AssignedRole)
}

func formatTaskDiff(before, after model.Task) string {
	changes := []string{}
	if before.Title != after.Title {
		changes = append(changes, formatChange("title", before.Title, after.Title))
	}
	if before.Description != after.Description {
		changes = append(changes, formatChange("description", before.Description, after.Description))
	}
	if before.InputType != after.InputType {
		changes = append(changes, formatChange("input", string(before.InputType), string(after.InputType)))
	}
	if schedule.Describe(before.Schedule) != schedule.Describe(after.Schedule) {
		changes = append(changes, formatChange("schedule", schedule.Describe(before.Schedule), schedule.Describe(after.Schedule)))
	}
	if formatRange(before) != formatRange(after) {
		changes = append(changes, formatChange("range", formatRange(before), formatRange(after)))
	}
	if before.AssignedRole != after.AssignedRole {
		changes = append(changes, formatChange("role", string(before.AssignedRole), string(after.AssignedRole)))
	}

	if len(changes) == 0 {
		return "updated: no changes"
	}

	return "updated: " + strings.Join(changes, "; ")
}

func formatChange(field, before, after string) string {
	return fmt.Sprintf("%s: '%s' -> '%s'", field, valueOrNone(before), valueOrNone(after))
}

func valueOrNone(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "none"
	}
	return trimmed
}

func formatRange(task model.Task) string {
	label, ok := submission.FormatRange(task)
	if !ok {
		return "none"
	}
	return label
}
