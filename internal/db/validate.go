package db

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Joseda-hg/kitchencheck/internal/model"
	"github.com/Joseda-hg/kitchencheck/internal/schedule"
)

// TaskInput is what a manager fills in to create or edit a task.
type TaskInput struct {
	Title        string          `json:"title" validate:"required,max=200"`
	Description  string          `json:"description" validate:"max=2000"`
	InputType    model.InputType `json:"input_type" validate:"required,oneof=text number boolean"`
	ScheduleType string          `json:"schedule_type" validate:"required,oneof=daily weekly"`
	Time         string          `json:"time" validate:"required,clock"`
	Days         []int           `json:"days" validate:"dive,min=0,max=6"`
	RangeMin     *float64        `json:"range_min"`
	RangeMax     *float64        `json:"range_max"`
	AssignedRole model.Role      `json:"assigned_role" validate:"required,oneof=manager staff"`
}

// TaskInputFrom returns the input that would recreate task.
func TaskInputFrom(task model.Task) TaskInput {
	input := TaskInput{
		Title:        task.Title,
		Description:  task.Description,
		InputType:    task.InputType,
		RangeMin:     task.RangeMin,
		RangeMax:     task.RangeMax,
		AssignedRole: task.AssignedRole,
	}
	switch s := task.Schedule.(type) {
	case model.Daily:
		input.ScheduleType = "daily"
		input.Time = s.Time
	case model.Weekly:
		input.ScheduleType = "weekly"
		input.Time = s.Time
		input.Days = s.Days.Days()
	}
	return input
}

func (in TaskInput) Schedule() model.Schedule {
	if in.ScheduleType == "weekly" {
		return model.Weekly{Days: model.NewWeekdaySet(in.Days...), Time: in.Time}
	}
	return model.Daily{Time: in.Time}
}

func (in TaskInput) normalized() TaskInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Time = strings.TrimSpace(in.Time)
	if in.InputType != model.InputNumber {
		in.RangeMin = nil
		in.RangeMax = nil
	}
	return in
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, _, err := schedule.ParseClock(fl.Field().String())
		return err == nil
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		in := sl.Current().Interface().(TaskInput)
		if in.ScheduleType == "weekly" && len(in.Days) == 0 {
			sl.ReportError(in.Days, "Days", "days", "weekdays", "")
		}
		if in.RangeMin != nil && in.RangeMax != nil && *in.RangeMin > *in.RangeMax {
			sl.ReportError(in.RangeMin, "RangeMin", "range_min", "range", "")
		}
	}, TaskInput{})
	return v
}

// ValidateTask checks a normalized input and describes every problem found.
func ValidateTask(in TaskInput) error {
	err := validate.Struct(in.normalized())
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidTask, strings.Join(messages, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	name, _, _ := strings.Cut(fe.StructField(), "[")
	field := fieldLabels[name]
	if field == "" {
		field = strings.ToLower(fe.Field())
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return field + " must be a valid email address"
	case "clock":
		return field + " must be HH:MM"
	case "weekdays":
		return "weekly schedules need at least one day"
	case "range":
		return "minimum must not be greater than maximum"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

var fieldLabels = map[string]string{
	"Title":        "title",
	"Description":  "description",
	"InputType":    "input type",
	"ScheduleType": "schedule type",
	"Time":         "time",
	"Days":         "day",
	"AssignedRole": "assigned role",
	"Email":        "email",
	"FullName":     "full name",
	"Role":         "role",
	"Password":     "password",
}
