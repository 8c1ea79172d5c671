// Package submission classifies a candidate answer against a task's input
// contract. It never performs I/O; rejections are returned as values.
package submission

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Joseda-hg/kitchencheck/internal/model"
)

var ErrCommentRequired = errors.New("a comment is required for flagged submissions")

// Answer is a candidate value. Exactly one field is expected to be set,
// matching the task's input type.
type Answer struct {
	Text    *string  `json:"text,omitempty"`
	Number  *float64 `json:"number,omitempty"`
	Boolean *bool    `json:"boolean,omitempty"`
}

type Result struct {
	IsValid    bool   `json:"is_valid"`
	ShouldFlag bool   `json:"should_flag"`
	Message    string `json:"message,omitempty"`
}

const (
	msgEnterNumber   = "Please enter a number"
	msgSelectYesNo   = "Please select Yes or No"
	msgEnterResponse = "Please enter a response"
	msgBooleanNo     = `You selected "No". Please add a comment explaining why.`
)

func Validate(task model.Task, answer Answer) Result {
	switch task.InputType {
	case model.InputNumber:
		return validateNumber(task, answer.Number)
	case model.InputBoolean:
		if answer.Boolean == nil {
			return Result{Message: msgSelectYesNo}
		}
		if !*answer.Boolean {
			return Result{IsValid: true, ShouldFlag: true, Message: msgBooleanNo}
		}
		return Result{IsValid: true}
	case model.InputText:
		if answer.Text == nil || strings.TrimSpace(*answer.Text) == "" {
			return Result{Message: msgEnterResponse}
		}
		return Result{IsValid: true}
	default:
		return Result{IsValid: true}
	}
}

func validateNumber(task model.Task, value *float64) Result {
	if value == nil {
		return Result{Message: msgEnterNumber}
	}
	if task.RangeMin == nil && task.RangeMax == nil {
		return Result{IsValid: true}
	}

	belowMin := task.RangeMin != nil && *value < *task.RangeMin
	aboveMax := task.RangeMax != nil && *value > *task.RangeMax
	if !belowMin && !aboveMax {
		return Result{IsValid: true}
	}

	return Result{
		IsValid:    true,
		ShouldFlag: true,
		Message: fmt.Sprintf("Value %s is outside the acceptable range (%s). Please add a comment explaining the situation.",
			FormatNumber(*value), describeBounds(task.RangeMin, task.RangeMax)),
	}
}

func describeBounds(lower, upper *float64) string {
	switch {
	case lower != nil && upper != nil:
		return fmt.Sprintf("%s to %s", FormatNumber(*lower), FormatNumber(*upper))
	case lower != nil:
		return "at least " + FormatNumber(*lower)
	case upper != nil:
		return "at most " + FormatNumber(*upper)
	default:
		return ""
	}
}

// RequireComment enforces the flagged-answer policy a caller applies before
// persisting a record.
func RequireComment(result Result, comment string) error {
	if result.ShouldFlag && strings.TrimSpace(comment) == "" {
		return ErrCommentRequired
	}
	return nil
}

// FormatRange renders a number task's bounds for display. It reports false
// when there is nothing to show.
func FormatRange(task model.Task) (string, bool) {
	if task.InputType != model.InputNumber {
		return "", false
	}
	switch {
	case task.RangeMin != nil && task.RangeMax != nil:
		return fmt.Sprintf("%s to %s", FormatNumber(*task.RangeMin), FormatNumber(*task.RangeMax)), true
	case task.RangeMin != nil:
		return "≥ " + FormatNumber(*task.RangeMin), true
	case task.RangeMax != nil:
		return "≤ " + FormatNumber(*task.RangeMax), true
	default:
		return "", false
	}
}

func FormatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// ParseAnswer builds an Answer from raw form input for the given input type.
// Blank or unparseable input leaves the answer empty so Validate reports it.
func ParseAnswer(inputType model.InputType, raw string) Answer {
	trimmed := strings.TrimSpace(raw)
	switch inputType {
	case model.InputNumber:
		value, err := strconv.ParseFloat(trimmed, 64)
		if err == nil && !math.IsNaN(value) && !math.IsInf(value, 0) {
			return Answer{Number: &value}
		}
		return Answer{}
	case model.InputBoolean:
		switch strings.ToLower(trimmed) {
		case "yes", "y", "true", "1":
			value := true
			return Answer{Boolean: &value}
		case "no", "n", "false", "0":
			value := false
			return Answer{Boolean: &value}
		}
		return Answer{}
	default:
		return Answer{Text: &raw}
	}
}
