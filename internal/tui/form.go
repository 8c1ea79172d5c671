package tui

import (
	"strings"

	"github.com/Joseda-hg/kitchencheck/internal/checklist"
	"github.com/Joseda-hg/kitchencheck/internal/model"
	"github.com/Joseda-hg/kitchencheck/internal/submission"
)

type formField struct {
	Label string
	Value string
}

const (
	fieldValue = iota
	fieldComment
)

// answerForm holds one in-progress answer for a due item.
type answerForm struct {
	item   checklist.Item
	fields []formField
	index  int
}

func newAnswerForm(item checklist.Item) *answerForm {
	return &answerForm{
		item: item,
		fields: []formField{
			{Label: valueLabel(item.Task.InputType)},
			{Label: "Comment"},
		},
	}
}

func valueLabel(inputType model.InputType) string {
	switch inputType {
	case model.InputNumber:
		return "Value (number)"
	case model.InputBoolean:
		return "Value (y/n, space/←→)"
	default:
		return "Response"
	}
}

func (f *answerForm) answer() submission.Answer {
	return submission.ParseAnswer(f.item.Task.InputType, f.fields[fieldValue].Value)
}

func (f *answerForm) comment() string {
	return strings.TrimSpace(f.fields[fieldComment].Value)
}

// preview classifies the current value without saving anything.
func (f *answerForm) preview() submission.Result {
	return submission.Validate(f.item.Task, f.answer())
}

func (f *answerForm) isBooleanField() bool {
	return f.index == fieldValue && f.item.Task.InputType == model.InputBoolean
}

func toggleYesNo(current string) string {
	if strings.EqualFold(strings.TrimSpace(current), "yes") {
		return "no"
	}
	return "yes"
}
