package submission

import (
	"errors"
	"strings"
	"testing"

	"github.com/Joseda-hg/kitchencheck/internal/model"
)

func ptr[T any](v T) *T {
	return &v
}

func numberTask(min, max *float64) model.Task {
	return model.Task{Title: "Fridge temperature check", InputType: model.InputNumber, RangeMin: min, RangeMax: max}
}

func TestValidateNumberRangeBoundaries(t *testing.T) {
	task := numberTask(ptr(0.0), ptr(5.0))

	cases := []struct {
		value float64
		flag  bool
	}{
		{-0.1, true},
		{-3, true},
		{0, false},
		{2.5, false},
		{5, false},
		{5.01, true},
		{7, true},
	}
	for _, tc := range cases {
		result := Validate(task, Answer{Number: ptr(tc.value)})
		if !result.IsValid {
			t.Fatalf("value %v: expected valid", tc.value)
		}
		if result.ShouldFlag != tc.flag {
			t.Fatalf("value %v: expected flag=%v, got %v", tc.value, tc.flag, result.ShouldFlag)
		}
		if tc.flag && result.Message == "" {
			t.Fatalf("value %v: expected a message for flagged value", tc.value)
		}
	}
}

func TestValidateNumberOutOfRangeMessage(t *testing.T) {
	result := Validate(numberTask(ptr(0.0), ptr(5.0)), Answer{Number: ptr(7.0)})
	if !result.IsValid || !result.ShouldFlag {
		t.Fatalf("expected valid and flagged, got %+v", result)
	}
	if !strings.Contains(result.Message, "0 to 5") {
		t.Fatalf("expected message to name the range, got %q", result.Message)
	}
	if !strings.Contains(result.Message, "Value 7 ") {
		t.Fatalf("expected message to name the value, got %q", result.Message)
	}
}

func TestValidateNumberSingleBoundMessages(t *testing.T) {
	below := Validate(numberTask(ptr(63.0), nil), Answer{Number: ptr(60.0)})
	if !below.ShouldFlag || !strings.Contains(below.Message, "at least 63") {
		t.Fatalf("unexpected result for min-only bound: %+v", below)
	}

	above := Validate(numberTask(nil, ptr(-18.0)), Answer{Number: ptr(-10.0)})
	if !above.ShouldFlag || !strings.Contains(above.Message, "at most -18") {
		t.Fatalf("unexpected result for max-only bound: %+v", above)
	}

	inside := Validate(numberTask(nil, ptr(-18.0)), Answer{Number: ptr(-20.0)})
	if inside.ShouldFlag {
		t.Fatalf("expected -20 to satisfy max -18")
	}
}

func TestValidateNumberWithoutBoundsNeverFlags(t *testing.T) {
	task := numberTask(nil, nil)
	for _, value := range []float64{-1e9, -1, 0, 1, 42.5, 1e9} {
		result := Validate(task, Answer{Number: ptr(value)})
		if !result.IsValid || result.ShouldFlag {
			t.Fatalf("value %v: expected valid and unflagged, got %+v", value, result)
		}
	}
}

func TestValidateNumberMissing(t *testing.T) {
	result := Validate(numberTask(ptr(0.0), ptr(5.0)), Answer{})
	if result.IsValid || result.ShouldFlag {
		t.Fatalf("expected invalid unflagged result, got %+v", result)
	}
	if result.Message != "Please enter a number" {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestValidateBoolean(t *testing.T) {
	task := model.Task{Title: "Delivery inspection", InputType: model.InputBoolean}

	no := Validate(task, Answer{Boolean: ptr(false)})
	if !no.IsValid || !no.ShouldFlag || no.Message == "" {
		t.Fatalf("expected false to be valid and flagged, got %+v", no)
	}

	yes := Validate(task, Answer{Boolean: ptr(true)})
	if !yes.IsValid || yes.ShouldFlag {
		t.Fatalf("expected true to be valid and unflagged, got %+v", yes)
	}

	missing := Validate(task, Answer{})
	if missing.IsValid {
		t.Fatalf("expected missing boolean to be invalid")
	}
}

func TestValidateText(t *testing.T) {
	task := model.Task{Title: "Notes", InputType: model.InputText}

	for _, blank := range []string{"", "  ", "\t\n"} {
		if result := Validate(task, Answer{Text: ptr(blank)}); result.IsValid {
			t.Fatalf("expected %q to be invalid", blank)
		}
	}
	if result := Validate(task, Answer{}); result.IsValid {
		t.Fatalf("expected missing text to be invalid")
	}

	result := Validate(task, Answer{Text: ptr("all clean")})
	if !result.IsValid || result.ShouldFlag {
		t.Fatalf("expected non-blank text to be valid and unflagged, got %+v", result)
	}
}

func TestValidateUnknownInputTypeIsPermissive(t *testing.T) {
	result := Validate(model.Task{InputType: "photo"}, Answer{})
	if !result.IsValid || result.ShouldFlag {
		t.Fatalf("expected permissive fallback, got %+v", result)
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	task := numberTask(ptr(0.0), ptr(5.0))
	answer := Answer{Number: ptr(9.0)}
	first := Validate(task, answer)
	second := Validate(task, answer)
	if first != second {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
}

func TestRequireComment(t *testing.T) {
	flagged := Validate(model.Task{InputType: model.InputBoolean}, Answer{Boolean: ptr(false)})
	if !flagged.IsValid {
		t.Fatalf("expected flagged answer to stay valid")
	}
	if err := RequireComment(flagged, ""); !errors.Is(err, ErrCommentRequired) {
		t.Fatalf("expected ErrCommentRequired, got %v", err)
	}
	if err := RequireComment(flagged, "   "); !errors.Is(err, ErrCommentRequired) {
		t.Fatalf("expected blank comment to be rejected, got %v", err)
	}
	if err := RequireComment(flagged, "supplier van fridge broken"); err != nil {
		t.Fatalf("expected comment to satisfy policy, got %v", err)
	}
	if err := RequireComment(Result{IsValid: true}, ""); err != nil {
		t.Fatalf("expected unflagged result to need no comment, got %v", err)
	}
}

func TestFormatRange(t *testing.T) {
	cases := []struct {
		name string
		task model.Task
		want string
		ok   bool
	}{
		{"both", numberTask(ptr(0.0), ptr(5.0)), "0 to 5", true},
		{"min only", numberTask(ptr(63.0), nil), "≥ 63", true},
		{"max only", numberTask(nil, ptr(-18.0)), "≤ -18", true},
		{"no bounds", numberTask(nil, nil), "", false},
		{"not numeric", model.Task{InputType: model.InputBoolean, RangeMin: ptr(1.0)}, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FormatRange(tc.task)
			if got != tc.want || ok != tc.ok {
				t.Fatalf("expected (%q, %v), got (%q, %v)", tc.want, tc.ok, got, ok)
			}
		})
	}
}

func TestParseAnswer(t *testing.T) {
	if answer := ParseAnswer(model.InputNumber, " 3.5 "); answer.Number == nil || *answer.Number != 3.5 {
		t.Fatalf("expected 3.5, got %+v", answer)
	}
	if answer := ParseAnswer(model.InputNumber, "warm"); answer.Number != nil {
		t.Fatalf("expected unparseable number to be empty")
	}
	if answer := ParseAnswer(model.InputNumber, "NaN"); answer.Number != nil {
		t.Fatalf("expected NaN to be rejected")
	}
	if answer := ParseAnswer(model.InputBoolean, "No"); answer.Boolean == nil || *answer.Boolean {
		t.Fatalf("expected no to parse as false, got %+v", answer)
	}
	if answer := ParseAnswer(model.InputBoolean, "maybe"); answer.Boolean != nil {
		t.Fatalf("expected unknown boolean to be empty")
	}
	if answer := ParseAnswer(model.InputText, "wiped down"); answer.Text == nil || *answer.Text != "wiped down" {
		t.Fatalf("expected text to pass through, got %+v", answer)
	}
}
