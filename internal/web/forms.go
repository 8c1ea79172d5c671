package web

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Joseda-hg/kitchencheck/internal/db"
	"github.com/Joseda-hg/kitchencheck/internal/model"
)

var errBadForm = errors.New("invalid form")

const dateLayout = "2006-01-02"

func taskInputFromForm(c *gin.Context) (db.TaskInput, error) {
	input := db.TaskInput{
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		InputType:    model.InputType(c.PostForm("input_type")),
		ScheduleType: c.DefaultPostForm("schedule_type", "daily"),
		Time:         c.PostForm("time"),
		AssignedRole: model.Role(c.DefaultPostForm("assigned_role", string(model.RoleStaff))),
	}

	for _, raw := range c.PostFormArray("days") {
		day, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return input, fmt.Errorf("%w: day %q is not a number", errBadForm, raw)
		}
		input.Days = append(input.Days, day)
	}

	var err error
	if input.RangeMin, err = optionalFloat(c.PostForm("range_min")); err != nil {
		return input, fmt.Errorf("%w: minimum %v", errBadForm, err)
	}
	if input.RangeMax, err = optionalFloat(c.PostForm("range_max")); err != nil {
		return input, fmt.Errorf("%w: maximum %v", errBadForm, err)
	}
	return input, nil
}

func optionalFloat(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, fmt.Errorf("%q is not a number", raw)
	}
	return &value, nil
}

// logFilterFromQuery reads start, end, task_id and flagged. Dates are whole
// days in loc and end is inclusive.
func logFilterFromQuery(c *gin.Context, loc *time.Location) (model.LogFilter, error) {
	filter := model.LogFilter{
		TaskID:      strings.TrimSpace(c.Query("task_id")),
		FlaggedOnly: truthy(c.Query("flagged")),
	}

	if raw := strings.TrimSpace(c.Query("start")); raw != "" {
		start, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			return filter, fmt.Errorf("%w: start date %q", errBadForm, raw)
		}
		filter.Start = &start
	}
	if raw := strings.TrimSpace(c.Query("end")); raw != "" {
		end, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			return filter, fmt.Errorf("%w: end date %q", errBadForm, raw)
		}
		end = end.AddDate(0, 0, 1)
		filter.End = &end
	}
	if filter.Start != nil && filter.End != nil && !filter.Start.Before(*filter.End) {
		return filter, fmt.Errorf("%w: start date is after end date", errBadForm)
	}
	return filter, nil
}

func truthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}

// inclusiveEnd is the date shown in the end field for an exclusive bound.
func inclusiveEnd(end *time.Time) string {
	if end == nil {
		return ""
	}
	return end.AddDate(0, 0, -1).Format(dateLayout)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
