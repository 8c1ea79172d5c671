package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Joseda-hg/kitchencheck/internal/checklist"
	"github.com/Joseda-hg/kitchencheck/internal/model"
	"github.com/Joseda-hg/kitchencheck/internal/report"
	"github.com/Joseda-hg/kitchencheck/internal/schedule"
)

func formatItemSummary(item checklist.Item, now time.Time) string {
	switch item.Status {
	case schedule.StatusCompleted:
		if record := item.LastRecord(); record != nil {
			flag := ""
			if record.Flagged {
				flag = " !"
			}
			return fmt.Sprintf("%s | %s%s", item.Task.Title, report.FormatValue(*record), flag)
		}
		return item.Task.Title
	case schedule.StatusOverdue:
		return fmt.Sprintf("%s | due %s (%s)", item.Task.Title, item.ScheduledAt.Format("15:04"), humanize.RelTime(item.ScheduledAt, now, "ago", "from now"))
	default:
		return fmt.Sprintf("%s | due %s", item.Task.Title, item.ScheduledAt.Format("15:04"))
	}
}

func formatRecord(record model.TaskRecord) string {
	line := fmt.Sprintf("%s  %s", record.CompletedAt.Format("15:04"), report.FormatValue(record))
	if record.Flagged {
		comment := ""
		if record.FlagComment != nil {
			comment = *record.FlagComment
		}
		line += fmt.Sprintf("  [flagged: %s]", comment)
	}
	return line
}

func detailLines(item checklist.Item) []string {
	task := item.Task
	lines := []string{
		task.Title,
		fmt.Sprintf("Status: %s", item.Status),
		fmt.Sprintf("Schedule: %s", item.Schedule),
		fmt.Sprintf("Input: %s", task.InputType),
	}
	if item.Range != "" {
		lines = append(lines, fmt.Sprintf("Acceptable: %s", item.Range))
	}
	if strings.TrimSpace(task.Description) != "" {
		lines = append(lines, "", task.Description)
	}
	lines = append(lines, "", "Today:")
	if len(item.Records) == 0 {
		lines = append(lines, "  nothing recorded yet")
	}
	for _, record := range item.Records {
		lines = append(lines, "  "+formatRecord(record))
	}
	return lines
}
