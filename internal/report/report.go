// Package report renders the compliance log for download.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"github.com/Joseda-hg/kitchencheck/internal/model"
	"github.com/Joseda-hg/kitchencheck/internal/submission"
)

const sheetName = "Log"

var headers = []string{"Date", "Time", "Task", "Value", "Completed by", "Flagged", "Comment"}

// Row is one record laid out as it appears in every export.
type Row struct {
	Date        string
	Time        string
	Task        string
	Value       string
	CompletedBy string
	Flagged     bool
	Comment     string
}

func (r Row) cells() []string {
	flagged := ""
	if r.Flagged {
		flagged = "Yes"
	}
	return []string{r.Date, r.Time, r.Task, r.Value, r.CompletedBy, flagged, r.Comment}
}

func Rows(records []model.RecordWithTask) []Row {
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		row := Row{
			Date:        record.CompletedAt.Format("2006-01-02"),
			Time:        record.CompletedAt.Format("15:04"),
			Task:        record.TaskTitle,
			Value:       FormatValue(record.TaskRecord),
			CompletedBy: record.CompletedByName,
			Flagged:     record.Flagged,
		}
		if row.CompletedBy == "" {
			row.CompletedBy = record.CompletedBy
		}
		if record.FlagComment != nil {
			row.Comment = *record.FlagComment
		}
		rows = append(rows, row)
	}
	return rows
}

// FormatValue shows whichever value the record holds.
func FormatValue(record model.TaskRecord) string {
	switch {
	case record.ValueNumber != nil:
		return submission.FormatNumber(*record.ValueNumber)
	case record.ValueBoolean != nil:
		if *record.ValueBoolean {
			return "Yes"
		}
		return "No"
	case record.ValueText != nil:
		return *record.ValueText
	default:
		return ""
	}
}

// DescribeFilter summarises the filters a log was produced with.
func DescribeFilter(filter model.LogFilter, taskTitle string) string {
	parts := []string{}
	if filter.Start != nil {
		parts = append(parts, "from "+filter.Start.Format("2006-01-02"))
	}
	if filter.End != nil {
		// End is exclusive, show the last included day.
		parts = append(parts, "to "+filter.End.Add(-time.Nanosecond).Format("2006-01-02"))
	}
	if filter.TaskID != "" {
		label := taskTitle
		if label == "" {
			label = filter.TaskID
		}
		parts = append(parts, "task "+label)
	}
	if filter.FlaggedOnly {
		parts = append(parts, "flagged only")
	}
	if len(parts) == 0 {
		return "All records"
	}
	return strings.Join(parts, ", ")
}

// Filename is the suggested download name for an export generated at now.
func Filename(now time.Time, ext string) string {
	return fmt.Sprintf("compliance-log-%s.%s", now.Format("2006-01-02"), strings.TrimPrefix(ext, "."))
}

func WriteXLSX(w io.Writer, records []model.RecordWithTask) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(sheetName, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	flaggedStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FDE2E1"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("flagged style: %w", err)
	}

	for i, row := range Rows(records) {
		rowNum := i + 2
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		values := make([]interface{}, 0, len(headers))
		for _, value := range row.cells() {
			values = append(values, value)
		}
		if records[i].ValueNumber != nil {
			values[3] = *records[i].ValueNumber
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", rowNum, err)
		}
		if row.Flagged {
			if err := f.SetRowStyle(sheetName, rowNum, rowNum, flaggedStyle); err != nil {
				return fmt.Errorf("style row %d: %w", rowNum, err)
			}
		}
	}

	widths := []float64{12, 8, 32, 12, 22, 9, 48}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func WritePDF(w io.Writer, title, subtitle string, records []model.RecordWithTask) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, tr(subtitle))
	pdf.Ln(10)

	widths := []float64{24, 14, 62, 24, 44, 16, 93}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 250)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	rows := Rows(records)
	if len(rows) == 0 {
		pdf.CellFormat(sum(widths), 7, "No records match these filters.", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	for _, row := range rows {
		if row.Flagged {
			pdf.SetFillColor(253, 226, 225)
		}
		for i, value := range row.cells() {
			pdf.CellFormat(widths[i], 6, fit(pdf, tr, value, widths[i]), "1", 0, "L", row.Flagged, 0, "")
		}
		pdf.Ln(-1)
	}

	flagged := 0
	for _, row := range rows {
		if row.Flagged {
			flagged++
		}
	}
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 8, fmt.Sprintf("%d records, %d flagged", len(rows), flagged))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// fit shortens text with an ellipsis until it fits a cell of width mm.
func fit(pdf *fpdf.Fpdf, tr func(string) string, text string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(tr(text)) <= limit {
		return tr(text)
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(tr(string(runes)+"...")) > limit {
		runes = runes[:len(runes)-1]
	}
	return tr(string(runes) + "...")
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
