// Package export renders progress reports as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/unit-planner/internal/planning"
	"github.com/p-n-ai/unit-planner/internal/progress"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names.
const (
	ProgressSheet = "Progress"
	SummarySheet  = "Summary"
)

var progressHeaders = []any{
	"Month", "Status",
	"Concepts covered", "Total concepts",
	"Topics covered", "Total topics",
	"Assessments", "Total assessments",
	"Topic coverage %",
}

// WriteReport writes r as an .xlsx workbook with one row per month followed
// by a totals row, plus a summary sheet headed by title.
func WriteReport(w io.Writer, r progress.Report, title string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ProgressSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}

	if err := f.SetSheetRow(ProgressSheet, "A1", &progressHeaders); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(progressHeaders), 1)
	if err := f.SetCellStyle(ProgressSheet, "A1", lastCol, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, m := range r.Months {
		row := []any{
			m.Month, string(m.Status),
			m.ConceptsCovered, m.TotalConcepts,
			m.TopicsCovered, m.TotalTopics,
			m.AssessmentsCompleted, m.TotalAssessments,
			planning.CompletionPercentage(m.TopicsCovered, m.TotalTopics),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(ProgressSheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s: %w", m.Month, err)
		}
	}

	totalRow := len(r.Months) + 2
	totals := []any{
		"Total", fmt.Sprintf("%d/%d completed", r.CompletedMonths, len(r.Months)),
		r.ConceptsCovered, r.TotalConcepts,
		r.TopicsCovered, r.TotalTopics,
		r.AssessmentsCompleted, r.TotalAssessments,
		r.SyllabusPercentage,
	}
	first, _ := excelize.CoordinatesToCellName(1, totalRow)
	last, _ := excelize.CoordinatesToCellName(len(totals), totalRow)
	if err := f.SetSheetRow(ProgressSheet, first, &totals); err != nil {
		return fmt.Errorf("writing totals: %w", err)
	}
	if err := f.SetCellStyle(ProgressSheet, first, last, bold); err != nil {
		return fmt.Errorf("styling totals: %w", err)
	}
	if err := f.SetColWidth(ProgressSheet, "A", "B", 18); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("creating summary: %w", err)
	}
	summary := [][]any{
		{"Report", title},
		{"Subject", r.SubjectID},
		{"Months completed", r.CompletedMonths},
		{"Concepts covered", fmt.Sprintf("%d/%d", r.ConceptsCovered, r.TotalConcepts)},
		{"Topics covered", fmt.Sprintf("%d/%d", r.TopicsCovered, r.TotalTopics)},
		{"Syllabus coverage %", r.SyllabusPercentage},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return fmt.Errorf("styling summary: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
