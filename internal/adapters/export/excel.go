// Package export renders pipeline reports as spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/hireflow/internal/domain/report"
)

// Sheet names in the funnel workbook.
const (
	SummarySheet    = "Summary"
	CandidatesSheet = "Candidates"
)

// WriteFunnel writes f as an .xlsx workbook to w: a summary sheet with the
// funnel counts and rates and a candidates sheet with one row per applicant.
func WriteFunnel(w io.Writer, f report.Funnel, generated time.Time) error {
	x := excelize.NewFile()
	defer x.Close()

	if err := x.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := x.NewSheet(CandidatesSheet); err != nil {
		return fmt.Errorf("failed to create candidates sheet: %w", err)
	}

	if err := writeSummary(x, f, generated); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeCandidates(x, f.Rows); err != nil {
		return fmt.Errorf("failed to create candidates sheet: %w", err)
	}

	if err := x.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func headerStyle(x *excelize.File) (int, error) {
	return x.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
}

func writeSummary(x *excelize.File, f report.Funnel, generated time.Time) error {
	sheet := SummarySheet
	if err := x.SetColWidth(sheet, "A", "A", 24); err != nil {
		return err
	}
	if err := x.SetColWidth(sheet, "B", "B", 16); err != nil {
		return err
	}
	header, err := headerStyle(x)
	if err != nil {
		return err
	}
	label, err := x.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	job := f.JobID
	if job == "" {
		job = "All jobs"
	}
	rows := [][2]any{
		{"Job", job},
		{"Generated", generated.UTC().Format("2006-01-02 15:04:05")},
		{"Applicants", f.TotalApplicants},
		{"In review", f.InReview},
		{"Interviews", f.Interviews},
		{"Offers", f.Offers},
		{"Hires", f.Hires},
		{"Rejected", f.Rejected},
		{"Interview rate (%)", f.InterviewRate},
		{"Offer rate (%)", f.OfferRate},
		{"Hire rate (%)", f.HireRate},
		{"Unrecognized status", f.Unrecognized},
	}

	if err := x.SetCellValue(sheet, "A1", "Pipeline Report"); err != nil {
		return err
	}
	if err := x.MergeCell(sheet, "A1", "B1"); err != nil {
		return err
	}
	if err := x.SetCellStyle(sheet, "A1", "B1", header); err != nil {
		return err
	}

	row := 3
	for _, r := range rows {
		if err := x.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]any{r[0], r[1]}); err != nil {
			return err
		}
		if err := x.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), label); err != nil {
			return err
		}
		row++
	}

	if len(f.Missing) > 0 {
		row++
		if err := x.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]any{"Unavailable sources", fmt.Sprint(f.Missing)}); err != nil {
			return err
		}
	}
	return nil
}

func writeCandidates(x *excelize.File, rows []report.Row) error {
	sheet := CandidatesSheet
	header, err := headerStyle(x)
	if err != nil {
		return err
	}
	if err := x.SetSheetRow(sheet, "A1", &[]any{"Candidate ID", "Name", "Email", "Stage", "Score", "Performance"}); err != nil {
		return err
	}
	if err := x.SetCellStyle(sheet, "A1", "F1", header); err != nil {
		return err
	}
	if err := x.SetColWidth(sheet, "A", "F", 20); err != nil {
		return err
	}

	for i, r := range rows {
		var score any = "n/a"
		if r.Score != nil {
			score = *r.Score
		}
		stage := r.Stage.String()
		if r.UnknownStatus != "" {
			stage = "unrecognized: " + r.UnknownStatus
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := x.SetSheetRow(sheet, cell, &[]any{r.CandidateID, r.Name, r.Email, stage, score, r.Level}); err != nil {
			return err
		}
	}
	return nil
}
