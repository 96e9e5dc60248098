package services

import (
	"context"
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/robotics-academy/grading-service/internal/gradebook"
	"github.com/robotics-academy/grading-service/internal/models"
)

const (
	xlsxContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	gradebookSheetName = "Gradebook"
)

// ExportCourseGradebook renders the course gradebook as an XLSX workbook: one
// row per student, one column per item, then the summary columns.
func (s *gradebookService) ExportCourseGradebook(ctx context.Context, courseID uint, query *GradebookQuery, userID string, role models.UserRole) (*GradebookExport, error) {
	gb, err := s.GetCourseGradebook(ctx, courseID, query, userID, role)
	if err != nil {
		return nil, err
	}

	content, err := renderGradebookXLSX(gb)
	if err != nil {
		return nil, fmt.Errorf("failed to render gradebook: %w", err)
	}

	s.logger.Info("Gradebook exported",
		"course_id", courseID,
		"user_id", userID,
		"rows", len(gb.Rows),
		"bytes", len(content))

	return &GradebookExport{
		FileName:    fmt.Sprintf("gradebook-course-%d-%s.xlsx", courseID, gb.GeneratedAt.Format("20060102")),
		ContentType: xlsxContentType,
		Content:     content,
	}, nil
}

func renderGradebookXLSX(gb *gradebook.Gradebook) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", gradebookSheetName); err != nil {
		return nil, err
	}

	headers := []any{"Student ID", "Student"}
	for _, col := range gb.Columns {
		headers = append(headers, fmt.Sprintf("%s (%g)", col.Title, col.MaxPoints))
	}
	headers = append(headers, "Earned", "Possible", "Average %", "Letter")

	if err := setRow(f, 1, headers); err != nil {
		return nil, err
	}

	for i, row := range gb.Rows {
		values := []any{row.Student.ID, row.Student.Name}
		for _, col := range gb.Columns {
			cell := row.Grades[col.Key]
			if cell.Score != nil {
				values = append(values, *cell.Score)
			} else {
				values = append(values, cell.Status)
			}
		}
		values = append(values,
			row.Summary.TotalEarned,
			row.Summary.TotalPossible,
			round2(row.Summary.Average),
			row.Summary.LetterGrade)

		if err := setRow(f, i+2, values); err != nil {
			return nil, err
		}
	}

	// Column averages below the students
	footer := []any{"", "Column average"}
	for _, col := range gb.Columns {
		if col.Average != nil {
			footer = append(footer, round2(*col.Average))
		} else {
			footer = append(footer, "")
		}
	}
	footer = append(footer, "", "", round2(gb.Analytics.CourseAverage), "")
	if err := setRow(f, len(gb.Rows)+2, footer); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(gradebookSheetName, "A1", lastCol+"1", bold); err != nil {
		return nil, err
	}
	if err := f.SetPanes(gradebookSheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      2,
		YSplit:      1,
		TopLeftCell: "C2",
		ActivePane:  "bottomRight",
	}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(gradebookSheetName, cell, &values)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
