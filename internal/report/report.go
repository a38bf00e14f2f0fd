package report

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/shiftline/smena-bot/internal/models"
	"github.com/xuri/excelize/v2"
)

// ErrNoShifts is returned when there are no shifts to export.
var ErrNoShifts = errors.New("failed to generate timesheet, 0 shifts were provided")

// SheetName is the single worksheet of the timesheet workbook.
const SheetName = "Timesheet"

var headers = []string{"Date", "Planned start", "Planned end", "Status", "Worked, min", "Breaks, min", "Report"}

// GenerateTimesheet builds an Excel workbook with one row per shift
// summary and returns it as a buffer ready to be sent as a document.
func GenerateTimesheet(summaries []models.ShiftSummary, loc *time.Location) (*bytes.Buffer, error) {
	if len(summaries) == 0 {
		return nil, ErrNoShifts
	}

	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range headers {
		cell, errCell := excelize.CoordinatesToCellName(col+1, 1)
		if errCell != nil {
			return nil, fmt.Errorf("failed to resolve header cell: %w", errCell)
		}
		if err = file.SetCellValue(SheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		if err = file.SetCellStyle(SheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to style header: %w", err)
		}
	}

	for i, summary := range summaries {
		reportMark := "missing"
		if summary.ReportDone {
			reportMark = "submitted"
		}

		row := []any{
			summary.PlannedStartAt.In(loc).Format(time.DateOnly),
			summary.PlannedStartAt.In(loc).Format("15:04"),
			summary.PlannedEndAt.In(loc).Format("15:04"),
			summary.Status,
			summary.WorkedMinutes,
			summary.BreakMinutes,
			reportMark,
		}

		cell, errCell := excelize.CoordinatesToCellName(1, i+2)
		if errCell != nil {
			return nil, fmt.Errorf("failed to resolve row cell: %w", errCell)
		}
		if err = file.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write timesheet row: %w", err)
		}
	}

	if err = file.SetColWidth(SheetName, "A", "G", 14); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	buffer, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	return buffer, nil
}
