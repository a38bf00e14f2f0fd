package report_test

import (
	"testing"
	"time"

	"github.com/shiftline/smena-bot/internal/models"
	"github.com/shiftline/smena-bot/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGenerateTimesheet(t *testing.T) {
	start := time.Date(2025, 6, 2, 7, 0, 0, 0, time.UTC)
	testSummaries := []models.ShiftSummary{
		{
			ShiftID:        "shift-1",
			PlannedStartAt: start,
			PlannedEndAt:   start.Add(9 * time.Hour),
			Status:         models.ShiftDone,
			WorkedMinutes:  480,
			BreakMinutes:   60,
			ReportDone:     true,
		},
		{
			ShiftID:        "shift-2",
			PlannedStartAt: start.AddDate(0, 0, 1),
			PlannedEndAt:   start.AddDate(0, 0, 1).Add(9 * time.Hour),
			Status:         models.ShiftDone,
			WorkedMinutes:  510,
			BreakMinutes:   45,
			ReportDone:     false,
		},
	}

	t.Run("successful timesheet generation", func(t *testing.T) {
		loc, err := time.LoadLocation("Europe/Amsterdam")
		require.NoError(t, err)

		buffer, err := report.GenerateTimesheet(testSummaries, loc)

		require.NoError(t, err)
		assert.NotNil(t, buffer)

		f, err := excelize.OpenReader(buffer)
		require.NoError(t, err)
		defer f.Close()

		sheetList := f.GetSheetList()
		assert.Equal(t, []string{report.SheetName}, sheetList)

		headerVal, err := f.GetCellValue(report.SheetName, "A1")
		require.NoError(t, err)
		assert.Equal(t, "Date", headerVal)

		dateVal, err := f.GetCellValue(report.SheetName, "A2")
		require.NoError(t, err)
		assert.Equal(t, "2025-06-02", dateVal)

		// 07:00 UTC is 09:00 in Amsterdam during summer time.
		startVal, err := f.GetCellValue(report.SheetName, "B2")
		require.NoError(t, err)
		assert.Equal(t, "09:00", startVal)

		workedVal, err := f.GetCellValue(report.SheetName, "E2")
		require.NoError(t, err)
		assert.Equal(t, "480", workedVal)

		reportVal, err := f.GetCellValue(report.SheetName, "G2")
		require.NoError(t, err)
		assert.Equal(t, "submitted", reportVal)

		missingVal, err := f.GetCellValue(report.SheetName, "G3")
		require.NoError(t, err)
		assert.Equal(t, "missing", missingVal)
	})

	t.Run("no shifts found", func(t *testing.T) {
		buffer, err := report.GenerateTimesheet(nil, time.UTC)

		require.Error(t, err)
		assert.Nil(t, buffer)
		require.ErrorIs(t, err, report.ErrNoShifts)
	})
}
