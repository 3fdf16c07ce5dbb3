// internal/app/features/calendar/export.go
package calendar

import (
	"fmt"
	"net/http"

	"github.com/dalemusser/prepboard/internal/domain/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const sheetName = "Calendar"

var exportHeader = []any{"Semester", "Start", "End", "Title", "Category"}

// Workbook renders cal as a single-sheet workbook with one row per event.
// The caller must Close the returned file.
func Workbook(cal models.Calendar) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		f.Close()
		return nil, err
	}

	title := cal.Title
	if title == "" {
		title = fmt.Sprintf("Academic calendar %d", cal.Year)
	}
	if err := f.SetCellValue(sheetName, "A1", title); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetSheetRow(sheetName, "A2", &exportHeader); err != nil {
		f.Close()
		return nil, err
	}
	if bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(sheetName, "A1", "E2", bold)
	}

	row := 3
	for _, s := range cal.Semesters {
		for _, ev := range s.Events {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			vals := []any{s.Name, ev.Start, ev.End, ev.Title, ev.Category}
			if err := f.SetSheetRow(sheetName, cell, &vals); err != nil {
				f.Close()
				return nil, err
			}
			row++
		}
	}
	_ = f.SetColWidth(sheetName, "A", "C", 12)
	_ = f.SetColWidth(sheetName, "D", "D", 40)
	_ = f.SetColWidth(sheetName, "E", "E", 12)
	return f, nil
}

// ServeXLSX streams the calendar as a spreadsheet download.
// GET /api/calendar/export.xlsx
func (h *Handler) ServeXLSX(w http.ResponseWriter, r *http.Request) {
	f, err := Workbook(h.Cal)
	if err != nil {
		h.ErrLog.ServerError(w, r, "build calendar workbook", err)
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		h.ErrLog.ServerError(w, r, "write calendar workbook", err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="calendar-%d.xlsx"`, h.Cal.Year))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.Log.Debug("calendar export write failed", zap.Error(err))
	}
}
