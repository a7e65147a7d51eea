package reports

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/blend/internal/app/system/dateparam"
	"github.com/dalemusser/blend/internal/app/system/respond"
	"github.com/dalemusser/blend/internal/domain/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// sheet is one worksheet: a title line, a header row and data rows.
type sheet struct {
	Name    string
	Title   string
	Headers []string
	Rows    [][]any
}

func dailySheet(title string, rg dateparam.Range, rows []models.DayCount) sheet {
	s := sheet{
		Name:    "Daily",
		Title:   title + " per day (" + rg.Label() + ")",
		Headers: []string{"Date", "Count"},
	}
	for _, r := range rows {
		s.Rows = append(s.Rows, []any{r.Date, r.Count})
	}
	return s
}

func usageSheet(rg dateparam.Range, rows []models.EquipmentUsage) sheet {
	s := sheet{
		Name:    "Usage",
		Title:   "Equipment usage (" + rg.Label() + ")",
		Headers: []string{"Equipment", "Bookings", "Quantity"},
	}
	for _, r := range rows {
		s.Rows = append(s.Rows, []any{r.Equipment, r.Bookings, r.Quantity})
	}
	return s
}

func summarySheet(rg dateparam.Range, sum models.ReportSummary) sheet {
	s := sheet{
		Name:    "Summary",
		Title:   "Summary (" + rg.Label() + ")",
		Headers: []string{"Metric", "Count"},
		Rows: [][]any{
			{"Quotes", sum.Quotes},
			{"Messages", sum.Messages},
			{"Bookings", sum.Bookings},
		},
	}
	for _, st := range models.BookingStatuses {
		s.Rows = append(s.Rows, []any{"Bookings " + st, sum.BookingsByStatus[st]})
	}
	return s
}

// buildWorkbook renders the sheets into an xlsx file.
func buildWorkbook(sheets ...sheet) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	for i, s := range sheets {
		idx, err := f.NewSheet(s.Name)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", s.Name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}

		if err := f.SetCellValue(s.Name, "A1", s.Title); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(s.Name, "A1", "A1", bold); err != nil {
			return nil, err
		}
		for col, hdr := range s.Headers {
			cell, _ := excelize.CoordinatesToCellName(col+1, 3)
			if err := f.SetCellValue(s.Name, cell, hdr); err != nil {
				return nil, err
			}
			if err := f.SetCellStyle(s.Name, cell, cell, bold); err != nil {
				return nil, err
			}
		}
		for r, row := range s.Rows {
			for col, v := range row {
				cell, _ := excelize.CoordinatesToCellName(col+1, r+4)
				if err := f.SetCellValue(s.Name, cell, v); err != nil {
					return nil, err
				}
			}
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// writeXLSX sends the workbook as an attachment named <base>_<timestamp>.xlsx.
func (h *Handler) writeXLSX(w http.ResponseWriter, base string, sheets ...sheet) {
	buf, err := buildWorkbook(sheets...)
	if err != nil {
		respond.ServerError(w, h.Log, "build xlsx failed", err, zap.String("report", base))
		return
	}

	filename := base + "_" + time.Now().UTC().Format("20060102_150405") + ".xlsx"
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
