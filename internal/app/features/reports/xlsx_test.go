package reports

import (
	"testing"

	"github.com/dalemusser/blend/internal/app/system/dateparam"
	"github.com/dalemusser/blend/internal/domain/models"
	"github.com/xuri/excelize/v2"
)

func TestBuildWorkbook(t *testing.T) {
	rows := []models.DayCount{{Date: "2026-03-01", Count: 2}, {Date: "2026-03-02", Count: 5}}

	buf, err := buildWorkbook(dailySheet("Quotes", dateparam.Range{}, rows))
	if err != nil {
		t.Fatalf("buildWorkbook: %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	if names := f.GetSheetList(); len(names) != 1 || names[0] != "Daily" {
		t.Fatalf("sheets = %v, want [Daily]", names)
	}
	title, _ := f.GetCellValue("Daily", "A1")
	if title != "Quotes per day (any to any)" {
		t.Errorf("title = %q", title)
	}
	hdr, _ := f.GetCellValue("Daily", "B3")
	if hdr != "Count" {
		t.Errorf("B3 = %q, want Count", hdr)
	}
	date, _ := f.GetCellValue("Daily", "A5")
	count, _ := f.GetCellValue("Daily", "B5")
	if date != "2026-03-02" || count != "5" {
		t.Errorf("row 5 = %q, %q", date, count)
	}
}

func TestSummarySheet_ListsEveryStatus(t *testing.T) {
	s := summarySheet(dateparam.Range{}, models.ReportSummary{
		Quotes:           3,
		BookingsByStatus: map[string]int64{"approved": 2},
	})
	if len(s.Rows) != 3+len(models.BookingStatuses) {
		t.Fatalf("rows = %d", len(s.Rows))
	}
	if s.Rows[0][1] != int64(3) {
		t.Errorf("quotes row = %v", s.Rows[0])
	}
}
