package export

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/soniclabs/beamkit/internal/control"
)

func TestStatsWorkbook(t *testing.T) {
	var iv control.StatsInterval
	iv.IntervalID = "2026-08-30:10"
	iv.Messages.All.Count = 42
	iv.Messages.All.Data = 4096
	iv.Connections.Peak = 7
	iv.Connections.Mean = 3
	iv.Channels.Peak = 2

	path := filepath.Join(t.TempDir(), "stats.xlsx")
	if err := StatsWorkbook(path, []control.StatsInterval{iv}); err != nil {
		t.Fatalf("StatsWorkbook: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue(statsSheet, "A1"); got != "Interval" {
		t.Errorf("A1 = %q", got)
	}
	if got, _ := f.GetCellValue(statsSheet, "A2"); got != "2026-08-30:10" {
		t.Errorf("A2 = %q", got)
	}
	if got, _ := f.GetCellValue(statsSheet, "B2"); got != "42" {
		t.Errorf("B2 = %q", got)
	}
	if got, _ := f.GetCellValue(statsSheet, "D2"); got != "7" {
		t.Errorf("D2 = %q", got)
	}
}

func TestStatsWorkbookEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	if err := StatsWorkbook(path, nil); err != nil {
		t.Fatalf("StatsWorkbook: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	f.Close()
}
